package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/danielpatrickdp/outfit-state/go-stylist/internal/config"
	"github.com/danielpatrickdp/outfit-state/go-stylist/internal/logging"
)

// #region globals

var (
	// Global flags, each overriding its STYLIST_* variable when set
	flagStore    string
	flagDB       string
	flagRules    string
	flagLogLevel string
	verbose      bool

	cfg    config.Config
	logger *zap.Logger
)

// #endregion globals

// #region root

var rootCmd = &cobra.Command{
	Use:   "stylist",
	Short: "Outfit state and compatibility engine",
	Long: `stylist tracks an outfit across a conversation: it applies add, remove and
replace requests, keeps undo/redo history, checks color, formality, pattern
and season compatibility, and asks for clarification when a request is
ambiguous.

Configuration comes from STYLIST_* environment variables or a .env file;
the global flags override them.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load()
		if err != nil {
			return err
		}
		flags := cmd.Flags()
		if flags.Changed("store") {
			loaded.Store = flagStore
		}
		if flags.Changed("db") {
			loaded.DB = flagDB
		}
		if flags.Changed("rules") {
			loaded.Rules = flagRules
		}
		if flags.Changed("log-level") {
			loaded.LogLevel = flagLogLevel
		}
		if verbose {
			loaded.LogLevel = "debug"
		}
		if err := loaded.Validate(); err != nil {
			return err
		}
		cfg = loaded

		logger, err = logging.New(cfg.LogLevel, cfg.LogDev)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagStore, "store", "", "session store: memory, cache or sqlite (STYLIST_STORE)")
	pf.StringVar(&flagDB, "db", "", "sqlite database path (STYLIST_DB)")
	pf.StringVar(&flagRules, "rules", "", "YAML rule table override (STYLIST_RULES)")
	pf.StringVar(&flagLogLevel, "log-level", "", "log level (STYLIST_LOG_LEVEL)")
	pf.BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	rootCmd.AddCommand(chatCmd, replayCmd, inspectCmd)
}

// #endregion root

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
