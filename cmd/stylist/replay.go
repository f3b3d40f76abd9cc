package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/outfit-state/go-stylist/internal/engine"
	"github.com/danielpatrickdp/outfit-state/go-stylist/internal/logging"
	"github.com/danielpatrickdp/outfit-state/go-stylist/internal/replay"
	"github.com/danielpatrickdp/outfit-state/go-stylist/internal/rules"
	"github.com/danielpatrickdp/outfit-state/go-stylist/internal/store"
)

// #region replay-command

var (
	replayFixtures []string
	replayShow     bool

	exportConversation string
	exportOut          string
)

var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Replay fixtures and compare every turn",
	Long: `Runs each fixture through a fresh in-memory engine and checks every turn
against its expected action, outfit state, items, scenario and cursor.
Exits non-zero when any turn mismatches.`,
	Example: `  stylist replay --fixture internal/replay/testdata/styling_session.json`,
	RunE:    runReplay,
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write a replay fixture from the turn log of one conversation",
	RunE:  runExport,
}

func init() {
	f := replayCmd.Flags()
	f.StringSliceVar(&replayFixtures, "fixture", nil, "fixture JSON path (repeatable)")
	f.BoolVar(&replayShow, "show", false, "print every turn, not only mismatches")
	_ = replayCmd.MarkFlagRequired("fixture")

	ef := exportCmd.Flags()
	ef.StringVar(&exportConversation, "conversation", "", "conversation id to export")
	ef.StringVar(&exportOut, "out", "", "output fixture JSON path")
	_ = exportCmd.MarkFlagRequired("conversation")
	_ = exportCmd.MarkFlagRequired("out")

	replayCmd.AddCommand(exportCmd)
}

// #endregion replay-command

// #region replay-run

func runReplay(cmd *cobra.Command, args []string) error {
	tables, err := rules.LoadOrDefault(cfg.Rules)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	failed, total := 0, 0
	for _, path := range replayFixtures {
		f, err := replay.LoadFixture(path)
		if err != nil {
			return err
		}
		results, err := replay.Replay(cmd.Context(), f, engine.WithTables(tables), engine.WithLogger(logger))
		if err != nil {
			return fmt.Errorf("replay %s: %w", path, err)
		}
		s := replay.Summarize(results)
		fmt.Fprintf(out, "%s: %d turns, %d passed, %d failed\n", path, s.TotalTurns, s.Passed, s.Failed)
		for _, r := range results {
			if !replayShow && r.Passed() {
				continue
			}
			status := "ok"
			if !r.Passed() {
				status = "FAIL"
			}
			fmt.Fprintf(out, "  %-4s %-10s %-16s %-10s %s\n",
				status, r.TurnID, r.Action, r.OutfitState, strings.Join(r.Items, ", "))
			for _, m := range r.Mismatches {
				fmt.Fprintf(out, "       %s\n", strings.ReplaceAll(m, "\n", "\n       "))
			}
		}
		failed += s.Failed
		total += s.TotalTurns
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d turns failed", failed, total)
	}
	return nil
}

func runExport(cmd *cobra.Command, args []string) error {
	s, err := store.NewSQLiteStore(cfg.DB, logger)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer s.Close()
	if err := logging.EnsureSchema(s.DB()); err != nil {
		return err
	}

	entries, err := logging.Turns(s.DB(), exportConversation, 0)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return fmt.Errorf("no logged turns for conversation %s", exportConversation)
	}
	f, err := replay.FromTurns(exportConversation, entries, cfg.Seed)
	if err != nil {
		return err
	}
	if err := replay.WriteFixture(exportOut, f); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "exported %d turns to %s\n", len(f.Turns), exportOut)
	return nil
}

// #endregion replay-run
