package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/outfit-state/go-stylist/internal/logging"
	"github.com/danielpatrickdp/outfit-state/go-stylist/internal/outfit"
	"github.com/danielpatrickdp/outfit-state/go-stylist/internal/store"
)

// #region inspect-command

var (
	inspectConversation string
	inspectLast         int
	inspectJSON         bool
)

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Browse stored sessions, snapshots and the turn log",
	Long: `Without --conversation, lists the most recently updated sessions. With it,
prints that conversation's snapshot history and its logged turns.`,
	RunE: runInspect,
}

func init() {
	f := inspectCmd.Flags()
	f.StringVar(&inspectConversation, "conversation", "", "conversation id to show in detail")
	f.IntVar(&inspectLast, "last", 20, "show N most recent sessions or turns")
	f.BoolVar(&inspectJSON, "json", false, "output as JSON instead of table")
}

// #endregion inspect-command

// #region inspect-run

type detailOutput struct {
	ConversationID string              `json:"conversation_id"`
	Snapshots      []outfit.Snapshot   `json:"snapshots"`
	Turns          []logging.TurnEntry `json:"turns"`
}

func runInspect(cmd *cobra.Command, args []string) error {
	s, err := store.NewSQLiteStore(cfg.DB, logger)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer s.Close()
	out := cmd.OutOrStdout()

	if inspectConversation == "" {
		sums, err := s.List(cmd.Context(), inspectLast)
		if err != nil {
			return err
		}
		if inspectJSON {
			return printJSON(out, sums)
		}
		printSessionTable(out, sums)
		return nil
	}

	snaps, err := s.Snapshots(cmd.Context(), inspectConversation)
	if err != nil {
		return err
	}
	if err := logging.EnsureSchema(s.DB()); err != nil {
		return err
	}
	turns, err := logging.Turns(s.DB(), inspectConversation, 0)
	if err != nil {
		return err
	}
	if n := len(turns); inspectLast > 0 && n > inspectLast {
		turns = turns[n-inspectLast:]
	}

	if inspectJSON {
		return printJSON(out, detailOutput{ConversationID: inspectConversation, Snapshots: snaps, Turns: turns})
	}
	printSnapshotTable(out, snaps)
	fmt.Fprintln(out)
	printTurnTable(out, turns)
	return nil
}

// #endregion inspect-run

// #region tables

func printSessionTable(w io.Writer, sums []store.Summary) {
	if len(sums) == 0 {
		fmt.Fprintln(w, "no sessions found")
		return
	}
	fmt.Fprintf(w, "%-36s  %6s  %9s  %s\n", "Conversation", "Cursor", "Snapshots", "Updated")
	fmt.Fprintf(w, "%-36s+-%6s+-%9s+-%s\n", strings.Repeat("-", 36), "------", "---------", "--------------------")
	for _, s := range sums {
		fmt.Fprintf(w, "%-36s  %6d  %9d  %s\n",
			s.ConversationID, s.Cursor, s.Snapshots, s.UpdatedAt.Format("2006-01-02T15:04:05Z"))
	}
}

func printSnapshotTable(w io.Writer, snaps []outfit.Snapshot) {
	fmt.Fprintf(w, "Snapshots (%d):\n", len(snaps))
	for i, s := range snaps {
		fmt.Fprintf(w, "  %3d  %-12s  %-10s  %s\n", i, shortID(s.ID), s.State, strings.Join(outfit.Names(s.Items), ", "))
	}
}

func printTurnTable(w io.Writer, turns []logging.TurnEntry) {
	fmt.Fprintf(w, "Turns (%d):\n", len(turns))
	for _, t := range turns {
		var rec logging.TurnRecord
		_ = json.Unmarshal([]byte(t.RecordJSON), &rec)
		message := rec.Message
		if rec.AnswerOption != "" {
			message = "answer: " + rec.AnswerOption
		}
		fmt.Fprintf(w, "  %-12s  %-14s  %-14s  %-24s  %s\n",
			shortID(t.TurnID), t.RequestType, t.Action, truncate(message, 24), t.Reason)
	}
}

func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// #endregion tables
