package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/undoable/internal/journal"
)

// SessionEntries is the journal command output for one session.
type SessionEntries struct {
	Session string          `json:"session"`
	Entries []journal.Entry `json:"entries"`
	Counts  map[string]int  `json:"counts"`
}

// NewJournalCommand creates the journal command.
func NewJournalCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "journal <db> [session-id]",
		Short: "Inspect a history journal",
		Long: `Inspect a journal written by "undoctl run --journal".

Without a session id, lists every session with its label and event
count, oldest first. With a session id, prints that session's history
events in order.`,
		Args:          cobra.RangeArgs(1, 2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runJournal(rootOpts, args, cmd)
		},
	}
	return cmd
}

func runJournal(opts *RootOptions, args []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)
	path := args[0]

	// Open would create a missing database.
	if _, err := os.Stat(path); err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("journal not found: %s", path), nil)
	}
	j, err := journal.Open(path)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeJournal, "open journal", err)
	}
	defer j.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if len(args) == 1 {
		sessions, err := j.Sessions(ctx)
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeJournal, "list sessions", err)
		}
		if formatter.JSON() {
			return formatter.Success(sessions)
		}
		if len(sessions) == 0 {
			fmt.Fprintln(formatter.Writer, "No sessions.")
			return nil
		}
		for _, s := range sessions {
			fmt.Fprintf(formatter.Writer, "%s  %-24s %d events\n", s.ID, s.Label, s.Events)
		}
		return nil
	}

	id := args[1]
	entries, err := j.Entries(ctx, id)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeJournal, "read entries", err)
	}
	if len(entries) == 0 {
		return formatter.Fail(ExitFailure, ErrCodeNotFound, fmt.Sprintf("no events for session %s", id), nil)
	}
	byKind, err := j.CountByKind(ctx, id)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeJournal, "count events", err)
	}
	counts := make(map[string]int, len(byKind))
	for k, n := range byKind {
		counts[string(k)] = n
	}

	if formatter.JSON() {
		return formatter.SuccessWithTrace(SessionEntries{Session: id, Entries: entries, Counts: counts}, id)
	}
	w := formatter.Writer
	fmt.Fprintf(w, "%-5s %-8s %8s %5s %5s %6s\n", "SEQ", "KIND", "COMMANDS", "UNDO", "REDO", "STAGED")
	for _, e := range entries {
		fmt.Fprintf(w, "%-5d %-8s %8d %5d %5d %6d\n", e.Seq, e.Kind, e.Commands, e.UndoDepth, e.RedoDepth, e.Staged)
	}
	return nil
}
