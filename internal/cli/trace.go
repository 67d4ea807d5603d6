package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/MayaFlux/MayaFlux-sub002/internal/trace"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Database string
	Session  string
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Inspect recorded scheduler sessions",
		Long: `List recorded sessions, or dump one session's scheduler events.

Example:
  flux trace --db flux-trace.db
  flux trace --db flux-trace.db --session 0190a8b2-...`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return showTrace(opts)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to trace database (required)")
	cmd.Flags().StringVar(&opts.Session, "session", "", "session token to dump (omit to list sessions)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

// traceEventView is the JSON shape of one dumped event.
type traceEventView struct {
	Op      string `json:"op"`
	Task    string `json:"task"`
	Samples uint64 `json:"samples"`
	Frames  uint32 `json:"frames"`
}

func showTrace(opts *TraceOptions) error {
	out := &OutputFormatter{Format: opts.Format, Writer: os.Stdout, Verbose: opts.Verbose}

	store, err := trace.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open trace database", err)
	}
	defer store.Close()

	ctx := context.Background()

	if opts.Session == "" {
		sessions, err := store.Sessions(ctx)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to list sessions", err)
		}
		if opts.Format == "json" {
			return out.Success(sessions)
		}
		for _, token := range sessions {
			fmt.Fprintln(os.Stdout, token)
		}
		return nil
	}

	evs, err := store.ReadSession(ctx, opts.Session)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read session", err)
	}
	if len(evs) == 0 {
		_ = out.Error("UNKNOWN_SESSION", "no events recorded for session "+opts.Session)
		return WrapExitError(ExitFailure, "unknown session", nil)
	}

	if opts.Format == "json" {
		views := make([]traceEventView, len(evs))
		for i, ev := range evs {
			views[i] = traceEventView{
				Op:      string(ev.Op),
				Task:    ev.Task,
				Samples: ev.Samples,
				Frames:  ev.Frames,
			}
		}
		return out.Success(views)
	}

	for _, ev := range evs {
		fmt.Fprintf(os.Stdout, "%12d %6d  %-16s %s\n", ev.Samples, ev.Frames, ev.Op, ev.Task)
	}
	return nil
}
