package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/MayaFlux/MayaFlux-sub002/internal/config"
	"github.com/MayaFlux/MayaFlux-sub002/internal/patch"
	"github.com/MayaFlux/MayaFlux-sub002/internal/sched"
	"github.com/MayaFlux/MayaFlux-sub002/internal/trace"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Config   string
	Duration float64

	// TokenGenerator allows overriding the session token generator
	// (for testing). If nil, defaults to UUIDv7Generator.
	TokenGenerator trace.TokenGenerator
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <patch.cue>",
		Short: "Run a patch against the engine clock",
		Long: `Compile a patch file and drive it with paced block and frame ticks.

The engine ticks the sample domain once per audio block and the frame
domain once per frame, at the rates from the config file. With tracing
enabled (trace_db in the config), scheduler bookkeeping is recorded to
SQLite for later inspection with "flux trace".

Example:
  flux run patch.cue --config engine.yaml --duration 10
  flux run patch.cue --verbose`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPatch(opts, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.Config, "config", "", "path to engine config YAML (defaults apply if omitted)")
	cmd.Flags().Float64Var(&opts.Duration, "duration", 0, "stop after this many seconds (0 = run until interrupted)")

	return cmd
}

func runPatch(opts *RunOptions, patchPath string) error {
	logLevel := slog.LevelInfo
	if opts.Verbose {
		logLevel = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})
	slog.SetDefault(slog.New(handler))

	cfg := config.Default()
	if opts.Config != "" {
		var err error
		cfg, err = config.Load(opts.Config)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to load config", err)
		}
	}

	slog.Info("compiling patch", "path", patchPath)
	specs, err := patch.LoadFile(patchPath)
	if err != nil {
		return WrapExitError(ExitFailure, "failed to compile patch", err)
	}
	slog.Info("patch compiled", "tasks", len(specs))

	var recorder *trace.Recorder
	var store *trace.Store
	if cfg.TraceDB != "" {
		gen := opts.TokenGenerator
		if gen == nil {
			gen = trace.UUIDv7Generator{}
		}
		recorder = trace.NewRecorder(gen, cfg.TraceRing)
		store, err = trace.Open(cfg.TraceDB)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open trace database", err)
		}
		defer func() {
			if closeErr := store.Close(); closeErr != nil {
				slog.Error("error closing trace database", "error", closeErr)
			}
		}()
		slog.Info("tracing enabled", "db", cfg.TraceDB, "session", recorder.Session())
	}

	engineCfg := sched.EngineConfig{
		SampleRate: cfg.SampleRate,
		BlockSize:  cfg.BlockSize,
		MaxTasks:   cfg.MaxTasks,
		StepQuota:  cfg.StepQuota,
	}
	if recorder != nil {
		engineCfg.Tracer = recorder
	}
	engine := sched.NewEngine(engineCfg)
	if err := engine.Init(); err != nil {
		return WrapExitError(ExitCommandError, "failed to initialize engine", err)
	}
	defer engine.End()

	if err := patch.Schedule(engine.Scheduler(), specs); err != nil {
		return WrapExitError(ExitFailure, "failed to schedule patch", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if opts.Duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(opts.Duration*float64(time.Second)))
		defer cancel()
	}

	if recorder != nil {
		go recorder.Run(ctx, store, 10*time.Millisecond)
	}

	blockPeriod := time.Duration(float64(cfg.BlockSize) / float64(cfg.SampleRate) * float64(time.Second))
	framePeriod := time.Second / time.Duration(cfg.FrameRate)

	go driveTicks(ctx, framePeriod, engine.TickFrame)
	driveTicks(ctx, blockPeriod, engine.TickBlock)

	// Let the trace drain finish its final pass.
	if recorder != nil {
		time.Sleep(20 * time.Millisecond)
	}

	clock := engine.Clock()
	slog.Info("run finished",
		"samples", clock.Samples(),
		"frames", clock.Frames(),
		"tasks_live", engine.Scheduler().Len(),
	)
	fmt.Fprintf(os.Stdout, "rendered %d samples, %d frames\n", clock.Samples(), clock.Frames())
	return nil
}

// driveTicks paces one tick domain until the context is cancelled.
func driveTicks(ctx context.Context, period time.Duration, tick func()) {
	ticker := time.NewTicker(period)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			tick()
		}
	}
}
