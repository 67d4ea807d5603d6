package sched

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/MayaFlux/MayaFlux-sub002/internal/task"
)

// EngineState tracks the lifecycle of an engine context.
type EngineState uint8

const (
	// EngineCreated is the state after New, before Init.
	EngineCreated EngineState = iota
	// EngineRunning is the steady ticking state.
	EngineRunning
	// EnginePaused drops ticks so tasks are never resumed mid-pause.
	EnginePaused
	// EngineEnded is terminal; the context cannot be restarted.
	EngineEnded
)

// EngineConfig holds the stream and registry parameters of a context.
type EngineConfig struct {
	SampleRate uint32
	BlockSize  uint32
	MaxTasks   int
	// StepQuota bounds zero-wait re-entries per pass; 0 uses the default.
	StepQuota int
	// Tracer optionally receives scheduler bookkeeping records.
	Tracer Tracer
}

// Engine is the explicit context object owning the clock and scheduler.
// Every API entry point goes through an Engine; a lazily constructed
// package default exists only for convenience call sites.
//
// Lifecycle transitions are guarded by a lock, but that lock is never
// held during a tick scan: the tick path reads a single atomic state
// word and either proceeds into the lock-free scan or drops the tick.
type Engine struct {
	clock *Clock
	sched *Scheduler

	mu    sync.Mutex
	state EngineState

	// stateWord mirrors state for the tick path, which must not touch mu.
	stateWord atomic.Uint32
}

// NewEngine creates an engine context. Zero config fields get defaults:
// 48 kHz, 512-sample blocks, DefaultMaxTasks.
func NewEngine(cfg EngineConfig) *Engine {
	if cfg.SampleRate == 0 {
		cfg.SampleRate = 48000
	}
	if cfg.BlockSize == 0 {
		cfg.BlockSize = 512
	}
	opts := []Option{}
	if cfg.MaxTasks > 0 {
		opts = append(opts, WithMaxTasks(cfg.MaxTasks))
	}
	if cfg.StepQuota > 0 {
		opts = append(opts, WithStepQuota(cfg.StepQuota))
	}
	if cfg.Tracer != nil {
		opts = append(opts, WithTracer(cfg.Tracer))
	}

	clock := task.NewClock(cfg.SampleRate, cfg.BlockSize)
	e := &Engine{
		clock: clock,
		sched: NewScheduler(clock, opts...),
	}
	e.setState(EngineCreated)
	return e
}

func (e *Engine) setState(st EngineState) {
	e.state = st
	e.stateWord.Store(uint32(st))
}

// State returns the lifecycle state.
func (e *Engine) State() EngineState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Init moves the context into the running state. Idempotent while
// running; an ended context cannot be re-initialized.
func (e *Engine) Init() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == EngineEnded {
		return ErrNotInitialized
	}
	e.setState(EngineRunning)
	slog.Info("engine running",
		"rate", e.clock.Rate(),
		"block", e.clock.BlockSize(),
	)
	return nil
}

// Pause stops tasks from being resumed: subsequent ticks are dropped
// until Resume. Clock counters freeze with the ticks.
func (e *Engine) Pause() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == EngineRunning {
		e.setState(EnginePaused)
		slog.Info("engine paused")
	}
}

// Resume re-enables ticking after a pause.
func (e *Engine) Resume() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == EnginePaused {
		e.setState(EngineRunning)
		slog.Info("engine resumed")
	}
}

// End terminates the context. Deterministic and idempotent.
func (e *Engine) End() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != EngineEnded {
		e.setState(EngineEnded)
		slog.Info("engine ended")
	}
}

// ticking reports whether ticks should be processed. Tick path only;
// reads one atomic, takes no lock.
func (e *Engine) ticking() bool {
	return EngineState(e.stateWord.Load()) == EngineRunning
}

// TickBlock drives one sample-domain tick. Dropped unless running.
func (e *Engine) TickBlock() {
	if !e.ticking() {
		return
	}
	e.sched.TickBlock()
}

// TickFrame drives one frame-domain tick. Dropped unless running.
func (e *Engine) TickFrame() {
	if !e.ticking() {
		return
	}
	e.sched.TickFrame()
}

// Scheduler returns the engine's scheduler.
func (e *Engine) Scheduler() *Scheduler { return e.sched }

// Clock returns the engine's clock.
func (e *Engine) Clock() *Clock { return e.clock }

// Package default context, lazily constructed for convenience call
// sites. Production embedders create explicit engines instead.
var (
	defaultMu     sync.Mutex
	defaultEngine *Engine
)

// Default returns the lazily constructed default engine, creating and
// initializing it with default config on first use.
func Default() *Engine {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultEngine == nil || defaultEngine.State() == EngineEnded {
		defaultEngine = NewEngine(EngineConfig{})
		_ = defaultEngine.Init()
	}
	return defaultEngine
}

// ShutdownDefault tears down the default engine. Idempotent; a later
// Default call constructs a fresh context.
func ShutdownDefault() {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultEngine != nil {
		defaultEngine.End()
		defaultEngine = nil
	}
}
