package sched

import (
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"

	"golang.org/x/text/unicode/norm"

	"github.com/MayaFlux/MayaFlux-sub002/internal/task"
)

// Slot lifecycle states. Transitions:
//
//	free -> live        (control path, under mu, run guard held)
//	live -> dead        (tick scan on termination, or control path)
//	dead -> live        (restart, control path, under mu)
//	dead -> free        (replacement, or reap under capacity pressure)
//
// A dead slot keeps its name, routine, and promise so a terminated task
// stays restartable until its slot is reclaimed.
const (
	slotFree uint32 = iota
	slotLive
	slotDead
)

// taskSlot is one entry of the fixed-capacity registry.
//
// state publishes slot membership to the tick scan; running is the run
// guard serializing Step calls between the two tick domains and control
// operations. Fields below the guard comment are accessed only while
// running is held.
type taskSlot struct {
	state   atomic.Uint32
	running atomic.Bool

	// promise is an atomic pointer so DeliverEvent can reach the event
	// handshake without taking the run guard.
	promise atomic.Pointer[task.Promise]

	// guarded by running:
	name    string
	routine task.Routine
	wait    task.Wait
}

// TraceOp tags a scheduler trace record.
type TraceOp string

const (
	// TraceScheduled records a task installed into the registry.
	TraceScheduled TraceOp = "scheduled"
	// TraceReplaced records a task evicted by a name collision.
	TraceReplaced TraceOp = "replaced"
	// TraceCancelled records an external cancellation.
	TraceCancelled TraceOp = "cancelled"
	// TraceTerminated records a task that ran to completion.
	TraceTerminated TraceOp = "terminated"
	// TraceParked records a task disabling its own auto-resume.
	TraceParked TraceOp = "parked"
	// TraceResumed records an explicit external resume.
	TraceResumed TraceOp = "resumed"
	// TraceRestarted records a restart back to the initial wake condition.
	TraceRestarted TraceOp = "restarted"
	// TraceQuotaExceeded records a task cut off by the step quota.
	TraceQuotaExceeded TraceOp = "quota_exceeded"
)

// TraceEvent is one scheduler bookkeeping record, stamped with both clock
// domains at the moment it happened.
type TraceEvent struct {
	Op      TraceOp
	Task    string
	Samples uint64
	Frames  uint32
}

// Tracer receives scheduler trace records. Implementations are called
// from the tick path and must neither block nor allocate; dropping
// records under pressure is the expected failure mode.
type Tracer interface {
	Record(ev TraceEvent)
}

// Scheduler is the registry of named tasks. It advances the clock and
// resumes eligible tasks once per tick, and exposes scheduling,
// cancellation, and restart operations to other threads.
//
// Thread-safety model:
//   - TickBlock/TickFrame: one caller per domain; the per-slot run guard
//     serializes the two domains against each other, so the scan itself
//     takes no lock and performs no allocation.
//   - Control operations (Schedule/Cancel/Restart/Resume/Update) are
//     guarded by mu, which is never held during a tick scan.
//   - DeliverEvent is lock-free and safe from any thread.
type Scheduler struct {
	clock *Clock

	slots []taskSlot

	mu    sync.Mutex
	names map[string]int

	nextID   atomic.Uint64
	maxSteps int
	tracer   Tracer
}

// Clock aliases the task package clock so callers construct schedulers
// without importing both packages.
type Clock = task.Clock

// DefaultMaxTasks is the default registry capacity.
const DefaultMaxTasks = 256

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithMaxTasks sets the registry capacity. The registry is a fixed slot
// table; scheduling beyond capacity fails with ErrCodeRegistryFull.
func WithMaxTasks(n int) Option {
	return func(s *Scheduler) {
		if n > 0 {
			s.slots = make([]taskSlot, n)
		}
	}
}

// WithStepQuota sets the zero-wait re-entry limit per pass.
func WithStepQuota(maxSteps int) Option {
	return func(s *Scheduler) {
		if maxSteps > 0 {
			s.maxSteps = maxSteps
		}
	}
}

// WithTracer attaches a trace sink for scheduler bookkeeping records.
func WithTracer(t Tracer) Option {
	return func(s *Scheduler) { s.tracer = t }
}

// NewScheduler creates a scheduler over the given clock.
func NewScheduler(clock *Clock, opts ...Option) *Scheduler {
	s := &Scheduler{
		clock:    clock,
		slots:    make([]taskSlot, DefaultMaxTasks),
		names:    make(map[string]int, DefaultMaxTasks),
		maxSteps: DefaultMaxStepsPerPass,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ClockRef returns the scheduler's clock.
func (s *Scheduler) ClockRef() *Clock { return s.clock }

// SecondsToSamples delegates to the clock.
func (s *Scheduler) SecondsToSamples(seconds float64) uint64 {
	return s.clock.SecondsToSamples(seconds)
}

// Rate delegates to the clock.
func (s *Scheduler) Rate() uint32 { return s.clock.Rate() }

// NextTaskID returns a monotonic counter for auto-generated task names.
func (s *Scheduler) NextTaskID() uint64 {
	return s.nextID.Add(1)
}

// AutoName builds a unique task name from a prefix and the ID counter.
func (s *Scheduler) AutoName(prefix string) string {
	return fmt.Sprintf("%s_%d", prefix, s.NextTaskID())
}

// canonicalName normalizes a task name to NFC so live-coded names arriving
// through different input methods land on the same registry entry.
func canonicalName(name string) string {
	return norm.NFC.String(name)
}

// TickBlock is the sample-domain tick entry point: advances the sample
// counter by one block and scans for eligible tasks. Invoked exactly once
// per processed audio block by the real-time callback.
func (s *Scheduler) TickBlock() {
	s.clock.AdvanceBlock()
	s.scan(task.SampleDomain)
}

// TickFrame is the frame-domain tick entry point, invoked once per
// rendered frame by the render loop.
func (s *Scheduler) TickFrame() {
	s.clock.AdvanceFrame()
	s.scan(task.FrameDomain)
}

// scan resumes every eligible task once. Allocation-free; slots held by
// the other domain or a control operation are skipped and retried on the
// next pass.
func (s *Scheduler) scan(d task.Domain) {
	samples := s.clock.Samples()
	frames := s.clock.Frames()

	quota := NewStepQuota(s.maxSteps)
	for i := range s.slots {
		sl := &s.slots[i]
		if sl.state.Load() != slotLive {
			continue
		}
		if !sl.running.CompareAndSwap(false, true) {
			continue
		}
		if sl.state.Load() == slotLive {
			s.stepSlot(sl, d, samples, frames, &quota)
		}
		sl.running.Store(false)
	}
}

// eligible decides whether the slot's wake condition is satisfied for
// this pass. Sample and frame waits resume only from their own domain;
// pass, ready, and dual-domain waits resume from either. The counter
// comparison itself is the wait's own Satisfied check.
func eligible(w task.Wait, d task.Domain, samples uint64, frames uint32) bool {
	switch w.Kind {
	case task.WaitSample:
		if d != task.SampleDomain {
			return false
		}
	case task.WaitFrame:
		if d != task.FrameDomain {
			return false
		}
	}
	return w.Satisfied(samples, frames)
}

// stepSlot resumes one task, looping through zero-length waits under the
// step quota. Called with the run guard held.
func (s *Scheduler) stepSlot(sl *taskSlot, d task.Domain, samples uint64, frames uint32, quota *StepQuota) {
	p := sl.promise.Load()

	var tick task.Tick
	switch sl.wait.Kind {
	case task.WaitEvent:
		ev, ok := p.TakeEvent()
		if !ok {
			return
		}
		tick = task.NewTick(s.clock, p, d).WithEvent(ev)
	case task.WaitPark:
		return
	default:
		if !p.AutoResume() || !eligible(sl.wait, d, samples, frames) {
			return
		}
		tick = task.NewTick(s.clock, p, d)
	}

	quota.Begin()
	for {
		next := sl.routine.Step(&tick)
		switch next.Kind {
		case task.WaitDone:
			sl.wait = next
			sl.state.Store(slotDead)
			s.record(TraceTerminated, sl.name)
			return

		case task.WaitPark:
			p.SetAutoResume(false)
			sl.wait = next
			s.record(TraceParked, sl.name)
			return

		case task.WaitEvent:
			p.BeginEventWait(next.Filter)
			sl.wait = next
			return

		case task.WaitReady:
			if err := quota.Check(sl.name); err != nil {
				slog.Error("task exceeded step quota, terminating",
					"task", sl.name,
					"steps", quota.Current(),
					"error", err,
				)
				sl.wait = task.Done()
				sl.state.Store(slotDead)
				s.record(TraceQuotaExceeded, sl.name)
				return
			}
			tick = task.NewTick(s.clock, p, d)
			continue

		default:
			sl.wait = next
			return
		}
	}
}

// record emits a trace event if a tracer is attached. Non-blocking.
func (s *Scheduler) record(op TraceOp, name string) {
	if s.tracer == nil {
		return
	}
	s.tracer.Record(TraceEvent{
		Op:      op,
		Task:    name,
		Samples: s.clock.Samples(),
		Frames:  s.clock.Frames(),
	})
}

// acquire spins for the slot's run guard. Control path only: the tick
// never spins, it skips busy slots instead.
func (sl *taskSlot) acquire() {
	for !sl.running.CompareAndSwap(false, true) {
		runtime.Gosched()
	}
}

func (sl *taskSlot) release() {
	sl.running.Store(false)
}

// reap frees dead slots and drops their registry names. Called with mu
// held, and only under capacity pressure: dead slots are kept around
// otherwise so their tasks stay restartable.
func (s *Scheduler) reap() {
	for name, idx := range s.names {
		sl := &s.slots[idx]
		if sl.state.Load() != slotDead {
			continue
		}
		sl.acquire()
		sl.name = ""
		sl.routine = nil
		sl.promise.Store(nil)
		sl.wait = task.Wait{}
		sl.state.Store(slotFree)
		sl.release()
		delete(s.names, name)
	}
}

// freeSlot finds an unused slot index. Caller holds mu.
func (s *Scheduler) freeSlot() int {
	for i := range s.slots {
		if s.slots[i].state.Load() == slotFree {
			return i
		}
	}
	return -1
}

// ScheduleTask registers a routine under a name. Scheduling under a name
// already present replaces the prior task: the previous task is cancelled
// first, then the new one installed.
//
// startImmediately controls the initial wake condition: true steps the
// task on the next pass, false installs it parked until an explicit
// resume or restart.
//
// Returns the task's Promise so callers can observe published values and
// request cooperative termination.
func (s *Scheduler) ScheduleTask(name string, r task.Routine, startImmediately bool) (*task.Promise, error) {
	name = canonicalName(name)

	s.mu.Lock()
	defer s.mu.Unlock()

	if idx, ok := s.names[name]; ok {
		if s.evict(idx, name) {
			s.record(TraceReplaced, name)
		}
	}

	idx := s.freeSlot()
	if idx < 0 {
		s.reap()
		idx = s.freeSlot()
	}
	if idx < 0 {
		return nil, NewRegistryFullError(name, len(s.slots))
	}

	p := task.NewPromise()
	sl := &s.slots[idx]
	sl.acquire()
	sl.name = name
	sl.routine = r
	sl.promise.Store(p)
	if startImmediately {
		sl.wait = task.Ready()
	} else {
		sl.wait = task.Park()
		p.SetAutoResume(false)
	}
	sl.state.Store(slotLive)
	sl.release()

	s.names[name] = idx
	s.record(TraceScheduled, name)
	slog.Debug("task scheduled", "task", name, "immediate", startImmediately)
	return p, nil
}

// evict removes a registered task in place, live or dead, and reports
// whether it was still live. Caller holds mu.
func (s *Scheduler) evict(idx int, name string) bool {
	sl := &s.slots[idx]
	sl.acquire()
	st := sl.state.Load()
	if st == slotLive {
		sl.promise.Load().RequestTerminate()
	}
	if st == slotLive || st == slotDead {
		sl.name = ""
		sl.routine = nil
		sl.promise.Store(nil)
		sl.wait = task.Wait{}
		sl.state.Store(slotFree)
	}
	sl.release()
	delete(s.names, name)
	return st == slotLive
}

// CancelTask removes the named task. Returns false with no side effect if
// the name is unknown. The removed task never steps again; if it is
// mid-step on the tick thread, the run guard lets the step finish first.
func (s *Scheduler) CancelTask(name string) bool {
	name = canonicalName(name)

	s.mu.Lock()
	defer s.mu.Unlock()

	idx, ok := s.names[name]
	if !ok || s.slots[idx].state.Load() != slotLive {
		return false
	}
	s.evict(idx, name)
	s.record(TraceCancelled, name)
	slog.Debug("task cancelled", "task", name)
	return true
}

// RestartTask re-initializes a parked, running, or terminated task to
// its starting wake condition, withdrawing any pending termination
// request. A terminated task is revived in place as long as its slot has
// not been reclaimed for a new task. Returns false if the name is
// unknown.
func (s *Scheduler) RestartTask(name string) bool {
	name = canonicalName(name)

	s.mu.Lock()
	defer s.mu.Unlock()

	idx, ok := s.names[name]
	if !ok {
		return false
	}
	sl := &s.slots[idx]
	sl.acquire()
	if sl.state.Load() == slotFree {
		sl.release()
		return false
	}
	sl.routine.Reset()
	p := sl.promise.Load()
	p.Clear()
	p.ClearTerminate()
	p.SetAutoResume(true)
	sl.wait = task.Ready()
	sl.state.Store(slotLive)
	sl.release()
	s.record(TraceRestarted, name)
	slog.Debug("task restarted", "task", name)
	return true
}

// ResumeTask wakes a parked task on the next pass without resetting it.
// Returns false if the name is unknown.
func (s *Scheduler) ResumeTask(name string) bool {
	name = canonicalName(name)

	s.mu.Lock()
	defer s.mu.Unlock()

	idx, ok := s.names[name]
	if !ok {
		return false
	}
	sl := &s.slots[idx]
	sl.acquire()
	if sl.state.Load() != slotLive {
		sl.release()
		return false
	}
	sl.promise.Load().SetAutoResume(true)
	if sl.wait.Kind == task.WaitPark {
		sl.wait = task.Ready()
	}
	sl.release()
	s.record(TraceResumed, name)
	return true
}

// UpdateTaskParams applies a mutation to the named task's state record.
// The run guard is held across the call so the mutation never races a
// step. Returns false if the name is unknown or the task is no longer
// live.
func (s *Scheduler) UpdateTaskParams(name string, apply func(p *task.Promise)) bool {
	name = canonicalName(name)

	s.mu.Lock()
	defer s.mu.Unlock()

	idx, ok := s.names[name]
	if !ok {
		return false
	}
	sl := &s.slots[idx]
	sl.acquire()
	live := sl.state.Load() == slotLive
	if live {
		apply(sl.promise.Load())
	}
	sl.release()
	return live
}

// DeliverEvent offers an external event to every task awaiting one whose
// filter matches. Returns the number of tasks woken. Lock-free; safe from
// any thread, including threads that never drive a tick.
func (s *Scheduler) DeliverEvent(ev task.Event) int {
	woken := 0
	for i := range s.slots {
		sl := &s.slots[i]
		if sl.state.Load() != slotLive {
			continue
		}
		if p := sl.promise.Load(); p != nil && p.Deliver(ev) {
			woken++
		}
	}
	return woken
}

// Len returns the number of live tasks.
func (s *Scheduler) Len() int {
	n := 0
	for i := range s.slots {
		if s.slots[i].state.Load() == slotLive {
			n++
		}
	}
	return n
}

// Has reports whether a task is registered under the name.
func (s *Scheduler) Has(name string) bool {
	name = canonicalName(name)
	s.mu.Lock()
	defer s.mu.Unlock()
	idx, ok := s.names[name]
	if !ok {
		return false
	}
	return s.slots[idx].state.Load() == slotLive
}
