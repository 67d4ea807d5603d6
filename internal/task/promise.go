package task

import (
	"math"
	"sync/atomic"
)

// Promise is the per-task mutable record: a typed scratch store, the
// cooperative termination flag, the auto-resume flag, and the task's
// pending wake condition.
//
// Thread-safety model:
//   - The scratch store and wake condition are touched only by whichever
//     thread currently holds the task's run guard (normally the tick
//     driver mid-step, or a control call applying an update).
//   - The termination flag, auto-resume flag, published output, and the
//     event handshake are atomic and may be used from any thread.
type Promise struct {
	slots [numKeys]Value

	terminate  atomic.Bool
	autoResume atomic.Bool

	// out is the published output (float64 bits), readable from any
	// thread without participating in the tick.
	out atomic.Uint64

	// Event handshake. awaiting is set before the task finishes
	// suspending on an event wait; delivery claims it with a CAS so an
	// event arriving in the window around suspension is neither lost nor
	// applied to a task that is not waiting. event is written only by
	// the thread that won the CAS, then published through eventReady.
	// filter is installed before awaiting so delivery always sees the
	// filter that goes with the armed wait.
	awaiting   atomic.Bool
	eventReady atomic.Bool
	filter     atomic.Uint32
	event      Event

	wait Wait
}

// NewPromise creates a task record with auto-resume enabled and an empty
// scratch store.
func NewPromise() *Promise {
	p := &Promise{}
	p.autoResume.Store(true)
	return p
}

// Set stores v under k.
func (p *Promise) Set(k Key, v Value) {
	p.slots[k] = v
}

// Get returns the value under k. ok is false if the slot is empty.
func (p *Promise) Get(k Key) (Value, bool) {
	v := p.slots[k]
	return v, v.kind != KindNone
}

// Bool reads a boolean slot. ok is false if the slot is empty or holds a
// different kind; callers must check before acting on the value.
func (p *Promise) Bool(k Key) (b, ok bool) {
	return p.slots[k].Bool()
}

// Int reads an int64 slot.
func (p *Promise) Int(k Key) (int64, bool) {
	return p.slots[k].Int()
}

// Float reads a float64 slot.
func (p *Promise) Float(k Key) (float64, bool) {
	return p.slots[k].Float()
}

// String reads a string slot.
func (p *Promise) String(k Key) (string, bool) {
	return p.slots[k].String()
}

// Clear empties every scratch slot. The published output is left alone so
// downstream readers keep the last ramped value across a restart.
func (p *Promise) Clear() {
	p.slots = [numKeys]Value{}
}

// RequestTerminate asks the task to exit at its next suspension boundary.
// Safe from any thread; cancellation is cooperative, never preemptive.
func (p *Promise) RequestTerminate() {
	p.terminate.Store(true)
}

// ShouldTerminate reports whether termination has been requested. Long
// running routines test this at the top of every iteration.
func (p *Promise) ShouldTerminate() bool {
	return p.terminate.Load()
}

// ClearTerminate withdraws a pending termination request. Used on
// restart so a revived task does not exit on its first step.
func (p *Promise) ClearTerminate() {
	p.terminate.Store(false)
}

// SetAutoResume controls whether the scheduler may wake the task purely
// because the clock passed its wake condition. A parked task
// (autoResume=false) stays suspended until explicitly resumed.
func (p *Promise) SetAutoResume(on bool) {
	p.autoResume.Store(on)
}

// AutoResume reports whether clock-driven wakeups are enabled.
func (p *Promise) AutoResume() bool {
	return p.autoResume.Load()
}

// Publish stores v as the task's published output.
func (p *Promise) Publish(v float64) {
	p.out.Store(math.Float64bits(v))
}

// Out returns the last published output. Readable from any thread.
func (p *Promise) Out() float64 {
	return math.Float64frombits(p.out.Load())
}

// Deliver hands an event to the task if it is currently awaiting one and
// the event matches the armed filter. Returns false when the event was
// not accepted; unaccepted events are dropped. Safe from any thread.
func (p *Promise) Deliver(ev Event) bool {
	if !p.awaiting.Load() {
		return false
	}
	if !ev.Matches(EventKind(p.filter.Load())) {
		return false
	}
	if !p.awaiting.CompareAndSwap(true, false) {
		return false
	}
	p.event = ev
	p.eventReady.Store(true)
	return true
}

// BeginEventWait arms the handshake for an event wait with the given
// filter. Called by the scheduler while it holds the task's run guard,
// before the suspension becomes observable to delivery threads.
func (p *Promise) BeginEventWait(filter EventKind) {
	p.eventReady.Store(false)
	p.filter.Store(uint32(filter))
	p.awaiting.Store(true)
}

// TakeEvent consumes a delivered event, reporting whether one arrived.
// Called only under the task's run guard.
func (p *Promise) TakeEvent() (Event, bool) {
	if !p.eventReady.Load() {
		return Event{}, false
	}
	p.eventReady.Store(false)
	return p.event, true
}
