package task

// Domain identifies which clock domain drove the current scheduling pass.
type Domain uint8

const (
	// SampleDomain ticks once per processed audio block.
	SampleDomain Domain = iota
	// FrameDomain ticks once per rendered frame.
	FrameDomain
)

// String implements fmt.Stringer.
func (d Domain) String() string {
	if d == FrameDomain {
		return "frame"
	}
	return "sample"
}

// Tick is the context handed to a routine each time it is resumed. It
// carries the clock, the task's own state record, the domain that drove
// the pass, and the event that woke the task (for event waits).
//
// A Tick is valid only for the duration of one Step call.
type Tick struct {
	clock   *Clock
	promise *Promise
	domain  Domain
	event   Event
	hasEv   bool
}

// NewTick builds a tick context. Called by the scheduler once per resumed
// task; exported for drivers and tests.
func NewTick(c *Clock, p *Promise, d Domain) Tick {
	return Tick{clock: c, promise: p, domain: d}
}

// WithEvent returns a copy of the tick carrying the event that woke the task.
func (t Tick) WithEvent(ev Event) Tick {
	t.event = ev
	t.hasEv = true
	return t
}

// Clock returns the engine clock.
func (t *Tick) Clock() *Clock { return t.clock }

// State returns the task's own state record.
func (t *Tick) State() *Promise { return t.promise }

// Domain returns the clock domain that drove this pass.
func (t *Tick) Domain() Domain { return t.domain }

// Event returns the event that resumed the task, if the task was waiting
// on one.
func (t *Tick) Event() (Event, bool) { return t.event, t.hasEv }

// ShouldTerminate reports whether cooperative termination was requested.
func (t *Tick) ShouldTerminate() bool { return t.promise.ShouldTerminate() }

// SleepSamples suspends for n samples. A zero-length delay proceeds
// without suspending.
func (t *Tick) SleepSamples(n uint64) Wait {
	if n == 0 {
		return Ready()
	}
	return Wait{Kind: WaitSample, SampleTarget: t.clock.Samples() + n}
}

// SleepFrames suspends for n frames. A zero-length delay proceeds
// without suspending.
func (t *Tick) SleepFrames(n uint32) Wait {
	if n == 0 {
		return Ready()
	}
	return Wait{Kind: WaitFrame, FrameTarget: t.clock.Frames() + n}
}

// SleepBoth suspends until n samples AND f frames have both elapsed, a
// logical AND across the two independently advancing domains. Ready only
// when both counts are zero.
func (t *Tick) SleepBoth(n uint64, f uint32) Wait {
	if n == 0 && f == 0 {
		return Ready()
	}
	return Wait{
		Kind:         WaitBoth,
		SampleTarget: t.clock.Samples() + n,
		FrameTarget:  t.clock.Frames() + f,
	}
}

// SleepSeconds suspends for a duration expressed in seconds, rounded to
// whole samples.
func (t *Tick) SleepSeconds(seconds float64) Wait {
	return t.SleepSamples(t.clock.SecondsToSamples(seconds))
}
