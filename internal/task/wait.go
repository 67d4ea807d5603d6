package task

// WaitKind tags the variants of a task's wake condition.
type WaitKind uint8

const (
	// WaitReady proceeds without suspending: the scheduler re-enters the
	// task in the same pass. Zero-length delays resolve to this so they
	// never cost a scheduling pass.
	WaitReady WaitKind = iota
	// WaitPass suspends for exactly one scheduling pass, in any domain.
	WaitPass
	// WaitSample suspends until the sample counter reaches a target.
	WaitSample
	// WaitFrame suspends until the frame counter reaches a target.
	WaitFrame
	// WaitBoth suspends until both counters have independently reached
	// their targets: a cross-modal synchronization point, not a race.
	WaitBoth
	// WaitEvent suspends until an external event is delivered.
	WaitEvent
	// WaitPark suspends with auto-resume disabled; only an explicit
	// resume or restart wakes the task.
	WaitPark
	// WaitDone terminates the task.
	WaitDone
)

// Wait is a task's next wake condition: a tagged variant installed on the
// task at each suspension point and consumed by the scheduler's tick scan.
// Targets are absolute counter values, computed at the suspension point.
type Wait struct {
	Kind         WaitKind
	SampleTarget uint64
	FrameTarget  uint32
	Filter       EventKind
}

// Ready proceeds without suspending.
func Ready() Wait { return Wait{Kind: WaitReady} }

// NextPass suspends for one scheduling pass. Routines use it to observe
// their own freshly installed state on the very next pass; it has no
// timing effect.
func NextPass() Wait { return Wait{Kind: WaitPass} }

// Park suspends with auto-resume disabled.
func Park() Wait { return Wait{Kind: WaitPark} }

// Done terminates the task.
func Done() Wait { return Wait{Kind: WaitDone} }

// AwaitEvent suspends until an event matching the filter arrives.
// KindAny matches the first event of any kind.
func AwaitEvent(filter EventKind) Wait {
	return Wait{Kind: WaitEvent, Filter: filter}
}

// Satisfied reports whether the wake condition is met for the given
// counter readings. This is the single place targets are compared; the
// scheduler layers domain gating on top. Event, park, and done variants
// never resolve on counters alone.
func (w Wait) Satisfied(samples uint64, frames uint32) bool {
	switch w.Kind {
	case WaitReady, WaitPass:
		return true
	case WaitSample:
		return samples >= w.SampleTarget
	case WaitFrame:
		return frames >= w.FrameTarget
	case WaitBoth:
		return samples >= w.SampleTarget && frames >= w.FrameTarget
	default:
		return false
	}
}
