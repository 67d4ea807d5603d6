package task

// Routine is a cooperatively suspended unit of work, expressed as an
// explicit state machine. The scheduler calls Step each time the task is
// eligible; the returned Wait installs the task's next wake condition.
//
// All execution happens synchronously inside whichever thread drives the
// scheduler's tick: there is no thread pool and no preemption. Step must
// keep its per-iteration work bounded and must not block.
//
// Reset returns the routine to its starting state so a restarted task
// begins from its initial wake condition. Routines that cannot be
// meaningfully restarted (one-shot sequences) may reset to a terminal
// state.
type Routine interface {
	Step(t *Tick) Wait
	Reset()
}

// StepFunc adapts a bare step function into a Routine with a no-op Reset.
type StepFunc func(t *Tick) Wait

// Step implements Routine.
func (f StepFunc) Step(t *Tick) Wait { return f(t) }

// Reset implements Routine.
func (f StepFunc) Reset() {}
