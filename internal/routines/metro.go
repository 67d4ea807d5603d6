// Package routines provides the built-in recurring task routines: timers,
// timed sequences, value ramps, pattern generators, and logic-driven
// gates, triggers, and toggles. All of them are plain state machines over
// the task package's Wait primitives.
package routines

import "github.com/MayaFlux/MayaFlux-sub002/internal/task"

// Metro invokes a callback at a fixed interval, forever.
type Metro struct {
	interval float64
	fn       func(t *task.Tick)
}

// NewMetro creates a periodic timer. The interval is in seconds and is
// converted to a sample count at each suspension point, so a clock reset
// with a new rate is picked up on the next beat.
func NewMetro(interval float64, fn func(t *task.Tick)) *Metro {
	return &Metro{interval: interval, fn: fn}
}

// Step fires the callback and sleeps one interval. Termination is checked
// at the top of every iteration.
func (m *Metro) Step(t *task.Tick) task.Wait {
	if t.ShouldTerminate() {
		return task.Done()
	}
	m.fn(t)
	w := t.SleepSeconds(m.interval)
	if w.Kind == task.WaitReady {
		// A sub-sample interval must still suspend, or the quota
		// guard would cut the task off mid-pass.
		return task.NextPass()
	}
	return w
}

// Reset implements task.Routine. A metro has no per-run state.
func (m *Metro) Reset() {}
