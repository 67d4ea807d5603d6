package routines

import "github.com/MayaFlux/MayaFlux-sub002/internal/task"

// Pattern evaluates a generator once per step, hands the result to a
// callback, and sleeps a fixed interval. Loops forever; the running step
// index is mirrored into the task state under KeyStep.
type Pattern struct {
	gen      func(step int64) float64
	fn       func(v float64)
	interval float64
	step     int64
}

// NewPattern creates a pattern generator routine. interval is in seconds.
func NewPattern(gen func(step int64) float64, fn func(v float64), interval float64) *Pattern {
	return &Pattern{gen: gen, fn: fn, interval: interval}
}

// Step runs one generator evaluation.
func (p *Pattern) Step(t *task.Tick) task.Wait {
	if t.ShouldTerminate() {
		return task.Done()
	}
	v := p.gen(p.step)
	t.State().Publish(v)
	if p.fn != nil {
		p.fn(v)
	}
	p.step++
	t.State().Set(task.KeyStep, task.IntValue(p.step))
	w := t.SleepSeconds(p.interval)
	if w.Kind == task.WaitReady {
		return task.NextPass()
	}
	return w
}

// Reset rewinds the step index.
func (p *Pattern) Reset() {
	p.step = 0
}
