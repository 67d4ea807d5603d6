package routines

import "github.com/MayaFlux/MayaFlux-sub002/internal/task"

type linePhase uint8

const (
	lineInit linePhase = iota
	lineRamp
	lineParked
)

// Line linearly interpolates a published value from start to end over a
// duration, advancing every stepSamples samples. The final value is
// clamped to exactly end so floating-point accumulation can never
// overshoot.
//
// A non-restartable line terminates after one ramp. A restartable line
// parks itself after completion and ramps again once its restart flag
// (KeyRestart in its own state) is observed set on a later resume.
type Line struct {
	start, end  float64
	duration    float64
	stepSamples uint64
	restartable bool
	fn          func(v float64)

	phase   linePhase
	value   float64
	elapsed uint64
	total   uint64
	inc     float64
}

// NewLine creates a value ramp. stepSamples is clamped to a minimum of 1.
// fn may be nil; the value is always published through the task state.
func NewLine(start, end, duration float64, stepSamples uint64, restartable bool, fn func(v float64)) *Line {
	if stepSamples < 1 {
		stepSamples = 1
	}
	return &Line{
		start:       start,
		end:         end,
		duration:    duration,
		stepSamples: stepSamples,
		restartable: restartable,
		fn:          fn,
	}
}

func (l *Line) publish(t *task.Tick, v float64) {
	l.value = v
	t.State().Set(task.KeyValue, task.FloatValue(v))
	t.State().Publish(v)
	if l.fn != nil {
		l.fn(v)
	}
}

// Step advances the ramp state machine.
func (l *Line) Step(t *task.Tick) task.Wait {
	if t.ShouldTerminate() {
		return task.Done()
	}

	switch l.phase {
	case lineInit:
		l.total = t.Clock().SecondsToSamples(l.duration)
		if l.total == 0 {
			// Degenerate ramp: jump straight to the end value.
			l.publish(t, l.end)
			return l.finish(t)
		}
		// Per-step increment over the whole ramp; the final step is
		// clamped instead of accumulated.
		l.inc = (l.end - l.start) / float64(l.total) * float64(l.stepSamples)
		l.elapsed = 0
		l.publish(t, l.start)
		l.phase = lineRamp
		return t.SleepSamples(l.stepSamples)

	case lineRamp:
		l.elapsed += l.stepSamples
		if l.elapsed >= l.total {
			l.publish(t, l.end)
			return l.finish(t)
		}
		l.publish(t, l.value+l.inc)
		return t.SleepSamples(l.stepSamples)

	case lineParked:
		if restart, ok := t.State().Bool(task.KeyRestart); ok && restart {
			t.State().Set(task.KeyRestart, task.BoolValue(false))
			l.phase = lineInit
			return task.Ready()
		}
		return task.Park()

	default:
		return task.Done()
	}
}

func (l *Line) finish(t *task.Tick) task.Wait {
	if !l.restartable {
		return task.Done()
	}
	l.phase = lineParked
	return task.Park()
}

// Reset rewinds the ramp to its starting state.
func (l *Line) Reset() {
	l.phase = lineInit
	l.value = l.start
	l.elapsed = 0
}
