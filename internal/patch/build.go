package patch

import (
	"fmt"
	"log/slog"

	"github.com/MayaFlux/MayaFlux-sub002/internal/routines"
	"github.com/MayaFlux/MayaFlux-sub002/internal/sched"
	"github.com/MayaFlux/MayaFlux-sub002/internal/task"
)

// Build turns a compiled spec into a schedulable routine. Declarative
// routines have no user callbacks; they publish their values through the
// task state and log beats at debug level.
func (spec RoutineSpec) Build() (task.Routine, error) {
	switch spec.Kind {
	case KindMetro:
		name := spec.Name
		return routines.NewMetro(spec.Interval, func(t *task.Tick) {
			slog.Debug("metro beat", "task", name, "samples", t.Clock().Samples())
		}), nil

	case KindLine:
		return routines.NewLine(spec.From, spec.To, spec.Duration, spec.StepSamples, spec.Restartable, nil), nil

	case KindSequence:
		name := spec.Name
		entries := make([]routines.SeqEntry, len(spec.Delays))
		for i, delay := range spec.Delays {
			idx := i
			entries[i] = routines.SeqEntry{
				Delay: delay,
				Fn: func(t *task.Tick) {
					t.State().Set(task.KeyStep, task.IntValue(int64(idx)))
					slog.Debug("sequence step", "task", name, "step", idx)
				},
			}
		}
		return routines.NewSequence(entries), nil

	case KindPattern:
		values := spec.Values
		return routines.NewPattern(func(step int64) float64 {
			return values[step%int64(len(values))]
		}, nil, spec.Interval), nil

	default:
		return nil, fmt.Errorf("unknown routine kind %q", spec.Kind)
	}
}

// Schedule builds and registers every spec on the scheduler, in
// declaration order.
func Schedule(s *sched.Scheduler, specs []RoutineSpec) error {
	for _, spec := range specs {
		r, err := spec.Build()
		if err != nil {
			return fmt.Errorf("task %q: %w", spec.Name, err)
		}
		if _, err := s.ScheduleTask(spec.Name, r, spec.Start); err != nil {
			return fmt.Errorf("task %q: %w", spec.Name, err)
		}
	}
	return nil
}
