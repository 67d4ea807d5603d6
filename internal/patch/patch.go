// Package patch compiles declarative patch files into schedulable
// routines. A patch is the live-coder's entry format: a CUE document
// declaring named timers, ramps, sequences, and pattern generators that
// the engine schedules as one unit.
package patch

import (
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
)

// RoutineKind identifies a built-in routine declared in a patch.
type RoutineKind string

const (
	// KindMetro is a periodic timer.
	KindMetro RoutineKind = "metro"
	// KindLine is a value ramp.
	KindLine RoutineKind = "line"
	// KindSequence is a one-shot timed sequence.
	KindSequence RoutineKind = "sequence"
	// KindPattern is a cyclic pattern generator.
	KindPattern RoutineKind = "pattern"
)

// RoutineSpec is one compiled task declaration.
type RoutineSpec struct {
	Name string
	Kind RoutineKind

	// Start controls the initial wake condition: true steps on the next
	// pass, false installs the task parked.
	Start bool

	// Interval applies to metro and pattern (seconds).
	Interval float64

	// From/To/Duration/StepSamples/Restartable apply to line.
	From        float64
	To          float64
	Duration    float64
	StepSamples uint64
	Restartable bool

	// Delays applies to sequence (seconds per entry).
	Delays []float64

	// Values applies to pattern: the generator cycles this list.
	Values []float64
}

// CompileError reports a malformed patch declaration with its source
// position.
type CompileError struct {
	Task    string
	Field   string
	Message string
	Pos     token.Pos
}

// Error implements the error interface.
func (e *CompileError) Error() string {
	loc := ""
	if e.Pos.IsValid() {
		loc = fmt.Sprintf("%s:%d:%d: ", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column())
	}
	if e.Task != "" {
		return fmt.Sprintf("%stask %q, field %q: %s", loc, e.Task, e.Field, e.Message)
	}
	return fmt.Sprintf("%s%s: %s", loc, e.Field, e.Message)
}

// formatCUEError flattens a CUE evaluation error into a plain error.
func formatCUEError(err error) error {
	return fmt.Errorf("%s", cueerrors.Details(err, nil))
}

// LoadFile compiles a patch file from disk.
func LoadFile(path string) ([]RoutineSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read patch %s: %w", path, err)
	}
	ctx := cuecontext.New()
	v := ctx.CompileBytes(data, cue.Filename(path))
	return Compile(v)
}

// Compile parses a CUE value into routine specs. The value must carry a
// "tasks" struct mapping task names to declarations:
//
//	tasks: {
//		pulse: { kind: "metro", interval: 0.5 }
//		fade:  { kind: "line", from: 0.0, to: 1.0, duration: 2.0 }
//	}
//
// Declarations are compiled in the struct's field order, so scheduling
// order is the declaration order.
func Compile(v cue.Value) ([]RoutineSpec, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	tasksVal := v.LookupPath(cue.ParsePath("tasks"))
	if !tasksVal.Exists() {
		return nil, &CompileError{
			Field:   "tasks",
			Message: "tasks struct is required",
			Pos:     v.Pos(),
		}
	}

	iter, err := tasksVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var specs []RoutineSpec
	for iter.Next() {
		spec, err := compileTask(iter.Selector().Unquoted(), iter.Value())
		if err != nil {
			return nil, err
		}
		specs = append(specs, spec)
	}
	if len(specs) == 0 {
		return nil, &CompileError{
			Field:   "tasks",
			Message: "at least one task is required",
			Pos:     tasksVal.Pos(),
		}
	}
	return specs, nil
}

func compileTask(name string, v cue.Value) (RoutineSpec, error) {
	spec := RoutineSpec{Name: name, Start: true, StepSamples: 64}

	kindVal := v.LookupPath(cue.ParsePath("kind"))
	if !kindVal.Exists() {
		return spec, &CompileError{Task: name, Field: "kind", Message: "kind is required", Pos: v.Pos()}
	}
	kind, err := kindVal.String()
	if err != nil {
		return spec, formatCUEError(err)
	}
	spec.Kind = RoutineKind(kind)

	if startVal := v.LookupPath(cue.ParsePath("start")); startVal.Exists() {
		if spec.Start, err = startVal.Bool(); err != nil {
			return spec, formatCUEError(err)
		}
	}

	switch spec.Kind {
	case KindMetro:
		if spec.Interval, err = requiredFloat(name, v, "interval"); err != nil {
			return spec, err
		}

	case KindLine:
		if spec.From, err = requiredFloat(name, v, "from"); err != nil {
			return spec, err
		}
		if spec.To, err = requiredFloat(name, v, "to"); err != nil {
			return spec, err
		}
		if spec.Duration, err = requiredFloat(name, v, "duration"); err != nil {
			return spec, err
		}
		if stepVal := v.LookupPath(cue.ParsePath("step")); stepVal.Exists() {
			step, err := stepVal.Int64()
			if err != nil {
				return spec, formatCUEError(err)
			}
			if step < 1 {
				return spec, &CompileError{Task: name, Field: "step", Message: "step must be at least 1", Pos: stepVal.Pos()}
			}
			spec.StepSamples = uint64(step)
		}
		if rVal := v.LookupPath(cue.ParsePath("restartable")); rVal.Exists() {
			if spec.Restartable, err = rVal.Bool(); err != nil {
				return spec, formatCUEError(err)
			}
		}

	case KindSequence:
		if spec.Delays, err = floatList(name, v, "delays"); err != nil {
			return spec, err
		}

	case KindPattern:
		if spec.Interval, err = requiredFloat(name, v, "interval"); err != nil {
			return spec, err
		}
		if spec.Values, err = floatList(name, v, "values"); err != nil {
			return spec, err
		}

	default:
		return spec, &CompileError{
			Task:    name,
			Field:   "kind",
			Message: fmt.Sprintf("unknown kind %q", kind),
			Pos:     kindVal.Pos(),
		}
	}

	return spec, nil
}

func requiredFloat(taskName string, v cue.Value, field string) (float64, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return 0, &CompileError{
			Task:    taskName,
			Field:   field,
			Message: field + " is required",
			Pos:     v.Pos(),
		}
	}
	f, err := fv.Float64()
	if err != nil {
		return 0, formatCUEError(err)
	}
	return f, nil
}

func floatList(taskName string, v cue.Value, field string) ([]float64, error) {
	lv := v.LookupPath(cue.ParsePath(field))
	if !lv.Exists() {
		return nil, &CompileError{
			Task:    taskName,
			Field:   field,
			Message: field + " is required",
			Pos:     v.Pos(),
		}
	}
	iter, err := lv.List()
	if err != nil {
		return nil, formatCUEError(err)
	}
	var out []float64
	for iter.Next() {
		f, err := iter.Value().Float64()
		if err != nil {
			return nil, formatCUEError(err)
		}
		out = append(out, f)
	}
	if len(out) == 0 {
		return nil, &CompileError{
			Task:    taskName,
			Field:   field,
			Message: field + " must not be empty",
			Pos:     lv.Pos(),
		}
	}
	return out, nil
}
