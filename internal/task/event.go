package task

// EventKind tags an external event record. Kinds are owned by whatever
// event source feeds the engine (windowing, MIDI, OSC); the scheduling
// core only compares them against wait filters.
type EventKind uint32

// KindAny matches every event kind when used as a wait filter.
const KindAny EventKind = 0

// Event is an external event record delivered to waiting tasks.
type Event struct {
	Kind    EventKind
	Payload Value
}

// Matches reports whether the event passes the given filter.
func (e Event) Matches(filter EventKind) bool {
	return filter == KindAny || e.Kind == filter
}

// LogicSource is a per-sample boolean signal read by the gate, trigger,
// and toggle routines. Implementations live outside the scheduling core
// (typically a DSP node); Sample must be safe to call from the tick
// thread and must not block.
type LogicSource interface {
	Sample() bool
}

// LogicFunc adapts a function to the LogicSource interface.
type LogicFunc func() bool

// Sample implements LogicSource.
func (f LogicFunc) Sample() bool { return f() }
