package routines

import "github.com/MayaFlux/MayaFlux-sub002/internal/task"

// SeqEntry is one step of a timed sequence: a delay in seconds followed
// by a callback.
type SeqEntry struct {
	Delay float64
	Fn    func(t *task.Tick)
}

// Sequence plays a fixed list of entries exactly once: for each entry it
// suspends for the entry's delay, then invokes its callback. A finished
// sequence terminates; it is not restartable.
type Sequence struct {
	entries []SeqEntry
	idx     int
	waiting bool
}

// NewSequence creates a one-shot timed sequence.
func NewSequence(entries []SeqEntry) *Sequence {
	return &Sequence{entries: entries}
}

// Step advances the sequence state machine. Each entry takes two phases:
// install the delay, then fire the callback on wakeup. Zero delays
// resolve in the same pass.
func (s *Sequence) Step(t *task.Tick) task.Wait {
	if t.ShouldTerminate() {
		return task.Done()
	}
	if s.idx >= len(s.entries) {
		return task.Done()
	}
	if !s.waiting {
		s.waiting = true
		return t.SleepSeconds(s.entries[s.idx].Delay)
	}
	s.entries[s.idx].Fn(t)
	s.idx++
	s.waiting = false
	if s.idx >= len(s.entries) {
		return task.Done()
	}
	return task.Ready()
}

// Reset puts the sequence at its end: a one-shot routine restarted by
// name terminates immediately instead of replaying.
func (s *Sequence) Reset() {
	s.idx = len(s.entries)
	s.waiting = false
}
