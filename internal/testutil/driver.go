// Package testutil provides deterministic drivers for scheduler tests:
// manual tick advancement and scripted logic signals, so timing
// assertions never depend on wall-clock behavior.
package testutil

import "github.com/MayaFlux/MayaFlux-sub002/internal/sched"

// Driver advances a scheduler's clock domains by explicit tick counts.
type Driver struct {
	s *sched.Scheduler
}

// NewDriver wraps a scheduler for manual driving.
func NewDriver(s *sched.Scheduler) *Driver {
	return &Driver{s: s}
}

// Blocks runs n sample-domain ticks.
func (d *Driver) Blocks(n int) {
	for i := 0; i < n; i++ {
		d.s.TickBlock()
	}
}

// Frames runs n frame-domain ticks.
func (d *Driver) Frames(n int) {
	for i := 0; i < n; i++ {
		d.s.TickFrame()
	}
}

// Interleaved runs n rounds of one block tick followed by one frame
// tick, the offline analogue of both domains advancing together.
func (d *Driver) Interleaved(n int) {
	for i := 0; i < n; i++ {
		d.s.TickBlock()
		d.s.TickFrame()
	}
}

// ScriptedLogic replays a fixed boolean sequence, one value per Sample
// call, holding the final value once the script runs out.
type ScriptedLogic struct {
	seq []bool
	idx int
}

// NewScriptedLogic creates a logic source from a literal sequence.
func NewScriptedLogic(seq ...bool) *ScriptedLogic {
	return &ScriptedLogic{seq: seq}
}

// Sample implements task.LogicSource.
func (l *ScriptedLogic) Sample() bool {
	if len(l.seq) == 0 {
		return false
	}
	if l.idx >= len(l.seq) {
		return l.seq[len(l.seq)-1]
	}
	v := l.seq[l.idx]
	l.idx++
	return v
}
