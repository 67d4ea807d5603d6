package routines

import "github.com/MayaFlux/MayaFlux-sub002/internal/task"

// Gate samples a logic source on every scheduling pass and invokes its
// callback on every pass where the source output equals the requested
// level. Level-sensitive: it fires on every matching sample, not just on
// transitions.
type Gate struct {
	src  task.LogicSource
	open bool
	fn   func(t *task.Tick)
}

// NewGate creates a level-sensitive gate. open selects which level fires
// the callback.
func NewGate(fn func(t *task.Tick), src task.LogicSource, open bool) *Gate {
	return &Gate{src: src, open: open, fn: fn}
}

// Step samples the source once and fires when the level matches.
func (g *Gate) Step(t *task.Tick) task.Wait {
	if t.ShouldTerminate() {
		return task.Done()
	}
	level := g.src.Sample()
	t.State().Set(task.KeyLevel, task.BoolValue(level))
	if level == g.open {
		g.fn(t)
	}
	return task.NextPass()
}

// Reset implements task.Routine. A gate has no per-run state.
func (g *Gate) Reset() {}

// Trigger invokes its callback only on the transition into the target
// state. Edge-sensitive: one firing per qualifying transition, no matter
// how long the source holds the level.
type Trigger struct {
	src    task.LogicSource
	target bool
	fn     func(t *task.Tick)
	prev   bool
}

// NewTrigger creates an edge-sensitive trigger. The previous level starts
// at the complement of nothing observed, i.e. false, so a source that is
// already true fires on the first pass when target is true.
func NewTrigger(target bool, fn func(t *task.Tick), src task.LogicSource) *Trigger {
	return &Trigger{src: src, target: target, fn: fn}
}

// Step samples the source and fires on the transition into target.
func (tr *Trigger) Step(t *task.Tick) task.Wait {
	if t.ShouldTerminate() {
		return task.Done()
	}
	level := tr.src.Sample()
	if level != tr.prev && level == tr.target {
		tr.fn(t)
	}
	tr.prev = level
	t.State().Set(task.KeyLevel, task.BoolValue(level))
	return task.NextPass()
}

// Reset clears the remembered level.
func (tr *Trigger) Reset() {
	tr.prev = false
}

// Toggle invokes its callback on every state change of the source, in
// either direction.
type Toggle struct {
	src  task.LogicSource
	fn   func(t *task.Tick)
	prev bool
}

// NewToggle creates a change detector over a logic source.
func NewToggle(fn func(t *task.Tick), src task.LogicSource) *Toggle {
	return &Toggle{src: src, fn: fn}
}

// Step samples the source and fires on any change.
func (tg *Toggle) Step(t *task.Tick) task.Wait {
	if t.ShouldTerminate() {
		return task.Done()
	}
	level := tg.src.Sample()
	if level != tg.prev {
		tg.fn(t)
	}
	tg.prev = level
	t.State().Set(task.KeyLevel, task.BoolValue(level))
	return task.NextPass()
}

// Reset clears the remembered level.
func (tg *Toggle) Reset() {
	tg.prev = false
}
