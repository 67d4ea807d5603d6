package task

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPromise_TypedSlots(t *testing.T) {
	p := NewPromise()

	p.Set(KeyValue, FloatValue(0.75))
	p.Set(KeyStep, IntValue(3))
	p.Set(KeyRestart, BoolValue(true))
	p.Set(KeyAux0, StringValue("lead"))

	f, ok := p.Float(KeyValue)
	assert.True(t, ok)
	assert.Equal(t, 0.75, f)

	i, ok := p.Int(KeyStep)
	assert.True(t, ok)
	assert.Equal(t, int64(3), i)

	b, ok := p.Bool(KeyRestart)
	assert.True(t, ok)
	assert.True(t, b)

	s, ok := p.String(KeyAux0)
	assert.True(t, ok)
	assert.Equal(t, "lead", s)
}

func TestPromise_WrongKindLookup(t *testing.T) {
	p := NewPromise()
	p.Set(KeyValue, FloatValue(1.0))

	// A typed read against a slot of a different kind reports failure
	// instead of coercing.
	_, ok := p.Int(KeyValue)
	assert.False(t, ok, "float slot must not read as int")

	_, ok = p.Bool(KeyValue)
	assert.False(t, ok, "float slot must not read as bool")
}

func TestPromise_EmptySlot(t *testing.T) {
	p := NewPromise()

	_, ok := p.Get(KeyAux1)
	assert.False(t, ok, "unset slot should report empty")

	_, ok = p.Float(KeyAux1)
	assert.False(t, ok)
}

func TestPromise_Clear(t *testing.T) {
	p := NewPromise()
	p.Set(KeyValue, FloatValue(0.5))
	p.Publish(0.5)

	p.Clear()

	_, ok := p.Get(KeyValue)
	assert.False(t, ok, "clear should empty scratch slots")
	assert.Equal(t, 0.5, p.Out(), "clear should not touch published output")
}

func TestPromise_Terminate(t *testing.T) {
	p := NewPromise()
	assert.False(t, p.ShouldTerminate())

	p.RequestTerminate()
	assert.True(t, p.ShouldTerminate())

	p.ClearTerminate()
	assert.False(t, p.ShouldTerminate(), "a withdrawn request leaves the task running")
}

func TestPromise_AutoResumeDefaultsOn(t *testing.T) {
	p := NewPromise()
	assert.True(t, p.AutoResume())

	p.SetAutoResume(false)
	assert.False(t, p.AutoResume())
}

func TestPromise_DeliverRequiresArmedWait(t *testing.T) {
	p := NewPromise()

	// No wait armed: delivery is refused and the event dropped.
	assert.False(t, p.Deliver(Event{Kind: 1}))

	p.BeginEventWait(KindAny)
	assert.True(t, p.Deliver(Event{Kind: 1}))

	// The handshake is one-shot.
	assert.False(t, p.Deliver(Event{Kind: 1}))

	ev, ok := p.TakeEvent()
	assert.True(t, ok)
	assert.Equal(t, EventKind(1), ev.Kind)

	_, ok = p.TakeEvent()
	assert.False(t, ok, "event should be consumed exactly once")
}

func TestPromise_DeliverFiltersByKind(t *testing.T) {
	p := NewPromise()
	p.BeginEventWait(EventKind(7))

	assert.False(t, p.Deliver(Event{Kind: 3}), "non-matching kind must not wake the task")
	assert.True(t, p.Deliver(Event{Kind: 7}))

	ev, ok := p.TakeEvent()
	assert.True(t, ok)
	assert.Equal(t, EventKind(7), ev.Kind)
}

func TestPromise_DeliverCarriesPayload(t *testing.T) {
	p := NewPromise()
	p.BeginEventWait(KindAny)

	assert.True(t, p.Deliver(Event{Kind: 2, Payload: FloatValue(0.25)}))

	ev, _ := p.TakeEvent()
	f, ok := ev.Payload.Float()
	assert.True(t, ok)
	assert.Equal(t, 0.25, f)
}
