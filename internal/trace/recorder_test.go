package trace_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MayaFlux/MayaFlux-sub002/internal/sched"
	"github.com/MayaFlux/MayaFlux-sub002/internal/trace"
)

func TestRecorder_RecordAndDrain(t *testing.T) {
	gen := trace.NewFixedGenerator("session-1")
	r := trace.NewRecorder(gen, 16)
	assert.Equal(t, "session-1", r.Session())

	r.Record(sched.TraceEvent{Op: sched.TraceScheduled, Task: "a", Samples: 0})
	r.Record(sched.TraceEvent{Op: sched.TraceTerminated, Task: "a", Samples: 42})

	sink := &trace.MemorySink{}
	n, err := r.DrainTo(sink)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	require.Len(t, sink.Events, 2)
	assert.Equal(t, sched.TraceScheduled, sink.Events[0].Op)
	assert.Equal(t, uint64(42), sink.Events[1].Samples)
	assert.Equal(t, uint64(0), r.Dropped())
}

func TestRecorder_DrainEmpty(t *testing.T) {
	r := trace.NewRecorder(trace.NewFixedGenerator("s"), 4)

	n, err := r.DrainTo(&trace.MemorySink{})
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestRecorder_DropsUnderBackpressure(t *testing.T) {
	r := trace.NewRecorder(trace.NewFixedGenerator("s"), 2)

	for i := 0; i < 5; i++ {
		r.Record(sched.TraceEvent{Op: sched.TraceScheduled, Task: "t"})
	}

	// Push-drop: the overflow is counted, never blocked on.
	assert.Equal(t, uint64(3), r.Dropped())

	sink := &trace.MemorySink{}
	n, err := r.DrainTo(sink)
	require.NoError(t, err)
	assert.Equal(t, 2, n, "only the buffered records survive")
}

func TestRecorder_RunFinalDrain(t *testing.T) {
	r := trace.NewRecorder(trace.NewFixedGenerator("s"), 16)
	r.Record(sched.TraceEvent{Op: sched.TraceCancelled, Task: "x"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sink := &trace.MemorySink{}
	r.Run(ctx, sink, 0)

	require.Len(t, sink.Events, 1, "cancellation flushes buffered records before returning")
	assert.Equal(t, sched.TraceCancelled, sink.Events[0].Op)
}

func TestFixedGenerator_InOrderThenPanics(t *testing.T) {
	g := trace.NewFixedGenerator("one", "two")

	assert.Equal(t, "one", g.Generate())
	assert.Equal(t, "two", g.Generate())
	assert.Panics(t, func() { g.Generate() }, "exhaustion is a test misconfiguration")
}

func TestUUIDv7Generator(t *testing.T) {
	g := trace.UUIDv7Generator{}

	a := g.Generate()
	b := g.Generate()
	assert.NotEqual(t, a, b)

	parsed, err := uuid.Parse(a)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), parsed.Version(), "tokens must be time-sortable UUIDv7")
}
