package trace_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MayaFlux/MayaFlux-sub002/internal/sched"
	"github.com/MayaFlux/MayaFlux-sub002/internal/trace"
)

// Store must be usable directly as a drain sink.
var _ trace.Sink = (*trace.Store)(nil)

func openTestStore(t *testing.T) *trace.Store {
	t.Helper()
	store, err := trace.Open(filepath.Join(t.TempDir(), "trace.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStore_WriteAndReadSession(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	evs := []sched.TraceEvent{
		{Op: sched.TraceScheduled, Task: "pulse", Samples: 0, Frames: 0},
		{Op: sched.TraceParked, Task: "pulse", Samples: 512, Frames: 3},
		{Op: sched.TraceTerminated, Task: "pulse", Samples: 1024, Frames: 7},
	}
	require.NoError(t, store.WriteEvents(ctx, "sess-a", evs))

	got, err := store.ReadSession(ctx, "sess-a")
	require.NoError(t, err)
	assert.Equal(t, evs, got, "events come back in write order with all fields intact")
}

func TestStore_MultipleBatchesOneSession(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.WriteEvents(ctx, "sess-a", []sched.TraceEvent{
		{Op: sched.TraceScheduled, Task: "a"},
	}))
	require.NoError(t, store.WriteEvents(ctx, "sess-a", []sched.TraceEvent{
		{Op: sched.TraceCancelled, Task: "a", Samples: 99},
	}))

	got, err := store.ReadSession(ctx, "sess-a")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, sched.TraceCancelled, got[1].Op)

	sessions, err := store.Sessions(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"sess-a"}, sessions, "repeated batches reuse the session row")
}

func TestStore_SessionsSortByToken(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	// UUIDv7 tokens sort lexically by creation time; write out of order.
	require.NoError(t, store.WriteEvents(ctx, "0190-b", []sched.TraceEvent{{Op: sched.TraceScheduled, Task: "x"}}))
	require.NoError(t, store.WriteEvents(ctx, "0190-a", []sched.TraceEvent{{Op: sched.TraceScheduled, Task: "y"}}))

	sessions, err := store.Sessions(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"0190-a", "0190-b"}, sessions)
}

func TestStore_UnknownSessionIsEmpty(t *testing.T) {
	store := openTestStore(t)

	got, err := store.ReadSession(context.Background(), "missing")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestStore_ReopenKeepsData(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "trace.db")

	store, err := trace.Open(path)
	require.NoError(t, err)
	require.NoError(t, store.WriteEvents(context.Background(), "sess", []sched.TraceEvent{
		{Op: sched.TraceScheduled, Task: "a"},
	}))
	require.NoError(t, store.Close())

	// Schema application is idempotent across opens.
	store, err = trace.Open(path)
	require.NoError(t, err)
	defer store.Close()

	got, err := store.ReadSession(context.Background(), "sess")
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestStore_DrainThroughRecorder(t *testing.T) {
	store := openTestStore(t)

	r := trace.NewRecorder(trace.NewFixedGenerator("sess-drain"), 16)
	r.Record(sched.TraceEvent{Op: sched.TraceScheduled, Task: "m", Samples: 1})
	r.Record(sched.TraceEvent{Op: sched.TraceResumed, Task: "m", Samples: 2})

	n, err := r.DrainTo(store)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	got, err := store.ReadSession(context.Background(), "sess-drain")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, sched.TraceResumed, got[1].Op)
}
