// Package trace records scheduler bookkeeping events off the real-time
// thread. The tick path pushes fixed-size records into an SPSC ring and
// drops them under pressure; a drain goroutine moves them into a sink
// (in-memory for tests, SQLite for sessions worth keeping). Diagnostics
// only: nothing here sits on a correctness path.
package trace

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/MayaFlux/MayaFlux-sub002/internal/ring"
	"github.com/MayaFlux/MayaFlux-sub002/internal/sched"
)

// DefaultRingCapacity is the default record buffer between the tick path
// and the drain goroutine.
const DefaultRingCapacity = 1024

// Sink consumes drained trace records. Called only from the drain side.
type Sink interface {
	Consume(session string, evs []sched.TraceEvent) error
}

// MemorySink accumulates records in memory. Test and snapshot use.
type MemorySink struct {
	Events []sched.TraceEvent
}

// Consume implements Sink.
func (m *MemorySink) Consume(_ string, evs []sched.TraceEvent) error {
	m.Events = append(m.Events, evs...)
	return nil
}

// Recorder is the sched.Tracer implementation: the producer side runs on
// whichever thread drives the tick and never blocks or allocates; the
// consumer side runs wherever the owner drains it.
type Recorder struct {
	session string
	ring    *ring.Ring[sched.TraceEvent]
	dropped atomic.Uint64
}

// NewRecorder creates a recorder with a fresh session token.
// capacity <= 0 uses DefaultRingCapacity.
func NewRecorder(gen TokenGenerator, capacity int) *Recorder {
	if capacity <= 0 {
		capacity = DefaultRingCapacity
	}
	return &Recorder{
		session: gen.Generate(),
		ring:    ring.New[sched.TraceEvent](capacity),
	}
}

// Session returns the session token stamped on drained records.
func (r *Recorder) Session() string { return r.session }

// Record implements sched.Tracer. Push-drop: a full ring costs a counter
// increment, never a stall on the tick path.
func (r *Recorder) Record(ev sched.TraceEvent) {
	if !r.ring.Push(ev) {
		r.dropped.Add(1)
	}
}

// Dropped returns the number of records lost to backpressure.
func (r *Recorder) Dropped() uint64 {
	return r.dropped.Load()
}

// DrainTo pops every buffered record into the sink, returning the count.
// Consumer side only.
func (r *Recorder) DrainTo(sink Sink) (int, error) {
	var batch []sched.TraceEvent
	var ev sched.TraceEvent
	for r.ring.Pop(&ev) {
		batch = append(batch, ev)
	}
	if len(batch) == 0 {
		return 0, nil
	}
	if err := sink.Consume(r.session, batch); err != nil {
		return 0, err
	}
	return len(batch), nil
}

// Run drains into the sink at the given interval until the context is
// cancelled, then performs a final drain. Intended as a goroutine.
func (r *Recorder) Run(ctx context.Context, sink Sink, interval time.Duration) {
	if interval <= 0 {
		interval = 10 * time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if _, err := r.DrainTo(sink); err != nil {
				slog.Error("trace final drain failed", "error", err, "session", r.session)
			}
			if n := r.Dropped(); n > 0 {
				slog.Warn("trace records dropped", "count", n, "session", r.session)
			}
			return
		case <-ticker.C:
			if _, err := r.DrainTo(sink); err != nil {
				slog.Error("trace drain failed", "error", err, "session", r.session)
			}
		}
	}
}
