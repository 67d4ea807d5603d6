package ring

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRing_CapacityFour(t *testing.T) {
	r := New[int](4)
	assert.Equal(t, 4, r.Cap())

	// Exactly four pushes succeed on an empty capacity-4 ring.
	for i := 1; i <= 4; i++ {
		assert.True(t, r.Push(i), "push %d should succeed", i)
	}
	assert.False(t, r.Push(5), "fifth push must report full")
	assert.Equal(t, 4, r.Len())

	// Pops come back in insertion order.
	var v int
	for i := 1; i <= 4; i++ {
		require.True(t, r.Pop(&v))
		assert.Equal(t, i, v)
	}
	assert.False(t, r.Pop(&v), "pop on empty ring must report empty")
	assert.Equal(t, 0, r.Len())
}

func TestRing_WrapAround(t *testing.T) {
	r := New[int](3)
	var v int

	// Cycle enough items through to wrap the indices several times.
	next := 0
	for round := 0; round < 10; round++ {
		require.True(t, r.Push(round*2))
		require.True(t, r.Push(round*2+1))
		require.True(t, r.Pop(&v))
		assert.Equal(t, next, v)
		next++
		require.True(t, r.Pop(&v))
		assert.Equal(t, next, v)
		next++
	}
	assert.Equal(t, 0, r.Len())
}

func TestRing_FullThenDrainThenReuse(t *testing.T) {
	r := New[string](2)

	require.True(t, r.Push("a"))
	require.True(t, r.Push("b"))
	require.False(t, r.Push("c"))

	var s string
	require.True(t, r.Pop(&s))
	assert.Equal(t, "a", s)

	// A freed slot is immediately reusable.
	assert.True(t, r.Push("c"))
	require.True(t, r.Pop(&s))
	assert.Equal(t, "b", s)
	require.True(t, r.Pop(&s))
	assert.Equal(t, "c", s)
}

func TestRing_MinimumCapacity(t *testing.T) {
	r := New[int](0)
	assert.Equal(t, 1, r.Cap(), "capacity is clamped to at least 1")

	assert.True(t, r.Push(42))
	assert.False(t, r.Push(43))
}

func TestRing_Snapshot(t *testing.T) {
	r := New[int](4)
	r.Push(10)
	r.Push(20)
	r.Push(30)

	assert.Equal(t, []int{10, 20, 30}, r.Snapshot())

	// Snapshot does not consume.
	assert.Equal(t, 3, r.Len())
}

func TestRing_SPSCStress(t *testing.T) {
	const total = 100_000
	r := New[int](64)

	var wg sync.WaitGroup
	wg.Add(1)

	received := make([]int, 0, total)
	go func() {
		defer wg.Done()
		var v int
		for len(received) < total {
			if r.Pop(&v) {
				received = append(received, v)
			}
		}
	}()

	for i := 0; i < total; i++ {
		for !r.Push(i) {
			// Ring full; producer spins until the consumer catches up.
		}
	}
	wg.Wait()

	require.Len(t, received, total)
	for i, v := range received {
		if v != i {
			t.Fatalf("out of order at %d: got %d", i, v)
		}
	}
}
