package task

import (
	"math"
	"sync/atomic"
)

// Clock is the authoritative dual-domain counter for the scheduling core.
//
// The sample counter advances once per processed audio block and the frame
// counter once per rendered frame. All task timing is expressed against
// these counters, never against wall-clock time.
//
// Thread-safety: counters use atomic operations so diagnostic readers on
// other threads observe consistent values. Advancement must still happen
// only through the tick entry points (AdvanceBlock/AdvanceFrame); the
// counters are never rewound except by Reset at stream reconfiguration.
type Clock struct {
	samples atomic.Uint64
	frames  atomic.Uint32

	rate      uint32
	blockSize uint32
}

// NewClock creates a clock for the given sample rate and block size.
// Both counters start at 0.
func NewClock(rate, blockSize uint32) *Clock {
	return &Clock{rate: rate, blockSize: blockSize}
}

// AdvanceBlock advances the sample counter by one block.
// Called only from the audio-domain tick driver.
func (c *Clock) AdvanceBlock() {
	c.samples.Add(uint64(c.blockSize))
}

// AdvanceFrame advances the frame counter by one rendered frame.
// Called only from the frame-domain tick driver.
func (c *Clock) AdvanceFrame() {
	c.frames.Add(1)
}

// Samples returns the current sample count.
func (c *Clock) Samples() uint64 {
	return c.samples.Load()
}

// Frames returns the current frame count.
func (c *Clock) Frames() uint32 {
	return c.frames.Load()
}

// Rate returns the sample rate in Hz.
func (c *Clock) Rate() uint32 {
	return c.rate
}

// BlockSize returns the samples advanced per block tick.
func (c *Clock) BlockSize() uint32 {
	return c.blockSize
}

// SecondsToSamples converts a duration in seconds to a rounded sample count.
// Negative durations convert to 0.
func (c *Clock) SecondsToSamples(seconds float64) uint64 {
	if seconds <= 0 {
		return 0
	}
	return uint64(math.Round(seconds * float64(c.rate)))
}

// Reset rewinds both counters to zero and adopts a new stream configuration.
// Only valid during stream reconfiguration, never during steady-state ticking.
func (c *Clock) Reset(rate, blockSize uint32) {
	c.rate = rate
	c.blockSize = blockSize
	c.samples.Store(0)
	c.frames.Store(0)
}
