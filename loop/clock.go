package loop

import "time"

// Clock is the timing source consumed by the main loop
type Clock interface {
	// Ticks returns monotonic milliseconds elapsed since the clock started
	Ticks() int64

	// Delay blocks for the given number of milliseconds
	Delay(ms int64)
}

// SystemClock reports wall-clock milliseconds since construction
type SystemClock struct {
	start time.Time
}

// NewSystemClock creates a clock starting at tick zero
func NewSystemClock() *SystemClock {
	return &SystemClock{start: time.Now()}
}

// Ticks returns milliseconds since the clock was created
func (c *SystemClock) Ticks() int64 {
	return time.Since(c.start).Milliseconds()
}

// Delay sleeps for the given number of milliseconds
func (c *SystemClock) Delay(ms int64) {
	if ms <= 0 {
		return
	}
	time.Sleep(time.Duration(ms) * time.Millisecond)
}
