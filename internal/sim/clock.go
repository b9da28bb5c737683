package sim

import "time"

// FixedClock advances by a constant step, giving reproducible runs.
type FixedClock struct {
	Dt float64
	t  float64
}

func NewFixedClock(dt float64) *FixedClock {
	return &FixedClock{Dt: dt}
}

func (c *FixedClock) Next() (float64, float64) {
	c.t += c.Dt
	return c.Dt, c.t
}

func (c *FixedClock) Reset() { c.t = 0 }

// WallClock measures real elapsed time. Steps longer than MaxDt are capped so
// a stalled frame does not produce one huge integration step.
type WallClock struct {
	MaxDt float64

	now   func() time.Time
	start time.Time
	last  time.Time
}

func NewWallClock(maxDt float64) *WallClock {
	return &WallClock{MaxDt: maxDt, now: time.Now}
}

// Next returns (0, 0) on the first call.
func (c *WallClock) Next() (float64, float64) {
	now := c.now()
	if c.last.IsZero() {
		c.start, c.last = now, now
		return 0, 0
	}

	dt := now.Sub(c.last).Seconds()
	if dt < 0 {
		dt = 0
	}
	if c.MaxDt > 0 && dt > c.MaxDt {
		dt = c.MaxDt
	}
	c.last = now

	return dt, now.Sub(c.start).Seconds()
}

// Reset makes the next call start a new timeline.
func (c *WallClock) Reset() {
	c.start, c.last = time.Time{}, time.Time{}
}
