package app

// Clock is host time in seconds, advanced by the tick delta.
type Clock struct {
	now float64
}

// Advance moves the clock forward. Negative deltas are ignored.
func (c *Clock) Advance(dt float64) {
	if dt > 0 {
		c.now += dt
	}
}

// Now returns seconds since the first tick.
func (c *Clock) Now() float64 {
	return c.now
}
