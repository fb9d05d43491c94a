package gaze

import "github.com/Faultbox/gazemap/pkg/math"

// Source delivers one normalized gaze coordinate per tick. The second
// result is false while the tracker is disconnected or has no sample.
type Source interface {
	Gaze() (math.Vec2, bool)
}

// FixedSource always reports the same point. Useful for calibration
// checks and headless runs.
type FixedSource struct {
	Point math.Vec2
}

// Gaze returns the fixed point.
func (s FixedSource) Gaze() (math.Vec2, bool) {
	return s.Point, true
}

// MouseSource stands in for an eye tracker by following the pointer over the
// preview window.
type MouseSource struct {
	point math.Vec2
	valid bool
}

// NewMouseSource creates a source with no sample yet.
func NewMouseSource() *MouseSource {
	return &MouseSource{}
}

// MoveTo records a pointer position in window pixels (origin top-left).
func (s *MouseSource) MoveTo(px, py, width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	s.point = math.Vec2{
		X: float32(px) / float32(width),
		Y: 1 - float32(py)/float32(height),
	}
	s.valid = true
}

// Leave marks the pointer as outside the window.
func (s *MouseSource) Leave() {
	s.valid = false
}

// Gaze returns the last pointer position in viewport space.
func (s *MouseSource) Gaze() (math.Vec2, bool) {
	return s.point, s.valid
}
