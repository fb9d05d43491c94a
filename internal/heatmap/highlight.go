package heatmap

import (
	gomath "math"

	"github.com/Faultbox/gazemap/pkg/math"
)

// Never is the expiry of points that do not decay.
var Never = gomath.Inf(1)

type highlightPoint struct {
	position math.Vec3
	expiry   float64
}

// HighlightSet maps local surface positions to expiry times. Iteration
// follows first-insertion order so the colour blend is reproducible.
type HighlightSet struct {
	points []highlightPoint
	index  map[math.Vec3]int
}

// NewHighlightSet creates an empty set.
func NewHighlightSet() *HighlightSet {
	return &HighlightSet{index: make(map[math.Vec3]int)}
}

// Insert adds a point or refreshes the expiry of an existing one.
func (s *HighlightSet) Insert(pos math.Vec3, expiry float64) {
	if i, ok := s.index[pos]; ok {
		s.points[i].expiry = expiry
		return
	}
	s.index[pos] = len(s.points)
	s.points = append(s.points, highlightPoint{position: pos, expiry: expiry})
}

// Expire removes every point whose expiry is at or before now and returns
// how many were removed.
func (s *HighlightSet) Expire(now float64) int {
	var expired []math.Vec3
	for _, p := range s.points {
		if p.expiry <= now {
			expired = append(expired, p.position)
		}
	}
	if len(expired) == 0 {
		return 0
	}

	for _, pos := range expired {
		delete(s.index, pos)
	}
	kept := s.points[:0]
	for _, p := range s.points {
		if _, ok := s.index[p.position]; ok {
			s.index[p.position] = len(kept)
			kept = append(kept, p)
		}
	}
	clear(s.points[len(kept):])
	s.points = kept
	return len(expired)
}

// Contains reports whether pos is live at time now.
func (s *HighlightSet) Contains(pos math.Vec3, now float64) bool {
	i, ok := s.index[pos]
	return ok && now < s.points[i].expiry
}

// Expiry returns the expiry time of pos.
func (s *HighlightSet) Expiry(pos math.Vec3) (float64, bool) {
	i, ok := s.index[pos]
	if !ok {
		return 0, false
	}
	return s.points[i].expiry, true
}

// Len returns the number of stored points.
func (s *HighlightSet) Len() int {
	return len(s.points)
}

// Positions returns the stored positions in insertion order.
func (s *HighlightSet) Positions() []math.Vec3 {
	out := make([]math.Vec3, len(s.points))
	for i, p := range s.points {
		out[i] = p.position
	}
	return out
}
