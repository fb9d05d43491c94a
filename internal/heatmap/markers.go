package heatmap

import (
	"github.com/Faultbox/gazemap/internal/engine/picking"
	"github.com/Faultbox/gazemap/pkg/math"
)

// Marker is one particle-mode point.
type Marker struct {
	Position math.Vec3
	Size     float32
	Color    [4]float32
	Layer    picking.Layer
	Expiry   float64
}

// MarkerPool holds live markers until their lifetime runs out.
type MarkerPool struct {
	markers []Marker
}

// Spawn adds a marker.
func (p *MarkerPool) Spawn(m Marker) {
	p.markers = append(p.markers, m)
}

// Expire drops markers whose expiry is at or before now.
func (p *MarkerPool) Expire(now float64) int {
	kept := p.markers[:0]
	for _, m := range p.markers {
		if m.Expiry > now {
			kept = append(kept, m)
		}
	}
	removed := len(p.markers) - len(kept)
	clear(p.markers[len(kept):])
	p.markers = kept
	return removed
}

// Len returns the number of live markers.
func (p *MarkerPool) Len() int {
	return len(p.markers)
}

// OnLayer appends markers on the given layer to dst and returns it.
func (p *MarkerPool) OnLayer(dst []Marker, layer picking.Layer) []Marker {
	for _, m := range p.markers {
		if m.Layer == layer {
			dst = append(dst, m)
		}
	}
	return dst
}

// Clear removes all markers.
func (p *MarkerPool) Clear() {
	clear(p.markers)
	p.markers = p.markers[:0]
}
