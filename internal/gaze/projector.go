// Package gaze turns normalized eye-tracker coordinates into hits on the
// heatmap surface.
package gaze

import (
	gomath "math"

	"github.com/Faultbox/gazemap/internal/engine/picking"
	"github.com/Faultbox/gazemap/pkg/math"
)

// Viewpoint builds rays through viewport points.
type Viewpoint interface {
	ViewportPointToRay(p math.Vec2) picking.Ray
}

// Raycaster is the collision query the projector runs against.
type Raycaster interface {
	Raycast(ray picking.Ray, maxDistance float32, mask picking.LayerMask) (picking.Hit, bool)
}

// Hit is a gaze ray's intersection with the heatmap surface. It is produced
// fresh every tick and never stored.
type Hit struct {
	Point  math.Vec3 // World-space hit point
	UV     math.Vec2 // Surface UV at the hit
	Object string    // Name of the collider that was hit
}

// Projector casts gaze rays from a viewpoint against the heatmap layer.
type Projector struct {
	viewpoint   Viewpoint
	world       Raycaster
	surface     picking.Collider
	maxDistance float32
	mask        picking.LayerMask
}

// NewProjector creates a projector that only accepts hits on surface.
// maxDistance must grow with the surface: it is twice the sphere radius.
func NewProjector(viewpoint Viewpoint, world Raycaster, surface picking.Collider, maxDistance float32) *Projector {
	return &Projector{
		viewpoint:   viewpoint,
		world:       world,
		surface:     surface,
		maxDistance: maxDistance,
		mask:        picking.MaskOf(surface.Layer()),
	}
}

// MaxDistanceForRadius returns the ray length for a sphere of the given radius.
func MaxDistanceForRadius(radius float32) float32 {
	return 2 * radius
}

// Project returns the surface hit for a normalized gaze point, or false when
// the ray misses the collision layer or lands on a different object.
func (p *Projector) Project(gaze math.Vec2) (Hit, bool) {
	if isNaN(gaze.X) || isNaN(gaze.Y) {
		return Hit{}, false
	}

	ray := p.viewpoint.ViewportPointToRay(gaze)
	hit, ok := p.world.Raycast(ray, p.maxDistance, p.mask)
	if !ok || hit.Collider != p.surface {
		return Hit{}, false
	}

	return Hit{
		Point:  hit.Point,
		UV:     hit.UV,
		Object: hit.Collider.Name(),
	}, true
}

func isNaN(f float32) bool {
	return gomath.IsNaN(float64(f))
}
