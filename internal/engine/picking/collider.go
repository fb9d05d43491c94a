package picking

import (
	"github.com/Faultbox/gazemap/internal/engine/sphere"
	"github.com/Faultbox/gazemap/pkg/math"
)

// Layer identifies a collision layer (0-31).
type Layer uint8

// LayerMask selects a set of layers for a raycast.
type LayerMask uint32

// Well-known layers.
const (
	LayerDefault Layer = 0
	LayerHeatmap Layer = 8
)

// MaskOf returns a mask containing the given layers.
func MaskOf(layers ...Layer) LayerMask {
	var m LayerMask
	for _, l := range layers {
		m |= 1 << l
	}
	return m
}

// Contains reports whether the mask includes layer.
func (m LayerMask) Contains(l Layer) bool {
	return m&(1<<l) != 0
}

// Collider is geometry a ray can hit.
type Collider interface {
	Name() string
	Layer() Layer
	Raycast(ray Ray, maxDistance float32) (Hit, bool)
}

// Hit is the result of a successful raycast.
type Hit struct {
	Point    math.Vec3 // World-space hit point
	UV       math.Vec2 // Interpolated mesh UV at the hit
	Distance float32
	Triangle int
	Collider Collider
}

// MeshCollider raycasts against the triangles of a mesh placed at a world
// position. Only front faces are hit. It never rotates: the heatmap sphere
// follows the viewpoint's position but keeps a fixed orientation.
type MeshCollider struct {
	name     string
	layer    Layer
	mesh     *sphere.Mesh
	position math.Vec3
	bounds   AABB // Local space
}

// NewMeshCollider creates a collider for mesh on the given layer.
func NewMeshCollider(name string, layer Layer, mesh *sphere.Mesh) *MeshCollider {
	c := &MeshCollider{name: name, layer: layer, mesh: mesh}
	c.bounds = meshBounds(mesh)
	return c
}

// Name returns the collider's identity.
func (c *MeshCollider) Name() string { return c.name }

// Layer returns the collider's layer.
func (c *MeshCollider) Layer() Layer { return c.layer }

// Position returns the world-space origin of the mesh.
func (c *MeshCollider) Position() math.Vec3 { return c.position }

// SetPosition moves the collider.
func (c *MeshCollider) SetPosition(p math.Vec3) { c.position = p }

// Raycast returns the nearest front-face hit within maxDistance.
func (c *MeshCollider) Raycast(ray Ray, maxDistance float32) (Hit, bool) {
	local := Ray{Origin: ray.Origin.Sub(c.position), Direction: ray.Direction}

	if !c.bounds.Contains(local.Origin) {
		if t, ok := local.IntersectAABB(c.bounds); !ok || t > maxDistance {
			return Hit{}, false
		}
	}

	best := Hit{Distance: maxDistance}
	found := false
	verts := c.mesh.Vertices
	for tri := 0; tri*3+2 < len(c.mesh.Indices); tri++ {
		i0 := c.mesh.Indices[tri*3]
		i1 := c.mesh.Indices[tri*3+1]
		i2 := c.mesh.Indices[tri*3+2]

		t, b1, b2, ok := local.IntersectTriangle(
			math.Vec3FromArray(verts[i0].Position),
			math.Vec3FromArray(verts[i1].Position),
			math.Vec3FromArray(verts[i2].Position),
		)
		if !ok || t > best.Distance {
			continue
		}

		b0 := 1 - b1 - b2
		uv0, uv1, uv2 := verts[i0].UV, verts[i1].UV, verts[i2].UV
		best = Hit{
			Point:    ray.At(t),
			UV:       math.Vec2{X: b0*uv0[0] + b1*uv1[0] + b2*uv2[0], Y: b0*uv0[1] + b1*uv1[1] + b2*uv2[1]},
			Distance: t,
			Triangle: tri,
			Collider: c,
		}
		found = true
	}
	return best, found
}

func meshBounds(mesh *sphere.Mesh) AABB {
	if len(mesh.Vertices) == 0 {
		return AABB{}
	}
	box := AABB{Min: mesh.Vertices[0].Position, Max: mesh.Vertices[0].Position}
	for _, v := range mesh.Vertices[1:] {
		for axis := 0; axis < 3; axis++ {
			box.Min[axis] = min(box.Min[axis], v.Position[axis])
			box.Max[axis] = max(box.Max[axis], v.Position[axis])
		}
	}
	return box
}
