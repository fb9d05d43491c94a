// Package picking provides ray casting against layered collision geometry.
package picking

import (
	gomath "math"

	"github.com/Faultbox/gazemap/pkg/math"
)

// Ray represents a ray in 3D space with origin and direction.
type Ray struct {
	Origin    math.Vec3
	Direction math.Vec3 // Normalized direction
}

// At returns the point at distance t along the ray.
func (r Ray) At(t float32) math.Vec3 {
	return r.Origin.Add(r.Direction.Scale(t))
}

// AABB represents an axis-aligned bounding box.
type AABB struct {
	Min [3]float32
	Max [3]float32
}

// ViewportToRay converts a viewport coordinate to a world-space ray.
// (0,0) is the bottom-left corner of the viewport and (1,1) the top-right,
// which is the convention eye trackers report normalized gaze in.
// invViewProj is the inverse of the view-projection matrix.
func ViewportToRay(vx, vy float32, invViewProj math.Mat4) Ray {
	ndcX := 2*vx - 1
	ndcY := 2*vy - 1

	nearWorld := unproject(invViewProj, math.Vec4{ndcX, ndcY, -1, 1})
	farWorld := unproject(invViewProj, math.Vec4{ndcX, ndcY, 1, 1})

	return Ray{
		Origin:    nearWorld,
		Direction: farWorld.Sub(nearWorld).Normalize(),
	}
}

// ScreenToRay converts pixel coordinates (origin top-left) to a world-space ray.
func ScreenToRay(screenX, screenY, viewportW, viewportH float32, invViewProj math.Mat4) Ray {
	return ViewportToRay(screenX/viewportW, 1-screenY/viewportH, invViewProj)
}

func unproject(invViewProj math.Mat4, ndc math.Vec4) math.Vec3 {
	p := invViewProj.MulVec4(ndc)
	if p[3] != 0 {
		p[0] /= p[3]
		p[1] /= p[3]
		p[2] /= p[3]
	}
	return math.Vec3{X: p[0], Y: p[1], Z: p[2]}
}

const (
	// triangleEpsilon rejects rays parallel to a triangle and degenerate triangles.
	triangleEpsilon = 1e-8
	// edgeEpsilon lets rays through shared edges and vertices hit at least one triangle.
	edgeEpsilon = 1e-6
)

// IntersectTriangle tests the ray against a counter-clockwise front face
// (Möller-Trumbore). Back faces are culled. On a hit it returns the distance
// and the barycentric weights (b1, b2) of v1 and v2.
func (r Ray) IntersectTriangle(v0, v1, v2 math.Vec3) (t, b1, b2 float32, hit bool) {
	edge1 := v1.Sub(v0)
	edge2 := v2.Sub(v0)

	pvec := r.Direction.Cross(edge2)
	det := edge1.Dot(pvec)
	if det < triangleEpsilon {
		return 0, 0, 0, false // Back face, parallel or degenerate
	}
	invDet := 1 / det

	tvec := r.Origin.Sub(v0)
	b1 = tvec.Dot(pvec) * invDet
	if b1 < -edgeEpsilon || b1 > 1+edgeEpsilon {
		return 0, 0, 0, false
	}

	qvec := tvec.Cross(edge1)
	b2 = r.Direction.Dot(qvec) * invDet
	if b2 < -edgeEpsilon || b1+b2 > 1+edgeEpsilon {
		return 0, 0, 0, false
	}

	t = edge2.Dot(qvec) * invDet
	if t < 0 {
		return 0, 0, 0, false // Behind ray origin
	}
	return t, b1, b2, true
}

// IntersectAABB tests ray intersection with an axis-aligned bounding box.
// Returns the distance to intersection (t) and whether intersection occurred.
// If the ray starts inside the box, returns the exit distance.
func (r Ray) IntersectAABB(box AABB) (t float32, hit bool) {
	tmin := float32(-gomath.MaxFloat32)
	tmax := float32(gomath.MaxFloat32)

	origin := r.Origin.Array()
	dir := r.Direction.Array()

	for axis := 0; axis < 3; axis++ {
		if dir[axis] != 0 {
			t1 := (box.Min[axis] - origin[axis]) / dir[axis]
			t2 := (box.Max[axis] - origin[axis]) / dir[axis]
			if t1 > t2 {
				t1, t2 = t2, t1
			}
			if t1 > tmin {
				tmin = t1
			}
			if t2 < tmax {
				tmax = t2
			}
		} else if origin[axis] < box.Min[axis] || origin[axis] > box.Max[axis] {
			return 0, false
		}
	}

	if tmax < tmin || tmax < 0 {
		return 0, false
	}

	// Return entry point, or exit point if starting inside
	if tmin < 0 {
		return tmax, true
	}
	return tmin, true
}

// NewAABB creates an AABB from min and max corners, handling swapped axes.
func NewAABB(minX, minY, minZ, maxX, maxY, maxZ float32) AABB {
	box := AABB{
		Min: [3]float32{minX, minY, minZ},
		Max: [3]float32{maxX, maxY, maxZ},
	}
	for axis := 0; axis < 3; axis++ {
		if box.Min[axis] > box.Max[axis] {
			box.Min[axis], box.Max[axis] = box.Max[axis], box.Min[axis]
		}
	}
	return box
}

// Contains reports whether p lies inside the box (inclusive).
func (b AABB) Contains(p math.Vec3) bool {
	a := p.Array()
	for axis := 0; axis < 3; axis++ {
		if a[axis] < b.Min[axis] || a[axis] > b.Max[axis] {
			return false
		}
	}
	return true
}
