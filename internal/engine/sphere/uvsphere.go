package sphere

import (
	gomath "math"

	"github.com/Faultbox/gazemap/pkg/math"
)

// DirectionForUV maps a sphere UV to a unit direction from the sphere
// centre. U runs along longitude with 0.5 straight ahead (-Z) and larger U
// turning left; V runs from the north pole (0) to the south pole (1).
// The equirectangular shader uses the same mapping to sample the cubemap.
func DirectionForUV(uv math.Vec2) math.Vec3 {
	lat := (0.5 - float64(uv.Y)) * gomath.Pi
	lon := (float64(uv.X) - 0.5) * 2 * gomath.Pi
	cosLat := gomath.Cos(lat)
	return math.Vec3{
		X: float32(-cosLat * gomath.Sin(lon)),
		Y: float32(gomath.Sin(lat)),
		Z: float32(-cosLat * gomath.Cos(lon)),
	}
}

// BuildUVSphere builds a latitude/longitude sphere centred on the origin with
// outward-facing triangles, like a stock sphere primitive. The seam column is
// duplicated so UVs are continuous.
func BuildUVSphere(stacks, slices int, radius float32) *Mesh {
	cols := slices + 1
	vertices := make([]Vertex, 0, (stacks+1)*cols)
	indices := make([]uint32, 0, 6*stacks*slices)

	for i := 0; i <= stacks; i++ {
		for j := 0; j <= slices; j++ {
			uv := math.Vec2{X: float32(j) / float32(slices), Y: float32(i) / float32(stacks)}
			dir := DirectionForUV(uv)
			vertices = append(vertices, Vertex{
				Position: dir.Scale(radius).Array(),
				Normal:   dir.Array(),
				UV:       [2]float32{uv.X, uv.Y},
				Color:    White,
			})
		}
	}

	for i := 0; i < stacks; i++ {
		for j := 0; j < slices; j++ {
			a := uint32(i*cols + j)
			b := uint32((i+1)*cols + j)
			c := uint32(i*cols + j + 1)
			d := uint32((i+1)*cols + j + 1)
			indices = append(indices, a, b, c, c, b, d)
		}
	}

	return &Mesh{
		Vertices: vertices,
		Indices:  indices,
		Rows:     stacks + 1,
		Cols:     cols,
	}
}

// NewCollisionSphere builds the sphere the gaze ray is cast against from the
// inside. Triangles must face the centre, so the stock outward winding is
// corrected once here.
func NewCollisionSphere(stacks, slices int, radius float32) *Mesh {
	mesh := BuildUVSphere(stacks, slices, radius)
	CorrectWinding(mesh, math.Vec3{}, true)
	return mesh
}
