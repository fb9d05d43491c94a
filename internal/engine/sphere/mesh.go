package sphere

import (
	"github.com/Faultbox/gazemap/pkg/math"
)

// Default grid resolution of the equirectangular mesh.
const (
	DefaultRows = 64
	DefaultCols = 128
)

// centerOffset moves UV space so (0.5, 0.5) lands on the rendering axis.
var centerOffset = math.Vec2{X: 0.5, Y: 0.5}

// Projection describes the orthographic viewpoint the equirectangular mesh
// is rendered through.
type Projection struct {
	Aspect           float32 // Render target width / height
	OrthographicSize float32 // Half of the visible height in world units
}

// PositionForUV maps a grid UV to the mesh plane. Horizontal extent is the
// aspect ratio, vertical extent twice the orthographic half-height, so the
// mesh exactly fills the rendering viewpoint.
func (p Projection) PositionForUV(uv math.Vec2) math.Vec3 {
	pos := uv.Sub(centerOffset)
	return math.Vec3{
		X: pos.X * p.Aspect,
		Y: pos.Y * p.OrthographicSize * 2,
	}
}

// UVForPosition inverts PositionForUV for points on the mesh plane.
func (p Projection) UVForPosition(pos math.Vec3) math.Vec2 {
	return math.Vec2{
		X: pos.X/p.Aspect + centerOffset.X,
		Y: pos.Y/(p.OrthographicSize*2) + centerOffset.Y,
	}
}

// Generate builds a rows x cols grid whose vertex (i, j) has
// UV (1 - j/(cols-1), 1 - i/(rows-1)) and sits at PositionForUV of the
// un-mirrored UV. Colours start white. rows and cols must be at least 2.
func Generate(rows, cols int, proj Projection) *Mesh {
	vertices := make([]Vertex, rows*cols)
	indices := make([]uint32, 0, 6*(rows-1)*(cols-1))

	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			uv := math.Vec2{
				X: float32(j) / float32(cols-1),
				Y: float32(i) / float32(rows-1),
			}
			mirrored := uv.OneMinus()

			idx := j + i*cols
			vertices[idx] = Vertex{
				Position: proj.PositionForUV(uv).Array(),
				UV:       [2]float32{mirrored.X, mirrored.Y},
				Color:    White,
			}

			if i > 0 && j > 0 {
				indices = append(indices,
					uint32(j+i*cols), uint32((j-1)+(i-1)*cols), uint32((j-1)+i*cols),
					uint32(j+(i-1)*cols), uint32((j-1)+(i-1)*cols), uint32(j+i*cols),
				)
			}
		}
	}

	mesh := &Mesh{
		Vertices: vertices,
		Indices:  indices,
		Rows:     rows,
		Cols:     cols,
	}
	RecalculateNormals(mesh)
	return mesh
}

// RecalculateNormals sets every vertex normal to the normalized sum of the
// face normals of the triangles sharing it.
func RecalculateNormals(mesh *Mesh) {
	sums := make([]math.Vec3, len(mesh.Vertices))

	for t := 0; t+2 < len(mesh.Indices); t += 3 {
		i0, i1, i2 := mesh.Indices[t], mesh.Indices[t+1], mesh.Indices[t+2]
		n := faceNormal(mesh, i0, i1, i2)
		sums[i0] = sums[i0].Add(n)
		sums[i1] = sums[i1].Add(n)
		sums[i2] = sums[i2].Add(n)
	}

	for i := range mesh.Vertices {
		mesh.Vertices[i].Normal = sums[i].Normalize().Array()
	}
}

// CorrectWinding makes triangles face towards (inward) or away from center.
// The first non-degenerate triangle decides; if it faces the wrong way the
// whole index list is reversed. Returns true when the mesh was changed.
func CorrectWinding(mesh *Mesh, center math.Vec3, inward bool) bool {
	for t := 0; t+2 < len(mesh.Indices); t += 3 {
		i0, i1, i2 := mesh.Indices[t], mesh.Indices[t+1], mesh.Indices[t+2]
		n := faceNormal(mesh, i0, i1, i2)
		if n.Length() < 1e-12 {
			continue
		}

		centroid := math.Vec3FromArray(mesh.Vertices[i0].Position).
			Add(math.Vec3FromArray(mesh.Vertices[i1].Position)).
			Add(math.Vec3FromArray(mesh.Vertices[i2].Position)).
			Scale(1.0 / 3)
		outward := n.Dot(centroid.Sub(center)) > 0
		if outward != inward {
			return false
		}

		for a, b := 0, len(mesh.Indices)-1; a < b; a, b = a+1, b-1 {
			mesh.Indices[a], mesh.Indices[b] = mesh.Indices[b], mesh.Indices[a]
		}
		RecalculateNormals(mesh)
		return true
	}
	return false
}

// faceNormal returns the unnormalized normal of a triangle (CCW front face).
func faceNormal(mesh *Mesh, i0, i1, i2 uint32) math.Vec3 {
	p0 := math.Vec3FromArray(mesh.Vertices[i0].Position)
	p1 := math.Vec3FromArray(mesh.Vertices[i1].Position)
	p2 := math.Vec3FromArray(mesh.Vertices[i2].Position)
	return p1.Sub(p0).Cross(p2.Sub(p0))
}
