// Package sphere builds the two meshes the heatmap is drawn on: the flat
// equirectangular grid that unwraps a sphere seen from its centre, and the
// inward-facing UV sphere the gaze ray is cast against.
package sphere

// Vertex is a mesh vertex with all attributes.
type Vertex struct {
	Position [3]float32
	Normal   [3]float32
	UV       [2]float32
	Color    [4]float32
}

// Mesh holds vertex and index data ready for GPU upload.
type Mesh struct {
	Vertices []Vertex
	Indices  []uint32

	// Rows and Cols describe the vertex grid the mesh was built from.
	Rows int
	Cols int

	colorVersion uint64
}

// White is the initial "no heat" vertex colour.
var White = [4]float32{1, 1, 1, 1}

// TriangleCount returns the number of triangles in the index list.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// Positions returns a copy of the vertex positions.
func (m *Mesh) Positions() [][3]float32 {
	out := make([][3]float32, len(m.Vertices))
	for i := range m.Vertices {
		out[i] = m.Vertices[i].Position
	}
	return out
}

// Colors returns a copy of the per-vertex colour buffer.
func (m *Mesh) Colors() [][4]float32 {
	out := make([][4]float32, len(m.Vertices))
	for i := range m.Vertices {
		out[i] = m.Vertices[i].Color
	}
	return out
}

// SetColors replaces the per-vertex colour buffer and bumps ColorVersion.
// Extra entries are ignored; missing entries leave vertices untouched.
func (m *Mesh) SetColors(colors [][4]float32) {
	n := min(len(colors), len(m.Vertices))
	for i := 0; i < n; i++ {
		m.Vertices[i].Color = colors[i]
	}
	m.colorVersion++
}

// ColorVersion changes every time SetColors is called. Renderers compare it
// against the last uploaded version to decide whether to re-stream colours.
func (m *Mesh) ColorVersion() uint64 {
	return m.colorVersion
}
