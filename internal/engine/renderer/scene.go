package renderer

import (
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/Faultbox/gazemap/internal/engine/shader"
	"github.com/Faultbox/gazemap/pkg/math"
)

type sceneVertex struct {
	Position [3]float32
	Color    [3]float32
}

// roomFaces colours each wall so captured directions are easy to tell apart.
var roomFaces = [6]struct {
	normal math.Vec3 // Points into the room
	color  [3]float32
}{
	{math.Vec3{X: -1}, [3]float32{0.55, 0.20, 0.20}}, // +X wall
	{math.Vec3{X: 1}, [3]float32{0.20, 0.45, 0.25}},  // -X wall
	{math.Vec3{Y: -1}, [3]float32{0.35, 0.35, 0.45}}, // Ceiling
	{math.Vec3{Y: 1}, [3]float32{0.30, 0.25, 0.20}},  // Floor
	{math.Vec3{Z: -1}, [3]float32{0.20, 0.30, 0.55}}, // +Z wall
	{math.Vec3{Z: 1}, [3]float32{0.50, 0.45, 0.20}},  // -Z wall
}

// roomGeometry builds an axis-aligned box of the given half extent around
// the origin, four vertices and two triangles per wall.
func roomGeometry(halfExtent float32) ([]sceneVertex, []uint32) {
	vertices := make([]sceneVertex, 0, 24)
	indices := make([]uint32, 0, 36)

	for _, f := range roomFaces {
		// Wall centre sits opposite its inward normal
		center := f.normal.Scale(-halfExtent)
		var tangent math.Vec3
		if f.normal.Y != 0 {
			tangent = math.Vec3{X: 1}
		} else {
			tangent = math.Vec3{Y: 1}
		}
		bitangent := f.normal.Cross(tangent)

		base := uint32(len(vertices))
		for _, c := range [4][2]float32{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}} {
			p := center.Add(tangent.Scale(c[0] * halfExtent)).Add(bitangent.Scale(c[1] * halfExtent))
			vertices = append(vertices, sceneVertex{Position: p.Array(), Color: f.color})
		}
		indices = append(indices, base, base+1, base+2, base, base+2, base+3)
	}
	return vertices, indices
}

// GridScene is a demo environment: a coloured room with grid lines, so the
// captured panorama has recognizable structure in every direction.
type GridScene struct {
	program    *shader.Program
	vao        uint32
	vbo        uint32
	ebo        uint32
	indexCount int32
	spacing    float32
}

// NewGridScene uploads a room of the given half extent.
func NewGridScene(halfExtent, gridSpacing float32) (*GridScene, error) {
	program, err := shader.NewProgram(shader.SceneVertexShader, shader.SceneFragmentShader,
		"uViewProj", "uGridSpacing")
	if err != nil {
		return nil, err
	}

	vertices, indices := roomGeometry(halfExtent)
	gs := &GridScene{program: program, indexCount: int32(len(indices)), spacing: gridSpacing}

	gl.GenVertexArrays(1, &gs.vao)
	gl.BindVertexArray(gs.vao)

	gl.GenBuffers(1, &gs.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, gs.vbo)
	stride := int(unsafe.Sizeof(sceneVertex{}))
	gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*stride, unsafe.Pointer(&vertices[0]), gl.STATIC_DRAW)
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, int32(stride), 0)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(1, 3, gl.FLOAT, false, int32(stride), 3*4)
	gl.EnableVertexAttribArray(1)

	gl.GenBuffers(1, &gs.ebo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, gs.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(indices)*4, unsafe.Pointer(&indices[0]), gl.STATIC_DRAW)

	gl.BindVertexArray(0)
	return gs, nil
}

// Draw renders the room.
func (gs *GridScene) Draw(viewProj math.Mat4) {
	gs.program.Use()
	gl.UniformMatrix4fv(gs.program.Uniform("uViewProj"), 1, false, viewProj.Ptr())
	gl.Uniform1f(gs.program.Uniform("uGridSpacing"), gs.spacing)

	gl.Disable(gl.CULL_FACE)
	gl.BindVertexArray(gs.vao)
	gl.DrawElements(gl.TRIANGLES, gs.indexCount, gl.UNSIGNED_INT, nil)
	gl.BindVertexArray(0)
}

// Destroy releases GPU resources.
func (gs *GridScene) Destroy() {
	if gs.vao != 0 {
		gl.DeleteVertexArrays(1, &gs.vao)
		gs.vao = 0
	}
	if gs.vbo != 0 {
		gl.DeleteBuffers(1, &gs.vbo)
		gs.vbo = 0
	}
	if gs.ebo != 0 {
		gl.DeleteBuffers(1, &gs.ebo)
		gs.ebo = 0
	}
	gs.program.Delete()
}
