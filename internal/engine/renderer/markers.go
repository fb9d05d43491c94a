package renderer

import (
	gomath "math"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/Faultbox/gazemap/internal/engine/shader"
	"github.com/Faultbox/gazemap/internal/heatmap"
	"github.com/Faultbox/gazemap/pkg/math"
)

type markerVertex struct {
	Position [3]float32
	Size     float32
	Color    [4]float32
}

// MarkerRenderer draws particle markers as GL points sized in world units.
type MarkerRenderer struct {
	program  *shader.Program
	vao      uint32
	vbo      uint32
	capacity int
	scratch  []markerVertex
}

// NewMarkerRenderer creates the point program and a streaming buffer.
func NewMarkerRenderer() (*MarkerRenderer, error) {
	program, err := shader.NewProgram(shader.MarkerVertexShader, shader.MarkerFragmentShader,
		"uViewProj", "uPointScale")
	if err != nil {
		return nil, err
	}

	mr := &MarkerRenderer{program: program}

	gl.GenVertexArrays(1, &mr.vao)
	gl.BindVertexArray(mr.vao)
	gl.GenBuffers(1, &mr.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, mr.vbo)

	stride := int32(unsafe.Sizeof(markerVertex{}))
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, stride, 0)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(1, 1, gl.FLOAT, false, stride, 3*4)
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointerWithOffset(2, 4, gl.FLOAT, false, stride, 4*4)
	gl.EnableVertexAttribArray(2)

	gl.BindVertexArray(0)
	return mr, nil
}

// PerspectivePointScale converts world sizes to pixels for a perspective
// camera; the shader divides by clip w.
func PerspectivePointScale(viewportHeight int32, fovRadians float32) float32 {
	return float32(viewportHeight) / (2 * float32(gomath.Tan(float64(fovRadians)/2)))
}

// OrthoPointScale converts world sizes to pixels for an orthographic camera.
func OrthoPointScale(viewportHeight int32, orthographicSize float32) float32 {
	return float32(viewportHeight) / (2 * orthographicSize)
}

// Draw renders markers with alpha blending and no depth writes.
func (mr *MarkerRenderer) Draw(markers []heatmap.Marker, viewProj math.Mat4, pointScale float32) {
	if len(markers) == 0 {
		return
	}

	mr.scratch = mr.scratch[:0]
	for _, m := range markers {
		mr.scratch = append(mr.scratch, markerVertex{
			Position: m.Position.Array(),
			Size:     m.Size,
			Color:    m.Color,
		})
	}

	stride := int(unsafe.Sizeof(markerVertex{}))
	gl.BindBuffer(gl.ARRAY_BUFFER, mr.vbo)
	if len(mr.scratch) > mr.capacity {
		mr.capacity = cap(mr.scratch)
		gl.BufferData(gl.ARRAY_BUFFER, mr.capacity*stride, nil, gl.STREAM_DRAW)
	}
	gl.BufferSubData(gl.ARRAY_BUFFER, 0, len(mr.scratch)*stride, unsafe.Pointer(&mr.scratch[0]))

	mr.program.Use()
	gl.UniformMatrix4fv(mr.program.Uniform("uViewProj"), 1, false, viewProj.Ptr())
	gl.Uniform1f(mr.program.Uniform("uPointScale"), pointScale)

	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	gl.DepthMask(false)

	gl.BindVertexArray(mr.vao)
	gl.DrawArrays(gl.POINTS, 0, int32(len(mr.scratch)))
	gl.BindVertexArray(0)

	gl.DepthMask(true)
	gl.Disable(gl.BLEND)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
}

// Destroy releases GPU resources.
func (mr *MarkerRenderer) Destroy() {
	if mr.vao != 0 {
		gl.DeleteVertexArrays(1, &mr.vao)
		mr.vao = 0
	}
	if mr.vbo != 0 {
		gl.DeleteBuffers(1, &mr.vbo)
		mr.vbo = 0
	}
	mr.program.Delete()
}
