package renderer

import (
	"fmt"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/Faultbox/gazemap/internal/engine/shader"
	"github.com/Faultbox/gazemap/internal/engine/sphere"
	"github.com/Faultbox/gazemap/pkg/math"
)

// MeshRenderer draws the equirectangular mesh, sampling the scene cube map
// and tinting it with the per-vertex heat colours.
type MeshRenderer struct {
	program *shader.Program
	vao     uint32
	vbo     uint32
	ebo     uint32

	mesh       *sphere.Mesh
	model      math.Mat4
	indexCount int32
	uploaded   uint64
}

// NewMeshRenderer uploads mesh, placed in the world by model.
func NewMeshRenderer(mesh *sphere.Mesh, model math.Mat4) (*MeshRenderer, error) {
	if len(mesh.Vertices) == 0 || len(mesh.Indices) == 0 {
		return nil, fmt.Errorf("empty mesh")
	}

	program, err := shader.NewProgram(shader.EquirectVertexShader, shader.EquirectFragmentShader,
		"uViewProj", "uModel", "uCubemap")
	if err != nil {
		return nil, fmt.Errorf("equirect shader: %w", err)
	}

	mr := &MeshRenderer{
		program:    program,
		mesh:       mesh,
		model:      model,
		indexCount: int32(len(mesh.Indices)),
		uploaded:   mesh.ColorVersion(),
	}
	mr.upload()
	return mr, nil
}

func (mr *MeshRenderer) upload() {
	vertices := mr.mesh.Vertices
	indices := mr.mesh.Indices

	gl.GenVertexArrays(1, &mr.vao)
	gl.BindVertexArray(mr.vao)

	gl.GenBuffers(1, &mr.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, mr.vbo)
	vertexSize := int(unsafe.Sizeof(sphere.Vertex{}))
	gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*vertexSize, unsafe.Pointer(&vertices[0]), gl.DYNAMIC_DRAW)

	// Position
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, int32(vertexSize), 0)
	gl.EnableVertexAttribArray(0)
	// Normal
	gl.VertexAttribPointerWithOffset(1, 3, gl.FLOAT, false, int32(vertexSize), 3*4)
	gl.EnableVertexAttribArray(1)
	// UV
	gl.VertexAttribPointerWithOffset(2, 2, gl.FLOAT, false, int32(vertexSize), 6*4)
	gl.EnableVertexAttribArray(2)
	// Color
	gl.VertexAttribPointerWithOffset(3, 4, gl.FLOAT, false, int32(vertexSize), 8*4)
	gl.EnableVertexAttribArray(3)

	gl.GenBuffers(1, &mr.ebo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, mr.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(indices)*4, unsafe.Pointer(&indices[0]), gl.STATIC_DRAW)

	gl.BindVertexArray(0)
}

// Sync re-streams the vertex buffer when the mesh colours changed.
func (mr *MeshRenderer) Sync() {
	version := mr.mesh.ColorVersion()
	if version == mr.uploaded {
		return
	}
	vertices := mr.mesh.Vertices
	vertexSize := int(unsafe.Sizeof(sphere.Vertex{}))
	gl.BindBuffer(gl.ARRAY_BUFFER, mr.vbo)
	gl.BufferSubData(gl.ARRAY_BUFFER, 0, len(vertices)*vertexSize, unsafe.Pointer(&vertices[0]))
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	mr.uploaded = version
}

// Draw renders the mesh with cubeTexture bound to texture unit 0.
func (mr *MeshRenderer) Draw(cubeTexture uint32, viewProj math.Mat4) {
	mr.Sync()

	mr.program.Use()
	gl.UniformMatrix4fv(mr.program.Uniform("uViewProj"), 1, false, viewProj.Ptr())
	gl.UniformMatrix4fv(mr.program.Uniform("uModel"), 1, false, mr.model.Ptr())
	gl.Uniform1i(mr.program.Uniform("uCubemap"), 0)

	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_CUBE_MAP, cubeTexture)

	// The grid winding faces away from the camera; draw both sides
	gl.Disable(gl.CULL_FACE)
	gl.BindVertexArray(mr.vao)
	gl.DrawElements(gl.TRIANGLES, mr.indexCount, gl.UNSIGNED_INT, nil)
	gl.BindVertexArray(0)

	gl.BindTexture(gl.TEXTURE_CUBE_MAP, 0)
}

// Destroy releases GPU resources.
func (mr *MeshRenderer) Destroy() {
	if mr.vao != 0 {
		gl.DeleteVertexArrays(1, &mr.vao)
		mr.vao = 0
	}
	if mr.vbo != 0 {
		gl.DeleteBuffers(1, &mr.vbo)
		mr.vbo = 0
	}
	if mr.ebo != 0 {
		gl.DeleteBuffers(1, &mr.ebo)
		mr.ebo = 0
	}
	mr.program.Delete()
}
