package framebuffer

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/Faultbox/gazemap/internal/engine/camera"
)

// CubeFramebuffer renders into the six faces of a cube map texture, one face
// at a time, sharing a single depth renderbuffer.
type CubeFramebuffer struct {
	fbo      uint32
	cubemap  uint32
	depthRBO uint32
	size     int32
}

// NewCube creates a cube target with square faces of the given size.
func NewCube(size int32) (*CubeFramebuffer, error) {
	if size < 1 {
		return nil, fmt.Errorf("cube size %d must be positive", size)
	}

	cf := &CubeFramebuffer{size: size}
	if err := cf.create(); err != nil {
		return nil, fmt.Errorf("creating cube framebuffer: %w", err)
	}
	return cf, nil
}

func (cf *CubeFramebuffer) create() error {
	gl.GenTextures(1, &cf.cubemap)
	gl.BindTexture(gl.TEXTURE_CUBE_MAP, cf.cubemap)
	for face := camera.CubeFace(0); face < camera.CubeFaceCount; face++ {
		gl.TexImage2D(gl.TEXTURE_CUBE_MAP_POSITIVE_X+uint32(face), 0, gl.RGB8, cf.size, cf.size, 0, gl.RGB, gl.UNSIGNED_BYTE, nil)
	}
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_WRAP_R, gl.CLAMP_TO_EDGE)
	gl.BindTexture(gl.TEXTURE_CUBE_MAP, 0)

	gl.GenRenderbuffers(1, &cf.depthRBO)
	gl.BindRenderbuffer(gl.RENDERBUFFER, cf.depthRBO)
	gl.RenderbufferStorage(gl.RENDERBUFFER, gl.DEPTH_COMPONENT24, cf.size, cf.size)

	gl.GenFramebuffers(1, &cf.fbo)
	gl.BindFramebuffer(gl.FRAMEBUFFER, cf.fbo)
	gl.FramebufferRenderbuffer(gl.FRAMEBUFFER, gl.DEPTH_ATTACHMENT, gl.RENDERBUFFER, cf.depthRBO)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_CUBE_MAP_POSITIVE_X, cf.cubemap, 0)

	status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	if status != gl.FRAMEBUFFER_COMPLETE {
		cf.Destroy()
		return fmt.Errorf("cube framebuffer incomplete: 0x%x", status)
	}
	return nil
}

// BindFace attaches one face as the colour target, sets the viewport and
// clears it.
func (cf *CubeFramebuffer) BindFace(face camera.CubeFace) {
	gl.BindFramebuffer(gl.FRAMEBUFFER, cf.fbo)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_CUBE_MAP_POSITIVE_X+uint32(face), cf.cubemap, 0)
	gl.Viewport(0, 0, cf.size, cf.size)
	gl.ClearColor(0, 0, 0, 1)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

// Unbind restores the default framebuffer.
func (cf *CubeFramebuffer) Unbind() {
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
}

// Texture returns the cube map texture ID.
func (cf *CubeFramebuffer) Texture() uint32 {
	return cf.cubemap
}

// Size returns the face edge length.
func (cf *CubeFramebuffer) Size() int32 {
	return cf.size
}

// Destroy releases all OpenGL resources.
func (cf *CubeFramebuffer) Destroy() {
	if cf.fbo != 0 {
		gl.DeleteFramebuffers(1, &cf.fbo)
		cf.fbo = 0
	}
	if cf.cubemap != 0 {
		gl.DeleteTextures(1, &cf.cubemap)
		cf.cubemap = 0
	}
	if cf.depthRBO != 0 {
		gl.DeleteRenderbuffers(1, &cf.depthRBO)
		cf.depthRBO = 0
	}
}
