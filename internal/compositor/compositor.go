// Package compositor captures the live scene into a cube map each tick and
// resolves it onto the equirectangular mesh, producing the frame the
// recorder reads.
package compositor

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/gazemap/internal/engine/camera"
	"github.com/Faultbox/gazemap/internal/logger"
	"github.com/Faultbox/gazemap/pkg/math"
)

// ErrDisabled is returned once target allocation has failed. The compositor
// does not retry.
var ErrDisabled = errors.New("compositor disabled")

// CubeTarget is a six-face render target.
type CubeTarget interface {
	BindFace(face camera.CubeFace)
	Unbind()
	Texture() uint32
	Destroy()
}

// EquirectTarget is the 2D render target holding the unwrapped frame.
type EquirectTarget interface {
	Bind()
	Unbind()
	Clear(r, g, b, a float32)
	Size() (width, height int32)
	ReadRGB(dst []byte) ([]byte, error)
	Destroy()
}

// TargetAllocator creates GPU render targets.
type TargetAllocator interface {
	NewCubeTarget(size int32) (CubeTarget, error)
	NewEquirectTarget(width, height int32) (EquirectTarget, error)
}

// Scene draws the live environment.
type Scene interface {
	Draw(viewProj math.Mat4)
}

// Resolver draws the equirectangular mesh sampling the cube texture.
type Resolver interface {
	Resolve(cubeTexture uint32, viewProj math.Mat4)
}

// Viewpoint supplies the per-face capture matrices.
type Viewpoint interface {
	CubeFaceViewProj(face camera.CubeFace) math.Mat4
}

// Config holds render target settings.
type Config struct {
	CubeSize int32
	Width    int32
	Height   int32
}

// Compositor owns the cube and equirectangular targets. Targets exist only
// between CreateTargets and Destroy.
type Compositor struct {
	cfg      Config
	alloc    TargetAllocator
	scene    Scene
	resolver Resolver
	ortho    *camera.OrthoCamera

	cube     CubeTarget
	equirect EquirectTarget
	failure  error

	log *zap.Logger
}

// New creates a compositor without targets. ortho must be the camera the
// heat mesh was laid out for.
func New(cfg Config, ortho *camera.OrthoCamera, alloc TargetAllocator, scene Scene, resolver Resolver) *Compositor {
	return &Compositor{
		cfg:      cfg,
		alloc:    alloc,
		scene:    scene,
		resolver: resolver,
		ortho:    ortho,
		log:      logger.Named("compositor"),
	}
}

// Camera returns the orthographic camera the mesh is resolved through.
func (c *Compositor) Camera() *camera.OrthoCamera {
	return c.ortho
}

// CreateTargets allocates both targets. It is a no-op when they exist. An
// allocation failure releases anything already created and disables the
// compositor for good.
func (c *Compositor) CreateTargets() error {
	if c.failure != nil {
		return c.failure
	}
	if c.cube != nil && c.equirect != nil {
		return nil
	}

	cube, err := c.alloc.NewCubeTarget(c.cfg.CubeSize)
	if err != nil {
		return c.disable(fmt.Errorf("cube target %d: %w", c.cfg.CubeSize, err))
	}
	equirect, err := c.alloc.NewEquirectTarget(c.cfg.Width, c.cfg.Height)
	if err != nil {
		cube.Destroy()
		return c.disable(fmt.Errorf("equirect target %dx%d: %w", c.cfg.Width, c.cfg.Height, err))
	}

	c.cube = cube
	c.equirect = equirect
	c.log.Info("render targets created",
		zap.Int32("cube", c.cfg.CubeSize),
		zap.Int32("width", c.cfg.Width),
		zap.Int32("height", c.cfg.Height))
	return nil
}

func (c *Compositor) disable(cause error) error {
	c.failure = fmt.Errorf("%w: %w", ErrDisabled, cause)
	c.log.Error("render target allocation failed, capture disabled", zap.Error(cause))
	return c.failure
}

// Enabled reports whether allocation has never failed.
func (c *Compositor) Enabled() bool {
	return c.failure == nil
}

// Equirect returns the equirectangular target, or nil before CreateTargets.
func (c *Compositor) Equirect() EquirectTarget {
	return c.equirect
}

// Cube returns the cube target, or nil before CreateTargets.
func (c *Compositor) Cube() CubeTarget {
	return c.cube
}

// Tick renders the six cube faces from viewpoint and resolves them into the
// equirectangular target. It does nothing when no targets exist.
func (c *Compositor) Tick(viewpoint Viewpoint) error {
	if c.failure != nil {
		return c.failure
	}
	if c.cube == nil || c.equirect == nil {
		return nil
	}

	for face := camera.CubeFace(0); face < camera.CubeFaceCount; face++ {
		c.cube.BindFace(face)
		c.scene.Draw(viewpoint.CubeFaceViewProj(face))
	}
	c.cube.Unbind()

	c.equirect.Bind()
	c.equirect.Clear(0, 0, 0, 1)
	c.resolver.Resolve(c.cube.Texture(), c.ortho.ViewProj())
	c.equirect.Unbind()
	return nil
}

// Destroy releases both targets. CreateTargets may be called again after.
func (c *Compositor) Destroy() {
	if c.cube != nil {
		c.cube.Destroy()
		c.cube = nil
	}
	if c.equirect != nil {
		c.equirect.Destroy()
		c.equirect = nil
	}
}
