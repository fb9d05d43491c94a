package app

import (
	"github.com/Faultbox/gazemap/internal/compositor"
	"github.com/Faultbox/gazemap/internal/engine/camera"
	"github.com/Faultbox/gazemap/internal/engine/framebuffer"
	"github.com/Faultbox/gazemap/internal/engine/picking"
	"github.com/Faultbox/gazemap/internal/engine/renderer"
	"github.com/Faultbox/gazemap/internal/heatmap"
	"github.com/Faultbox/gazemap/pkg/math"
)

// glTargets allocates framebuffer-backed capture targets.
type glTargets struct{}

func (glTargets) NewCubeTarget(size int32) (compositor.CubeTarget, error) {
	return framebuffer.NewCube(size)
}

func (glTargets) NewEquirectTarget(width, height int32) (compositor.EquirectTarget, error) {
	return framebuffer.New(width, height)
}

// sceneStage draws the environment and the default-layer markers. It is
// used for the cube faces and the preview window.
type sceneStage struct {
	grid       *renderer.GridScene
	markers    *renderer.MarkerRenderer
	pool       *heatmap.MarkerPool
	pointScale float32
	scratch    []heatmap.Marker
}

func (s *sceneStage) Draw(viewProj math.Mat4) {
	s.grid.Draw(viewProj)
	s.scratch = s.pool.OnLayer(s.scratch[:0], picking.LayerDefault)
	s.markers.Draw(s.scratch, viewProj, s.pointScale)
}

// resolveStage draws the heat mesh over the captured cube map, then the
// capture-only markers in front of it.
type resolveStage struct {
	mesh       *renderer.MeshRenderer
	markers    *renderer.MarkerRenderer
	pool       *heatmap.MarkerPool
	pointScale float32
	scratch    []heatmap.Marker
}

func (s *resolveStage) Resolve(cubeTexture uint32, viewProj math.Mat4) {
	s.mesh.Draw(cubeTexture, viewProj)
	s.scratch = s.pool.OnLayer(s.scratch[:0], picking.LayerHeatmap)
	s.markers.Draw(s.scratch, viewProj, s.pointScale)
}

// cubePointScale sizes markers on a 90 degree cube face.
func cubePointScale(cubeSize int32) float32 {
	return renderer.PerspectivePointScale(cubeSize, camera.CubeFaceFOV)
}
