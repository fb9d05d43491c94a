// Package camera provides the two viewpoints of the capture pipeline: the
// tracking camera the user looks through and the orthographic camera that
// renders the equirectangular mesh.
package camera

import (
	gomath "math"

	"github.com/Faultbox/gazemap/internal/engine/picking"
	"github.com/Faultbox/gazemap/internal/engine/sphere"
	"github.com/Faultbox/gazemap/pkg/math"
)

// TrackingCamera is the head-mounted viewpoint. Gaze rays start here and the
// cubemap is captured from its position.
type TrackingCamera struct {
	Position    math.Vec3
	Orientation math.Quat

	FieldOfView float32 // Vertical, radians
	Aspect      float32
	Near        float32
	Far         float32
}

// NewTrackingCamera creates a camera at the origin looking down -Z.
func NewTrackingCamera(fovDegrees, aspect float32) *TrackingCamera {
	return &TrackingCamera{
		Orientation: math.QuatIdentity(),
		FieldOfView: fovDegrees * gomath.Pi / 180,
		Aspect:      aspect,
		Near:        0.01,
		Far:         1000,
	}
}

// ViewMatrix returns the world-to-camera transform.
func (c *TrackingCamera) ViewMatrix() math.Mat4 {
	rot := c.Orientation.Conjugate().ToMat4()
	return rot.Mul(math.TranslateVec3(c.Position.Scale(-1)))
}

// ProjectionMatrix returns the perspective projection.
func (c *TrackingCamera) ProjectionMatrix() math.Mat4 {
	return math.Perspective(c.FieldOfView, c.Aspect, c.Near, c.Far)
}

// ViewProj returns projection * view.
func (c *TrackingCamera) ViewProj() math.Mat4 {
	return c.ProjectionMatrix().Mul(c.ViewMatrix())
}

// Forward returns the world-space viewing direction.
func (c *TrackingCamera) Forward() math.Vec3 {
	return c.Orientation.Rotate(math.Forward)
}

// ViewportPointToRay builds a ray from the camera through a viewport point,
// with (0,0) at the bottom-left and (1,1) at the top-right.
func (c *TrackingCamera) ViewportPointToRay(p math.Vec2) picking.Ray {
	ray := picking.ViewportToRay(p.X, p.Y, c.ViewProj().Inverse())
	// Start at the eye rather than on the near plane so that hits are
	// measured from the sphere centre.
	ray.Origin = c.Position
	return ray
}

// CubeFace indexes the six faces of a cubemap in GL order.
type CubeFace int

// Cube faces in GL_TEXTURE_CUBE_MAP_POSITIVE_X + n order.
const (
	FacePositiveX CubeFace = iota
	FaceNegativeX
	FacePositiveY
	FaceNegativeY
	FacePositiveZ
	FaceNegativeZ
	CubeFaceCount
)

// CubeFaceFOV is the vertical field of view of every cube face.
const CubeFaceFOV = gomath.Pi / 2

var cubeFaceAxes = [CubeFaceCount]struct {
	dir, up math.Vec3
}{
	FacePositiveX: {math.Vec3{X: 1}, math.Vec3{Y: -1}},
	FaceNegativeX: {math.Vec3{X: -1}, math.Vec3{Y: -1}},
	FacePositiveY: {math.Vec3{Y: 1}, math.Vec3{Z: 1}},
	FaceNegativeY: {math.Vec3{Y: -1}, math.Vec3{Z: -1}},
	FacePositiveZ: {math.Vec3{Z: 1}, math.Vec3{Y: -1}},
	FaceNegativeZ: {math.Vec3{Z: -1}, math.Vec3{Y: -1}},
}

// CubeFaceViewProj returns the view-projection used to render one cube face
// from the camera position. Faces are world aligned: head rotation does not
// rotate the captured panorama.
func (c *TrackingCamera) CubeFaceViewProj(face CubeFace) math.Mat4 {
	axes := cubeFaceAxes[face]
	proj := math.Perspective(CubeFaceFOV, 1, c.Near, c.Far)
	view := math.LookAt(c.Position, c.Position.Add(axes.dir), axes.up)
	return proj.Mul(view)
}

// MeshDistance is how far in front of the orthographic camera the
// equirectangular mesh is placed.
const MeshDistance = 1

// OrthoCamera renders the equirectangular mesh into the capture target.
type OrthoCamera struct {
	Aspect           float32 // Target width / height
	OrthographicSize float32 // Half of the visible height
	Near             float32
	Far              float32
}

// NewOrthoCamera creates the rendering camera for a width x height target.
func NewOrthoCamera(width, height int32, orthographicSize float32) *OrthoCamera {
	return &OrthoCamera{
		Aspect:           float32(width) / float32(height),
		OrthographicSize: orthographicSize,
		Near:             0.001,
		Far:              10,
	}
}

// Projection returns the mesh projection matching this camera.
func (c *OrthoCamera) Projection() sphere.Projection {
	return sphere.Projection{Aspect: c.Aspect, OrthographicSize: c.OrthographicSize}
}

// ViewProj returns the orthographic projection. The camera sits at the
// origin looking down -Z, so the view matrix is the identity.
func (c *OrthoCamera) ViewProj() math.Mat4 {
	halfW := c.OrthographicSize * c.Aspect
	halfH := c.OrthographicSize
	return math.Ortho(-halfW, halfW, -halfH, halfH, c.Near, c.Far)
}

// MeshToWorld returns the local-to-world transform of the equirectangular mesh.
func (c *OrthoCamera) MeshToWorld() math.Mat4 {
	return math.Translate(0, 0, -MeshDistance)
}

// TowardCamera is the mesh-local direction pointing back at the camera.
var TowardCamera = math.Vec3{Z: 1}
