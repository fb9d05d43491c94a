package heatmap

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/gazemap/internal/engine/camera"
	"github.com/Faultbox/gazemap/internal/engine/picking"
	"github.com/Faultbox/gazemap/internal/engine/sphere"
	"github.com/Faultbox/gazemap/internal/gaze"
	"github.com/Faultbox/gazemap/internal/logger"
	"github.com/Faultbox/gazemap/pkg/math"
)

// Marker sizes relative to the element size.
const (
	HeadsetMarkerScale = 0.05
	CaptureMarkerScale = 0.033

	// captureMarkerLift keeps capture markers in front of the mesh.
	captureMarkerLift = 0.001
)

// Options configures an Accumulator.
type Options struct {
	Mode             Mode
	ElementSize      float32 // 0.125 - 1.0
	RemoveAfter      float64 // Seconds; <= 0 never expires
	MarkerColor      string  // Hex
	MarkersOnHeadset bool

	// Projection is the one the mesh was generated with.
	Projection sphere.Projection
	// MeshToWorld places the equirectangular mesh in front of its camera.
	// Zero means identity.
	MeshToWorld math.Mat4
}

// Accumulator turns gaze hits into markers or mesh vertex colours.
type Accumulator struct {
	mode        Mode
	mesh        *sphere.Mesh
	proj        sphere.Projection
	meshToWorld math.Mat4
	elementSize float32
	removeAfter float64
	color       [4]float32
	onHeadset   bool

	points  *HighlightSet
	markers MarkerPool
	refresh bool

	log *zap.Logger
}

// New creates an accumulator writing into mesh.
func New(mesh *sphere.Mesh, opts Options) (*Accumulator, error) {
	if opts.ElementSize <= 0 {
		return nil, fmt.Errorf("element size %v must be positive", opts.ElementSize)
	}
	color, err := ParseColor(opts.MarkerColor)
	if err != nil {
		return nil, err
	}

	meshToWorld := opts.MeshToWorld
	if meshToWorld == (math.Mat4{}) {
		meshToWorld = math.Identity()
	}

	return &Accumulator{
		mode:        opts.Mode,
		mesh:        mesh,
		proj:        opts.Projection,
		meshToWorld: meshToWorld,
		elementSize: opts.ElementSize,
		removeAfter: opts.RemoveAfter,
		color:       color,
		onHeadset:   opts.MarkersOnHeadset,
		points:      NewHighlightSet(),
		log:         logger.Named("heatmap"),
	}, nil
}

// Mode returns the accumulation mode.
func (a *Accumulator) Mode() Mode {
	return a.mode
}

// Points returns the highlight set.
func (a *Accumulator) Points() *HighlightSet {
	return a.points
}

// Markers returns the particle marker pool.
func (a *Accumulator) Markers() *MarkerPool {
	return &a.markers
}

// pointExpiry is the expiry of a highlight point added at now. Markers do
// not use it: their lifetime is always now + removeAfter.
func (a *Accumulator) pointExpiry(now float64) float64 {
	if a.removeAfter <= 0 {
		return Never
	}
	return now + a.removeAfter
}

// AddHit records one gaze hit at time now (seconds).
func (a *Accumulator) AddHit(hit gaze.Hit, now float64) {
	switch a.mode {
	case ModeParticle:
		a.emitMarkers(hit, now)
	case ModeHighlight:
		pos := a.proj.PositionForUV(hit.UV.OneMinus())
		a.points.Insert(pos, a.pointExpiry(now))
		a.refresh = true
	}
}

func (a *Accumulator) emitMarkers(hit gaze.Hit, now float64) {
	// A non-positive lifetime expires on the same tick it was spawned
	m := Marker{
		Color:  a.color,
		Expiry: now + a.removeAfter,
	}

	if a.onHeadset {
		// Default layer: seen by the user and captured with the scene
		m.Position = hit.Point
		m.Size = a.elementSize * HeadsetMarkerScale
		m.Layer = picking.LayerDefault
	} else {
		local := a.proj.PositionForUV(hit.UV.OneMinus()).Add(camera.TowardCamera.Scale(captureMarkerLift))
		m.Position = a.meshToWorld.TransformVec3(local)
		m.Size = a.elementSize * CaptureMarkerScale
		m.Layer = picking.LayerHeatmap
	}
	a.markers.Spawn(m)
}

// Tick expires old state and, in highlight mode, recolours the mesh when a
// point was added or removed since the last tick. It reports whether the
// mesh colours were rewritten.
func (a *Accumulator) Tick(now float64) bool {
	switch a.mode {
	case ModeParticle:
		a.markers.Expire(now)
		return false
	case ModeHighlight:
		if removed := a.points.Expire(now); removed > 0 {
			a.log.Debug("highlight points expired", zap.Int("count", removed), zap.Int("live", a.points.Len()))
			a.refresh = true
		}
		if !a.refresh {
			return false
		}
		a.Recolor()
		a.refresh = false
		return true
	}
	return false
}

// Recolor recomputes every vertex colour from the live highlight points.
func (a *Accumulator) Recolor() {
	points := a.points.Positions()
	colors := make([][4]float32, len(a.mesh.Vertices))
	for i := range a.mesh.Vertices {
		v := math.Vec3FromArray(a.mesh.Vertices[i].Position)
		colors[i] = BlendVertex(v, points, a.elementSize)
	}
	a.mesh.SetColors(colors)
}
