// Package app wires the gaze heatmap pipeline and drives it from the host
// loop: Init once, Tick every frame, Shutdown once.
package app

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/gazemap/internal/compositor"
	"github.com/Faultbox/gazemap/internal/config"
	"github.com/Faultbox/gazemap/internal/engine/camera"
	"github.com/Faultbox/gazemap/internal/engine/picking"
	"github.com/Faultbox/gazemap/internal/engine/sphere"
	"github.com/Faultbox/gazemap/internal/gaze"
	"github.com/Faultbox/gazemap/internal/heatmap"
	"github.com/Faultbox/gazemap/internal/logger"
	"github.com/Faultbox/gazemap/internal/recorder"
)

// SurfaceName names the collider gaze rays must hit.
const SurfaceName = "heatmap"

// StageFactory builds the draw stages of the compositor once the heat mesh
// and marker pool exist. ortho is the camera the mesh is laid out for.
type StageFactory func(mesh *sphere.Mesh, markers *heatmap.MarkerPool, ortho *camera.OrthoCamera) (compositor.Scene, compositor.Resolver, error)

// Deps are the collaborators a Pipeline drives.
type Deps struct {
	Source  gaze.Source
	Targets compositor.TargetAllocator
	Stages  StageFactory
	Opener  recorder.PipeOpener
	Overlay recorder.Overlay
}

// Pipeline runs one tick of gaze projection, accumulation, capture and
// recording. It holds no GL state itself.
type Pipeline struct {
	clock       *Clock
	camera      *camera.TrackingCamera
	surface     *picking.MeshCollider
	projector   *gaze.Projector
	source      gaze.Source
	mesh        *sphere.Mesh
	accumulator *heatmap.Accumulator
	compositor  *compositor.Compositor
	recorder    *recorder.Recorder
	frames      *equirectSource

	snapshotDir  string
	snapshotName string

	log *zap.Logger
}

// NewPipeline builds every component from cfg.
func NewPipeline(cfg *config.Config, deps Deps) (*Pipeline, error) {
	mode, err := heatmap.ParseMode(cfg.Heatmap.Mode)
	if err != nil {
		return nil, err
	}
	codec, err := recorder.ParseCodec(cfg.Recording.Codec)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		clock:        &Clock{},
		source:       deps.Source,
		snapshotDir:  cfg.Recording.OutputDir,
		snapshotName: cfg.Recording.Name,
		log:          logger.Named("pipeline"),
	}

	aspect := float32(cfg.Window.Width) / float32(max(cfg.Window.Height, 1))
	p.camera = camera.NewTrackingCamera(cfg.Tracker.FieldOfView, aspect)

	collision := sphere.NewCollisionSphere(cfg.Surface.ColliderStacks, cfg.Surface.ColliderSlices, cfg.Surface.SphereRadius)
	p.surface = picking.NewMeshCollider(SurfaceName, picking.LayerHeatmap, collision)
	world := picking.NewWorld()
	world.Add(p.surface)
	p.projector = gaze.NewProjector(p.camera, world, p.surface, gaze.MaxDistanceForRadius(cfg.Surface.SphereRadius))

	// One camera drives the mesh layout, marker placement and the resolve
	ortho := camera.NewOrthoCamera(cfg.Capture.Width, cfg.Capture.Height, cfg.Capture.OrthographicSize)
	p.mesh = sphere.Generate(cfg.Surface.GridHeight, cfg.Surface.GridWidth, ortho.Projection())

	p.accumulator, err = heatmap.New(p.mesh, heatmap.Options{
		Mode:             mode,
		ElementSize:      cfg.Heatmap.ElementSize,
		RemoveAfter:      cfg.Heatmap.RemoveAfter,
		MarkerColor:      cfg.Heatmap.MarkerColor,
		MarkersOnHeadset: cfg.Heatmap.MarkersOnHeadset,
		Projection:       ortho.Projection(),
		MeshToWorld:      ortho.MeshToWorld(),
	})
	if err != nil {
		return nil, fmt.Errorf("heatmap: %w", err)
	}

	scene, resolver, err := deps.Stages(p.mesh, p.accumulator.Markers(), ortho)
	if err != nil {
		return nil, fmt.Errorf("draw stages: %w", err)
	}
	p.compositor = compositor.New(compositor.Config{
		CubeSize: cfg.Capture.CubeSize,
		Width:    cfg.Capture.Width,
		Height:   cfg.Capture.Height,
	}, ortho, deps.Targets, scene, resolver)

	p.frames = &equirectSource{compositor: p.compositor}
	p.recorder = recorder.New(p.frames, deps.Opener, p.clock, recorder.Options{
		Name:       cfg.Recording.Name,
		OutputDir:  cfg.Recording.OutputDir,
		FrameRate:  cfg.Recording.FrameRate,
		Codec:      codec,
		FFmpegPath: cfg.Recording.FFmpegPath,
	})
	if deps.Overlay != nil {
		p.recorder.SetOverlay(deps.Overlay)
	}

	p.log.Info("pipeline ready",
		zap.Stringer("mode", mode),
		zap.Int("grid_rows", cfg.Surface.GridHeight),
		zap.Int("grid_cols", cfg.Surface.GridWidth),
		zap.Float32("sphere_radius", cfg.Surface.SphereRadius))
	return p, nil
}

// Init allocates the capture targets. Allocation failure only disables
// capture and recording.
func (p *Pipeline) Init() {
	if err := p.compositor.CreateTargets(); err != nil {
		p.log.Warn("capture unavailable", zap.Error(err))
	}
}

// Tick advances the clock by dt seconds and runs one frame. toggle flips the
// recording state. The returned error is a recording session failure; the
// caller keeps ticking.
func (p *Pipeline) Tick(dt float64, toggle bool) error {
	p.clock.Advance(dt)
	now := p.clock.Now()

	// The collision sphere follows the viewpoint's position, never its rotation
	p.surface.SetPosition(p.camera.Position)

	if point, ok := p.source.Gaze(); ok {
		if hit, ok := p.projector.Project(point); ok {
			p.accumulator.AddHit(hit, now)
		}
	}
	p.accumulator.Tick(now)

	if err := p.compositor.Tick(p.camera); err != nil && !errors.Is(err, compositor.ErrDisabled) {
		p.log.Error("capture failed", zap.Error(err))
	}

	if toggle {
		if err := p.toggleRecording(); err != nil {
			return err
		}
	}
	return p.recorder.Tick()
}

func (p *Pipeline) toggleRecording() error {
	if !p.recorder.Recording() && p.compositor.Equirect() == nil {
		p.log.Warn("recording unavailable without capture targets")
		return fmt.Errorf("start recording: %w", compositor.ErrDisabled)
	}
	return p.recorder.Toggle()
}

// Snapshot writes the current equirectangular frame as a PNG next to the
// recordings.
func (p *Pipeline) Snapshot(at time.Time) (string, error) {
	if p.compositor.Equirect() == nil {
		return "", fmt.Errorf("snapshot: %w", compositor.ErrDisabled)
	}
	path, err := recorder.SaveSnapshot(p.frames, p.snapshotDir, p.snapshotName, at)
	if err != nil {
		return "", err
	}
	p.log.Info("snapshot saved", zap.String("path", path))
	return path, nil
}

// Shutdown ends any recording session and releases the capture targets.
func (p *Pipeline) Shutdown() error {
	err := p.recorder.Close()
	p.compositor.Destroy()
	return err
}

// Camera returns the tracking viewpoint.
func (p *Pipeline) Camera() *camera.TrackingCamera { return p.camera }

// Mesh returns the equirectangular heat mesh.
func (p *Pipeline) Mesh() *sphere.Mesh { return p.mesh }

// Accumulator returns the heatmap accumulator.
func (p *Pipeline) Accumulator() *heatmap.Accumulator { return p.accumulator }

// Compositor returns the capture compositor.
func (p *Pipeline) Compositor() *compositor.Compositor { return p.compositor }

// Recorder returns the frame recorder.
func (p *Pipeline) Recorder() *recorder.Recorder { return p.recorder }

// Clock returns the pipeline clock.
func (p *Pipeline) Clock() *Clock { return p.clock }

// equirectSource reads frames from whatever equirect target the compositor
// currently owns.
type equirectSource struct {
	compositor *compositor.Compositor
}

func (s *equirectSource) Size() (int32, int32) {
	if t := s.compositor.Equirect(); t != nil {
		return t.Size()
	}
	return 0, 0
}

func (s *equirectSource) ReadRGB(dst []byte) ([]byte, error) {
	t := s.compositor.Equirect()
	if t == nil {
		return nil, fmt.Errorf("no capture target: %w", compositor.ErrDisabled)
	}
	return t.ReadRGB(dst)
}
