package app

import (
	"fmt"
	gomath "math"
	"time"

	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/gazemap/internal/compositor"
	"github.com/Faultbox/gazemap/internal/config"
	"github.com/Faultbox/gazemap/internal/engine/camera"
	"github.com/Faultbox/gazemap/internal/engine/framebuffer"
	"github.com/Faultbox/gazemap/internal/engine/input"
	"github.com/Faultbox/gazemap/internal/engine/renderer"
	"github.com/Faultbox/gazemap/internal/engine/sphere"
	"github.com/Faultbox/gazemap/internal/engine/window"
	"github.com/Faultbox/gazemap/internal/gaze"
	"github.com/Faultbox/gazemap/internal/heatmap"
	"github.com/Faultbox/gazemap/internal/logger"
	"github.com/Faultbox/gazemap/internal/recorder"
	"github.com/Faultbox/gazemap/pkg/math"
)

const (
	// lookSpeed is the arrow-key head rotation rate in radians per second.
	lookSpeed = gomath.Pi / 2
	maxPitch  = gomath.Pi/2 - 0.01

	roomHalfExtent = 4
	gridSpacing    = 0.5

	insetWidth = 384
)

// App hosts the pipeline in an SDL window.
type App struct {
	cfg      *config.Config
	window   *window.Window
	renderer *renderer.Renderer
	input    *input.Input
	overlay  *window.Overlay

	mouse       *gaze.MouseSource
	source      gaze.Source
	toggleKey   sdl.Scancode
	snapshotKey sdl.Scancode

	pipeline *Pipeline
	grid     *renderer.GridScene
	markers  *renderer.MarkerRenderer
	mesh     *renderer.MeshRenderer
	preview  *sceneStage

	yaw, pitch float32
	running    bool

	log *zap.Logger
}

// New creates the window and GL context.
func New(cfg *config.Config) (*App, error) {
	a := &App{
		cfg: cfg,
		log: logger.Named("app"),
	}

	var err error
	a.toggleKey, err = input.ScancodeForName(cfg.Recording.ToggleKey)
	if err != nil {
		return nil, fmt.Errorf("recording toggle: %w", err)
	}
	a.snapshotKey, err = input.ScancodeForName(cfg.Recording.SnapshotKey)
	if err != nil {
		return nil, fmt.Errorf("snapshot key: %w", err)
	}

	switch cfg.Tracker.Source {
	case "fixed":
		a.source = gaze.FixedSource{Point: math.Vec2{X: cfg.Tracker.FixedX, Y: cfg.Tracker.FixedY}}
	default:
		a.mouse = gaze.NewMouseSource()
		a.source = a.mouse
	}

	a.window, err = window.New(window.Config{
		Title:      cfg.Window.Title,
		Width:      cfg.Window.Width,
		Height:     cfg.Window.Height,
		Fullscreen: cfg.Window.Fullscreen,
		VSync:      cfg.Window.VSync,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	// Renderer must come after the window, which owns the GL context
	w, h := a.window.GetDrawableSize()
	a.renderer, err = renderer.New(renderer.Config{Width: w, Height: h})
	if err != nil {
		a.window.Close()
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}

	a.input = input.New()
	a.overlay = window.NewOverlay(a.window, cfg.Window.Title)
	return a, nil
}

// Init builds the pipeline and allocates capture targets.
func (a *App) Init() error {
	var err error
	a.grid, err = renderer.NewGridScene(roomHalfExtent, gridSpacing)
	if err != nil {
		return fmt.Errorf("grid scene: %w", err)
	}
	a.markers, err = renderer.NewMarkerRenderer()
	if err != nil {
		return fmt.Errorf("marker renderer: %w", err)
	}

	a.pipeline, err = NewPipeline(a.cfg, Deps{
		Source:  a.source,
		Targets: glTargets{},
		Stages:  a.buildStages,
		Opener:  recorder.FFmpegOpener{},
		Overlay: a.overlay,
	})
	if err != nil {
		return err
	}

	_, h := a.renderer.Size()
	a.preview.pointScale = renderer.PerspectivePointScale(int32(h), a.pipeline.Camera().FieldOfView)

	a.pipeline.Init()
	a.updateOverlay(0)
	a.log.Info("initialized",
		zap.String("tracker", a.cfg.Tracker.Source),
		zap.String("toggle_key", a.cfg.Recording.ToggleKey))
	return nil
}

func (a *App) buildStages(mesh *sphere.Mesh, pool *heatmap.MarkerPool, ortho *camera.OrthoCamera) (compositor.Scene, compositor.Resolver, error) {
	var err error
	a.mesh, err = renderer.NewMeshRenderer(mesh, ortho.MeshToWorld())
	if err != nil {
		return nil, nil, err
	}

	scene := &sceneStage{
		grid:       a.grid,
		markers:    a.markers,
		pool:       pool,
		pointScale: cubePointScale(a.cfg.Capture.CubeSize),
	}
	a.preview = &sceneStage{grid: a.grid, markers: a.markers, pool: pool}
	resolver := &resolveStage{
		mesh:       a.mesh,
		markers:    a.markers,
		pool:       pool,
		pointScale: renderer.OrthoPointScale(a.cfg.Capture.Height, ortho.OrthographicSize),
	}
	return scene, resolver, nil
}

// Tick processes input, runs the pipeline and draws the preview. It returns
// false once the user asked to quit.
func (a *App) Tick(dt float64) bool {
	if a.input.Update() {
		return false
	}

	toggle := a.input.IsKeyReleased(a.toggleKey)
	for _, event := range a.input.Events() {
		switch event.Type {
		case input.EventWindowResize:
			a.resize()
		case input.EventKeyDown:
			if event.Key == sdl.SCANCODE_ESCAPE {
				return false
			}
		case input.EventMouseMove:
			if a.mouse != nil {
				w, h := a.window.GetSize()
				a.mouse.MoveTo(event.MouseX, event.MouseY, w, h)
			}
		case input.EventMouseLeave:
			if a.mouse != nil {
				a.mouse.Leave()
			}
		}
	}
	a.look(dt)

	if err := a.pipeline.Tick(dt, toggle); err != nil {
		a.log.Error("recording session failed", zap.Error(err))
	}
	if a.input.IsKeyReleased(a.snapshotKey) {
		if _, err := a.pipeline.Snapshot(time.Now()); err != nil {
			a.log.Warn("snapshot failed", zap.Error(err))
		}
	}

	a.render()
	a.window.SwapBuffers()
	return true
}

func (a *App) resize() {
	w, h := a.window.GetDrawableSize()
	a.renderer.Resize(w, h)
	a.pipeline.Camera().Aspect = float32(w) / float32(max(h, 1))
	a.preview.pointScale = renderer.PerspectivePointScale(int32(h), a.pipeline.Camera().FieldOfView)
}

// look turns the head with the arrow keys.
func (a *App) look(dt float64) {
	keys := sdl.GetKeyboardState()
	step := float32(lookSpeed * dt)
	if keys[sdl.SCANCODE_LEFT] != 0 {
		a.yaw += step
	}
	if keys[sdl.SCANCODE_RIGHT] != 0 {
		a.yaw -= step
	}
	if keys[sdl.SCANCODE_UP] != 0 {
		a.pitch = min(a.pitch+step, maxPitch)
	}
	if keys[sdl.SCANCODE_DOWN] != 0 {
		a.pitch = max(a.pitch-step, -maxPitch)
	}
	a.pipeline.Camera().Orientation = math.QuatFromYawPitch(a.yaw, a.pitch)
}

func (a *App) render() {
	a.renderer.Begin()
	a.preview.Draw(a.pipeline.Camera().ViewProj())

	if fb, ok := a.pipeline.Compositor().Equirect().(*framebuffer.Framebuffer); ok {
		w, h := fb.Size()
		a.renderer.Inset(fb.FBO(), w, h, insetWidth)
	}
}

func (a *App) updateOverlay(fps int) {
	acc := a.pipeline.Accumulator()
	text := fmt.Sprintf("%s: record | %s: snapshot | %s", a.cfg.Recording.ToggleKey, a.cfg.Recording.SnapshotKey, acc.Mode())
	switch acc.Mode() {
	case heatmap.ModeHighlight:
		text += fmt.Sprintf(" | %d points", acc.Points().Len())
	case heatmap.ModeParticle:
		text += fmt.Sprintf(" | %d markers", acc.Markers().Len())
	}
	if !a.pipeline.Compositor().Enabled() {
		text += " | capture disabled"
	}
	if fps > 0 {
		text += fmt.Sprintf(" | %d fps", fps)
	}
	a.overlay.SetText(text)
}

// Run drives Tick from the wall clock until the user quits.
func (a *App) Run() error {
	a.running = true

	lastTime := time.Now()
	frameCount := 0
	fpsTimer := time.Now()

	a.log.Info("starting main loop")

	for a.running {
		now := time.Now()
		dt := now.Sub(lastTime).Seconds()
		lastTime = now

		if !a.Tick(dt) {
			a.running = false
			break
		}

		frameCount++
		if time.Since(fpsTimer) >= time.Second {
			a.log.Debug("fps", zap.Int("count", frameCount), zap.String("dt", fmt.Sprintf("%.2fms", dt*1000)))
			a.updateOverlay(frameCount)
			frameCount = 0
			fpsTimer = time.Now()
		}
	}

	return nil
}

// Shutdown ends any recording and releases GPU and window resources.
func (a *App) Shutdown() {
	a.log.Info("shutting down")

	if a.pipeline != nil {
		if err := a.pipeline.Shutdown(); err != nil {
			a.log.Error("failed to finish recording", zap.Error(err))
		}
	}
	if a.mesh != nil {
		a.mesh.Destroy()
	}
	if a.markers != nil {
		a.markers.Destroy()
	}
	if a.grid != nil {
		a.grid.Destroy()
	}
	if a.renderer != nil {
		a.renderer.Close()
	}
	if a.window != nil {
		a.window.Close()
	}
}
