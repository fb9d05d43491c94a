// Package config handles gaze heatmap configuration loading and management.
package config

import (
	"errors"
	"fmt"
)

// ErrInvalid is returned by Validate for out-of-range settings.
var ErrInvalid = errors.New("invalid config")

// Config holds all settings. It is read once at startup and never
// hot-reloaded; recording dimensions in particular stay fixed for a session.
type Config struct {
	Heatmap   HeatmapConfig   `yaml:"heatmap"`
	Surface   SurfaceConfig   `yaml:"surface"`
	Capture   CaptureConfig   `yaml:"capture"`
	Recording RecordingConfig `yaml:"recording"`
	Tracker   TrackerConfig   `yaml:"tracker"`
	Window    WindowConfig    `yaml:"window"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// HeatmapConfig holds accumulation settings.
type HeatmapConfig struct {
	Mode             string  `yaml:"mode"`               // "particle" or "highlight"
	ElementSize      float32 `yaml:"element_size"`       // 0.125 - 1.0
	RemoveAfter      float64 `yaml:"remove_after"`       // Seconds; <= 0 keeps highlight points forever
	MarkerColor      string  `yaml:"marker_color"`       // Hex, e.g. "#ff3300"
	MarkersOnHeadset bool    `yaml:"markers_on_headset"` // Mirror markers into the user's view
}

// SurfaceConfig holds mesh and collision sphere settings.
type SurfaceConfig struct {
	GridHeight     int     `yaml:"grid_height"`
	GridWidth      int     `yaml:"grid_width"`
	SphereRadius   float32 `yaml:"sphere_radius"`
	ColliderStacks int     `yaml:"collider_stacks"`
	ColliderSlices int     `yaml:"collider_slices"`
}

// CaptureConfig holds off-screen render target settings.
type CaptureConfig struct {
	CubeSize         int32   `yaml:"cube_size"`
	Width            int32   `yaml:"width"`
	Height           int32   `yaml:"height"`
	OrthographicSize float32 `yaml:"orthographic_size"`
}

// RecordingConfig holds encoder pipe settings.
type RecordingConfig struct {
	Name        string `yaml:"name"`
	OutputDir   string `yaml:"output_dir"`
	FrameRate   int    `yaml:"frame_rate"`
	Codec       string `yaml:"codec"` // "h264", "prores" or "vp8"
	FFmpegPath  string `yaml:"ffmpeg_path"`
	ToggleKey   string `yaml:"toggle_key"`
	SnapshotKey string `yaml:"snapshot_key"`
}

// TrackerConfig holds gaze source settings.
type TrackerConfig struct {
	Source      string  `yaml:"source"` // "mouse" or "fixed"
	FixedX      float32 `yaml:"fixed_x"`
	FixedY      float32 `yaml:"fixed_y"`
	FieldOfView float32 `yaml:"field_of_view"` // Degrees
}

// WindowConfig holds preview window settings.
type WindowConfig struct {
	Title      string `yaml:"title"`
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	Fullscreen bool   `yaml:"fullscreen"`
	VSync      bool   `yaml:"vsync"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level      string `yaml:"level"`
	LogFile    string `yaml:"log_file"` // Empty disables file output
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

// Default returns a Config with the reference scene's values.
func Default() *Config {
	return &Config{
		Heatmap: HeatmapConfig{
			Mode:             "highlight",
			ElementSize:      1,
			RemoveAfter:      10,
			MarkerColor:      "#ff3300",
			MarkersOnHeadset: false,
		},
		Surface: SurfaceConfig{
			GridHeight:     64,
			GridWidth:      128,
			SphereRadius:   0.5,
			ColliderStacks: 32,
			ColliderSlices: 64,
		},
		Capture: CaptureConfig{
			CubeSize:         2048,
			Width:            2048,
			Height:           1024,
			OrthographicSize: 0.5,
		},
		Recording: RecordingConfig{
			Name:        "Heatmap",
			OutputDir:   "Capture",
			FrameRate:   30,
			Codec:       "h264",
			FFmpegPath:  "ffmpeg",
			ToggleKey:   "H",
			SnapshotKey: "P",
		},
		Tracker: TrackerConfig{
			Source:      "mouse",
			FixedX:      0.5,
			FixedY:      0.5,
			FieldOfView: 90,
		},
		Window: WindowConfig{
			Title:  "Gaze Heatmap",
			Width:  1280,
			Height: 640,
			VSync:  true,
		},
		Logging: LoggingConfig{
			Level:      "info",
			MaxSizeMB:  20,
			MaxBackups: 5,
			MaxAgeDays: 14,
			Compress:   true,
		},
	}
}

// Validate reports every out-of-range setting, wrapped in ErrInvalid.
func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	check(c.Heatmap.Mode == "particle" || c.Heatmap.Mode == "highlight",
		"heatmap.mode %q: want particle or highlight", c.Heatmap.Mode)
	check(c.Heatmap.ElementSize >= 0.125 && c.Heatmap.ElementSize <= 1,
		"heatmap.element_size %v: want 0.125 - 1.0", c.Heatmap.ElementSize)
	check(c.Surface.GridHeight >= 2 && c.Surface.GridWidth >= 2,
		"surface grid %dx%d: want at least 2x2", c.Surface.GridHeight, c.Surface.GridWidth)
	check(c.Surface.SphereRadius > 0, "surface.sphere_radius %v: want > 0", c.Surface.SphereRadius)
	check(c.Surface.ColliderStacks >= 2 && c.Surface.ColliderSlices >= 3,
		"surface collider %dx%d: want at least 2x3", c.Surface.ColliderStacks, c.Surface.ColliderSlices)
	check(c.Capture.CubeSize > 0 && c.Capture.Width > 0 && c.Capture.Height > 0,
		"capture targets must have positive sizes")
	check(c.Capture.OrthographicSize > 0, "capture.orthographic_size %v: want > 0", c.Capture.OrthographicSize)
	check(c.Recording.FrameRate > 0, "recording.frame_rate %d: want > 0", c.Recording.FrameRate)
	check(c.Recording.Codec == "h264" || c.Recording.Codec == "prores" || c.Recording.Codec == "vp8",
		"recording.codec %q: want h264, prores or vp8", c.Recording.Codec)
	check(c.Recording.Name != "", "recording.name must not be empty")
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		check(false, "logging.level %q: want debug, info, warn or error", c.Logging.Level)
	}
	check(c.Tracker.Source == "mouse" || c.Tracker.Source == "fixed",
		"tracker.source %q: want mouse or fixed", c.Tracker.Source)

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
}
