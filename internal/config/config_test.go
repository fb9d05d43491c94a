package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Heatmap.Mode != "highlight" {
		t.Errorf("expected mode highlight, got %s", cfg.Heatmap.Mode)
	}
	if cfg.Heatmap.ElementSize != 1 {
		t.Errorf("expected element size 1, got %f", cfg.Heatmap.ElementSize)
	}
	if cfg.Heatmap.RemoveAfter != 10 {
		t.Errorf("expected remove_after 10, got %f", cfg.Heatmap.RemoveAfter)
	}
	if cfg.Surface.GridHeight != 64 || cfg.Surface.GridWidth != 128 {
		t.Errorf("expected 64x128 grid, got %dx%d", cfg.Surface.GridHeight, cfg.Surface.GridWidth)
	}
	if cfg.Capture.CubeSize != 2048 {
		t.Errorf("expected cube size 2048, got %d", cfg.Capture.CubeSize)
	}
	if cfg.Capture.Width != 2048 || cfg.Capture.Height != 1024 {
		t.Errorf("expected 2048x1024 capture, got %dx%d", cfg.Capture.Width, cfg.Capture.Height)
	}
	if cfg.Recording.FrameRate != 30 {
		t.Errorf("expected frame rate 30, got %d", cfg.Recording.FrameRate)
	}
	if cfg.Recording.ToggleKey != "H" {
		t.Errorf("expected toggle key H, got %s", cfg.Recording.ToggleKey)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should be valid: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown mode", func(c *Config) { c.Heatmap.Mode = "splat" }},
		{"element size too small", func(c *Config) { c.Heatmap.ElementSize = 0.1 }},
		{"element size too large", func(c *Config) { c.Heatmap.ElementSize = 1.5 }},
		{"grid too small", func(c *Config) { c.Surface.GridWidth = 1 }},
		{"zero radius", func(c *Config) { c.Surface.SphereRadius = 0 }},
		{"zero frame rate", func(c *Config) { c.Recording.FrameRate = 0 }},
		{"unknown codec", func(c *Config) { c.Recording.Codec = "gif" }},
		{"empty name", func(c *Config) { c.Recording.Name = "" }},
		{"unknown tracker", func(c *Config) { c.Tracker.Source = "serial" }},
		{"zero cube", func(c *Config) { c.Capture.CubeSize = 0 }},
		{"unknown log level", func(c *Config) { c.Logging.Level = "verbose" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error, got nil")
			}
			if !errors.Is(err, ErrInvalid) {
				t.Errorf("expected ErrInvalid, got %v", err)
			}
		})
	}
}

func TestValidateNegativeRemoveAfter(t *testing.T) {
	cfg := Default()
	cfg.Heatmap.RemoveAfter = -1
	if err := cfg.Validate(); err != nil {
		t.Errorf("non-positive remove_after means never expire, got %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
heatmap:
  mode: particle
  element_size: 0.5
  remove_after: 3.5
  marker_color: "#00ff00"
  markers_on_headset: true

surface:
  grid_height: 32
  grid_width: 64

recording:
  name: "Session"
  output_dir: "/tmp/captures"
  frame_rate: 60
  codec: prores

logging:
  level: "debug"
  log_file: "gazemap.log"
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Heatmap.Mode != "particle" {
		t.Errorf("expected mode particle, got %s", cfg.Heatmap.Mode)
	}
	if cfg.Heatmap.ElementSize != 0.5 {
		t.Errorf("expected element size 0.5, got %f", cfg.Heatmap.ElementSize)
	}
	if cfg.Heatmap.RemoveAfter != 3.5 {
		t.Errorf("expected remove_after 3.5, got %f", cfg.Heatmap.RemoveAfter)
	}
	if !cfg.Heatmap.MarkersOnHeadset {
		t.Error("expected markers_on_headset to be true")
	}
	if cfg.Surface.GridHeight != 32 || cfg.Surface.GridWidth != 64 {
		t.Errorf("expected 32x64 grid, got %dx%d", cfg.Surface.GridHeight, cfg.Surface.GridWidth)
	}
	// Untouched keys keep their defaults
	if cfg.Surface.SphereRadius != 0.5 {
		t.Errorf("expected default sphere radius, got %f", cfg.Surface.SphereRadius)
	}
	if cfg.Recording.Codec != "prores" {
		t.Errorf("expected codec prores, got %s", cfg.Recording.Codec)
	}
	if cfg.Recording.FrameRate != 60 {
		t.Errorf("expected frame rate 60, got %d", cfg.Recording.FrameRate)
	}
	if cfg.Logging.LogFile != "gazemap.log" {
		t.Errorf("expected log file 'gazemap.log', got %s", cfg.Logging.LogFile)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.yaml")

	invalidYAML := `
surface:
  grid_height: not a number
  invalid syntax here
`

	if err := os.WriteFile(configPath, []byte(invalidYAML), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err == nil {
		t.Error("expected error loading invalid YAML, got nil")
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := Default()
	if err := loadFromFile(cfg, "/nonexistent/path/config.yaml"); err == nil {
		t.Error("expected error loading missing file, got nil")
	}
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()
	if dir == "" {
		t.Error("ConfigDir returned empty string")
	}
	if !filepath.IsAbs(dir) {
		t.Errorf("ConfigDir should return absolute path, got %s", dir)
	}
}

func TestSaveToRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := Default()
	cfg.Heatmap.Mode = "particle"
	cfg.Recording.FrameRate = 24
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo failed: %v", err)
	}

	loaded := Default()
	if err := loadFromFile(loaded, path); err != nil {
		t.Fatalf("failed to reload: %v", err)
	}
	if loaded.Heatmap.Mode != "particle" || loaded.Recording.FrameRate != 24 {
		t.Errorf("saved values not restored: %+v", loaded.Heatmap)
	}
}

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name     string
		setup    func()
		verify   func(*testing.T, *Config)
		teardown func()
	}{
		{
			name:  "debug flag",
			setup: func() { *flagDebug = true },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
				}
			},
			teardown: func() { *flagDebug = false },
		},
		{
			name:  "mode flag",
			setup: func() { *flagMode = "particle" },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Heatmap.Mode != "particle" {
					t.Errorf("expected mode particle, got %s", cfg.Heatmap.Mode)
				}
			},
			teardown: func() { *flagMode = "" },
		},
		{
			name: "recording flags",
			setup: func() {
				*flagCodec = "vp8"
				*flagRecordDir = "/data/rec"
			},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Recording.Codec != "vp8" {
					t.Errorf("expected codec vp8, got %s", cfg.Recording.Codec)
				}
				if cfg.Recording.OutputDir != "/data/rec" {
					t.Errorf("expected output dir /data/rec, got %s", cfg.Recording.OutputDir)
				}
			},
			teardown: func() {
				*flagCodec = ""
				*flagRecordDir = ""
			},
		},
		{
			name: "width and height flags",
			setup: func() {
				*flagWidth = 2560
				*flagHeight = 1280
			},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Window.Width != 2560 || cfg.Window.Height != 1280 {
					t.Errorf("expected 2560x1280, got %dx%d", cfg.Window.Width, cfg.Window.Height)
				}
			},
			teardown: func() {
				*flagWidth = 0
				*flagHeight = 0
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()
			defer tt.teardown()

			cfg := Default()
			applyFlags(cfg)
			tt.verify(t, cfg)
		})
	}
}

func TestLoadPriority(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
heatmap:
  mode: particle
recording:
  codec: prores
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	*flagConfig = configPath
	*flagCodec = "vp8"
	defer func() {
		*flagConfig = ""
		*flagCodec = ""
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	// Codec from flag, not file
	if cfg.Recording.Codec != "vp8" {
		t.Errorf("expected codec vp8 from flag, got %s", cfg.Recording.Codec)
	}
	// Mode from file since no flag override
	if cfg.Heatmap.Mode != "particle" {
		t.Errorf("expected mode particle from file, got %s", cfg.Heatmap.Mode)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte("heatmap:\n  element_size: 4\n"), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	*flagConfig = configPath
	defer func() { *flagConfig = "" }()

	if _, err := Load(); !errors.Is(err, ErrInvalid) {
		t.Errorf("expected ErrInvalid, got %v", err)
	}
}

func TestLoadFromFileUnknownKey(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "typo.yaml")
	if err := os.WriteFile(configPath, []byte("heatmap:\n  remove_afer: 3\n"), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	if err := loadFromFile(Default(), configPath); err == nil {
		t.Error("expected error for misspelt key")
	}
}

func TestLoadFromFileEmpty(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "empty.yaml")
	if err := os.WriteFile(configPath, nil, 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("empty file should load: %v", err)
	}
	if cfg.Heatmap.Mode != "highlight" {
		t.Errorf("expected defaults kept, got mode %s", cfg.Heatmap.Mode)
	}
}

func TestLoadFromEnv(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "env.yaml")
	if err := os.WriteFile(configPath, []byte("recording:\n  name: FromEnv\n"), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	t.Setenv(EnvConfigPath, configPath)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Recording.Name != "FromEnv" {
		t.Errorf("expected name from env config, got %s", cfg.Recording.Name)
	}
}

func TestSaveToWritesHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	if err := Default().SaveTo(path); err != nil {
		t.Fatalf("SaveTo failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "#") {
		t.Errorf("saved config has no header: %q", data[:min(len(data), 40)])
	}
	if !strings.Contains(string(data), "snapshot_key: P") {
		t.Error("saved config missing snapshot_key")
	}
}
