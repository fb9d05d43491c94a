package config

import "flag"

var (
	flagConfig    = flag.String("config", "", "Path to config file")
	flagDebug     = flag.Bool("debug", false, "Enable debug logging")
	flagMode      = flag.String("mode", "", "Heatmap mode: particle or highlight")
	flagCodec     = flag.String("codec", "", "Recording codec: h264, prores or vp8")
	flagRecordDir = flag.String("record-dir", "", "Directory for recordings and timestamp files")
	flagWidth     = flag.Int("width", 0, "Window width")
	flagHeight    = flag.Int("height", 0, "Window height")
	flagSave      = flag.Bool("save-config", false, "Write the effective config to the user config dir and exit")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// SaveRequested reports whether --save-config was given.
func SaveRequested() bool {
	return *flagSave
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagMode != "" {
		cfg.Heatmap.Mode = *flagMode
	}
	if *flagCodec != "" {
		cfg.Recording.Codec = *flagCodec
	}
	if *flagRecordDir != "" {
		cfg.Recording.OutputDir = *flagRecordDir
	}
	if *flagWidth > 0 {
		cfg.Window.Width = *flagWidth
	}
	if *flagHeight > 0 {
		cfg.Window.Height = *flagHeight
	}
}
