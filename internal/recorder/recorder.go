// Package recorder streams the equirectangular render target to an external
// encoder, one raw RGB24 frame per tick, and stores the capture time of each
// frame in a sidecar file.
package recorder

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/gazemap/internal/logger"
)

// ErrNotRecording is returned by Stop when no session is open.
var ErrNotRecording = errors.New("not recording")

// State is the recorder state.
type State int

const (
	StateStopped State = iota
	StateRecording
)

func (s State) String() string {
	if s == StateRecording {
		return "recording"
	}
	return "stopped"
}

// PixelSource is the render target frames are read from.
type PixelSource interface {
	Size() (width, height int32)
	// ReadRGB fills dst (resized as needed) with tightly packed RGB24
	// pixels, rows top to bottom, and returns it.
	ReadRGB(dst []byte) ([]byte, error)
}

// Overlay is on-screen information hidden while recording.
type Overlay interface {
	SetVisible(visible bool)
}

// Clock reports host time in seconds.
type Clock interface {
	Now() float64
}

// Options configures a Recorder.
type Options struct {
	Name       string
	OutputDir  string
	FrameRate  int
	Codec      Codec
	FFmpegPath string

	// WallClock names video files. Defaults to time.Now.
	WallClock func() time.Time
}

// Recorder owns at most one encoder session at a time.
type Recorder struct {
	opts    Options
	source  PixelSource
	opener  PipeOpener
	clock   Clock
	overlay Overlay

	state      State
	pipe       Pipe
	config     PipeConfig
	timestamps []float64
	frame      []byte

	diagnostics string

	log *zap.Logger
}

// New creates a stopped recorder.
func New(source PixelSource, opener PipeOpener, clock Clock, opts Options) *Recorder {
	if opts.WallClock == nil {
		opts.WallClock = time.Now
	}
	return &Recorder{
		opts:   opts,
		source: source,
		opener: opener,
		clock:  clock,
		log:    logger.Named("recorder"),
	}
}

// SetOverlay sets the overlay hidden during sessions.
func (r *Recorder) SetOverlay(o Overlay) {
	r.overlay = o
}

// State returns the current state.
func (r *Recorder) State() State {
	return r.state
}

// Recording reports whether a session is open.
func (r *Recorder) Recording() bool {
	return r.state == StateRecording
}

// VideoPath returns the output file of the current or last session.
func (r *Recorder) VideoPath() string {
	return r.config.OutputPath
}

// SidecarPath returns where timestamps are written.
func (r *Recorder) SidecarPath() string {
	return TimestampsPath(r.opts.OutputDir, r.opts.Name)
}

// Diagnostics returns the encoder output of the last closed session.
func (r *Recorder) Diagnostics() string {
	return r.diagnostics
}

// Timestamps returns a copy of the current session's timestamps.
func (r *Recorder) Timestamps() []float64 {
	return append([]float64(nil), r.timestamps...)
}

// Toggle starts a session when stopped and stops it when recording.
func (r *Recorder) Toggle() error {
	if r.state == StateRecording {
		return r.Stop()
	}
	return r.Start()
}

// VideoFileName returns "<name>_<yyyy_MMdd_HHmmss><ext>".
func VideoFileName(name string, codec Codec, at time.Time) string {
	return name + "_" + at.Format("2006_0102_150405") + codec.Extension()
}

// Start opens a new session. On failure the recorder stays stopped.
func (r *Recorder) Start() error {
	if r.state == StateRecording {
		return nil
	}

	width, height := r.source.Size()
	cfg := PipeConfig{
		FFmpegPath: r.opts.FFmpegPath,
		Width:      width,
		Height:     height,
		FrameRate:  r.opts.FrameRate,
		Codec:      r.opts.Codec,
		OutputPath: filepath.Join(r.opts.OutputDir, VideoFileName(r.opts.Name, r.opts.Codec, r.opts.WallClock())),
	}

	if err := os.MkdirAll(r.opts.OutputDir, 0o755); err != nil {
		r.log.Error("failed to create capture dir", zap.String("dir", r.opts.OutputDir), zap.Error(err))
		return fmt.Errorf("create capture dir: %w", err)
	}

	pipe, err := r.opener.Open(cfg)
	if err != nil {
		r.log.Error("failed to open encoder pipe", zap.String("file", cfg.OutputPath), zap.Error(err))
		return fmt.Errorf("open encoder pipe: %w", err)
	}

	r.pipe = pipe
	r.config = cfg
	r.timestamps = r.timestamps[:0]
	r.frame = make([]byte, int(width)*int(height)*3)
	r.diagnostics = ""
	r.state = StateRecording
	if r.overlay != nil {
		r.overlay.SetVisible(false)
	}

	r.log.Info("capture started",
		zap.String("file", cfg.OutputPath),
		zap.Int32("width", width),
		zap.Int32("height", height),
		zap.Int("fps", cfg.FrameRate),
		zap.String("codec", string(cfg.Codec)))
	return nil
}

// Tick captures one frame when recording. A read or write failure ends the
// session, keeping the timestamps of frames already written.
func (r *Recorder) Tick() error {
	if r.state != StateRecording {
		return nil
	}

	frame, err := r.source.ReadRGB(r.frame)
	if err != nil {
		return r.abort(fmt.Errorf("read frame %d: %w", len(r.timestamps), err))
	}
	r.frame = frame

	r.timestamps = append(r.timestamps, r.clock.Now())
	if err := r.pipe.Write(frame); err != nil {
		r.timestamps = r.timestamps[:len(r.timestamps)-1]
		return r.abort(fmt.Errorf("write frame %d: %w", len(r.timestamps), err))
	}
	return nil
}

func (r *Recorder) abort(cause error) error {
	r.log.Error("capture aborted", zap.Int("frames", len(r.timestamps)), zap.Error(cause))
	if err := r.finish(); err != nil {
		return errors.Join(cause, err)
	}
	return cause
}

// Stop ends the session, writing the timestamp sidecar and closing the pipe.
// Encoder diagnostics are logged as warnings and do not fail Stop.
func (r *Recorder) Stop() error {
	if r.state != StateRecording {
		return ErrNotRecording
	}
	return r.finish()
}

// Close stops any open session. It is safe to call when stopped.
func (r *Recorder) Close() error {
	if r.state != StateRecording {
		return nil
	}
	return r.finish()
}

func (r *Recorder) finish() error {
	r.log.Info("capture ended", zap.String("file", r.config.OutputPath), zap.Int("frames", len(r.timestamps)))

	sidecarErr := WriteTimestamps(r.SidecarPath(), r.timestamps)
	if sidecarErr != nil {
		r.log.Error("failed to write timestamps", zap.String("file", r.SidecarPath()), zap.Error(sidecarErr))
	}

	diagnostics, closeErr := r.pipe.Close()
	r.diagnostics = diagnostics
	if closeErr != nil || diagnostics != "" {
		r.log.Warn("encoder returned a warning or an error",
			zap.String("output", diagnostics),
			zap.Error(closeErr))
	}

	r.pipe = nil
	r.state = StateStopped
	if r.overlay != nil {
		r.overlay.SetVisible(true)
	}
	return sidecarErr
}
