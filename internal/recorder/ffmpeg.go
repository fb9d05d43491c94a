package recorder

import (
	"bytes"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"
)

// Codec identifies an encoder preset.
type Codec string

const (
	CodecH264   Codec = "h264"
	CodecProRes Codec = "prores"
	CodecVP8    Codec = "vp8"
)

// ParseCodec validates a config codec name.
func ParseCodec(s string) (Codec, error) {
	switch c := Codec(strings.ToLower(strings.TrimSpace(s))); c {
	case CodecH264, CodecProRes, CodecVP8:
		return c, nil
	}
	return "", fmt.Errorf("unknown codec %q", s)
}

// Extension returns the container extension for the codec.
func (c Codec) Extension() string {
	switch c {
	case CodecProRes:
		return ".mov"
	case CodecVP8:
		return ".webm"
	default:
		return ".mp4"
	}
}

func (c Codec) options() []string {
	switch c {
	case CodecProRes:
		return []string{"-c:v", "prores_ks", "-pix_fmt", "yuv422p10le"}
	case CodecVP8:
		return []string{"-c:v", "libvpx", "-pix_fmt", "yuv420p"}
	default:
		return []string{"-pix_fmt", "yuv420p"}
	}
}

// PipeConfig describes one encoder session. It does not change while the
// session is open.
type PipeConfig struct {
	FFmpegPath string
	Width      int32
	Height     int32
	FrameRate  int
	Codec      Codec
	OutputPath string
}

// Args returns the encoder command line, reading raw RGB24 frames from
// standard input.
func (c PipeConfig) Args() []string {
	args := []string{
		"-y",
		"-f", "rawvideo",
		"-vcodec", "rawvideo",
		"-pixel_format", "rgb24",
		"-video_size", fmt.Sprintf("%dx%d", c.Width, c.Height),
		"-framerate", strconv.Itoa(c.FrameRate),
		"-loglevel", "warning",
		"-i", "-",
	}
	args = append(args, c.Codec.options()...)
	return append(args, c.OutputPath)
}

// Pipe is a byte sink consuming one full frame per Write.
type Pipe interface {
	Write(frame []byte) error
	// Close ends the stream and waits for the consumer. Diagnostics holds
	// any text the consumer printed; it is informational even when err is nil.
	Close() (diagnostics string, err error)
}

// PipeOpener starts a Pipe for a session.
type PipeOpener interface {
	Open(cfg PipeConfig) (Pipe, error)
}

// FFmpegOpener launches ffmpeg processes.
type FFmpegOpener struct{}

// Open starts ffmpeg with its stdin connected to the returned pipe.
func (FFmpegOpener) Open(cfg PipeConfig) (Pipe, error) {
	path := cfg.FFmpegPath
	if path == "" {
		path = "ffmpeg"
	}
	bin, err := exec.LookPath(path)
	if err != nil {
		return nil, fmt.Errorf("find encoder: %w", err)
	}

	cmd := exec.Command(bin, cfg.Args()...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("encoder stdin: %w", err)
	}
	p := &FFmpegPipe{cmd: cmd, stdin: stdin}
	cmd.Stdout = &p.output
	cmd.Stderr = &p.output

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start encoder: %w", err)
	}
	return p, nil
}

// FFmpegPipe writes frames to a running ffmpeg process.
type FFmpegPipe struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	output bytes.Buffer
}

// Write sends one frame.
func (p *FFmpegPipe) Write(frame []byte) error {
	if _, err := p.stdin.Write(frame); err != nil {
		return fmt.Errorf("write to encoder: %w", err)
	}
	return nil
}

// Close ends the input stream and waits for ffmpeg to exit.
func (p *FFmpegPipe) Close() (string, error) {
	closeErr := p.stdin.Close()
	waitErr := p.cmd.Wait()
	diagnostics := strings.TrimSpace(p.output.String())

	if waitErr != nil {
		return diagnostics, fmt.Errorf("encoder exited: %w", waitErr)
	}
	if closeErr != nil {
		return diagnostics, fmt.Errorf("close encoder input: %w", closeErr)
	}
	return diagnostics, nil
}
