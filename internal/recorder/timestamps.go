package recorder

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
)

// TimestampsSuffix completes the sidecar file name after the session name.
const TimestampsSuffix = "_Timestamps.time"

// TimestampsPath returns the sidecar path for a session name.
func TimestampsPath(dir, name string) string {
	return filepath.Join(dir, name+TimestampsSuffix)
}

// WriteTimestamps stores timestamps as consecutive little-endian float64
// values with no header.
func WriteTimestamps(path string, timestamps []float64) error {
	var buf bytes.Buffer
	if err := binary.Write(&buf, binary.LittleEndian, timestamps); err != nil {
		return fmt.Errorf("encode timestamps: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create timestamp dir: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write timestamps: %w", err)
	}
	return nil
}

// ReadTimestamps loads a sidecar written by WriteTimestamps.
func ReadTimestamps(path string) ([]float64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read timestamps: %w", err)
	}
	if len(data)%8 != 0 {
		return nil, fmt.Errorf("timestamp file %s: size %d is not a multiple of 8", path, len(data))
	}

	out := make([]float64, len(data)/8)
	if err := binary.Read(bytes.NewReader(data), binary.LittleEndian, out); err != nil {
		return nil, fmt.Errorf("decode timestamps: %w", err)
	}
	return out, nil
}
