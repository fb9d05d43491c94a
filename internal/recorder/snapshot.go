package recorder

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"time"
)

// SnapshotFileName returns "<name>_<yyyy_MMdd_HHmmss>.png".
func SnapshotFileName(name string, at time.Time) string {
	return name + "_" + at.Format("2006_0102_150405") + ".png"
}

// SaveSnapshot reads one frame from source and writes it as a PNG in dir.
// It works whether or not a recording session is open.
func SaveSnapshot(source PixelSource, dir, name string, at time.Time) (string, error) {
	width, height := source.Size()
	if width <= 0 || height <= 0 {
		return "", fmt.Errorf("snapshot: empty source %dx%d", width, height)
	}

	pixels, err := source.ReadRGB(nil)
	if err != nil {
		return "", fmt.Errorf("snapshot: %w", err)
	}
	img, err := rgbToImage(pixels, int(width), int(height))
	if err != nil {
		return "", fmt.Errorf("snapshot: %w", err)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating output dir: %w", err)
	}
	path := filepath.Join(dir, SnapshotFileName(name, at))

	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating file: %w", err)
	}
	defer file.Close()

	if err := png.Encode(file, img); err != nil {
		return "", fmt.Errorf("encoding PNG: %w", err)
	}
	return path, nil
}

// rgbToImage expands top-to-bottom RGB24 rows into an opaque RGBA image.
func rgbToImage(pixels []byte, width, height int) (*image.RGBA, error) {
	if len(pixels) != width*height*3 {
		return nil, fmt.Errorf("pixel data size mismatch: expected %d, got %d", width*height*3, len(pixels))
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		src := pixels[y*width*3 : (y+1)*width*3]
		dst := img.Pix[y*img.Stride : y*img.Stride+width*4]
		for x := 0; x < width; x++ {
			dst[x*4+0] = src[x*3+0]
			dst[x*4+1] = src[x*3+1]
			dst[x*4+2] = src[x*3+2]
			dst[x*4+3] = 0xff
		}
	}
	return img, nil
}
