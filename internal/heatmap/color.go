package heatmap

import (
	"fmt"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/Faultbox/gazemap/pkg/math"
)

// blendScale is the distance multiplier of the highlight blend before it is
// divided by the element size.
const blendScale = 20

var (
	black = colorful.Color{R: 0, G: 0, B: 0}
	white = colorful.Color{R: 1, G: 1, B: 1}
)

// ParseColor converts a "#rrggbb" string to an opaque RGBA colour.
func ParseColor(hex string) ([4]float32, error) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return [4]float32{}, fmt.Errorf("parse colour: %w", err)
	}
	return toRGBA(c), nil
}

// BlendVertex computes the highlight colour of one vertex. The running
// colour starts black and, for each point, is replaced by
// lerp(white, running, clamp01(20/size * distance)). A vertex on a point is
// white; anything beyond size/20 of every point keeps the running colour.
func BlendVertex(vertex math.Vec3, points []math.Vec3, elementSize float32) [4]float32 {
	c := black
	scale := float64(blendScale) / float64(elementSize)
	for _, p := range points {
		t := math.Clamp01(float32(scale * float64(vertex.Distance(p))))
		c = white.BlendRgb(c, float64(t))
	}
	return toRGBA(c)
}

func toRGBA(c colorful.Color) [4]float32 {
	c = c.Clamped()
	return [4]float32{float32(c.R), float32(c.G), float32(c.B), 1}
}
