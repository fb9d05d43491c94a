package sphere

import (
	gomath "math"
	"testing"

	"github.com/Faultbox/gazemap/pkg/math"
)

var unitProjection = Projection{Aspect: 1, OrthographicSize: 0.5}

func approx(a, b float32) bool {
	return gomath.Abs(float64(a-b)) < 1e-5
}

func TestGenerateCounts(t *testing.T) {
	sizes := [][2]int{{2, 2}, {3, 5}, {4, 4}, {DefaultRows, DefaultCols}}
	for _, s := range sizes {
		rows, cols := s[0], s[1]
		mesh := Generate(rows, cols, Projection{Aspect: 2, OrthographicSize: 0.5})

		if got := len(mesh.Vertices); got != rows*cols {
			t.Errorf("%dx%d: got %d vertices, want %d", rows, cols, got, rows*cols)
		}
		if got, want := len(mesh.Indices), 6*(rows-1)*(cols-1); got != want {
			t.Errorf("%dx%d: got %d indices, want %d", rows, cols, got, want)
		}
		for _, idx := range mesh.Indices {
			if int(idx) >= len(mesh.Vertices) {
				t.Fatalf("%dx%d: index %d out of range", rows, cols, idx)
			}
		}
	}
}

func TestGenerateUVLayout(t *testing.T) {
	rows, cols := 4, 5
	mesh := Generate(rows, cols, unitProjection)

	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			uv := mesh.Vertices[j+i*cols].UV
			wantU := 1 - float32(j)/float32(cols-1)
			wantV := 1 - float32(i)/float32(rows-1)
			if !approx(uv[0], wantU) || !approx(uv[1], wantV) {
				t.Errorf("vertex (%d,%d): uv %v, want (%v,%v)", i, j, uv, wantU, wantV)
			}
		}
	}

	// UV (1,1) and (0,0) sit on opposite grid corners
	first := mesh.Vertices[0].UV
	last := mesh.Vertices[rows*cols-1].UV
	if first != [2]float32{1, 1} {
		t.Errorf("corner (0,0) uv = %v, want (1,1)", first)
	}
	if last != [2]float32{0, 0} {
		t.Errorf("corner (rows-1,cols-1) uv = %v, want (0,0)", last)
	}
}

func TestGenerateColorsAndNormals(t *testing.T) {
	mesh := Generate(3, 3, unitProjection)
	for i, v := range mesh.Vertices {
		if v.Color != White {
			t.Errorf("vertex %d: color %v, want white", i, v.Color)
		}
		if v.Normal != [3]float32{0, 0, -1} {
			t.Errorf("vertex %d: normal %v, want (0,0,-1)", i, v.Normal)
		}
	}
}

func TestPositionForUV(t *testing.T) {
	proj := Projection{Aspect: 2, OrthographicSize: 0.5}
	tests := []struct {
		uv   math.Vec2
		want math.Vec3
	}{
		{math.Vec2{X: 0.5, Y: 0.5}, math.Vec3{}},
		{math.Vec2{X: 0, Y: 0}, math.Vec3{X: -1, Y: -0.5}},
		{math.Vec2{X: 1, Y: 1}, math.Vec3{X: 1, Y: 0.5}},
		{math.Vec2{X: 0.75, Y: 0.25}, math.Vec3{X: 0.5, Y: -0.25}},
	}
	for _, tt := range tests {
		if got := proj.PositionForUV(tt.uv); got != tt.want {
			t.Errorf("PositionForUV(%v) = %v, want %v", tt.uv, got, tt.want)
		}
	}
}

func TestPositionForUVBijective(t *testing.T) {
	proj := Projection{Aspect: 2, OrthographicSize: 0.5}
	seen := make(map[math.Vec3]math.Vec2)

	for i := 0; i <= 16; i++ {
		for j := 0; j <= 16; j++ {
			uv := math.Vec2{X: float32(j) / 16, Y: float32(i) / 16}
			pos := proj.PositionForUV(uv)
			if prev, ok := seen[pos]; ok {
				t.Fatalf("uv %v and %v map to the same position %v", prev, uv, pos)
			}
			seen[pos] = uv

			back := proj.UVForPosition(pos)
			if !approx(back.X, uv.X) || !approx(back.Y, uv.Y) {
				t.Errorf("UVForPosition(PositionForUV(%v)) = %v", uv, back)
			}
		}
	}
}

func TestSetColorsBumpsVersion(t *testing.T) {
	mesh := Generate(2, 2, unitProjection)
	before := mesh.ColorVersion()

	colors := mesh.Colors()
	colors[0] = [4]float32{0, 0, 0, 1}
	mesh.SetColors(colors)

	if mesh.ColorVersion() == before {
		t.Error("SetColors should change ColorVersion")
	}
	if mesh.Vertices[0].Color != colors[0] {
		t.Errorf("vertex 0 color = %v, want %v", mesh.Vertices[0].Color, colors[0])
	}
	if mesh.Vertices[1].Color != White {
		t.Error("Colors should return a copy")
	}
}

func TestDirectionForUV(t *testing.T) {
	tests := []struct {
		name string
		uv   math.Vec2
		want math.Vec3
	}{
		{"forward", math.Vec2{X: 0.5, Y: 0.5}, math.Vec3{Z: -1}},
		{"left", math.Vec2{X: 0.75, Y: 0.5}, math.Vec3{X: -1}},
		{"right", math.Vec2{X: 0.25, Y: 0.5}, math.Vec3{X: 1}},
		{"north", math.Vec2{X: 0.5, Y: 0}, math.Vec3{Y: 1}},
		{"south", math.Vec2{X: 0.5, Y: 1}, math.Vec3{Y: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DirectionForUV(tt.uv)
			if !approx(got.X, tt.want.X) || !approx(got.Y, tt.want.Y) || !approx(got.Z, tt.want.Z) {
				t.Errorf("DirectionForUV(%v) = %v, want %v", tt.uv, got, tt.want)
			}
		})
	}
}

func TestBuildUVSphereFacesOutward(t *testing.T) {
	mesh := BuildUVSphere(8, 16, 0.5)
	if got, want := len(mesh.Vertices), 9*17; got != want {
		t.Errorf("got %d vertices, want %d", got, want)
	}
	if got, want := mesh.TriangleCount(), 2*8*16; got != want {
		t.Errorf("got %d triangles, want %d", got, want)
	}
	for i, v := range mesh.Vertices {
		l := math.Vec3FromArray(v.Position).Length()
		if !approx(l, 0.5) {
			t.Fatalf("vertex %d at distance %v, want 0.5", i, l)
		}
	}
	if CorrectWinding(mesh, math.Vec3{}, false) {
		t.Error("stock sphere should already face outward")
	}
}

func TestCollisionSphereFacesInward(t *testing.T) {
	mesh := NewCollisionSphere(8, 16, 0.5)

	for t0 := 0; t0+2 < len(mesh.Indices); t0 += 3 {
		n := faceNormal(mesh, mesh.Indices[t0], mesh.Indices[t0+1], mesh.Indices[t0+2])
		if n.Length() < 1e-9 {
			continue
		}
		p := math.Vec3FromArray(mesh.Vertices[mesh.Indices[t0]].Position)
		if n.Dot(p) > 0 {
			t.Fatalf("triangle %d faces outward", t0/3)
		}
	}

	if CorrectWinding(mesh, math.Vec3{}, true) {
		t.Error("correction should only happen once")
	}
}
