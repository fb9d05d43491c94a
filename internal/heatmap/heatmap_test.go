package heatmap

import (
	gomath "math"
	"testing"

	"github.com/Faultbox/gazemap/internal/engine/camera"
	"github.com/Faultbox/gazemap/internal/engine/picking"
	"github.com/Faultbox/gazemap/internal/engine/sphere"
	"github.com/Faultbox/gazemap/internal/gaze"
	"github.com/Faultbox/gazemap/pkg/math"
)

var unitProjection = sphere.Projection{Aspect: 1, OrthographicSize: 0.5}

func near(a, b float32) bool {
	return gomath.Abs(float64(a-b)) < 1e-4
}

func nearColor(a, b [4]float32) bool {
	for i := range a {
		if !near(a[i], b[i]) {
			return false
		}
	}
	return true
}

func newHighlight(t *testing.T, mesh *sphere.Mesh, removeAfter float64) *Accumulator {
	t.Helper()
	acc, err := New(mesh, Options{
		Mode:        ModeHighlight,
		ElementSize: 1,
		RemoveAfter: removeAfter,
		MarkerColor: "#ff3300",
		Projection:  unitProjection,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return acc
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"particle", ModeParticle, false},
		{"Highlight", ModeHighlight, false},
		{"", ModeIdle, false},
		{"heat", ModeIdle, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMode(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseMode(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseMode(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseColor(t *testing.T) {
	got, err := ParseColor("#ff0000")
	if err != nil {
		t.Fatalf("ParseColor() error = %v", err)
	}
	if !nearColor(got, [4]float32{1, 0, 0, 1}) {
		t.Errorf("ParseColor() = %v", got)
	}
	if _, err := ParseColor("red"); err == nil {
		t.Error("expected error for non-hex colour")
	}
}

func TestBlendVertex(t *testing.T) {
	white := [4]float32{1, 1, 1, 1}
	black := [4]float32{0, 0, 0, 1}
	origin := math.Vec3{}

	tests := []struct {
		name   string
		vertex math.Vec3
		points []math.Vec3
		size   float32
		want   [4]float32
	}{
		{"no points", origin, nil, 1, black},
		{"on the point", origin, []math.Vec3{origin}, 1, white},
		{"far saturates", math.Vec3{X: 0.5, Y: 0.5}, []math.Vec3{origin}, 1, black},
		{"halfway", math.Vec3{X: 0.025}, []math.Vec3{origin}, 1, [4]float32{0.5, 0.5, 0.5, 1}},
		{"small element stays tight", math.Vec3{X: 0.025}, []math.Vec3{origin}, 0.125, black},
		{"later near point wins", math.Vec3{X: 0.5}, []math.Vec3{origin, {X: 0.5}}, 1, white},
		{"later far point keeps running colour", origin, []math.Vec3{origin, {X: 0.5}}, 1, white},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BlendVertex(tt.vertex, tt.points, tt.size)
			if !nearColor(got, tt.want) {
				t.Errorf("BlendVertex() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHighlightCentreScenario(t *testing.T) {
	mesh := sphere.Generate(5, 5, unitProjection)
	acc := newHighlight(t, mesh, 10)

	acc.AddHit(gaze.Hit{UV: math.Vec2{X: 0.5, Y: 0.5}}, 0)
	if !acc.Tick(0) {
		t.Fatal("Tick() should recolour after a new hit")
	}

	centre := mesh.Vertices[2+2*5].Color
	if !nearColor(centre, sphere.White) {
		t.Errorf("centre colour = %v, want white", centre)
	}
	corner := mesh.Vertices[0].Color
	if !nearColor(corner, [4]float32{0, 0, 0, 1}) {
		t.Errorf("corner colour = %v, want the saturated endpoint (black)", corner)
	}
}

func TestHighlightFourByFour(t *testing.T) {
	mesh := sphere.Generate(4, 4, unitProjection)
	acc := newHighlight(t, mesh, 10)

	// An even grid has no vertex at UV (0.5, 0.5), so aim at vertex (1, 1)
	target := 1 + 1*4
	uv := mesh.Vertices[target].UV
	acc.AddHit(gaze.Hit{UV: math.Vec2{X: uv[0], Y: uv[1]}}, 0)
	acc.Tick(0)

	if got := mesh.Vertices[target].Color; !nearColor(got, sphere.White) {
		t.Errorf("hit vertex colour = %v, want white", got)
	}
	far := 3 + 3*4
	if got := mesh.Vertices[far].Color; !nearColor(got, [4]float32{0, 0, 0, 1}) {
		t.Errorf("far vertex colour = %v, want black", got)
	}
}

func TestHighlightRefreshIdempotent(t *testing.T) {
	mesh := sphere.Generate(8, 16, unitProjection)
	acc := newHighlight(t, mesh, 10)

	acc.AddHit(gaze.Hit{UV: math.Vec2{X: 0.3, Y: 0.6}}, 0)
	acc.AddHit(gaze.Hit{UV: math.Vec2{X: 0.31, Y: 0.61}}, 0)
	acc.Tick(0.1)
	first := mesh.Colors()

	acc.Recolor()
	second := mesh.Colors()

	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("vertex %d: %v then %v", i, first[i], second[i])
		}
	}
	if acc.Tick(0.2) {
		t.Error("Tick() with no change should not recolour")
	}
}

func TestHighlightExpiryLaw(t *testing.T) {
	set := NewHighlightSet()
	pos := math.Vec3{X: 0.1}
	const insertedAt, decay = 2.0, 3.0
	set.Insert(pos, insertedAt+decay)

	for _, now := range []float64{2.0, 3.5, 4.999} {
		set.Expire(now)
		if !set.Contains(pos, now) {
			t.Errorf("point absent at %v, want present until %v", now, insertedAt+decay)
		}
	}
	for _, now := range []float64{5.0, 6.0} {
		set.Expire(now)
		if set.Contains(pos, now) {
			t.Errorf("point present at %v, want absent", now)
		}
	}
	if set.Len() != 0 {
		t.Errorf("Len() = %d after expiry, want 0", set.Len())
	}
}

func TestHighlightSetRefresh(t *testing.T) {
	set := NewHighlightSet()
	a := math.Vec3{X: 1}
	b := math.Vec3{X: 2}
	set.Insert(a, 5)
	set.Insert(b, 5)
	set.Insert(a, 10)

	if set.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", set.Len())
	}
	if exp, _ := set.Expiry(a); exp != 10 {
		t.Errorf("refreshed expiry = %v, want 10", exp)
	}

	if removed := set.Expire(5); removed != 1 {
		t.Errorf("Expire() removed %d, want 1", removed)
	}
	got := set.Positions()
	if len(got) != 1 || got[0] != a {
		t.Errorf("Positions() = %v, want [%v]", got, a)
	}
}

func TestHighlightExpiryRecolours(t *testing.T) {
	mesh := sphere.Generate(5, 5, unitProjection)
	acc := newHighlight(t, mesh, 1)

	acc.AddHit(gaze.Hit{UV: math.Vec2{X: 0.5, Y: 0.5}}, 0)
	acc.Tick(0)
	version := mesh.ColorVersion()

	if acc.Tick(0.5) {
		t.Error("nothing expired at 0.5")
	}
	if !acc.Tick(1) {
		t.Fatal("expiry at 1.0 should trigger a recolour")
	}
	if mesh.ColorVersion() == version {
		t.Error("colours were not reassigned")
	}
	if got := mesh.Vertices[2+2*5].Color; !nearColor(got, [4]float32{0, 0, 0, 1}) {
		t.Errorf("centre colour after expiry = %v, want black", got)
	}
}

func TestHighlightNeverExpires(t *testing.T) {
	mesh := sphere.Generate(4, 4, unitProjection)
	acc := newHighlight(t, mesh, 0)

	acc.AddHit(gaze.Hit{UV: math.Vec2{X: 0.5, Y: 0.5}}, 0)
	acc.Tick(0)
	acc.Tick(1e9)
	if acc.Points().Len() != 1 {
		t.Errorf("Len() = %d, want the point kept forever", acc.Points().Len())
	}
}

func TestMissLeavesMeshUnchanged(t *testing.T) {
	mesh := sphere.Generate(4, 4, unitProjection)
	acc := newHighlight(t, mesh, 10)
	before := mesh.Colors()

	world := picking.NewWorld() // Nothing to hit
	surface := picking.NewMeshCollider("heatmap", picking.LayerHeatmap, sphere.NewCollisionSphere(8, 16, 0.5))
	cam := camera.NewTrackingCamera(90, 1)
	p := gaze.NewProjector(cam, world, surface, 1)

	if hit, ok := p.Project(math.Vec2{X: 0.5, Y: 0.5}); ok {
		acc.AddHit(hit, 0)
	}
	if acc.Tick(0) {
		t.Error("Tick() recoloured without a hit")
	}
	if acc.Points().Len() != 0 || acc.Markers().Len() != 0 {
		t.Error("a miss must not create points or markers")
	}
	after := mesh.Colors()
	for i := range before {
		if before[i] != after[i] {
			t.Fatalf("vertex %d changed: %v -> %v", i, before[i], after[i])
		}
	}
}

func TestParticleCaptureMarkers(t *testing.T) {
	mesh := sphere.Generate(4, 4, unitProjection)
	ortho := camera.NewOrthoCamera(2, 1, 0.5)
	acc, err := New(mesh, Options{
		Mode:        ModeParticle,
		ElementSize: 0.5,
		RemoveAfter: 2,
		MarkerColor: "#00ff00",
		Projection:  ortho.Projection(),
		MeshToWorld: ortho.MeshToWorld(),
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	acc.AddHit(gaze.Hit{Point: math.Vec3{Z: -0.5}, UV: math.Vec2{X: 0.5, Y: 0.5}}, 1)

	if n := len(acc.Markers().OnLayer(nil, picking.LayerDefault)); n != 0 {
		t.Errorf("headset markers = %d, want 0", n)
	}
	capture := acc.Markers().OnLayer(nil, picking.LayerHeatmap)
	if len(capture) != 1 {
		t.Fatalf("capture markers = %d, want 1", len(capture))
	}

	// Centre of the mesh, lifted toward the camera, one unit in front of it
	want := math.Vec3{Z: -camera.MeshDistance + captureMarkerLift}
	got := capture[0].Position
	if !near(got.X, want.X) || !near(got.Y, want.Y) || !near(got.Z, want.Z) {
		t.Errorf("capture marker at %v, want %v", got, want)
	}
	if !near(capture[0].Size, 0.5*CaptureMarkerScale) {
		t.Errorf("capture marker size = %v", capture[0].Size)
	}
	if !nearColor(capture[0].Color, [4]float32{0, 1, 0, 1}) {
		t.Errorf("marker colour = %v", capture[0].Color)
	}
	if acc.Tick(1) {
		t.Error("particle mode never recolours the mesh")
	}

	acc.Tick(2.9)
	if acc.Markers().Len() != 1 {
		t.Errorf("marker expired early: %d left", acc.Markers().Len())
	}
	acc.Tick(3)
	if acc.Markers().Len() != 0 {
		t.Errorf("markers left after lifetime: %d", acc.Markers().Len())
	}
}

func TestParticleZeroLifetime(t *testing.T) {
	for _, removeAfter := range []float64{0, -1} {
		mesh := sphere.Generate(4, 4, unitProjection)
		acc, err := New(mesh, Options{
			Mode:        ModeParticle,
			ElementSize: 1,
			RemoveAfter: removeAfter,
			MarkerColor: "#ff3300",
			Projection:  unitProjection,
		})
		if err != nil {
			t.Fatalf("New() error = %v", err)
		}

		// Ten minutes of hits at 30 fps
		for i := 0; i < 18000; i++ {
			now := float64(i) / 30
			acc.AddHit(gaze.Hit{UV: math.Vec2{X: 0.5, Y: 0.5}}, now)
			acc.Tick(now)
			if n := acc.Markers().Len(); n != 0 {
				t.Fatalf("remove_after=%v: %d live markers at tick %d, want 0", removeAfter, n, i)
			}
		}
	}
}

func TestParticleCaptureMarkerOffCentre(t *testing.T) {
	acc, err := New(sphere.Generate(2, 2, unitProjection), Options{
		Mode:        ModeParticle,
		ElementSize: 1,
		MarkerColor: "#ffffff",
		Projection:  unitProjection,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	// Collider UV (0.25, 0.75) lands at mesh UV (0.75, 0.25)
	acc.AddHit(gaze.Hit{UV: math.Vec2{X: 0.25, Y: 0.75}}, 0)
	m := acc.Markers().OnLayer(nil, picking.LayerHeatmap)[0]
	if !near(m.Position.X, 0.25) || !near(m.Position.Y, -0.25) || !near(m.Position.Z, captureMarkerLift) {
		t.Errorf("marker at %v", m.Position)
	}

	// No lifetime configured: markers stay
	acc.Tick(1e6)
	if acc.Markers().Len() != 1 {
		t.Errorf("Len() = %d, want 1", acc.Markers().Len())
	}
}

func TestParticleHeadsetMarkers(t *testing.T) {
	acc, err := New(sphere.Generate(2, 2, unitProjection), Options{
		Mode:             ModeParticle,
		ElementSize:      0.5,
		RemoveAfter:      1,
		MarkerColor:      "#ffffff",
		MarkersOnHeadset: true,
		Projection:       unitProjection,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	hitPoint := math.Vec3{X: 0.1, Y: 0.2, Z: -0.45}
	acc.AddHit(gaze.Hit{Point: hitPoint, UV: math.Vec2{X: 0.5, Y: 0.5}}, 0)

	headset := acc.Markers().OnLayer(nil, picking.LayerDefault)
	if len(headset) != 1 || acc.Markers().Len() != 1 {
		t.Fatalf("markers = %d headset of %d, want exactly one headset marker", len(headset), acc.Markers().Len())
	}
	if headset[0].Position != hitPoint {
		t.Errorf("headset marker at %v, want %v", headset[0].Position, hitPoint)
	}
	if !near(headset[0].Size, 0.5*HeadsetMarkerScale) {
		t.Errorf("headset marker size = %v", headset[0].Size)
	}
}

func TestNewRejectsBadOptions(t *testing.T) {
	mesh := sphere.Generate(2, 2, unitProjection)
	if _, err := New(mesh, Options{ElementSize: 1, MarkerColor: "nope"}); err == nil {
		t.Error("expected colour error")
	}
	if _, err := New(mesh, Options{ElementSize: 0, MarkerColor: "#000000"}); err == nil {
		t.Error("expected element size error")
	}
}
