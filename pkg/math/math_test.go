package math

import (
	"math"
	"testing"
)

func near(a, b float32) bool {
	return math.Abs(float64(a-b)) < 1e-4
}

func nearVec3(a, b Vec3) bool {
	return near(a.X, b.X) && near(a.Y, b.Y) && near(a.Z, b.Z)
}

func TestVec2OneMinus(t *testing.T) {
	got := Vec2{0.25, 1}.OneMinus()
	want := Vec2{0.75, 0}
	if got != want {
		t.Errorf("Vec2.OneMinus() = %v, want %v", got, want)
	}
}

func TestVec3Cross(t *testing.T) {
	got := Vec3{1, 0, 0}.Cross(Vec3{0, 1, 0})
	want := Vec3{0, 0, 1}
	if got != want {
		t.Errorf("Vec3.Cross() = %v, want %v", got, want)
	}
}

func TestVec3Lerp(t *testing.T) {
	a := Vec3{0, 0, 0}
	b := Vec3{2, 4, 6}
	if got := a.Lerp(b, 0.5); got != (Vec3{1, 2, 3}) {
		t.Errorf("Lerp(0.5) = %v", got)
	}
	if got := a.Lerp(b, 2); got != (Vec3{4, 8, 12}) {
		t.Errorf("Lerp should not clamp, got %v", got)
	}
}

func TestClamp01(t *testing.T) {
	tests := []struct {
		in, want float32
	}{
		{-1, 0}, {0, 0}, {0.3, 0.3}, {1, 1}, {14.14, 1},
	}
	for _, tt := range tests {
		if got := Clamp01(tt.in); got != tt.want {
			t.Errorf("Clamp01(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestMulIdentity(t *testing.T) {
	m := Translate(1, 2, 3)
	result := m.Mul(Identity())
	if result != m {
		t.Errorf("M * I should equal M, got %v", result)
	}
}

func TestTransformVec3(t *testing.T) {
	m := Translate(10, 20, 30)
	got := m.TransformVec3(Vec3{1, 2, 3})
	if want := (Vec3{11, 22, 33}); got != want {
		t.Errorf("TransformVec3: got %v, want %v", got, want)
	}

	// Projective matrices divide by w
	p := Perspective(1.5, 1, 0.1, 10)
	onNear := p.TransformVec3(Vec3{Z: -0.1})
	if !near(onNear.Z, -1) {
		t.Errorf("near plane maps to z=%v, want -1", onNear.Z)
	}
}

func TestInverseRoundTrip(t *testing.T) {
	m := Perspective(float32(math.Pi/2), 1, 0.5, 10).Mul(LookAt(Vec3{1, 2, 3}, Vec3{0, 0, 0}, Vec3{0, 1, 0}))
	p := Vec3{0.3, -0.2, 0.5}
	back := m.Inverse().TransformVec3(m.TransformVec3(p))
	if !nearVec3(back, p) {
		t.Errorf("inverse round trip: got %v, want %v", back, p)
	}
}

func TestInverseSingular(t *testing.T) {
	if got := (Mat4{}).Inverse(); got != Identity() {
		t.Errorf("singular inverse should be identity, got %v", got)
	}
}

func TestQuatRotate(t *testing.T) {
	q := QuatFromAxisAngle(Vec3{0, 1, 0}, float32(math.Pi/2))
	got := q.Rotate(Vec3{1, 0, 0})
	want := Vec3{0, 0, -1}
	if !nearVec3(got, want) {
		t.Errorf("Rotate 90 about Y: got %v, want %v", got, want)
	}
}

func TestQuatYawPitch(t *testing.T) {
	q := QuatFromYawPitch(0, float32(math.Pi/2))
	got := q.Rotate(Forward)
	want := Vec3{0, 1, 0}
	if !nearVec3(got, want) {
		t.Errorf("pitch up 90: got %v, want %v", got, want)
	}

	back := q.Conjugate().Rotate(got)
	if !nearVec3(back, Forward) {
		t.Errorf("conjugate should undo rotation, got %v", back)
	}
}
