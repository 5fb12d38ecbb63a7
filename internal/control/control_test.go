package control

import (
	"math"
	"sync"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"
)

func TestInputsDefaults(t *testing.T) {
	s := NewInputs().Snapshot()
	if s.Gravity != (r2.Vec{Y: 1}) {
		t.Errorf("default gravity %v, want down", s.Gravity)
	}
	if s.Pointer || s.Keys.Any() {
		t.Errorf("fresh inputs already active: %+v", s)
	}
}

func TestInputsLastWriteWins(t *testing.T) {
	in := NewInputs()
	in.SetGravity(1, 2)
	in.SetGravity(-3, 0.5)
	in.SetDrag(true, 4, 5)
	in.SetDrag(true, 6, 7)

	s := in.Snapshot()
	if s.Gravity != (r2.Vec{X: -3, Y: 0.5}) {
		t.Errorf("gravity %v", s.Gravity)
	}
	if !s.Pointer || s.Target != (r2.Vec{X: 6, Y: 7}) {
		t.Errorf("drag %v at %v", s.Pointer, s.Target)
	}

	in.SetDrag(false, 100, 100)
	s = in.Snapshot()
	if s.Pointer || s.Target != (r2.Vec{X: 6, Y: 7}) {
		t.Errorf("release moved target: %+v", s)
	}
}

func TestInputsConcurrentWriters(t *testing.T) {
	in := NewInputs()
	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				in.SetGravity(float64(w), float64(i))
				in.SetDrag(i%2 == 0, float64(i), 0)
				in.SetDirectional(Keys{Left: i%3 == 0})
				_ = in.Snapshot()
			}
		}(w)
	}
	wg.Wait()
}

func TestResolve(t *testing.T) {
	c := r2.Vec{X: 10, Y: 20}
	tests := []struct {
		name     string
		s        Snapshot
		dragging bool
		target   r2.Vec
	}{
		{"idle", Snapshot{}, false, r2.Vec{}},
		{"pointer", Snapshot{Pointer: true, Target: r2.Vec{X: 1, Y: 2}}, true, r2.Vec{X: 1, Y: 2}},
		{"pointer beats keys", Snapshot{Pointer: true, Target: r2.Vec{X: 1}, Keys: Keys{Left: true}}, true, r2.Vec{X: 1}},
		{"right", Snapshot{Keys: Keys{Right: true}}, true, r2.Vec{X: 12, Y: 20}},
		{"up left", Snapshot{Keys: Keys{Up: true, Left: true}}, true, r2.Vec{X: 8, Y: 18}},
		{"down", Snapshot{Keys: Keys{Down: true}}, true, r2.Vec{X: 10, Y: 22}},
		{"opposed", Snapshot{Keys: Keys{Left: true, Right: true}}, true, c},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := Resolve(tt.s, c, 4)
			if u.Dragging != tt.dragging {
				t.Errorf("dragging = %v, want %v", u.Dragging, tt.dragging)
			}
			if tt.dragging && u.Target != tt.target {
				t.Errorf("target = %v, want %v", u.Target, tt.target)
			}
		})
	}
}

func TestResolveCarriesGravity(t *testing.T) {
	u := Resolve(Snapshot{Gravity: r2.Vec{X: 0.5, Y: -1}}, r2.Vec{}, 1)
	if u.Gravity != (r2.Vec{X: 0.5, Y: -1}) {
		t.Errorf("gravity %v", u.Gravity)
	}
}

func TestGravityFromOrientation(t *testing.T) {
	const eps = 1e-12

	g := GravityFromOrientation(0, 0, 0, MappingPitch, 3)
	if math.Abs(g.X) > eps || math.Abs(g.Y) > eps {
		t.Errorf("flat device gave %v", g)
	}

	// beta 90 with alpha 0: roll = π/2, pitch = 0.
	g = GravityFromOrientation(0, 90, 0, MappingPitch, 3)
	if math.Abs(g.X) > eps || math.Abs(g.Y-3) > eps {
		t.Errorf("upright device gave %v, want (0, 3)", g)
	}

	// gamma -90: yaw = π/2, beta 0: x = -sin(yaw)·cos(0) = -1.
	g = GravityFromOrientation(0, 0, -90, MappingPitch, 1)
	if math.Abs(g.X+1) > eps || math.Abs(g.Y) > eps {
		t.Errorf("sideways device gave %v, want (-1, 0)", g)
	}
}

func TestMappingVariantsDiffer(t *testing.T) {
	a := GravityFromOrientation(60, 30, 0, MappingPitch, 1)
	b := GravityFromOrientation(60, 30, 0, MappingYaw, 1)
	if a.X != b.X {
		t.Errorf("x components differ: %v vs %v", a.X, b.X)
	}
	if math.Abs(a.Y-0.25) > 1e-12 || math.Abs(b.Y-0.5) > 1e-12 {
		t.Errorf("y components %v and %v, want 0.25 and 0.5", a.Y, b.Y)
	}
}

func TestParseMapping(t *testing.T) {
	for in, want := range map[string]Mapping{"": MappingPitch, "pitch": MappingPitch, "yaw": MappingYaw} {
		got, err := ParseMapping(in)
		if err != nil || got != want {
			t.Errorf("ParseMapping(%q) = %v, %v", in, got, err)
		}
		if in != "" && got.String() != in {
			t.Errorf("String() = %q, want %q", got.String(), in)
		}
	}
	if _, err := ParseMapping("roll"); err == nil {
		t.Error("expected error for unknown mapping")
	}
}

func TestPIDSign(t *testing.T) {
	pid := NewPID(10, 0.1, 5, 0)
	if u := pid.Update(1, 1); u >= 0 {
		t.Errorf("positive error should push negative, got %f", u)
	}
	if u := pid.Update(-1, 1); u <= 0 {
		t.Errorf("negative error should push positive, got %f", u)
	}
}

func TestPIDLimit(t *testing.T) {
	pid := NewPID(100, 0, 0, 0)
	pid.Limit = 0.5
	if u := pid.Update(10, 1); u != -0.5 {
		t.Errorf("clamped output %f, want -0.5", u)
	}
}

func TestPIDIntegralAndReset(t *testing.T) {
	pid := NewPID(0, 1, 0, 1)
	pid.Update(0, 1)
	pid.Update(0, 1)
	if u := pid.Update(0, 1); u != 2 {
		t.Errorf("integral output %f, want 2", u)
	}
	pid.Reset()
	if u := pid.Update(0, 1); u != 0 {
		t.Errorf("first update after reset %f, want 0", u)
	}
}
