package physics

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/blobsim/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r2"
)

func TestNewRingRejectsBadShape(t *testing.T) {
	tests := []struct {
		name   string
		n      int
		radius float64
	}{
		{"zero vertices", 0, 10},
		{"single vertex", 1, 10},
		{"negative vertices", -3, 10},
		{"zero radius", 5, 0},
		{"negative radius", 5, -1},
		{"nan radius", 5, math.NaN()},
		{"inf radius", 5, math.Inf(1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := NewRing(tt.n, tt.radius)
			if err == nil {
				t.Fatalf("expected error, got ring %+v", r)
			}
			if !errors.Is(err, dynamo.ErrInvalidParams) {
				t.Errorf("error %v does not wrap ErrInvalidParams", err)
			}
			var pe *dynamo.ParamError
			if !errors.As(err, &pe) {
				t.Errorf("error %v is not a ParamError", err)
			}
		})
	}
}

func TestNewRingStartsDegenerate(t *testing.T) {
	r, err := NewRing(6, 5)
	if err != nil {
		t.Fatal(err)
	}
	for i, p := range r.Positions() {
		if p != (r2.Vec{}) {
			t.Errorf("particle %d at %v before reset", i, p)
		}
	}
	for i, a := range r.Anchors() {
		if a != 5 {
			t.Errorf("anchor %d = %v, want radius", i, a)
		}
	}
	if want := 2 * math.Pi * 5 / 6; math.Abs(r.RestLength()-want) > 1e-12 {
		t.Errorf("rest length = %v, want %v", r.RestLength(), want)
	}
}

func TestResetLaysOutCircle(t *testing.T) {
	for _, n := range []int{3, 4, 7, 25, 50} {
		r, err := NewRing(n, 12.5)
		if err != nil {
			t.Fatal(err)
		}
		r.Velocities()[0] = r2.Vec{X: 3, Y: 4}
		r.Reset()

		step := 2 * math.Pi / float64(n)
		for i, p := range r.Positions() {
			if d := math.Hypot(p.X, p.Y); math.Abs(d-12.5) > 1e-9 {
				t.Errorf("n=%d particle %d at distance %v", n, i, d)
			}
			want := float64(i) * step
			got := math.Atan2(p.Y, p.X)
			if got < 0 {
				got += 2 * math.Pi
			}
			if math.Abs(got-want) > 1e-9 {
				t.Errorf("n=%d particle %d at angle %v, want %v", n, i, got, want)
			}
			if r.Velocities()[i] != (r2.Vec{}) {
				t.Errorf("n=%d particle %d still moving", n, i)
			}
		}
		c := r.Centroid()
		if math.Abs(c.X) > 1e-9 || math.Abs(c.Y) > 1e-9 {
			t.Errorf("n=%d centroid %v, want origin", n, c)
		}
	}
}

func TestResetKeepsBufferIdentity(t *testing.T) {
	r, _ := NewRing(8, 3)
	before := &r.Positions()[0]
	r.Reset()
	r.Reset()
	if &r.Positions()[0] != before {
		t.Error("reset reallocated the position buffer")
	}
}

func TestAnchors(t *testing.T) {
	r, _ := NewRing(4, 10)
	r.Reset()

	r.RecordAnchors(r2.Vec{X: 10})
	want := []float64{0, math.Sqrt2 * 10, 20, math.Sqrt2 * 10}
	for i, a := range r.Anchors() {
		if math.Abs(a-want[i]) > 1e-9 {
			t.Errorf("anchor %d = %v, want %v", i, a, want[i])
		}
	}

	r.ResetAnchors()
	for i, a := range r.Anchors() {
		if a != 10 {
			t.Errorf("anchor %d = %v after reset", i, a)
		}
	}
}

func TestVerticesIsACopy(t *testing.T) {
	r, _ := NewRing(5, 2)
	r.Reset()
	v := r.Vertices()
	v[0].X = 99
	if r.Positions()[0].X == 99 {
		t.Error("Vertices aliases the live buffer")
	}
}

func TestRelease(t *testing.T) {
	r, _ := NewRing(5, 2)
	r.Release()
	if !r.Released() {
		t.Error("ring not marked released")
	}
	if r.Positions() != nil {
		t.Error("buffers still held after release")
	}
}
