package dynamo

import (
	"errors"
	"math"
	"sync/atomic"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"
)

func TestFinite(t *testing.T) {
	tests := []struct {
		name string
		v    r2.Vec
		want bool
	}{
		{"zero", r2.Vec{}, true},
		{"normal", r2.Vec{X: 1, Y: -2}, true},
		{"NaN x", r2.Vec{X: math.NaN()}, false},
		{"+Inf y", r2.Vec{Y: math.Inf(1)}, false},
		{"-Inf x", r2.Vec{X: math.Inf(-1)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Finite(tt.v); got != tt.want {
				t.Errorf("Finite(%v) = %v, want %v", tt.v, got, tt.want)
			}
		})
	}
}

func TestFirstNonFinite(t *testing.T) {
	vs := []r2.Vec{{X: 1}, {Y: 2}, {X: math.NaN()}, {X: math.Inf(1)}}
	if got := FirstNonFinite(vs); got != 2 {
		t.Errorf("FirstNonFinite = %d, want 2", got)
	}
	if got := FirstNonFinite(vs[:2]); got != -1 {
		t.Errorf("FirstNonFinite = %d, want -1", got)
	}
}

func TestCentroidAndArea(t *testing.T) {
	square := []r2.Vec{{X: 0, Y: 0}, {X: 2, Y: 0}, {X: 2, Y: 2}, {X: 0, Y: 2}}

	c := Centroid(square)
	if c.X != 1 || c.Y != 1 {
		t.Errorf("Centroid = %v, want (1, 1)", c)
	}
	if a := Area(square); a != 4 {
		t.Errorf("Area = %v, want 4", a)
	}

	reversed := []r2.Vec{square[3], square[2], square[1], square[0]}
	if a := Area(reversed); a != -4 {
		t.Errorf("Area of reversed polygon = %v, want -4", a)
	}

	if c := Centroid(nil); c != (r2.Vec{}) {
		t.Errorf("Centroid(nil) = %v, want zero", c)
	}
}

func TestCap(t *testing.T) {
	if Cap(25, 10) != 10 || Cap(-25, 10) != -10 || Cap(3, 10) != 3 {
		t.Error("Cap did not clamp")
	}
	if !math.IsNaN(Cap(math.NaN(), 10)) {
		t.Error("Cap should pass NaN through")
	}
}

func TestWrap(t *testing.T) {
	tests := []struct{ n, m, want int }{
		{-1, 5, 4},
		{-6, 5, 4},
		{5, 5, 0},
		{7, 5, 2},
	}
	for _, tt := range tests {
		if got := Wrap(tt.n, tt.m); got != tt.want {
			t.Errorf("Wrap(%d, %d) = %d, want %d", tt.n, tt.m, got, tt.want)
		}
	}
}

func TestParallelForCoversRange(t *testing.T) {
	for _, workers := range []int{1, 2, 3, 8} {
		var hits [100]int32
		ParallelFor(len(hits), 4, workers, func(start, end int) {
			for i := start; i < end; i++ {
				atomic.AddInt32(&hits[i], 1)
			}
		})
		for i, h := range hits {
			if h != 1 {
				t.Fatalf("workers=%d: index %d visited %d times", workers, i, h)
			}
		}
	}
}

func TestDirection(t *testing.T) {
	for _, v := range [][2]float64{{3, 4}, {-1, 0}, {0, -2}, {1e-9, 1e-9}, {-5, 12}} {
		c, s := Direction(v[0], v[1])
		angle := math.Atan2(v[1], v[0])
		if math.Abs(c-math.Cos(angle)) > 1e-12 || math.Abs(s-math.Sin(angle)) > 1e-12 {
			t.Errorf("Direction(%v, %v) = (%v, %v), want angle %v", v[0], v[1], c, s, angle)
		}
	}
	if c, s := Direction(0, 0); c != 1 || s != 0 {
		t.Errorf("Direction(0, 0) = (%v, %v), want (1, 0)", c, s)
	}
	if c, s := Direction(math.NaN(), 1); !math.IsNaN(c) || !math.IsNaN(s) {
		t.Error("Direction(NaN, 1) should be NaN")
	}
	if c, _ := Direction(math.Inf(1), 1); !math.IsNaN(c) {
		t.Errorf("Direction(+Inf, 1) should not be finite, got %v", c)
	}
}

func TestErrors(t *testing.T) {
	err := &ParamError{Name: "radius", Value: -1, Reason: "must be positive"}
	if !errors.Is(err, ErrInvalidParams) {
		t.Error("ParamError should unwrap to ErrInvalidParams")
	}
	expected := "dynamo: invalid parameters: radius=-1 must be positive"
	if err.Error() != expected {
		t.Errorf("ParamError.Error() = %q, want %q", err.Error(), expected)
	}

	div := &DivergenceError{Frame: 3, Particle: 7}
	if !errors.Is(div, ErrDiverged) {
		t.Error("DivergenceError should unwrap to ErrDiverged")
	}
}
