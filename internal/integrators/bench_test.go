package integrators

import (
	"testing"

	"gonum.org/v1/gonum/spatial/r2"
)

func benchAcc(n int) []r2.Vec {
	acc := make([]r2.Vec, n)
	for i := range acc {
		acc[i] = r2.Vec{X: float64(i%7) * 0.1, Y: 1}
	}
	return acc
}

func BenchmarkEuler(b *testing.B) {
	body := newTestBody(50)
	acc := benchAcc(50)
	integrator := NewSymplecticEuler(0.99)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		integrator.Step(body, acc, 1.0/40)
	}
}

func BenchmarkEulerDecay(b *testing.B) {
	body := newTestBody(50)
	acc := benchAcc(50)
	integrator := &SymplecticEuler{Friction: 0.99, VertexDecay: 0.4, BodyDecay: 0.03}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		integrator.Step(body, acc, 1.0/40)
	}
}

func BenchmarkVerlet(b *testing.B) {
	body := newTestBody(50)
	acc := benchAcc(50)
	integrator := NewVerlet(0.99)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		integrator.Step(body, acc, 1.0/40)
	}
}
