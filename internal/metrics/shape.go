package metrics

import (
	"math"

	"github.com/san-kum/blobsim/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r2"
)

// Roundness averages the isoperimetric quotient 4π·A/P² of the ring outline.
// A circle scores 1; a collapsed or tangled ring scores near 0.
type Roundness struct {
	name    string
	sum     float64
	samples int
}

func NewRoundness() *Roundness {
	return &Roundness{name: "roundness"}
}

func (m *Roundness) Name() string { return m.name }

func (m *Roundness) Observe(r dynamo.FrameReport) {
	if len(r.Vertices) < 3 {
		return
	}
	m.sum += Isoperimetric(r.Vertices)
	m.samples++
}

func (m *Roundness) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return m.sum / float64(m.samples)
}

func (m *Roundness) Reset() {
	m.sum = 0
	m.samples = 0
}

func Isoperimetric(vs []r2.Vec) float64 {
	p := Perimeter(vs)
	if p == 0 {
		return 0
	}
	return 4 * math.Pi * math.Abs(dynamo.Area(vs)) / (p * p)
}

func Perimeter(vs []r2.Vec) float64 {
	sum := 0.0
	for i := range vs {
		sum += r2.Norm(r2.Sub(vs[(i+1)%len(vs)], vs[i]))
	}
	return sum
}

// Jiggle is the mean squared frame-to-frame vertex displacement with the
// centroid motion removed: how much the body wobbles rather than travels.
type Jiggle struct {
	name    string
	prev    []r2.Vec
	prevC   r2.Vec
	sum     float64
	samples int
}

func NewJiggle() *Jiggle {
	return &Jiggle{name: "jiggle"}
}

func (m *Jiggle) Name() string { return m.name }

func (m *Jiggle) Observe(r dynamo.FrameReport) {
	if r.Reset || len(m.prev) != len(r.Vertices) {
		m.prev = append(m.prev[:0], r.Vertices...)
		m.prevC = r.Centroid
		return
	}

	shift := r2.Sub(r.Centroid, m.prevC)
	total := 0.0
	for i, v := range r.Vertices {
		d := r2.Sub(r2.Sub(v, m.prev[i]), shift)
		total += r2.Norm2(d)
	}
	m.sum += total / float64(len(r.Vertices))
	m.samples++

	copy(m.prev, r.Vertices)
	m.prevC = r.Centroid
}

func (m *Jiggle) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return m.sum / float64(m.samples)
}

func (m *Jiggle) Reset() {
	m.prev = m.prev[:0]
	m.sum = 0
	m.samples = 0
}

// Standard returns the default metric set for a headless run.
func Standard() []dynamo.Metric {
	return []dynamo.Metric{NewStability(), NewRoundness(), NewJiggle(), NewDragEffort()}
}
