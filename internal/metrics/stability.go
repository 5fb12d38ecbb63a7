package metrics

import "github.com/san-kum/blobsim/internal/dynamo"

// Stability is the fraction of frames that were kept rather than discarded
// by the divergence check.
type Stability struct {
	name    string
	resets  int
	samples int
}

func NewStability() *Stability {
	return &Stability{
		name: "stability",
	}
}

func (s *Stability) Name() string {
	return s.name
}

func (s *Stability) Observe(r dynamo.FrameReport) {
	s.samples++
	if r.Reset {
		s.resets++
	}
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.resets)/float64(s.samples)
}

func (s *Stability) Resets() int { return s.resets }

func (s *Stability) Reset() {
	s.resets = 0
	s.samples = 0
}
