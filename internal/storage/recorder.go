package storage

import (
	"sync"

	"github.com/san-kum/blobsim/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r2"
)

// Frame is one recorded frame of a run.
type Frame struct {
	Frame    int      `json:"frame"`
	Reset    bool     `json:"reset,omitempty"`
	Centroid r2.Vec   `json:"centroid"`
	Vertices []r2.Vec `json:"vertices"`
}

// Recorder is a session observer that keeps every Nth frame.
type Recorder struct {
	mu     sync.Mutex
	every  int
	frames []Frame
}

func NewRecorder(every int) *Recorder {
	if every < 1 {
		every = 1
	}
	return &Recorder{every: every}
}

func (r *Recorder) OnFrame(rep dynamo.FrameReport) {
	if rep.Frame%r.every != 0 && !rep.Reset {
		return
	}
	r.mu.Lock()
	r.frames = append(r.frames, Frame{
		Frame:    rep.Frame,
		Reset:    rep.Reset,
		Centroid: rep.Centroid,
		Vertices: append([]r2.Vec(nil), rep.Vertices...),
	})
	r.mu.Unlock()
}

func (r *Recorder) Frames() []Frame {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Frame, len(r.frames))
	copy(out, r.frames)
	return out
}

// Centroids returns the centroid trace of the recorded frames.
func (r *Recorder) Centroids() []r2.Vec {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]r2.Vec, len(r.frames))
	for i, f := range r.frames {
		out[i] = f.Centroid
	}
	return out
}

func (r *Recorder) Reset() {
	r.mu.Lock()
	r.frames = r.frames[:0]
	r.mu.Unlock()
}
