package metrics

import (
	"github.com/san-kum/blobsim/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r2"
)

// DragEffort is the mean distance between the drag target and the centroid
// over the frames where a drag was active.
type DragEffort struct {
	name    string
	sum     float64
	samples int
}

func NewDragEffort() *DragEffort {
	return &DragEffort{
		name: "drag_effort",
	}
}

func (c *DragEffort) Name() string {
	return c.name
}

func (c *DragEffort) Observe(r dynamo.FrameReport) {
	if !r.Control.Dragging || r.Reset {
		return
	}
	c.sum += r2.Norm(r2.Sub(r.Control.Target, r.Centroid))
	c.samples++
}

func (c *DragEffort) Value() float64 {
	if c.samples == 0 {
		return 0
	}
	return c.sum / float64(c.samples)
}

func (c *DragEffort) Reset() {
	c.sum = 0
	c.samples = 0
}
