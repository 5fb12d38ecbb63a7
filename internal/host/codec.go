package host

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"

	"github.com/san-kum/blobsim/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r2"
)

// A binary frame is a little-endian float64 array:
//
//	[frame, cx, cy, x0, y0, x1, y1, ...]
const headerFloats = 3

// FrameSize is the encoded length in bytes of a frame with n vertices.
func FrameSize(n int) int {
	return 8 * (headerFloats + 2*n)
}

// EncodeFrame writes r into dst, which must hold FrameSize(len(r.Vertices))
// bytes, and returns the used prefix.
func EncodeFrame(dst []byte, r dynamo.FrameReport) ([]byte, error) {
	size := FrameSize(len(r.Vertices))
	if len(dst) < size {
		return nil, fmt.Errorf("frame buffer too small: %d < %d", len(dst), size)
	}
	put := func(i int, v float64) {
		binary.LittleEndian.PutUint64(dst[8*i:], math.Float64bits(v))
	}
	put(0, float64(r.Frame))
	put(1, r.Centroid.X)
	put(2, r.Centroid.Y)
	for i, v := range r.Vertices {
		put(headerFloats+2*i, v.X)
		put(headerFloats+2*i+1, v.Y)
	}
	return dst[:size], nil
}

// DecodeFrame is the inverse of EncodeFrame.
func DecodeFrame(b []byte) (dynamo.FrameReport, error) {
	if len(b) < FrameSize(0) || (len(b)-FrameSize(0))%16 != 0 {
		return dynamo.FrameReport{}, fmt.Errorf("malformed frame of %d bytes", len(b))
	}
	get := func(i int) float64 {
		return math.Float64frombits(binary.LittleEndian.Uint64(b[8*i:]))
	}
	n := (len(b) - FrameSize(0)) / 16
	r := dynamo.FrameReport{
		Frame:    int(get(0)),
		Centroid: r2.Vec{X: get(1), Y: get(2)},
		Vertices: make([]r2.Vec, n),
	}
	for i := range r.Vertices {
		r.Vertices[i] = r2.Vec{X: get(headerFloats + 2*i), Y: get(headerFloats + 2*i + 1)}
	}
	return r, nil
}

const (
	MsgWelcome     = "welcome"
	MsgGravity     = "gravity"
	MsgDrag        = "drag"
	MsgKeys        = "keys"
	MsgOrientation = "orientation"
	MsgPause       = "pause"
	MsgStep        = "step"
	MsgReset       = "reset"
	MsgParam       = "param"
	MsgError       = "error"
)

// Envelope is the JSON wrapper for every text message in either direction.
type Envelope struct {
	T string          `json:"t"`
	P json.RawMessage `json:"p,omitempty"`
}

type Welcome struct {
	Vertices   int     `json:"vertices"`
	Radius     float64 `json:"radius"`
	SubSteps   int     `json:"substeps"`
	HalfWidth  float64 `json:"half_width"`
	HalfHeight float64 `json:"half_height"`
}

type Gravity struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type Drag struct {
	Active bool    `json:"active"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
}

type Keys struct {
	Left  bool `json:"left"`
	Right bool `json:"right"`
	Up    bool `json:"up"`
	Down  bool `json:"down"`
}

// Orientation is a device orientation event in degrees.
type Orientation struct {
	Alpha float64 `json:"alpha"`
	Beta  float64 `json:"beta"`
	Gamma float64 `json:"gamma"`
}

type Pause struct {
	Paused bool `json:"paused"`
}

type Param struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

type Error struct {
	Message string `json:"message"`
}

func Encode(t string, payload any) ([]byte, error) {
	if t == "" {
		return nil, fmt.Errorf("empty message type")
	}
	var raw json.RawMessage
	if payload != nil {
		pb, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		raw = pb
	}
	return json.Marshal(Envelope{T: t, P: raw})
}

func DecodeEnvelope(b []byte) (Envelope, error) {
	if len(b) == 0 {
		return Envelope{}, fmt.Errorf("empty message")
	}
	var e Envelope
	if err := json.Unmarshal(b, &e); err != nil {
		return Envelope{}, err
	}
	if e.T == "" {
		return Envelope{}, fmt.Errorf("message without type")
	}
	return e, nil
}

func DecodePayload[T any](env Envelope) (T, error) {
	var out T
	if len(env.P) == 0 {
		return out, fmt.Errorf("empty payload for type %q", env.T)
	}
	err := json.Unmarshal(env.P, &out)
	return out, err
}
