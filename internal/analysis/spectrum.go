package analysis

import (
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"gonum.org/v1/gonum/spatial/r2"
)

type Spectrum struct {
	// Freq[i] is the frequency of Power[i]; units follow the sample rate.
	Freq  []float64
	Power []float64
}

// WobbleSpectrum returns the one-sided magnitude spectrum of trace after
// removing its mean. rate is samples per unit time; zero means per frame.
func WobbleSpectrum(trace []float64, rate float64) Spectrum {
	n := len(trace)
	if n < 2 {
		return Spectrum{}
	}
	if rate <= 0 {
		rate = 1
	}

	coeffs := fft.FFTReal(Detrend(trace))
	half := n / 2
	s := Spectrum{
		Freq:  make([]float64, half),
		Power: make([]float64, half),
	}
	for i := 0; i < half; i++ {
		s.Freq[i] = float64(i) * rate / float64(n)
		s.Power[i] = cmplx.Abs(coeffs[i])
	}
	return s
}

// Dominant is the frequency of the strongest non-DC bin, or 0.
func (s Spectrum) Dominant() float64 {
	best, at := 0.0, 0
	for i := 1; i < len(s.Power); i++ {
		if s.Power[i] > best {
			best, at = s.Power[i], i
		}
	}
	if at == 0 {
		return 0
	}
	return s.Freq[at]
}

func DominantFrequency(trace []float64, rate float64) float64 {
	return WobbleSpectrum(trace, rate).Dominant()
}

// Detrend returns trace minus its mean.
func Detrend(trace []float64) []float64 {
	if len(trace) == 0 {
		return nil
	}
	mean := 0.0
	for _, v := range trace {
		mean += v
	}
	mean /= float64(len(trace))

	out := make([]float64, len(trace))
	for i, v := range trace {
		out[i] = v - mean
	}
	return out
}

// Axis extracts one coordinate of a point trace: 0 for x, anything else for y.
func Axis(points []r2.Vec, axis int) []float64 {
	out := make([]float64, len(points))
	for i, p := range points {
		if axis == 0 {
			out[i] = p.X
		} else {
			out[i] = p.Y
		}
	}
	return out
}
