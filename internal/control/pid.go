package control

import "math"

// PID is a discrete proportional-integral-derivative loop on one axis.
type PID struct {
	Kp     float64
	Ki     float64
	Kd     float64
	Target float64

	// Limit clamps |output|; zero leaves it unbounded.
	Limit float64

	integral float64
	prevErr  float64
	first    bool
}

func NewPID(kp, ki, kd, target float64) *PID {
	return &PID{
		Kp:     kp,
		Ki:     ki,
		Kd:     kd,
		Target: target,
		first:  true,
	}
}

// Update feeds one measurement taken dt after the previous one and returns
// the control output.
func (p *PID) Update(measured, dt float64) float64 {
	err := p.Target - measured

	if p.first || dt <= 0 {
		p.prevErr = err
		p.first = false
		return p.clamp(p.Kp * err)
	}

	p.integral += err * dt
	derivative := (err - p.prevErr) / dt
	p.prevErr = err

	return p.clamp(p.Kp*err + p.Ki*p.integral + p.Kd*derivative)
}

func (p *PID) Reset() {
	p.integral = 0
	p.prevErr = 0
	p.first = true
}

func (p *PID) clamp(u float64) float64 {
	if p.Limit <= 0 {
		return u
	}
	return math.Max(-p.Limit, math.Min(p.Limit, u))
}
