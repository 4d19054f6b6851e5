package ticker

import (
	"math"
	"time"
)

// Spring smooths the raw offset toward its target with a damped harmonic
// oscillator integrated by semi-implicit Euler steps.
type Spring struct {
	Mass      float64
	Stiffness float64
	Damping   float64
	RestDelta float64
	RestSpeed float64

	position float64
	velocity float64
}

func NewSpring(position float64) *Spring {
	return &Spring{
		Mass:      1,
		Stiffness: 150,
		Damping:   25,
		RestDelta: 0.01,
		RestSpeed: 0.01,
		position:  position,
	}
}

func (s *Spring) Position() float64 { return s.position }

func (s *Spring) Velocity() float64 { return s.velocity }

// Step advances the spring by dt toward target and returns the new position.
// Large steps are split so the integration stays stable.
func (s *Spring) Step(target float64, dt time.Duration) float64 {
	const maxStep = 4 * time.Millisecond

	for dt > 0 {
		step := dt
		if step > maxStep {
			step = maxStep
		}
		dt -= step

		secs := step.Seconds()
		force := -s.Stiffness*(s.position-target) - s.Damping*s.velocity
		s.velocity += force / s.Mass * secs
		s.position += s.velocity * secs
	}

	if s.AtRest(target) {
		s.position = target
		s.velocity = 0
	}
	return s.position
}

func (s *Spring) AtRest(target float64) bool {
	return math.Abs(s.position-target) <= s.RestDelta && math.Abs(s.velocity) <= s.RestSpeed
}

// Trajectory samples the spring every frame until it rests or frames runs out.
func (s *Spring) Trajectory(target float64, frame time.Duration, frames int) []float64 {
	out := make([]float64, 0, frames)
	for i := 0; i < frames; i++ {
		out = append(out, s.Step(target, frame))
		if s.AtRest(target) {
			break
		}
	}
	return out
}
