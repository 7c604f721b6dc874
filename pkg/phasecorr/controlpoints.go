package phasecorr

import "fmt"

// ControlPoints holds the four ordered fractional thresholds that define the
// trapezoidal band-pass envelope over normalized radial frequency distance.
// The invariant 0.0 <= c0 < c1 < c2 < c3 <= 1.0 must hold; frequencies below
// c0 and above c3 are suppressed, the band [c1, c2] passes unattenuated, and
// the two intervals in between ramp linearly.
type ControlPoints [4]float64

// DefaultControlPoints returns the default band-pass configuration: a gentle
// low-cut below 10% of the maximum radial distance and a high-cut above 50%.
func DefaultControlPoints() ControlPoints {
	return ControlPoints{0.05, 0.1, 0.5, 0.9}
}

// validate checks the ordering and bound invariants.
func (p ControlPoints) validate() error {
	if p[0] < 0.0 {
		return fmt.Errorf("invalid band-pass configuration: control point 0 must be greater than or equal to 0.0, got %v", p[0])
	}
	if p[3] > 1.0 {
		return fmt.Errorf("invalid band-pass configuration: control point 3 must be less than or equal to 1.0, got %v", p[3])
	}
	if p[0] >= p[1] {
		return fmt.Errorf("invalid band-pass configuration: control point 0 (%v) must be strictly less than control point 1 (%v)", p[0], p[1])
	}
	if p[1] >= p[2] {
		return fmt.Errorf("invalid band-pass configuration: control point 1 (%v) must be strictly less than control point 2 (%v)", p[1], p[2])
	}
	if p[2] >= p[3] {
		return fmt.Errorf("invalid band-pass configuration: control point 2 (%v) must be strictly less than control point 3 (%v)", p[2], p[3])
	}
	return nil
}
