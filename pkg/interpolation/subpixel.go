// Package interpolation refines integer correlation peaks to sub-pixel
// precision by fitting a quadratic surface to the peak's neighborhood.
package interpolation

import (
	"gonum.org/v1/gonum/mat"
)

// maxOffset bounds a plausible refinement: the true maximum of the fitted
// surface must stay inside the 3x3 neighborhood it was fitted on.
const maxOffset = 1.0

// RefinePeak fits z = a + b*u + c*v + d*u^2 + e*v^2 + f*u*v to the 3x3
// neighborhood around the integer peak (peakX, peakY) of a width x height
// correlation surface and returns the offset of the fitted maximum from the
// integer peak. Neighbors are sampled with circular wraparound, matching the
// periodicity of a correlation surface obtained by inverse FFT.
//
// ok is false when the fit is degenerate (singular system, saddle point, or
// a stationary point outside the neighborhood); callers should then keep the
// integer peak.
func RefinePeak(surface []float64, width, height, peakX, peakY int) (dx, dy float64, ok bool) {
	if len(surface) != width*height || width < 3 || height < 3 {
		return 0, 0, false
	}

	// Least-squares design matrix over the nine neighborhood samples.
	a := mat.NewDense(9, 6, nil)
	z := mat.NewVecDense(9, nil)
	row := 0
	for v := -1; v <= 1; v++ {
		for u := -1; u <= 1; u++ {
			x := ((peakX+u)%width + width) % width
			y := ((peakY+v)%height + height) % height
			fu, fv := float64(u), float64(v)
			a.SetRow(row, []float64{1, fu, fv, fu * fu, fv * fv, fu * fv})
			z.SetVec(row, surface[y*width+x])
			row++
		}
	}

	var beta mat.VecDense
	if err := beta.SolveVec(a, z); err != nil {
		return 0, 0, false
	}

	b := beta.AtVec(1)
	c := beta.AtVec(2)
	d := beta.AtVec(3)
	e := beta.AtVec(4)
	f := beta.AtVec(5)

	// Stationary point of the quadratic: solve the 2x2 gradient system
	//   2d*u + f*v = -b
	//   f*u + 2e*v = -c
	det := 4*d*e - f*f

	// A maximum requires negative curvature and a positive determinant.
	if det <= 0 || d >= 0 {
		return 0, 0, false
	}

	dx = (-2*e*b + f*c) / det
	dy = (-2*d*c + f*b) / det
	if dx <= -maxOffset || dx >= maxOffset || dy <= -maxOffset || dy >= maxOffset {
		return 0, 0, false
	}
	return dx, dy, true
}
