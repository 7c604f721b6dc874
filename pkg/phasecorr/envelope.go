package phasecorr

import "math"

// distanceFromZero returns the radial distance, in bin units, of the given
// bin from the zero-frequency bin. Axis 0 is the half-complex axis and is not
// wrapped; every higher axis stores a full period, so indices at or beyond
// the Nyquist midpoint fold back to their negative-frequency distance.
func distanceFromZero(geom ImageGeometry, ind []int) float64 {
	d0 := float64(ind[0] - geom.Index[0])
	dist := d0 * d0
	for k := 1; k < len(ind); k++ {
		d := ind[k] - geom.Index[k]
		if d >= geom.Size[k]/2 {
			d = geom.Size[k] - d
		}
		dist += float64(d) * float64(d)
	}
	return math.Sqrt(dist)
}

// maxDistance returns the radial distance of the most extreme bin for the
// given geometry: full size along the unwrapped axis 0, half size along the
// wrapped axes. The envelope thresholds are scaled by this value so the four
// control points stay meaningful regardless of image size.
func maxDistance(geom ImageGeometry) float64 {
	s0 := float64(geom.Size[0])
	max := s0 * s0
	for k := 1; k < geom.Dims(); k++ {
		s := float64(geom.Size[k])
		max += s * s / 4.0
	}
	return math.Sqrt(max)
}

// envelope holds the absolute distance thresholds of the band-pass window,
// precomputed once per output geometry so the per-bin weight evaluation costs
// only comparisons and one multiply.
type envelope struct {
	c0, c1, c2, c3 float64
	invRise        float64
	invFall        float64
}

// newEnvelope scales the fractional control points into absolute distances.
func newEnvelope(points ControlPoints, maxDist float64) envelope {
	e := envelope{
		c0: points[0] * maxDist,
		c1: points[1] * maxDist,
		c2: points[2] * maxDist,
		c3: points[3] * maxDist,
	}
	e.invRise = 1.0 / (e.c1 - e.c0)
	e.invFall = 1.0 / (e.c3 - e.c2)
	return e
}

// weight evaluates the trapezoidal window at the given radial distance:
// zero outside [c0, c3], unity inside [c1, c2], linear ramps in between.
func (e envelope) weight(dist float64) float64 {
	switch {
	case dist < e.c0:
		return 0
	case dist < e.c1:
		return (dist - e.c0) * e.invRise
	case dist <= e.c2:
		return 1
	case dist <= e.c3:
		return (e.c3 - dist) * e.invFall
	default:
		return 0
	}
}
