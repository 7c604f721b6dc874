package phasecorr

import "math"

// normalizeCrossPower computes the phase-normalized cross-power term for one
// pair of spectral samples: the product of f with the conjugate of m, divided
// by its own magnitude. The result is a unit-magnitude complex value whose
// phase is the phase difference between the two samples. Amplitude is
// discarded entirely, which is what makes the correlation peak sharp.
//
// A zero-magnitude product yields exactly zero rather than NaN; such bins
// carry no phase information.
func normalizeCrossPower(f, m complex128) complex128 {
	re := real(f)*real(m) + imag(f)*imag(m)
	im := imag(f)*real(m) - real(f)*imag(m)
	magn := math.Sqrt(re*re + im*im)
	if magn == 0 {
		return 0
	}
	return complex(re/magn, im/magn)
}
