package models

// Peak is the integer-bin maximum of a correlation surface.
type Peak struct {
	// X, Y are the peak's bin coordinates on the surface.
	X, Y int

	// Value is the correlation value at the peak.
	Value float64
}

// Shift is an estimated translation in pixels. Positive components mean the
// moving image's content sits toward the positive axes relative to the fixed
// image.
type Shift struct {
	X, Y float64
}

// RegistrationResult holds the outcome of registering a moving image onto a
// fixed image by phase correlation.
type RegistrationResult struct {
	// Shift is the estimated translation of the moving image relative to
	// the fixed image, sub-pixel refined when refinement was enabled and
	// succeeded.
	Shift Shift

	// PhysicalShift is the translation expressed in physical units using
	// the reconciled output spacing.
	PhysicalShift Shift

	// Peak is the raw integer peak the shift was derived from.
	Peak Peak

	// Confidence is the peak's height above the surface mean, in standard
	// deviations. Well-registered image pairs typically score far above
	// any spurious maximum.
	Confidence float64

	// IsValid reports whether Confidence reached the configured minimum.
	IsValid bool

	// SubPixel reports whether the shift includes a sub-pixel refinement.
	SubPixel bool

	// Surface is the correlation surface the peak was found on, row-major,
	// SurfaceWidth x SurfaceHeight. Kept for inspection and visualization.
	Surface       []float64
	SurfaceWidth  int
	SurfaceHeight int
}
