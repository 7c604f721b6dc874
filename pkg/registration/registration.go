// Package registration estimates the translational shift between two
// grayscale images by band-limited phase correlation. The pipeline transforms
// both images to the frequency domain, computes their phase-normalized
// cross-power spectrum, transforms that back into a correlation surface, and
// locates the surface's peak, optionally refined to sub-pixel precision.
package registration

import (
	"fmt"
	"runtime"

	"gonum.org/v1/gonum/stat"

	"phasereg/internal/models"
	"phasereg/pkg/interpolation"
	"phasereg/pkg/phasecorr"
	"phasereg/pkg/spectrum"
)

// Params holds the registration configuration.
type Params struct {
	// ControlPoints are the four band-pass thresholds handed to the phase
	// correlation operator. The zero value selects the operator default.
	ControlPoints phasecorr.ControlPoints

	// Workers is the number of parallel workers used for the per-bin
	// spectral computation and the peak scan. Values below 1 select one
	// worker per CPU core.
	Workers int

	// SubPixel enables quadratic sub-pixel refinement of the peak.
	SubPixel bool

	// MinConfidence is the minimum peak height, in standard deviations
	// above the surface mean, for the result to be flagged valid. Zero
	// accepts any peak.
	MinConfidence float64

	// Verbose enables progress output on stdout.
	Verbose bool
}

// Registrar runs the phase correlation registration pipeline.
type Registrar struct {
	params *Params
}

// NewRegistrar creates a registrar, filling unset parameters with defaults.
func NewRegistrar(params *Params) *Registrar {
	if params.Workers < 1 {
		params.Workers = runtime.NumCPU()
	}
	if params.ControlPoints == (phasecorr.ControlPoints{}) {
		params.ControlPoints = phasecorr.DefaultControlPoints()
	}
	return &Registrar{params: params}
}

// Register estimates the shift of the moving image relative to the fixed
// image. The images may differ in size; the correlation is computed on the
// overlap the operator negotiates. Both are row-major grayscale sample
// slices.
func (r *Registrar) Register(fixed []float64, fixedW, fixedH int, moving []float64, movingW, movingH int) (*models.RegistrationResult, error) {
	// Step 1: transform both images to the frequency domain.
	r.logf("Step 1: Computing frequency spectra...")
	fixedSpec, err := spectrum.Forward(fixed, fixedW, fixedH)
	if err != nil {
		return nil, fmt.Errorf("failed to transform fixed image: %v", err)
	}
	movingSpec, err := spectrum.Forward(moving, movingW, movingH)
	if err != nil {
		return nil, fmt.Errorf("failed to transform moving image: %v", err)
	}

	// Step 2: band-limited phase-normalized cross-power spectrum.
	r.logf("Step 2: Computing band-limited cross-power spectrum...")
	op := phasecorr.NewOperator()
	op.SetWorkers(r.params.Workers)
	if err := op.SetBandPassControlPoints(r.params.ControlPoints); err != nil {
		return nil, err
	}
	op.SetFixed(fixedSpec)
	op.SetMoving(movingSpec)
	corr, err := op.Compute()
	if err != nil {
		return nil, fmt.Errorf("failed to compute cross-power spectrum: %v", err)
	}

	// Step 3: back to the spatial domain.
	r.logf("Step 3: Transforming back to a correlation surface...")
	surface, width, height, err := spectrum.Inverse(corr)
	if err != nil {
		return nil, fmt.Errorf("failed to invert correlation spectrum: %v", err)
	}

	// Step 4: locate the correlation peak.
	r.logf("Step 4: Scanning for the correlation peak...")
	peak := r.findPeak(surface, width, height)

	// Step 5: derive the shift. The cross-power convention places the peak
	// at the negated shift, so the unfolded peak position changes sign.
	px, py := float64(peak.X), float64(peak.Y)
	subPixel := false
	if r.params.SubPixel {
		if dx, dy, ok := interpolation.RefinePeak(surface, width, height, peak.X, peak.Y); ok {
			px += dx
			py += dy
			subPixel = true
		}
	}
	shift := models.Shift{
		X: -unfold(px, width),
		Y: -unfold(py, height),
	}

	// Step 6: score the peak against the surface statistics.
	mean, std := stat.MeanStdDev(surface, nil)
	confidence := 0.0
	if std > 0 {
		confidence = (peak.Value - mean) / std
	}

	result := &models.RegistrationResult{
		Shift: shift,
		PhysicalShift: models.Shift{
			X: shift.X * corr.Geometry.Spacing[0],
			Y: shift.Y * corr.Geometry.Spacing[1],
		},
		Peak:          peak,
		Confidence:    confidence,
		IsValid:       r.params.MinConfidence <= 0 || confidence >= r.params.MinConfidence,
		SubPixel:      subPixel,
		Surface:       surface,
		SurfaceWidth:  width,
		SurfaceHeight: height,
	}
	r.logf("Registration complete: shift=(%.3f, %.3f) confidence=%.2f", shift.X, shift.Y, confidence)
	return result, nil
}

// unfold maps a peak coordinate on the periodic correlation surface to a
// signed offset: positions past the midpoint are negative offsets.
func unfold(pos float64, size int) float64 {
	if pos > float64(size)/2 {
		return pos - float64(size)
	}
	return pos
}

func (r *Registrar) logf(format string, args ...interface{}) {
	if r.params.Verbose {
		fmt.Printf(format+"\n", args...)
	}
}
