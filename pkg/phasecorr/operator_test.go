package phasecorr

import (
	"errors"
	"math"
	"testing"
)

// makeSpectrum builds a test spectrum of the given size filled by fn, with
// unit spacing and zero start index.
func makeSpectrum(size []int, fn func(ind []int) complex128) *Image {
	geom := ImageGeometry{
		Size:    append([]int(nil), size...),
		Spacing: make([]float64, len(size)),
		Index:   make([]int, len(size)),
	}
	for i := range geom.Spacing {
		geom.Spacing[i] = 1
	}
	img := NewImage(geom)
	ind := make([]int, len(size))
	for {
		img.Set(ind, fn(ind))
		k := 0
		for k < len(size) {
			ind[k]++
			if ind[k] < size[k] {
				break
			}
			ind[k] = 0
			k++
		}
		if k == len(size) {
			return img
		}
	}
}

// TestSetBandPassControlPointsValidation checks that every invalid tuple is
// rejected with a descriptive error and leaves the stored tuple unchanged.
func TestSetBandPassControlPointsValidation(t *testing.T) {
	invalid := []ControlPoints{
		{-0.1, 0.2, 0.5, 0.9},  // c0 below 0
		{0.05, 0.1, 0.5, 1.1},  // c3 above 1
		{0.2, 0.1, 0.5, 0.9},   // c0 >= c1
		{0.1, 0.1, 0.5, 0.9},   // c0 == c1
		{0.05, 0.6, 0.5, 0.9},  // c1 >= c2
		{0.05, 0.1, 0.95, 0.9}, // c2 >= c3
	}

	op := NewOperator()
	before := op.BandPassControlPoints()

	for _, points := range invalid {
		if err := op.SetBandPassControlPoints(points); err == nil {
			t.Errorf("Expected error for control points %v, got nil", points)
		}
		if op.BandPassControlPoints() != before {
			t.Errorf("Control points changed after rejected update: %v", op.BandPassControlPoints())
		}
	}

	valid := ControlPoints{0.0, 0.25, 0.5, 1.0}
	if err := op.SetBandPassControlPoints(valid); err != nil {
		t.Errorf("Unexpected error for valid control points: %v", err)
	}
	if op.BandPassControlPoints() != valid {
		t.Errorf("Expected control points %v, got %v", valid, op.BandPassControlPoints())
	}
}

// TestResolveOutputGeometry verifies the reconciliation rules: smaller size,
// larger spacing, fixed image's start index.
func TestResolveOutputGeometry(t *testing.T) {
	fixed := NewImage(ImageGeometry{
		Size:    []int{10, 10},
		Spacing: []float64{1, 1},
		Index:   []int{2, 3},
	})
	moving := NewImage(ImageGeometry{
		Size:    []int{8, 12},
		Spacing: []float64{2, 0.5},
		Index:   []int{0, 0},
	})

	op := NewOperator()
	op.SetFixed(fixed)
	op.SetMoving(moving)

	geom, err := op.ResolveOutputGeometry()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	wantSize := []int{8, 10}
	wantSpacing := []float64{2, 1}
	wantIndex := []int{2, 3}
	for i := range wantSize {
		if geom.Size[i] != wantSize[i] {
			t.Errorf("Expected size[%d]=%d, got %d", i, wantSize[i], geom.Size[i])
		}
		if geom.Spacing[i] != wantSpacing[i] {
			t.Errorf("Expected spacing[%d]=%v, got %v", i, wantSpacing[i], geom.Spacing[i])
		}
		if geom.Index[i] != wantIndex[i] {
			t.Errorf("Expected index[%d]=%d, got %d", i, wantIndex[i], geom.Index[i])
		}
	}

	// Re-resolving with unchanged inputs must produce the same geometry.
	again, err := op.ResolveOutputGeometry()
	if err != nil {
		t.Fatalf("Unexpected error on second resolve: %v", err)
	}
	if !again.Equal(geom) {
		t.Errorf("Geometry resolution is not idempotent: %v vs %v", again, geom)
	}
}

// TestNotReady verifies that invoking the operator before both inputs are
// connected yields ErrNotReady and no output.
func TestNotReady(t *testing.T) {
	op := NewOperator()

	if _, err := op.ResolveOutputGeometry(); !errors.Is(err, ErrNotReady) {
		t.Errorf("Expected ErrNotReady from ResolveOutputGeometry, got %v", err)
	}
	if out, err := op.Compute(); !errors.Is(err, ErrNotReady) || out != nil {
		t.Errorf("Expected ErrNotReady and nil output from Compute, got %v, %v", out, err)
	}

	op.SetFixed(makeSpectrum([]int{4, 4}, func([]int) complex128 { return 1 }))
	if _, err := op.Compute(); !errors.Is(err, ErrNotReady) {
		t.Errorf("Expected ErrNotReady with only the fixed input set, got %v", err)
	}
}

// TestRegionNegotiation verifies the two negotiation answers: any requested
// output region expands to the full output extent, and any output region
// requires the full extent of both inputs.
func TestRegionNegotiation(t *testing.T) {
	fixed := makeSpectrum([]int{9, 16}, func([]int) complex128 { return 1 })
	moving := makeSpectrum([]int{9, 12}, func([]int) complex128 { return 1 })

	op := NewOperator()
	op.SetFixed(fixed)
	op.SetMoving(moving)

	sub := Region{Index: []int{2, 2}, Size: []int{3, 3}}

	out, err := op.OutputRequestedRegion(sub)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if out.Size[0] != 9 || out.Size[1] != 12 {
		t.Errorf("Expected full output region 9x12, got %v", out.Size)
	}

	fixedReq, movingReq, err := op.InputRequestedRegion(sub)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if fixedReq.Size[0] != 9 || fixedReq.Size[1] != 16 {
		t.Errorf("Expected full fixed extent 9x16, got %v", fixedReq.Size)
	}
	if movingReq.Size[0] != 9 || movingReq.Size[1] != 12 {
		t.Errorf("Expected full moving extent 9x12, got %v", movingReq.Size)
	}
}

// TestComputeUnitMagnitude verifies that inside the pass-band every output
// bin has unit magnitude and that zero-amplitude bins come out exactly zero.
func TestComputeUnitMagnitude(t *testing.T) {
	size := []int{16, 16}
	fixed := makeSpectrum(size, func(ind []int) complex128 {
		if ind[0] == 3 && ind[1] == 4 {
			return 0 // degenerate bin
		}
		return complex(float64(ind[0])+1, float64(ind[1])-2)
	})
	moving := makeSpectrum(size, func(ind []int) complex128 {
		return complex(2, float64(ind[0]+ind[1])+1)
	})

	op := NewOperator()
	op.SetFixed(fixed)
	op.SetMoving(moving)
	// Full pass-band except a sliver at either end, so nearly every bin
	// keeps weight 1.
	if err := op.SetBandPassControlPoints(ControlPoints{0, 1e-9, 1 - 1e-9, 1}); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	out, err := op.Compute()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if v := out.At([]int{3, 4}); v != 0 {
		t.Errorf("Expected exact zero at the degenerate bin, got %v", v)
	}

	v := out.At([]int{5, 6})
	magn := math.Hypot(real(v), imag(v))
	if math.Abs(magn-1.0) > 1e-9 {
		t.Errorf("Expected unit magnitude inside the pass-band, got %v", magn)
	}
}

// TestComputePartitionIndependence verifies that the number of workers has
// no effect on the result: the envelope is resolved once for the whole
// geometry, never per sub-region.
func TestComputePartitionIndependence(t *testing.T) {
	size := []int{17, 23}
	fixed := makeSpectrum(size, func(ind []int) complex128 {
		return complex(math.Sin(float64(ind[0]*7+ind[1])), math.Cos(float64(ind[1]*3)))
	})
	moving := makeSpectrum(size, func(ind []int) complex128 {
		return complex(math.Cos(float64(ind[0]-ind[1])), math.Sin(float64(ind[0]*2)))
	})

	serial := NewOperator()
	serial.SetFixed(fixed)
	serial.SetMoving(moving)
	serial.SetWorkers(1)
	want, err := serial.Compute()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	parallel := NewOperator()
	parallel.SetFixed(fixed)
	parallel.SetMoving(moving)
	parallel.SetWorkers(8)
	got, err := parallel.Compute()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	for i := range want.Data {
		if want.Data[i] != got.Data[i] {
			t.Fatalf("Worker count changed bin %d: %v vs %v", i, want.Data[i], got.Data[i])
		}
	}
}

// TestActualSizeTagPropagation verifies that the pre-transform size tag is
// propagated as the minimum of the two inputs' tags, and only when both
// inputs carry one.
func TestActualSizeTagPropagation(t *testing.T) {
	fixed := makeSpectrum([]int{5, 8}, func([]int) complex128 { return 1 })
	moving := makeSpectrum([]int{5, 8}, func([]int) complex128 { return 1 })
	fixed.ActualSize, fixed.ActualSizeSet = 8, true
	moving.ActualSize, moving.ActualSizeSet = 9, true

	op := NewOperator()
	op.SetFixed(fixed)
	op.SetMoving(moving)

	out, err := op.Compute()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !out.ActualSizeSet || out.ActualSize != 8 {
		t.Errorf("Expected propagated tag 8, got %v (set=%v)", out.ActualSize, out.ActualSizeSet)
	}

	moving.ActualSizeSet = false
	out, err = op.Compute()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if out.ActualSizeSet {
		t.Errorf("Expected absent tag when only one input carries one")
	}
}

// TestComputeBandPassZeroesExtremes verifies that bins below the low cut and
// beyond the high cut are suppressed while pass-band bins survive.
func TestComputeBandPassZeroesExtremes(t *testing.T) {
	size := []int{16, 16}
	fill := func([]int) complex128 { return complex(1, 1) }

	op := NewOperator()
	op.SetFixed(makeSpectrum(size, fill))
	op.SetMoving(makeSpectrum(size, fill))

	out, err := op.Compute()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	// maxDist = sqrt(16^2 + 8^2) ~ 17.89; the default low cut ends at
	// ~0.89 bins, so the zero-frequency bin must be suppressed.
	if v := out.At([]int{0, 0}); v != 0 {
		t.Errorf("Expected zero weight at the zero-frequency bin, got %v", v)
	}

	// Distance 5 sits inside the default pass-band [1.79, 8.94].
	v := out.At([]int{5, 0})
	if magn := math.Hypot(real(v), imag(v)); math.Abs(magn-1.0) > 1e-9 {
		t.Errorf("Expected unit magnitude inside the pass-band, got %v", magn)
	}

	// The extreme corner lies at distance 17, beyond the default high cut.
	if v := out.At([]int{15, 8}); v != 0 {
		t.Errorf("Expected zero weight beyond the high cut, got %v", v)
	}
}
