package phasecorr

import (
	"errors"
	"fmt"
	"runtime"
	"sync"
)

// ErrNotReady is returned when the operator is invoked before both input
// spectra have been connected. It signals "no output produced yet" rather
// than a fatal condition; the caller may connect the missing input and
// re-invoke.
var ErrNotReady = errors.New("phasecorr: both input spectra must be set before computing")

// Operator computes the band-limited phase correlation spectrum of a fixed
// and a moving input spectrum. The output geometry is negotiated from the two
// inputs (smaller size, larger spacing, fixed image's start index) and the
// band-pass envelope is resolved once per geometry, so results do not depend
// on how the per-bin work is partitioned across workers.
//
// Inputs are addressed by absolute index: both input buffers must cover the
// resolved output region, which holds whenever they share the fixed image's
// index domain (the usual case for spectra starting at index zero).
type Operator struct {
	fixed  *Image
	moving *Image

	points  ControlPoints
	workers int

	// Cached derived state. envelopeDirty is set whenever the control
	// points or the resolved geometry change, and cleared when the
	// envelope is recomputed at the start of Compute.
	outputGeom    ImageGeometry
	env           envelope
	envelopeDirty bool
}

// NewOperator returns an operator with the default band-pass control points
// and one worker per CPU core.
func NewOperator() *Operator {
	return &Operator{
		points:        DefaultControlPoints(),
		workers:       runtime.NumCPU(),
		envelopeDirty: true,
	}
}

// SetFixed connects the fixed input spectrum.
func (op *Operator) SetFixed(img *Image) {
	op.fixed = img
}

// SetMoving connects the moving input spectrum.
func (op *Operator) SetMoving(img *Image) {
	op.moving = img
}

// SetWorkers sets the number of parallel workers used by Compute.
// Values below 1 fall back to a single worker.
func (op *Operator) SetWorkers(n int) {
	if n < 1 {
		n = 1
	}
	op.workers = n
}

// BandPassControlPoints returns the current band-pass configuration.
func (op *Operator) BandPassControlPoints() ControlPoints {
	return op.points
}

// SetBandPassControlPoints replaces the band-pass configuration after
// validating the ordering and bound invariants. On violation the previous
// configuration stays in effect and the error identifies the failed
// constraint. The cached envelope is invalidated only when the tuple
// actually changes.
func (op *Operator) SetBandPassControlPoints(points ControlPoints) error {
	if points == op.points {
		return nil
	}
	if err := points.validate(); err != nil {
		return err
	}
	op.points = points
	op.envelopeDirty = true
	return nil
}

// ResolveOutputGeometry reconciles the two input geometries into the output
// geometry: per axis, the smaller size, the larger spacing, and the fixed
// image's start index. It returns ErrNotReady while either input is missing
// or unset, leaving any previously resolved geometry untouched. Re-invoking
// with unchanged inputs is idempotent.
func (op *Operator) ResolveOutputGeometry() (ImageGeometry, error) {
	if op.fixed == nil || op.moving == nil ||
		!op.fixed.Geometry.IsSet() || !op.moving.Geometry.IsSet() {
		return ImageGeometry{}, ErrNotReady
	}

	fg, mg := op.fixed.Geometry, op.moving.Geometry
	if fg.Dims() != mg.Dims() {
		return ImageGeometry{}, fmt.Errorf("phasecorr: input dimension mismatch: fixed is %dD, moving is %dD", fg.Dims(), mg.Dims())
	}

	dims := fg.Dims()
	geom := ImageGeometry{
		Size:    make([]int, dims),
		Spacing: make([]float64, dims),
		Index:   make([]int, dims),
	}
	for i := 0; i < dims; i++ {
		geom.Size[i] = fg.Size[i]
		if mg.Size[i] < fg.Size[i] {
			geom.Size[i] = mg.Size[i]
		}
		geom.Spacing[i] = fg.Spacing[i]
		if mg.Spacing[i] > fg.Spacing[i] {
			geom.Spacing[i] = mg.Spacing[i]
		}
		geom.Index[i] = fg.Index[i]
	}

	if !geom.Equal(op.outputGeom) {
		op.outputGeom = geom
		op.envelopeDirty = true
	}
	return geom.Clone(), nil
}

// InputRequestedRegion answers the engine's question "what input region is
// needed to produce the given output region?". The answer is always the full
// extent of both inputs: the envelope thresholds depend on the global output
// size, so no partial input can produce a correct bin.
func (op *Operator) InputRequestedRegion(_ Region) (fixed, moving Region, err error) {
	if op.fixed == nil || op.moving == nil ||
		!op.fixed.Geometry.IsSet() || !op.moving.Geometry.IsSet() {
		return Region{}, Region{}, ErrNotReady
	}
	return op.fixed.Geometry.FullRegion(), op.moving.Geometry.FullRegion(), nil
}

// OutputRequestedRegion answers "what output region will actually be
// produced for the given request?". Any request, including a strict
// sub-region, is enlarged to the full output extent so downstream peak
// search always sees a complete correlation spectrum.
func (op *Operator) OutputRequestedRegion(_ Region) (Region, error) {
	geom, err := op.ResolveOutputGeometry()
	if err != nil {
		return Region{}, err
	}
	return geom.FullRegion(), nil
}

// Compute produces the band-limited phase correlation spectrum. The output
// geometry, the maximum radial distance, and the envelope thresholds are
// resolved once before any parallel work; workers then fill disjoint slabs
// of the output, reading the shared inputs without synchronization.
func (op *Operator) Compute() (*Image, error) {
	geom, err := op.ResolveOutputGeometry()
	if err != nil {
		return nil, err
	}

	if op.envelopeDirty {
		op.env = newEnvelope(op.points, maxDistance(op.outputGeom))
		op.envelopeDirty = false
	}
	env := op.env

	out := NewImage(geom)
	if op.fixed.ActualSizeSet && op.moving.ActualSizeSet {
		out.ActualSize = op.fixed.ActualSize
		if op.moving.ActualSize < out.ActualSize {
			out.ActualSize = op.moving.ActualSize
		}
		out.ActualSizeSet = true
	}

	// Partition along the outermost axis so each worker owns a contiguous
	// slab of the output. Regions are disjoint, so no locking is needed.
	axis := geom.Dims() - 1
	regions := partition(geom.FullRegion(), axis, op.workers)

	var wg sync.WaitGroup
	for _, region := range regions {
		wg.Add(1)
		go func(r Region) {
			defer wg.Done()
			op.computeRegion(out, env, r)
		}(region)
	}
	wg.Wait()

	return out, nil
}

// partition splits a region into at most n slabs along the given axis.
func partition(full Region, axis, n int) []Region {
	size := full.Size[axis]
	if n > size {
		n = size
	}
	chunk := (size + n - 1) / n

	var regions []Region
	for start := 0; start < size; start += chunk {
		r := Region{
			Index: append([]int(nil), full.Index...),
			Size:  append([]int(nil), full.Size...),
		}
		r.Index[axis] = full.Index[axis] + start
		r.Size[axis] = chunk
		if start+chunk > size {
			r.Size[axis] = size - start
		}
		regions = append(regions, r)
	}
	return regions
}

// computeRegion walks every bin of the assigned region, combining the
// band-pass weight at the bin's radial distance with the phase-normalized
// cross-power of the two input samples.
func (op *Operator) computeRegion(out *Image, env envelope, region Region) {
	dims := len(region.Size)
	ind := append([]int(nil), region.Index...)

	for {
		dist := distanceFromZero(out.Geometry, ind)
		w := env.weight(dist)
		v := normalizeCrossPower(op.fixed.At(ind), op.moving.At(ind))
		out.Set(ind, complex(w*real(v), w*imag(v)))

		// Advance the multi-index, axis 0 fastest.
		k := 0
		for k < dims {
			ind[k]++
			if ind[k] < region.Index[k]+region.Size[k] {
				break
			}
			ind[k] = region.Index[k]
			k++
		}
		if k == dims {
			return
		}
	}
}
