// Package phasecorr computes the band-limited, phase-normalized cross-power
// spectrum of two frequency-domain images. The phase of the resulting spectrum
// encodes the translational shift between the two source images; transforming
// it back to the spatial domain yields a correlation surface whose peak marks
// that shift.
//
// The package assumes the half-complex storage convention produced by a real
// FFT: axis 0 holds only the non-negative frequencies, while every higher axis
// stores the full periodic spectrum.
package phasecorr

// ImageGeometry describes the discrete grid of a frequency-domain image:
// per-axis size in bins, physical spacing, and the start index of the grid.
// All three slices have one entry per dimension.
type ImageGeometry struct {
	// Size is the number of bins along each axis. All entries must be positive.
	Size []int

	// Spacing is the physical spacing between bins along each axis in
	// arbitrary units (typically mm). All entries must be positive.
	Spacing []float64

	// Index is the start index of the grid along each axis.
	Index []int
}

// Dims returns the number of dimensions of the geometry.
func (g ImageGeometry) Dims() int {
	return len(g.Size)
}

// IsSet reports whether the geometry has been populated.
// The zero value of ImageGeometry is "unset".
func (g ImageGeometry) IsSet() bool {
	return len(g.Size) > 0
}

// NumBins returns the total number of bins described by the geometry.
func (g ImageGeometry) NumBins() int {
	if !g.IsSet() {
		return 0
	}
	n := 1
	for _, s := range g.Size {
		n *= s
	}
	return n
}

// Clone returns a deep copy of the geometry.
func (g ImageGeometry) Clone() ImageGeometry {
	out := ImageGeometry{
		Size:    make([]int, len(g.Size)),
		Spacing: make([]float64, len(g.Spacing)),
		Index:   make([]int, len(g.Index)),
	}
	copy(out.Size, g.Size)
	copy(out.Spacing, g.Spacing)
	copy(out.Index, g.Index)
	return out
}

// Equal reports whether two geometries describe the same grid.
func (g ImageGeometry) Equal(other ImageGeometry) bool {
	if len(g.Size) != len(other.Size) {
		return false
	}
	for i := range g.Size {
		if g.Size[i] != other.Size[i] ||
			g.Spacing[i] != other.Spacing[i] ||
			g.Index[i] != other.Index[i] {
			return false
		}
	}
	return true
}

// Region is a rectangular sub-block of an image, described by its start
// index and per-axis size. It is the unit of work handed to each worker and
// the currency of the region negotiation protocol.
type Region struct {
	Index []int
	Size  []int
}

// FullRegion returns the region covering the entire geometry.
func (g ImageGeometry) FullRegion() Region {
	r := Region{
		Index: make([]int, len(g.Index)),
		Size:  make([]int, len(g.Size)),
	}
	copy(r.Index, g.Index)
	copy(r.Size, g.Size)
	return r
}

// Image is a dense N-dimensional complex frequency image. Samples are stored
// in a flat slice with axis 0 varying fastest, matching the half-complex row
// layout emitted by a real FFT.
type Image struct {
	// Geometry describes the grid the samples live on.
	Geometry ImageGeometry

	// Data holds the complex samples, axis 0 fastest-varying.
	Data []complex128

	// ActualSize is the pre-transform size of the source image along the
	// half-complex axis. The forward FFT halves that axis, so the original
	// extent cannot be recovered from Size alone (even and odd widths
	// collapse onto the same bin count). Inverse-transform stages read this
	// tag to reconstruct the correct spatial extent.
	ActualSize int

	// ActualSizeSet reports whether ActualSize carries a value.
	ActualSizeSet bool
}

// NewImage allocates a zero-filled image conforming to the given geometry.
func NewImage(geom ImageGeometry) *Image {
	return &Image{
		Geometry: geom.Clone(),
		Data:     make([]complex128, geom.NumBins()),
	}
}

// offset converts an absolute multi-index into a position in Data.
// The index is interpreted relative to the image's own start index.
func (im *Image) offset(ind []int) int {
	off := 0
	stride := 1
	for k := 0; k < len(ind); k++ {
		off += (ind[k] - im.Geometry.Index[k]) * stride
		stride *= im.Geometry.Size[k]
	}
	return off
}

// At returns the sample at the given absolute multi-index.
func (im *Image) At(ind []int) complex128 {
	return im.Data[im.offset(ind)]
}

// Set stores a sample at the given absolute multi-index.
func (im *Image) Set(ind []int, v complex128) {
	im.Data[im.offset(ind)] = v
}
