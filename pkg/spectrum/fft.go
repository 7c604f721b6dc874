// Package spectrum converts real 2D images to and from the half-complex
// frequency-domain representation consumed by the phase correlation operator.
// Rows are transformed with a real FFT, which stores only the non-negative
// frequencies (width/2+1 bins); columns are transformed with a full complex
// FFT. The pre-transform width travels with the spectrum as a metadata tag so
// the inverse transform can recover the original extent, which the halved
// axis alone cannot encode (even and odd widths collapse onto the same bin
// count).
package spectrum

import (
	"fmt"

	"gonum.org/v1/gonum/dsp/fourier"

	"phasereg/pkg/phasecorr"
)

// Forward computes the half-complex frequency spectrum of a real width x
// height image stored in row-major order.
//
// Parameters:
//   - pixels: image samples, len must equal width*height
//   - width, height: image dimensions in pixels
//
// Returns:
//   - A spectrum image of size (width/2+1) x height with unit spacing, zero
//     start index, and the actual pre-transform width attached as metadata
func Forward(pixels []float64, width, height int) (*phasecorr.Image, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("spectrum: image dimensions must be positive, got %dx%d", width, height)
	}
	if len(pixels) != width*height {
		return nil, fmt.Errorf("spectrum: expected %d samples for a %dx%d image, got %d", width*height, width, height, len(pixels))
	}

	halfW := width/2 + 1
	img := phasecorr.NewImage(phasecorr.ImageGeometry{
		Size:    []int{halfW, height},
		Spacing: []float64{1, 1},
		Index:   []int{0, 0},
	})

	// Row-wise real FFT: each row of width samples becomes halfW
	// half-complex coefficients.
	fft := fourier.NewFFT(width)
	coeff := make([]complex128, halfW)
	for y := 0; y < height; y++ {
		fft.Coefficients(coeff, pixels[y*width:(y+1)*width])
		copy(img.Data[y*halfW:(y+1)*halfW], coeff)
	}

	// Column-wise complex FFT over the full height.
	cfft := fourier.NewCmplxFFT(height)
	col := make([]complex128, height)
	out := make([]complex128, height)
	for x := 0; x < halfW; x++ {
		for y := 0; y < height; y++ {
			col[y] = img.Data[y*halfW+x]
		}
		cfft.Coefficients(out, col)
		for y := 0; y < height; y++ {
			img.Data[y*halfW+x] = out[y]
		}
	}

	img.ActualSize = width
	img.ActualSizeSet = true
	return img, nil
}

// Inverse transforms a half-complex 2D spectrum back into a real image,
// undoing Forward including the 1/(width*height) normalization. The spatial
// width is taken from the spectrum's actual-size tag when present; without a
// tag an even width of 2*(bins-1) is assumed.
//
// Returns the image samples in row-major order together with the recovered
// width and height.
func Inverse(img *phasecorr.Image) ([]float64, int, int, error) {
	if img.Geometry.Dims() != 2 {
		return nil, 0, 0, fmt.Errorf("spectrum: expected a 2D spectrum, got %dD", img.Geometry.Dims())
	}

	halfW := img.Geometry.Size[0]
	height := img.Geometry.Size[1]
	width := 2 * (halfW - 1)
	if img.ActualSizeSet {
		width = img.ActualSize
	}
	if width/2+1 != halfW {
		return nil, 0, 0, fmt.Errorf("spectrum: actual width %d is inconsistent with %d half-complex bins", width, halfW)
	}

	// Undo the column transform first.
	rows := make([]complex128, halfW*height)
	cfft := fourier.NewCmplxFFT(height)
	col := make([]complex128, height)
	out := make([]complex128, height)
	for x := 0; x < halfW; x++ {
		for y := 0; y < height; y++ {
			col[y] = img.Data[y*halfW+x]
		}
		cfft.Sequence(out, col)
		for y := 0; y < height; y++ {
			rows[y*halfW+x] = out[y] / complex(float64(height), 0)
		}
	}

	// Then the row transform, back to real samples.
	pixels := make([]float64, width*height)
	fft := fourier.NewFFT(width)
	row := make([]float64, width)
	for y := 0; y < height; y++ {
		fft.Sequence(row, rows[y*halfW:(y+1)*halfW])
		for x := 0; x < width; x++ {
			pixels[y*width+x] = row[x] / float64(width)
		}
	}

	return pixels, width, height, nil
}
