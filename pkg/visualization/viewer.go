// Package visualization renders correlation surfaces as grayscale images for
// visual inspection of registration results.
package visualization

import (
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
)

// SurfaceView renders a 2D correlation surface.
type SurfaceView struct {
	// surface holds the correlation values in row-major order
	surface []float64

	// dimensions of the surface
	width  int
	height int
}

// NewSurfaceView creates a viewer for a width x height correlation surface.
func NewSurfaceView(surface []float64, width, height int) (*SurfaceView, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("surface dimensions must be positive, got %dx%d", width, height)
	}
	if len(surface) != width*height {
		return nil, fmt.Errorf("expected %d surface values, got %d", width*height, len(surface))
	}
	return &SurfaceView{
		surface: surface,
		width:   width,
		height:  height,
	}, nil
}

// Render produces a Gray16 image of the surface with values stretched over
// the full intensity range. With centered set, the quadrants are swapped so
// the zero-shift position sits at the image center instead of the corner,
// which is how correlation surfaces are usually inspected.
func (v *SurfaceView) Render(centered bool) image.Image {
	min, max := v.surface[0], v.surface[0]
	for _, s := range v.surface {
		if s < min {
			min = s
		}
		if s > max {
			max = s
		}
	}
	scale := 0.0
	if max > min {
		scale = 65535.0 / (max - min)
	}

	img := image.NewGray16(image.Rect(0, 0, v.width, v.height))
	for y := 0; y < v.height; y++ {
		for x := 0; x < v.width; x++ {
			srcX, srcY := x, y
			if centered {
				srcX = (x + (v.width+1)/2) % v.width
				srcY = (y + (v.height+1)/2) % v.height
			}
			value := uint16((v.surface[srcY*v.width+srcX] - min) * scale)
			img.SetGray16(x, y, color.Gray16{Y: value})
		}
	}
	return img
}

// Save renders the surface and writes it as a JPEG image.
func (v *SurfaceView) Save(path string, centered bool) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return jpeg.Encode(file, v.Render(centered), &jpeg.Options{Quality: 90})
}
