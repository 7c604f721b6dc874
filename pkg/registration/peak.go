package registration

import (
	"sync"

	"phasereg/internal/models"
)

// findPeak locates the maximum of the correlation surface. The scan is split
// into horizontal bands processed by independent workers; each band reports
// its local maximum and the largest one wins. Ties resolve to the lowest
// linear index so the result is deterministic regardless of worker count.
func (r *Registrar) findPeak(surface []float64, width, height int) models.Peak {
	workers := r.params.Workers
	if workers > height {
		workers = height
	}
	chunk := (height + workers - 1) / workers

	results := make(chan models.Peak, workers)
	var wg sync.WaitGroup
	for start := 0; start < height; start += chunk {
		end := start + chunk
		if end > height {
			end = height
		}
		wg.Add(1)
		go func(y0, y1 int) {
			defer wg.Done()
			best := models.Peak{X: 0, Y: y0, Value: surface[y0*width]}
			for y := y0; y < y1; y++ {
				for x := 0; x < width; x++ {
					if v := surface[y*width+x]; v > best.Value {
						best = models.Peak{X: x, Y: y, Value: v}
					}
				}
			}
			results <- best
		}(start, end)
	}
	wg.Wait()
	close(results)

	var peak models.Peak
	first := true
	for p := range results {
		if first || p.Value > peak.Value ||
			(p.Value == peak.Value && p.Y*width+p.X < peak.Y*width+peak.X) {
			peak = p
			first = false
		}
	}
	return peak
}
