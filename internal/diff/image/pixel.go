package image

import (
	"image"
	"runtime"
	"sync"
)

type PixelDiff struct {
	comparator Comparator
	workers    int
}

type Option func(*PixelDiff)

// WithWorkers caps the number of goroutines scanning rows. Values below 1 fall back to GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(p *PixelDiff) {
		p.workers = n
	}
}

func NewPixelDiff(comparator Comparator, opts ...Option) *PixelDiff {
	p := &PixelDiff{
		comparator: comparator,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

type rowChunk struct {
	startY int
	endY   int
}

func (p *PixelDiff) rowChunks(height int) []rowChunk {
	numWorkers := p.workers
	if numWorkers < 1 {
		// Use GOMAXPROCS instead of runtime.NumCPU() to consider cgroup.
		// https://tip.golang.org/doc/go1.25#container-aware-gomaxprocs
		numWorkers = runtime.GOMAXPROCS(0)
	}
	numWorkers = max(min(numWorkers, height), 1)

	rowsPerWorker := height / numWorkers
	chunks := make([]rowChunk, numWorkers)
	for i := 0; i < numWorkers; i++ {
		startY := i * rowsPerWorker
		endY := startY + rowsPerWorker
		if i == numWorkers-1 {
			endY = height
		}
		chunks[i] = rowChunk{startY: startY, endY: endY}
	}
	return chunks
}

type partialResult struct {
	diffPixels  int
	boundingBox *BoundingBox
}

// Compare scans the overlap of both images. Pixels outside the overlap are not compared;
// a size difference is reported through ExtentMismatch and makes the result unequal.
func (p *PixelDiff) Compare(baseline image.Image, target image.Image) *DiffResult {
	bw, bh := size(baseline)
	tw, th := size(target)
	extentMismatch := bw != tw || bh != th

	width := min(bw, tw)
	height := min(bh, th)

	baselinePixels := newPixelReader(baseline)
	targetPixels := newPixelReader(target)

	chunks := p.rowChunks(height)
	partials := make([]partialResult, len(chunks))

	var wg sync.WaitGroup
	wg.Add(len(chunks))

	for i, chunk := range chunks {
		go func(i int, startY int, endY int) {
			defer wg.Done()

			var local partialResult
			for y := startY; y < endY; y++ {
				for x := 0; x < width; x++ {
					if !p.comparator.Equal(baselinePixels.at(x, y), targetPixels.at(x, y)) {
						local.diffPixels++
						local.boundingBox = extend(local.boundingBox, x, y)
					}
				}
			}
			partials[i] = local
		}(i, chunk.startY, chunk.endY)
	}

	wg.Wait()

	result := &DiffResult{
		ExtentMismatch: extentMismatch,
	}
	for _, partial := range partials {
		result.DiffPixels += partial.diffPixels
		result.BoundingBox = union(result.BoundingBox, partial.boundingBox)
	}

	if area := width * height; area > 0 {
		result.DiffAmount = float64(result.DiffPixels) / float64(area)
	}
	result.Equal = !extentMismatch && result.DiffPixels == 0

	return result
}

// Render returns an image sized to the union of both inputs. Matching overlap pixels keep the
// baseline colour made opaque; differing pixels and everything outside the overlap are HighlightColor.
func (p *PixelDiff) Render(baseline image.Image, target image.Image) *image.RGBA {
	bw, bh := size(baseline)
	tw, th := size(target)

	minWidth := min(bw, tw)
	minHeight := min(bh, th)
	width := max(bw, tw)
	height := max(bh, th)

	diff := image.NewRGBA(image.Rect(0, 0, width, height))

	baselinePixels := newPixelReader(baseline)
	targetPixels := newPixelReader(target)

	chunks := p.rowChunks(height)

	var wg sync.WaitGroup
	wg.Add(len(chunks))

	for _, chunk := range chunks {
		go func(startY int, endY int) {
			defer wg.Done()

			for y := startY; y < endY; y++ {
				diffRowStart := diff.PixOffset(0, y)
				for x := 0; x < width; x++ {
					c := HighlightColor
					if x < minWidth && y < minHeight {
						bc := baselinePixels.at(x, y)
						if p.comparator.Equal(bc, targetPixels.at(x, y)) {
							c = bc.opaque()
						}
					}

					diffOffset := diffRowStart + x*4
					diff.Pix[diffOffset] = c.R
					diff.Pix[diffOffset+1] = c.G
					diff.Pix[diffOffset+2] = c.B
					diff.Pix[diffOffset+3] = c.A
				}
			}
		}(chunk.startY, chunk.endY)
	}

	wg.Wait()

	return diff
}
