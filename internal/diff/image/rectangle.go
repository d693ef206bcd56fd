package image

import (
	"image"
	"image/draw"
)

const outlineThickness = 3

// RectangleDiff outlines the bounding box of differences on top of the baseline.
type RectangleDiff struct {
	pixel *PixelDiff
}

func NewRectangleDiff(comparator Comparator, opts ...Option) *RectangleDiff {
	return &RectangleDiff{
		pixel: NewPixelDiff(comparator, opts...),
	}
}

func (r *RectangleDiff) Compare(baseline image.Image, target image.Image) *DiffResult {
	return r.pixel.Compare(baseline, target)
}

func (r *RectangleDiff) Render(baseline image.Image, target image.Image) *image.RGBA {
	result := r.pixel.Compare(baseline, target)

	bw, bh := size(baseline)
	tw, th := size(target)
	minWidth := min(bw, tw)
	minHeight := min(bh, th)

	canvas := image.NewRGBA(image.Rect(0, 0, max(bw, tw), max(bh, th)))
	draw.Draw(canvas, canvas.Bounds(), &image.Uniform{C: HighlightColor}, image.Point{}, draw.Src)

	baselinePixels := newPixelReader(baseline)
	for y := 0; y < minHeight; y++ {
		for x := 0; x < minWidth; x++ {
			canvas.SetRGBA(x, y, baselinePixels.at(x, y).opaque())
		}
	}

	if result.BoundingBox != nil {
		drawOutline(canvas, *result.BoundingBox)
	}

	return canvas
}

// drawOutline strokes the box outside its edges so the differing pixels stay visible.
// Strokes are clipped to the canvas.
func drawOutline(canvas *image.RGBA, box BoundingBox) {
	bounds := canvas.Bounds()
	uniform := &image.Uniform{C: HighlightColor}

	for thickness := 1; thickness <= outlineThickness; thickness++ {
		outer := box.Rectangle().Inset(-thickness)
		edges := []image.Rectangle{
			image.Rect(outer.Min.X, outer.Min.Y, outer.Max.X, outer.Min.Y+1),
			image.Rect(outer.Min.X, outer.Max.Y-1, outer.Max.X, outer.Max.Y),
			image.Rect(outer.Min.X, outer.Min.Y, outer.Min.X+1, outer.Max.Y),
			image.Rect(outer.Max.X-1, outer.Min.Y, outer.Max.X, outer.Max.Y),
		}
		for _, edge := range edges {
			edge = edge.Intersect(bounds)
			if edge.Empty() {
				continue
			}
			draw.Draw(canvas, edge, uniform, image.Point{}, draw.Src)
		}
	}
}
