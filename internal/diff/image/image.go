package image

import "image"

type DiffResult struct {
	// Equal is true when the extents match and no overlapping pixel differs.
	Equal bool `json:"equal"`
	// ExtentMismatch is true when the two images differ in width or height.
	ExtentMismatch bool `json:"extentMismatch"`
	// BoundingBox covers the differing pixels of the overlap, nil when there are none.
	BoundingBox *BoundingBox `json:"boundingBox"`
	DiffPixels  int          `json:"diffPixels"`
	// DiffAmount is DiffPixels divided by the overlap area.
	DiffAmount float64 `json:"diffAmount"`
}

type Differ interface {
	Compare(baseline image.Image, target image.Image) *DiffResult
	Render(baseline image.Image, target image.Image) *image.RGBA
}

// Compare runs a single comparison of img1 against img2 with the given comparator.
func Compare(img1 image.Image, img2 image.Image, comparator Comparator) *DiffResult {
	return NewPixelDiff(comparator).Compare(img1, img2)
}

// RenderDiff renders the union-sized highlight image for img1 against img2.
// comparator must be the one that produced the DiffResult being visualized.
func RenderDiff(img1 image.Image, img2 image.Image, comparator Comparator) *image.RGBA {
	return NewPixelDiff(comparator).Render(img1, img2)
}

const (
	FormatPixel     = "pixel"
	FormatRectangle = "rectangle"
)

// NewDiffer returns the differ for an output format ("pixel" or "rectangle").
func NewDiffer(format string, comparator Comparator, opts ...Option) (Differ, error) {
	switch format {
	case "", FormatPixel:
		return NewPixelDiff(comparator, opts...), nil
	case FormatRectangle:
		return NewRectangleDiff(comparator, opts...), nil
	default:
		return nil, errUnknownFormat(format)
	}
}
