package image

import (
	"fmt"
	"image"
)

// BoundingBox is the inclusive rectangle around a non-empty set of differing pixels.
// The absence of differences is a nil *BoundingBox.
type BoundingBox struct {
	XMin int `json:"xmin"`
	YMin int `json:"ymin"`
	XMax int `json:"xmax"`
	YMax int `json:"ymax"`
}

func (b BoundingBox) String() string {
	return fmt.Sprintf("(%d,%d)-(%d,%d)", b.XMin, b.YMin, b.XMax, b.YMax)
}

// Rectangle converts to the half-open image.Rectangle covering the same pixels.
func (b BoundingBox) Rectangle() image.Rectangle {
	return image.Rect(b.XMin, b.YMin, b.XMax+1, b.YMax+1)
}

func extend(b *BoundingBox, x int, y int) *BoundingBox {
	if b == nil {
		return &BoundingBox{XMin: x, YMin: y, XMax: x, YMax: y}
	}
	b.XMin = min(b.XMin, x)
	b.YMin = min(b.YMin, y)
	b.XMax = max(b.XMax, x)
	b.YMax = max(b.YMax, y)
	return b
}

func union(l *BoundingBox, r *BoundingBox) *BoundingBox {
	switch {
	case l == nil && r == nil:
		return nil
	case l == nil:
		u := *r
		return &u
	case r == nil:
		u := *l
		return &u
	}
	return &BoundingBox{
		XMin: min(l.XMin, r.XMin),
		YMin: min(l.YMin, r.YMin),
		XMax: max(l.XMax, r.XMax),
		YMax: max(l.YMax, r.YMax),
	}
}
