package image

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNewBuffer(t *testing.T) {
	t.Run("RGB", func(t *testing.T) {
		img, err := NewBuffer(2, 1, 3, []uint8{1, 2, 3, 4, 5, 6})
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if diff := cmp.Diff([]uint8{1, 2, 3, 255, 4, 5, 6, 255}, img.Pix); diff != "" {
			t.Errorf("(-want +got):\n%s", diff)
		}
	})

	t.Run("RGBA", func(t *testing.T) {
		samples := []uint8{1, 2, 3, 4, 5, 6, 7, 8}
		img, err := NewBuffer(1, 2, 4, samples)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if diff := cmp.Diff(samples, img.Pix); diff != "" {
			t.Errorf("(-want +got):\n%s", diff)
		}
		if diff := cmp.Diff(image.Rect(0, 0, 1, 2), img.Bounds()); diff != "" {
			t.Errorf("(-want +got):\n%s", diff)
		}
	})

	t.Run("Invalid", func(t *testing.T) {
		cases := []struct {
			name     string
			width    int
			height   int
			channels int
			samples  []uint8
		}{
			{"ShortSamples", 2, 2, 3, make([]uint8, 11)},
			{"LongSamples", 1, 1, 4, make([]uint8, 5)},
			{"TwoChannels", 1, 1, 2, make([]uint8, 2)},
			{"NegativeWidth", -1, 1, 3, nil},
		}
		for _, c := range cases {
			if _, err := NewBuffer(c.width, c.height, c.channels, c.samples); !errors.Is(err, ErrInvalidArgument) {
				t.Errorf("%s: expected ErrInvalidArgument, got %v", c.name, err)
			}
		}
	})
}

func TestPixelReader(t *testing.T) {
	t.Run("PremultipliedRGBA", func(t *testing.T) {
		img := image.NewRGBA(image.Rect(0, 0, 1, 1))
		img.SetRGBA(0, 0, color.RGBA{R: 50, G: 25, B: 0, A: 127})

		got := newPixelReader(img).at(0, 0)

		want := color.NRGBAModel.Convert(color.RGBA{R: 50, G: 25, B: 0, A: 127}).(color.NRGBA)
		if diff := cmp.Diff(RGBColor{R: want.R, G: want.G, B: want.B, A: want.A}, got); diff != "" {
			t.Errorf("(-want +got):\n%s", diff)
		}
	})

	t.Run("Gray", func(t *testing.T) {
		img := image.NewGray(image.Rect(0, 0, 1, 1))
		img.SetGray(0, 0, color.Gray{Y: 77})

		got := newPixelReader(img).at(0, 0)

		if diff := cmp.Diff(RGBColor{R: 77, G: 77, B: 77, A: 255}, got); diff != "" {
			t.Errorf("(-want +got):\n%s", diff)
		}
	})
}

func TestBoundingBox(t *testing.T) {
	var box *BoundingBox
	for _, p := range []image.Point{{4, 7}, {2, 9}, {6, 1}} {
		box = extend(box, p.X, p.Y)
	}

	want := &BoundingBox{XMin: 2, YMin: 1, XMax: 6, YMax: 9}
	if diff := cmp.Diff(want, box); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(image.Rect(2, 1, 7, 10), box.Rectangle()); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
	if got := box.Rectangle().Size(); got != image.Pt(5, 9) {
		t.Errorf("Expected 5x9, got %v", got)
	}

	if union(nil, nil) != nil {
		t.Errorf("Expected union of empty boxes to stay empty")
	}
	if diff := cmp.Diff(want, union(nil, box)); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
	merged := union(box, &BoundingBox{XMin: 0, YMin: 3, XMax: 3, YMax: 12})
	if diff := cmp.Diff(&BoundingBox{XMin: 0, YMin: 1, XMax: 6, YMax: 12}, merged); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}
