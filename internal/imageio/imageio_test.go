package imageio_test

import (
	"context"
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"perceptual-diff/internal/imageio"
	"perceptual-diff/internal/storage"
	"strings"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/google/go-cmp/cmp"
)

func checkerboard(width, height int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if (x+y)%2 == 0 {
				img.SetNRGBA(x, y, color.NRGBA{R: 200, G: 1, B: 1, A: 255})
			} else {
				img.SetNRGBA(x, y, color.NRGBA{R: 10, G: 20, B: 30, A: 255})
			}
		}
	}
	return img
}

func TestRoundTrip(t *testing.T) {
	want := checkerboard(5, 3)

	for _, format := range []imaging.Format{imaging.PNG, imaging.BMP, imaging.TIFF} {
		t.Run(format.String(), func(t *testing.T) {
			data, err := imageio.EncodeBytes(want, format)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}

			got, err := imageio.DecodeBytes(data)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}

			if diff := cmp.Diff(want.Bounds(), got.Bounds()); diff != "" {
				t.Fatalf("(-want +got):\n%s", diff)
			}
			for y := 0; y < 3; y++ {
				for x := 0; x < 5; x++ {
					w := color.NRGBAModel.Convert(want.At(x, y))
					g := color.NRGBAModel.Convert(got.At(x, y))
					if w != g {
						t.Errorf("(%d,%d): expected %v, got %v", x, y, w, g)
					}
				}
			}
		})
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, err := imageio.DecodeBytes([]byte("definitely not an image"))
	if !errors.Is(err, image.ErrFormat) {
		t.Errorf("Expected image.ErrFormat, got %v", err)
	}
}

// withOrientation inserts an EXIF APP1 segment carrying orientation right after the JPEG SOI marker.
func withOrientation(t *testing.T, jpeg []byte, orientation byte) []byte {
	t.Helper()
	if len(jpeg) < 2 || jpeg[0] != 0xff || jpeg[1] != 0xd8 {
		t.Fatalf("Expected a JPEG stream")
	}
	app1 := []byte{
		0xff, 0xe1, 0x00, 0x22,
		'E', 'x', 'i', 'f', 0x00, 0x00,
		'M', 'M', 0x00, 0x2a, 0x00, 0x00, 0x00, 0x08,
		0x00, 0x01,
		0x01, 0x12, 0x00, 0x03, 0x00, 0x00, 0x00, 0x01, 0x00, orientation, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00,
	}
	out := append([]byte{}, jpeg[:2]...)
	out = append(out, app1...)
	return append(out, jpeg[2:]...)
}

func TestDecodeOrientation(t *testing.T) {
	plain, err := imageio.EncodeBytes(checkerboard(4, 2), imaging.JPEG)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	// 6 means the stored pixels must be rotated 90 degrees clockwise for display.
	rotated := withOrientation(t, plain, 6)

	t.Run("IgnoredByDefault", func(t *testing.T) {
		img, err := imageio.DecodeBytes(rotated)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if diff := cmp.Diff(image.Rect(0, 0, 4, 2), img.Bounds()); diff != "" {
			t.Errorf("(-want +got):\n%s", diff)
		}
	})

	t.Run("AppliedOnRequest", func(t *testing.T) {
		img, err := imageio.DecodeBytes(rotated, imaging.AutoOrientation(true))
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if diff := cmp.Diff(image.Rect(0, 0, 2, 4), img.Bounds()); diff != "" {
			t.Errorf("(-want +got):\n%s", diff)
		}
	})
}

func TestFormatFor(t *testing.T) {
	tests := map[string]imaging.Format{
		"diff.png":  imaging.PNG,
		"diff.JPG":  imaging.JPEG,
		"diff.jpeg": imaging.JPEG,
		"diff.bmp":  imaging.BMP,
		"diff.tiff": imaging.TIFF,
		"diff":      imaging.PNG,
		"diff.webp": imaging.PNG,
		"a/b/c.gif": imaging.GIF,
	}
	for name, want := range tests {
		if got := imageio.FormatFor(name); got != want {
			t.Errorf("%s: expected %v, got %v", name, want, got)
		}
	}
}

func TestLoadPair(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	write := func(name string, img image.Image) string {
		t.Helper()
		data, err := imageio.EncodeBytes(img, imaging.PNG)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, data, 0644); err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		return path
	}

	s, err := storage.NewFileStorage(ctx, storage.FileConfig{Directory: dir})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	t.Run("Success", func(t *testing.T) {
		baseline, target, err := imageio.LoadPair(ctx, s, write("baseline.png", checkerboard(4, 4)), write("target.png", checkerboard(6, 2)))
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if diff := cmp.Diff(image.Rect(0, 0, 4, 4), baseline.Bounds()); diff != "" {
			t.Errorf("(-want +got):\n%s", diff)
		}
		if diff := cmp.Diff(image.Rect(0, 0, 6, 2), target.Bounds()); diff != "" {
			t.Errorf("(-want +got):\n%s", diff)
		}
	})

	t.Run("MissingBaseline", func(t *testing.T) {
		_, _, err := imageio.LoadPair(ctx, s, filepath.Join(dir, "missing.png"), write("present.png", checkerboard(1, 1)))
		if err == nil || !strings.Contains(err.Error(), "baseline") {
			t.Errorf("Expected a baseline error, got %v", err)
		}
	})

	t.Run("UndecodableTarget", func(t *testing.T) {
		garbage := filepath.Join(dir, "garbage.png")
		if err := os.WriteFile(garbage, []byte("garbage"), 0644); err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		_, _, err := imageio.LoadPair(ctx, s, write("ok.png", checkerboard(1, 1)), garbage)
		if !errors.Is(err, image.ErrFormat) {
			t.Errorf("Expected image.ErrFormat, got %v", err)
		}
	})
}
