// Package imageio decodes inputs in any supported codec and encodes rendered diffs.
package imageio

import (
	"bytes"
	"context"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"path/filepath"
	"perceptual-diff/internal/storage"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
	"golang.org/x/sync/errgroup"
	"golang.org/x/xerrors"
)

// Decode reads an image as stored. EXIF orientation is ignored unless
// imaging.AutoOrientation(true) is passed.
func Decode(r io.Reader, opts ...imaging.DecodeOption) (image.Image, error) {
	img, err := imaging.Decode(r, opts...)
	if err != nil {
		return nil, xerrors.Errorf("failed to decode image: %w", err)
	}
	return img, nil
}

func DecodeBytes(data []byte, opts ...imaging.DecodeOption) (image.Image, error) {
	return Decode(bytes.NewReader(data), opts...)
}

// FormatFor picks the output codec from a file name, PNG when it has no known extension.
func FormatFor(name string) imaging.Format {
	if filepath.Ext(name) == "" {
		return imaging.PNG
	}
	format, err := imaging.FormatFromFilename(name)
	if err != nil {
		return imaging.PNG
	}
	return format
}

func Encode(w io.Writer, img image.Image, format imaging.Format) error {
	if err := imaging.Encode(w, img, format, imaging.JPEGQuality(95)); err != nil {
		return xerrors.Errorf("failed to encode %s: %w", format, err)
	}
	return nil
}

func EncodeBytes(img image.Image, format imaging.Format) ([]byte, error) {
	var buffer bytes.Buffer
	if err := Encode(&buffer, img, format); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}

// LoadPair fetches and decodes both images concurrently.
func LoadPair(ctx context.Context, s storage.Storage, baselineURL string, targetURL string, opts ...imaging.DecodeOption) (image.Image, image.Image, error) {
	var baseline, target image.Image

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		img, err := load(ctx, s, baselineURL, opts)
		if err != nil {
			return xerrors.Errorf("failed to load baseline image: %w", err)
		}
		baseline = img
		return nil
	})
	eg.Go(func() error {
		img, err := load(ctx, s, targetURL, opts)
		if err != nil {
			return xerrors.Errorf("failed to load target image: %w", err)
		}
		target = img
		return nil
	})
	if err := eg.Wait(); err != nil {
		return nil, nil, err
	}

	return baseline, target, nil
}

func load(ctx context.Context, s storage.Storage, url string, opts []imaging.DecodeOption) (image.Image, error) {
	data, err := s.Get(ctx, url)
	if err != nil {
		return nil, err
	}
	img, err := DecodeBytes(data, opts...)
	if err != nil {
		return nil, xerrors.Errorf("%s: %w", url, err)
	}
	return img, nil
}
