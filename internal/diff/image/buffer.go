package image

import (
	"image"
	"image/color"

	"golang.org/x/xerrors"
)

func errUnknownFormat(format string) error {
	return xerrors.Errorf("unknown diff format %q: %w", format, ErrInvalidArgument)
}

// NewBuffer wraps row-major RGB (channels == 3) or RGBA (channels == 4) samples in an
// *image.NRGBA. RGB samples are given an opaque alpha.
func NewBuffer(width int, height int, channels int, samples []uint8) (*image.NRGBA, error) {
	if width < 0 || height < 0 {
		return nil, xerrors.Errorf("invalid dimensions %dx%d: %w", width, height, ErrInvalidArgument)
	}
	if channels != 3 && channels != 4 {
		return nil, xerrors.Errorf("unsupported channel count %d: %w", channels, ErrInvalidArgument)
	}
	if len(samples) != width*height*channels {
		return nil, xerrors.Errorf("expected %d samples for %dx%dx%d, got %d: %w", width*height*channels, width, height, channels, len(samples), ErrInvalidArgument)
	}

	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	if channels == 4 {
		copy(img.Pix, samples)
		return img, nil
	}

	for i, j := 0, 0; i < len(samples); i, j = i+3, j+4 {
		img.Pix[j] = samples[i]
		img.Pix[j+1] = samples[i+1]
		img.Pix[j+2] = samples[i+2]
		img.Pix[j+3] = 255
	}
	return img, nil
}

// pixelReader reads non-premultiplied 8-bit pixels at coordinates relative to Bounds().Min.
type pixelReader struct {
	img   image.Image
	min   image.Point
	nrgba *image.NRGBA
	rgba  *image.RGBA
}

func newPixelReader(img image.Image) pixelReader {
	r := pixelReader{
		img: img,
		min: img.Bounds().Min,
	}
	switch i := img.(type) {
	case *image.NRGBA:
		r.nrgba = i
	case *image.RGBA:
		r.rgba = i
	}
	return r
}

func (r pixelReader) at(x int, y int) RGBColor {
	x += r.min.X
	y += r.min.Y

	switch {
	case r.nrgba != nil:
		o := r.nrgba.PixOffset(x, y)
		p := r.nrgba.Pix[o : o+4 : o+4]
		return RGBColor{R: p[0], G: p[1], B: p[2], A: p[3]}
	case r.rgba != nil:
		o := r.rgba.PixOffset(x, y)
		p := r.rgba.Pix[o : o+4 : o+4]
		if p[3] == 255 {
			return RGBColor{R: p[0], G: p[1], B: p[2], A: p[3]}
		}
		c := color.NRGBAModel.Convert(color.RGBA{R: p[0], G: p[1], B: p[2], A: p[3]}).(color.NRGBA)
		return RGBColor{R: c.R, G: c.G, B: c.B, A: c.A}
	default:
		c := color.NRGBAModel.Convert(r.img.At(x, y)).(color.NRGBA)
		return RGBColor{R: c.R, G: c.G, B: c.B, A: c.A}
	}
}

func size(img image.Image) (int, int) {
	b := img.Bounds()
	return b.Dx(), b.Dy()
}
