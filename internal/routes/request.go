package routes

import (
	"errors"
	"image"
	"net/http"
	diffimage "perceptual-diff/internal/diff/image"
	"perceptual-diff/internal/imageio"
	"perceptual-diff/internal/storage"
	"strconv"

	"golang.org/x/sync/errgroup"
	"golang.org/x/xerrors"
)

const DefaultTolerance = 0.0

var errBadRequest = xerrors.New("bad request")

// diffRequest is the decoded form shared by /compare and /render.
type diffRequest struct {
	baseline   image.Image
	target     image.Image
	comparator diffimage.Comparator
	kind       string
	tolerance  float64
	format     string
}

// parseDiffRequest reads a multipart form carrying either "baseline"/"target" files or
// "baselineURL"/"targetURL" fields resolved through s.
func parseDiffRequest(r *http.Request, maxUploadBytes int64, s storage.Storage) (*diffRequest, error) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return nil, xerrors.Errorf("failed to parse multipart form: %v: %w", err, errBadRequest)
	}

	req := &diffRequest{
		kind:      r.FormValue("comparator"),
		tolerance: DefaultTolerance,
		format:    r.FormValue("format"),
	}
	if req.kind == "" {
		req.kind = diffimage.ComparatorPerceptual
	}
	if req.format == "" {
		req.format = diffimage.FormatPixel
	}
	if v := r.FormValue("tolerance"); v != "" {
		tolerance, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, xerrors.Errorf("invalid tolerance %q: %w", v, errBadRequest)
		}
		req.tolerance = tolerance
	}

	comparator, err := diffimage.NewComparator(req.kind, req.tolerance)
	if err != nil {
		return nil, err
	}
	req.comparator = comparator

	if baselineURL, targetURL := r.FormValue("baselineURL"), r.FormValue("targetURL"); baselineURL != "" || targetURL != "" {
		if s == nil {
			return nil, xerrors.Errorf("URL inputs are disabled: %w", errBadRequest)
		}
		if baselineURL == "" || targetURL == "" {
			return nil, xerrors.Errorf("both baselineURL and targetURL are required: %w", errBadRequest)
		}
		req.baseline, req.target, err = imageio.LoadPair(r.Context(), s, baselineURL, targetURL)
		if err != nil {
			return nil, err
		}
		return req, nil
	}

	eg := errgroup.Group{}
	eg.Go(func() error {
		img, err := decodeFormFile(r, "baseline")
		req.baseline = img
		return err
	})
	eg.Go(func() error {
		img, err := decodeFormFile(r, "target")
		req.target = img
		return err
	})
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return req, nil
}

func decodeFormFile(r *http.Request, field string) (image.Image, error) {
	file, _, err := r.FormFile(field)
	if err != nil {
		return nil, xerrors.Errorf("missing %s: %w", field, errBadRequest)
	}
	defer file.Close()

	img, err := imageio.Decode(file)
	if err != nil {
		return nil, xerrors.Errorf("%s: %v: %w", field, err, errBadRequest)
	}
	return img, nil
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, errBadRequest), errors.Is(err, diffimage.ErrInvalidArgument), errors.Is(err, image.ErrFormat):
		return http.StatusBadRequest
	default:
		return http.StatusBadGateway
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusBadRequest {
		http.Error(w, err.Error(), status)
		return
	}
	http.Error(w, http.StatusText(status), status)
}
