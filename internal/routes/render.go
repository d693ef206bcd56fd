package routes

import (
	"net/http"
	diffimage "perceptual-diff/internal/diff/image"
	"perceptual-diff/internal/imageio"
	"perceptual-diff/internal/myhttp"
	"perceptual-diff/internal/storage"
	"strconv"

	"github.com/disintegration/imaging"
)

// Render answers POST /render with the diff image as PNG. The summary travels in
// X-Diff-* headers so clients need not call /compare as well.
func Render(maxUploadBytes int64, s storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := myhttp.Logger(r.Context())

		req, err := parseDiffRequest(r, maxUploadBytes, s)
		if err != nil {
			logger.Warn("rejected render request", "error", err)
			writeError(w, err)
			return
		}

		differ, err := diffimage.NewDiffer(req.format, req.comparator)
		if err != nil {
			writeError(w, err)
			return
		}

		result := differ.Compare(req.baseline, req.target)
		data, err := imageio.EncodeBytes(differ.Render(req.baseline, req.target), imaging.PNG)
		if err != nil {
			logger.Error("failed to encode diff image", "error", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("X-Diff-Equal", strconv.FormatBool(result.Equal))
		w.Header().Set("X-Diff-Pixels", strconv.Itoa(result.DiffPixels))
		if result.BoundingBox != nil {
			w.Header().Set("X-Diff-Bounding-Box", result.BoundingBox.String())
		}
		if _, err := w.Write(data); err != nil {
			logger.Debug("failed to write response", "error", err)
		}
	}
}
