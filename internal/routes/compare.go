package routes

import (
	"encoding/json"
	"net/http"
	diffimage "perceptual-diff/internal/diff/image"
	"perceptual-diff/internal/myhttp"
	"perceptual-diff/internal/storage"
	"strconv"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type CompareResponse struct {
	Equal          bool                   `json:"equal"`
	ExtentMismatch bool                   `json:"extentMismatch"`
	BoundingBox    *diffimage.BoundingBox `json:"boundingBox"`
	DiffPixels     int                    `json:"diffPixels"`
	DiffAmount     float64                `json:"diffAmount"`
	Comparator     string                 `json:"comparator"`
	Tolerance      float64                `json:"tolerance"`
}

// Compare answers POST /compare with the comparison summary as JSON.
func Compare(maxUploadBytes int64, s storage.Storage, comparisons metric.Int64Counter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := myhttp.Logger(r.Context())

		req, err := parseDiffRequest(r, maxUploadBytes, s)
		if err != nil {
			logger.Warn("rejected compare request", "error", err)
			writeError(w, err)
			return
		}

		result := diffimage.Compare(req.baseline, req.target, req.comparator)
		comparisons.Add(r.Context(), 1, metric.WithAttributes(
			attribute.Key("equal").String(strconv.FormatBool(result.Equal)),
			attribute.Key("comparator").String(req.kind),
		))

		if !result.Equal {
			logger.Info("images differ",
				"diffPixels", result.DiffPixels,
				"extentMismatch", result.ExtentMismatch,
				"boundingBox", result.BoundingBox,
			)
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(CompareResponse{
			Equal:          result.Equal,
			ExtentMismatch: result.ExtentMismatch,
			BoundingBox:    result.BoundingBox,
			DiffPixels:     result.DiffPixels,
			DiffAmount:     result.DiffAmount,
			Comparator:     req.kind,
			Tolerance:      req.tolerance,
		}); err != nil {
			logger.Error("failed to encode response", "error", err)
		}
	}
}
