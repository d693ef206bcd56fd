package storage

import (
	"context"
	"io"
	"net/http"
	"perceptual-diff/internal/retry"
	"time"

	"golang.org/x/xerrors"
)

type HTTPConfig struct {
	// Timeout bounds each attempt, not the whole retried fetch.
	Timeout    time.Duration
	MaxRetries uint
	RetryOn    *retry.On
	// MaxBytes caps the downloaded body. Zero means 64 MiB.
	MaxBytes int64
}

type httpStorage struct {
	client   *http.Client
	maxBytes int64
}

// NewHTTPStorage fetches inputs over HTTP(S). It cannot store anything.
func NewHTTPStorage(h HTTPConfig) Storage {
	if h.Timeout == 0 {
		h.Timeout = 10 * time.Second
	}
	if h.RetryOn == nil {
		h.RetryOn = retry.NewDefaultRetryOn()
	}
	if h.MaxBytes == 0 {
		h.MaxBytes = 64 << 20
	}
	return &httpStorage{
		client:   retry.NewClient(h.Timeout, retry.NewExponentialBackOff(50*time.Millisecond, 2*time.Second, h.MaxRetries, nil), h.RetryOn),
		maxBytes: h.MaxBytes,
	}
}

func (h *httpStorage) Put(ctx context.Context, key string, data []byte) (string, error) {
	return "", xerrors.Errorf("cannot store %s over HTTP: %w", key, ErrUnsupported)
}

func (h *httpStorage) Get(ctx context.Context, url string) ([]byte, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, xerrors.Errorf("failed to create request: %w", err)
	}

	response, err := h.client.Do(request)
	if err != nil {
		return nil, xerrors.Errorf("failed to fetch %s: %w", url, err)
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return nil, xerrors.Errorf("failed to fetch %s: %s", url, response.Status)
	}

	data, err := io.ReadAll(io.LimitReader(response.Body, h.maxBytes+1))
	if err != nil {
		return nil, xerrors.Errorf("failed to read %s: %w", url, err)
	}
	if int64(len(data)) > h.maxBytes {
		return nil, xerrors.Errorf("%s is larger than %d bytes", url, h.maxBytes)
	}

	return data, nil
}
