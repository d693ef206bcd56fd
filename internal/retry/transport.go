package retry

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/xerrors"
)

// Transport retries round trips according to RetryOn, sleeping between attempts as RetryStrategy says.
// Requests with a body are only retried when the body can be rewound through GetBody.
type Transport struct {
	Base          http.RoundTripper
	RetryStrategy Strategy
	RetryOn       *On
}

// NewClient builds a client whose every attempt is bounded by perTryTimeout.
func NewClient(perTryTimeout time.Duration, strategy Strategy, on *On) *http.Client {
	return &http.Client{
		Transport: &Transport{
			Base:          &timeoutTransport{base: http.DefaultTransport, timeout: perTryTimeout},
			RetryStrategy: strategy,
			RetryOn:       on,
		},
	}
}

func (t *Transport) RoundTrip(request *http.Request) (*http.Response, error) {
	ctx := request.Context()
	for attempt := uint(0); ; attempt++ {
		sleep, exceeded := t.retryStrategy().Sleep(attempt)

		response, err := t.base().RoundTrip(request)
		retriable := !exceeded && t.RetryOn != nil
		if err != nil {
			if !retriable || !t.RetryOn.CheckError(err) {
				return nil, err
			}
		} else if !retriable || !t.RetryOn.CheckResponse(response) {
			return response, nil
		}

		// Without a rewindable body the last outcome is final.
		next, rerr := rewind(request)
		if rerr != nil {
			slog.Debug("not retrying request", "method", request.Method, "url", request.URL.String(), "error", rerr)
			if err != nil {
				return nil, err
			}
			return response, nil
		}
		if response != nil {
			_, _ = io.Copy(io.Discard, response.Body)
			_ = response.Body.Close()
		}

		slog.Debug("retrying request", "method", request.Method, "url", request.URL.String(), "attempt", attempt+1, "sleep", sleep)

		if err := ctx.Err(); err != nil {
			return nil, err
		}
		timer := time.NewTimer(sleep)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
		request = next
	}
}

func rewind(request *http.Request) (*http.Request, error) {
	if request.Body == nil || request.Body == http.NoBody {
		return request, nil
	}
	if request.GetBody == nil {
		return nil, xerrors.Errorf("cannot retry %s %s: request body is not rewindable", request.Method, request.URL)
	}
	body, err := request.GetBody()
	if err != nil {
		return nil, xerrors.Errorf("failed to rewind request body: %w", err)
	}
	next := request.Clone(request.Context())
	next.Body = body
	return next, nil
}

func (t *Transport) base() http.RoundTripper {
	if t.Base != nil {
		return t.Base
	}
	return http.DefaultTransport
}

func (t *Transport) retryStrategy() Strategy {
	if t.RetryStrategy != nil {
		return t.RetryStrategy
	}
	return NewNever()
}

type timeoutTransport struct {
	base    http.RoundTripper
	timeout time.Duration
}

func (t *timeoutTransport) RoundTrip(request *http.Request) (*http.Response, error) {
	if t.timeout <= 0 {
		return t.base.RoundTrip(request)
	}
	ctx, cancel := context.WithTimeout(request.Context(), t.timeout)
	response, err := t.base.RoundTrip(request.WithContext(ctx))
	if err != nil {
		cancel()
		return nil, err
	}
	response.Body = &cancelOnClose{ReadCloser: response.Body, cancel: cancel}
	return response, nil
}

type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (c *cancelOnClose) Close() error {
	defer c.cancel()
	return c.ReadCloser.Close()
}
