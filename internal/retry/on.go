package retry

import (
	"errors"
	"io"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/xerrors"
)

// On selects which outcomes are retried, using envoy's retry_on vocabulary.
type On struct {
	_5xx           bool
	gatewayError   bool
	connectFailure bool
	retriable4xx   bool
	statusCodes    []int
}

const DefaultOn = "gateway-error,connect-failure,retriable-4xx"

func NewDefaultRetryOn() *On {
	o, _ := ParseOn(DefaultOn)
	return o
}

// ParseOn parses a comma separated list such as "5xx,connect-failure,429".
func ParseOn(s string) (*On, error) {
	o := &On{}
	for _, token := range strings.Split(s, ",") {
		switch token = strings.TrimSpace(token); token {
		case "":
		case "5xx":
			o._5xx = true
		case "gateway-error":
			o.gatewayError = true
		case "connect-failure":
			o.connectFailure = true
		case "retriable-4xx":
			o.retriable4xx = true
		default:
			statusCode, err := strconv.Atoi(token)
			if err != nil || statusCode < 100 || statusCode > 599 {
				return nil, xerrors.Errorf("invalid retry condition %q", token)
			}
			o.statusCodes = append(o.statusCodes, statusCode)
		}
	}
	return o, nil
}

func (o *On) String() string {
	var tokens []string
	if o._5xx {
		tokens = append(tokens, "5xx")
	}
	if o.gatewayError {
		tokens = append(tokens, "gateway-error")
	}
	if o.connectFailure {
		tokens = append(tokens, "connect-failure")
	}
	if o.retriable4xx {
		tokens = append(tokens, "retriable-4xx")
	}
	for _, code := range o.statusCodes {
		tokens = append(tokens, strconv.Itoa(code))
	}
	return strings.Join(tokens, ",")
}

// https://github.com/envoyproxy/envoy/blob/70d6ec1df6384118cf2fa2f02c0041edb76b2377/source/common/router/retry_state_impl.cc#L387
func (o *On) CheckResponse(response *http.Response) bool {
	code := response.StatusCode
	switch {
	case o._5xx && code >= 500 && code < 600:
		return true
	case o.gatewayError && code >= 502 && code < 505:
		return true
	case o.retriable4xx && code == http.StatusConflict:
		return true
	}
	return slices.Contains(o.statusCodes, code)
}

// CheckError reports whether a transport error should be retried. Temporary errors and
// unexpected EOFs count as connect failures.
func (o *On) CheckError(err error) bool {
	if !o.connectFailure && !o._5xx {
		return false
	}
	type temporary interface{ Temporary() bool }
	var terr temporary
	return (errors.As(err, &terr) && terr.Temporary()) || errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF)
}
