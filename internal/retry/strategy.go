package retry

import (
	"math"
	"math/rand"
	"time"

	"golang.org/x/exp/constraints"
	"golang.org/x/xerrors"
)

// Strategy returns how long to sleep before the given retry, and whether retries are exhausted.
type Strategy interface {
	Sleep(retryCount uint) (time.Duration, bool)
}

type never struct{}

func NewNever() Strategy {
	return never{}
}

func (never) Sleep(uint) (time.Duration, bool) {
	return 0, true
}

// Entropy returns a value in [0, n). It is rand.Int63n unless overridden in tests.
type Entropy func(n int64) int64

type exponentialBackOff struct {
	base          time.Duration
	max           time.Duration
	maxRetryCount uint
	entropy       Entropy
}

// NewExponentialBackOff sleeps a random duration up to base*2^retryCount, capped at max ("full jitter").
func NewExponentialBackOff(base time.Duration, max time.Duration, maxRetryCount uint, entropy Entropy) Strategy {
	if entropy == nil {
		entropy = rand.Int63n
	}
	return &exponentialBackOff{
		base:          base,
		max:           max,
		maxRetryCount: maxRetryCount,
		entropy:       entropy,
	}
}

func (eb *exponentialBackOff) Sleep(retryCount uint) (time.Duration, bool) {
	if retryCount >= eb.maxRetryCount {
		return 0, true
	}

	ceiling := int64(eb.max)
	if retryCount < 63 {
		if delay, err := checkedMul(int64(1)<<retryCount, int64(eb.base)); err == nil {
			ceiling = lower(delay, ceiling)
		}
	}
	if ceiling <= 0 {
		return 0, false
	}
	return time.Duration(eb.entropy(ceiling)), false
}

func lower[T constraints.Ordered](l T, r T) T {
	if l > r {
		return r
	}
	return l
}

var ErrOverflow = xerrors.New("overflow")

func checkedMul(l int64, r int64) (int64, error) {
	if l == 0 || r == 0 {
		return 0, nil
	}
	if l > math.MaxInt64/r {
		return 0, ErrOverflow
	}
	return l * r, nil
}
