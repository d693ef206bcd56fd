package retry_test

import (
	"math"
	"perceptual-diff/internal/retry"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func identity(i int64) int64 {
	return i
}

func TestRetrySleep(t *testing.T) {
	type want struct {
		sleep    time.Duration
		exceeded bool
	}

	tests := []struct {
		name       string
		strategy   retry.Strategy
		retryCount uint
		want       want
	}{
		{caseName(), retry.NewNever(), 0, want{0, true}},
		{caseName(), retry.NewExponentialBackOff(0, math.MaxInt64, 0, nil), 0, want{0, true}},
		{caseName(), retry.NewExponentialBackOff(0, math.MaxInt64, 1, identity), 0, want{0, false}},
		{caseName(), retry.NewExponentialBackOff(0, math.MaxInt64, 1, identity), 1, want{0, true}},
		{caseName(), retry.NewExponentialBackOff(time.Second, math.MaxInt64, 2, identity), 0, want{time.Second, false}},
		{caseName(), retry.NewExponentialBackOff(time.Second, math.MaxInt64, 2, identity), 1, want{2 * time.Second, false}},
		{caseName(), retry.NewExponentialBackOff(time.Second, time.Second, 2, identity), 1, want{time.Second, false}},
		{caseName(), retry.NewExponentialBackOff(time.Second, math.MaxInt64, 64, identity), 63, want{time.Duration(math.MaxInt64), false}},
		{caseName(), retry.NewExponentialBackOff(100*time.Second, math.MaxInt64, 32, identity), 31, want{time.Duration(math.MaxInt64), false}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			sleep, exceeded := tt.strategy.Sleep(tt.retryCount)
			if diff := cmp.Diff(tt.want, want{sleep, exceeded}, cmp.AllowUnexported(want{})); diff != "" {
				t.Errorf("(-want +got):\n%s", diff)
			}
		})
	}
}

func TestRetrySleepJitterIsBounded(t *testing.T) {
	strategy := retry.NewExponentialBackOff(10*time.Millisecond, 50*time.Millisecond, 8, nil)
	for retryCount := uint(0); retryCount < 8; retryCount++ {
		ceiling := min(10*time.Millisecond<<retryCount, 50*time.Millisecond)
		for i := 0; i < 100; i++ {
			sleep, exceeded := strategy.Sleep(retryCount)
			if exceeded {
				t.Fatalf("Expected retry %d to be allowed", retryCount)
			}
			if sleep < 0 || sleep >= ceiling {
				t.Errorf("Expected sleep in [0, %v), got %v", ceiling, sleep)
			}
		}
	}
}
