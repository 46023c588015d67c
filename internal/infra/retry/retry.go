package retry

// Retry mechanism with exponential backoff and full jitter
// Retries only errors carrying a retryable status (429, 500, 502, 503, 504)
// A 429 with RetryAfter set sleeps for exactly that long, clamped to MaxDelay

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"
)

type Options struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
}

// StatusError is an upstream failure with an HTTP-like status code
type StatusError struct {
	StatusCode int
	Message    string
	RetryAfter time.Duration
	Err        error
}

func (e *StatusError) Error() string {
	if e == nil {
		return "status error: <nil>"
	}
	if e.Message == "" {
		return fmt.Sprintf("status error (%d)", e.StatusCode)
	}
	return fmt.Sprintf("status error (%d): %s", e.StatusCode, e.Message)
}

func (e *StatusError) Unwrap() error { return e.Err }

func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var se *StatusError
	if errors.As(err, &se) {
		switch se.StatusCode {
		case 429, 500, 502, 503, 504:
			return true
		default:
			return false
		}
	}
	return false
}

func clamp(d, max time.Duration) time.Duration {
	if max > 0 && d > max {
		return max
	}
	return d
}

func FullJitterSleep(attempt int, baseDelay, maxDelay time.Duration) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	if baseDelay <= 0 {
		return 0
	}
	maxForAttempt := baseDelay << attempt
	maxForAttempt = clamp(maxForAttempt, maxDelay)
	if maxForAttempt <= 0 {
		return 0
	}
	return time.Duration(rand.Int63n(int64(maxForAttempt) + 1))
}

func Do(ctx context.Context, opts Options, fn func() error) error {
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	if opts.BaseDelay <= 0 {
		opts.BaseDelay = 300 * time.Millisecond
	}

	totalAttempts := 1 + opts.MaxRetries
	var lastErr error

	for attempt := 0; attempt < totalAttempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err

		if !IsRetryable(err) || attempt == totalAttempts-1 {
			return lastErr
		}

		sleep := FullJitterSleep(attempt, opts.BaseDelay, opts.MaxDelay)

		var se *StatusError
		if errors.As(err, &se) && se.StatusCode == 429 && se.RetryAfter > 0 {
			sleep = clamp(se.RetryAfter, opts.MaxDelay)
		}

		t := time.NewTimer(sleep)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
	}

	return lastErr
}
