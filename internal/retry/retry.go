package retry

import (
	"context"
	"errors"
	"math/rand"
	"net"
	"net/http"
	"time"
)

// Policy holds the retry parameters shared by all outbound provider calls.
// A zero Policy is not usable; construct with DefaultPolicy or from config.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Factor      float64
	MaxJitter   time.Duration
}

// DefaultPolicy returns the standard provider retry policy: 3 attempts,
// exponential backoff starting at 1s with factor 2 and up to 250ms jitter.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: 3,
		BaseDelay:   time.Second,
		Factor:      2,
		MaxJitter:   250 * time.Millisecond,
	}
}

// permanentError marks an error that must not be retried.
type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent wraps err so Do returns it immediately without further attempts.
// Used for non-transient failures such as 4xx responses other than 429.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// Do runs fn up to p.MaxAttempts times, backing off between attempts.
// It stops early on success, on a Permanent error, or when ctx is done.
func (p Policy) Do(ctx context.Context, fn func() error) error {
	var lastErr error
	delay := p.BaseDelay

	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}

		var perm *permanentError
		if errors.As(err, &perm) {
			return perm.err
		}
		lastErr = err

		if attempt == p.MaxAttempts {
			break
		}

		wait := delay
		if p.MaxJitter > 0 {
			wait += time.Duration(rand.Int63n(int64(p.MaxJitter)))
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
		delay = time.Duration(float64(delay) * p.Factor)
	}

	return lastErr
}

// RetryableStatus reports whether an HTTP status code is worth retrying:
// 5xx and 429 (rate limit) are transient, every other 4xx is not.
func RetryableStatus(status int) bool {
	return status >= 500 || status == http.StatusTooManyRequests
}

// IsTransient reports whether a transport-level error should be retried.
// Per-attempt timeouts and temporary network failures qualify; caller
// cancellation does not (the caller gave up, retrying would only fight it).
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}
	return true
}
