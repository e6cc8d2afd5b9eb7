package cache

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNetwork marks a failed round trip to a remote backend.
	ErrNetwork = errors.New("network error")
	// ErrClosed is returned once a backend has been closed.
	ErrClosed = errors.New("cache closed")
)

// RetryableError marks a backend failure worth another attempt. Its message is
// the message of the wrapped error.
type RetryableError struct{ Err error }

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// Retryable marks err for [RetryWithBackoff]. A nil err stays nil.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

// IsRetryable reports whether err or anything it wraps is a RetryableError.
func IsRetryable(err error) bool {
	var re *RetryableError
	return errors.As(err, &re)
}

const maxAttempts = 3

// retryDelay is the pause after the first failed attempt. Each later pause is
// twice the previous one.
var retryDelay = 200 * time.Millisecond

// RetryWithBackoff calls fn until it succeeds, returns an error not marked
// Retryable, or has failed maxAttempts times. The last error is returned.
// Cancelling ctx aborts the wait between attempts.
func RetryWithBackoff(ctx context.Context, fn func() error) error {
	wait := retryDelay
	for attempt := 1; ; attempt++ {
		err := fn()
		if err == nil || !IsRetryable(err) || attempt == maxAttempts {
			return err
		}

		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
		wait *= 2
	}
}
