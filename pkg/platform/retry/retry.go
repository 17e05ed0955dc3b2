// Package retry provides a bounded-retry combinator for operations whose
// failures are either permanent or worth one more fresh attempt (identifier
// collisions, unique-constraint races). No backoff: collisions are resolved
// by regenerating inputs, not by waiting.
package retry

import "errors"

// ErrExhausted is returned (wrapped around the last attempt's error) when
// every attempt failed with a retryable error.
var ErrExhausted = errors.New("retry attempts exhausted")

// retryable marks an error as safe to retry with fresh inputs.
type retryable struct {
	err error
}

func (r *retryable) Error() string { return r.err.Error() }
func (r *retryable) Unwrap() error { return r.err }

// Retryable wraps err so Do will attempt again. Wrapping nil returns nil.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &retryable{err: err}
}

// IsRetryable reports whether err was marked with Retryable.
func IsRetryable(err error) bool {
	var r *retryable
	return errors.As(err, &r)
}

// Do runs fn up to attempts times, passing the zero-based attempt number.
// A nil return stops immediately. A non-retryable error stops immediately
// and is returned as-is. When attempts are exhausted the last error is
// returned wrapped in ErrExhausted.
func Do(attempts int, fn func(attempt int) error) error {
	var last error
	for i := 0; i < attempts; i++ {
		err := fn(i)
		if err == nil {
			return nil
		}
		if !IsRetryable(err) {
			return err
		}
		last = err
	}
	return errors.Join(ErrExhausted, last)
}
