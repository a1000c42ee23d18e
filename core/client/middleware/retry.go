package middleware

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/withceleste/celeste/core/client"
	"github.com/withceleste/celeste/providers/transport"
)

// RetryConfig holds the tuning parameters for the retry middleware. Zero
// values are replaced with the defaults documented below when
// NewRetryMiddleware is called.
type RetryConfig struct {
	// MaxRetries is the maximum number of retry attempts after the first
	// failure. A value of 3 means the provider is called at most 4 times
	// (1 original + 3 retries). Default: 3.
	MaxRetries int

	// InitialBackoff is the wait duration before the first retry attempt.
	// Default: 1s.
	InitialBackoff time.Duration

	// MaxBackoff caps the computed backoff so it never exceeds this
	// value. Default: 30s.
	MaxBackoff time.Duration

	// Multiplier is the exponential growth factor applied to
	// InitialBackoff on successive retries. Default: 2.0.
	Multiplier float64

	// RetryableFunc returns true when an error should trigger a retry.
	// The default retries wire-level failures (connection errors) and
	// HTTP statuses 429, 500, 502, 503, and 529.
	RetryableFunc func(error) bool
}

// defaultRetryableFunc retries transient transport failures: connection
// errors without a status, and the throttling / server-error statuses
// providers return under load.
func defaultRetryableFunc(err error) bool {
	var transportErr *transport.Error
	if !errors.As(err, &transportErr) {
		return false
	}
	switch transportErr.StatusCode {
	case 0:
		// No status: the request never completed (connection reset,
		// dial failure). Context cancellation still wins because the
		// retry loop checks ctx between attempts.
		return transportErr.Cause != nil
	case 429, 500, 502, 503, 529:
		return true
	default:
		return false
	}
}

// applyRetryDefaults fills in zero-valued fields in config with sensible
// defaults.
func applyRetryDefaults(config *RetryConfig) {
	if config.MaxRetries == 0 {
		config.MaxRetries = 3
	}
	if config.InitialBackoff == 0 {
		config.InitialBackoff = time.Second
	}
	if config.MaxBackoff == 0 {
		config.MaxBackoff = 30 * time.Second
	}
	if config.Multiplier == 0 {
		config.Multiplier = 2.0
	}
	if config.RetryableFunc == nil {
		config.RetryableFunc = defaultRetryableFunc
	}
}

// newPolicy builds the exponential backoff policy for one call.
func newPolicy(ctx context.Context, config RetryConfig) backoff.BackOff {
	exponential := backoff.NewExponentialBackOff()
	exponential.InitialInterval = config.InitialBackoff
	exponential.MaxInterval = config.MaxBackoff
	exponential.Multiplier = config.Multiplier
	exponential.MaxElapsedTime = 0 // bounded by MaxRetries, not wall time
	return backoff.WithContext(
		backoff.WithMaxRetries(exponential, uint64(config.MaxRetries)), ctx)
}

// NewRetryMiddleware constructs a MiddlewareConfig that retries failed
// blocking calls with exponential backoff and jitter according to the
// supplied RetryConfig. Zero-valued fields in config are replaced with
// safe defaults (see RetryConfig documentation).
//
// The Stream field of the returned MiddlewareConfig is nil; streaming
// requests bypass this middleware because mid-stream errors cannot be
// transparently retried.
//
// On exhaustion the returned error wraps both [ErrRetryExhausted] and
// the last provider error, allowing callers to unwrap either.
func NewRetryMiddleware(config RetryConfig) client.MiddlewareConfig {
	applyRetryDefaults(&config)

	sendMiddleware := client.Middleware(func(next client.SendFunc) client.SendFunc {
		return func(ctx context.Context, req *transport.Request) ([]byte, error) {
			var body []byte

			operation := func() error {
				result, err := next(ctx, req)
				if err != nil {
					if !config.RetryableFunc(err) {
						// Non-retryable: propagate immediately.
						return backoff.Permanent(err)
					}
					return err
				}
				body = result
				return nil
			}

			err := backoff.Retry(operation, newPolicy(ctx, config))
			if err != nil {
				if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
					return nil, err
				}
				if config.RetryableFunc(err) {
					return nil, fmt.Errorf("%w after %d retries: %w", ErrRetryExhausted, config.MaxRetries, err)
				}
				return nil, err
			}
			return body, nil
		}
	})

	return client.MiddlewareConfig{
		Send:   sendMiddleware,
		Stream: nil, // Streaming cannot be transparently retried.
	}
}
