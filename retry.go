package oaiharvest

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// RetryPolicy controls how page and file requests are retried.
// The zero value performs a single attempt.
type RetryPolicy struct {
	// MaxAttempts includes the first attempt. Values below 1 mean 1.
	MaxAttempts int `mapstructure:"max_attempts"`

	// InitialInterval is the delay before the first retry (default 500ms).
	InitialInterval time.Duration `mapstructure:"initial_interval"`

	// MaxInterval caps the exponential delay (default 30s).
	MaxInterval time.Duration `mapstructure:"max_interval"`
}

func (p RetryPolicy) backOff(ctx context.Context) backoff.BackOff {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = 500 * time.Millisecond
	if p.InitialInterval > 0 {
		eb.InitialInterval = p.InitialInterval
	}
	eb.MaxInterval = 30 * time.Second
	if p.MaxInterval > 0 {
		eb.MaxInterval = p.MaxInterval
	}
	eb.MaxElapsedTime = 0
	return backoff.WithContext(backoff.WithMaxRetries(eb, uint64(attempts-1)), ctx)
}

// Do runs op until it succeeds, returns a non-retryable error, or the policy
// is exhausted. notify, if non-nil, is called before each retry.
func (p RetryPolicy) Do(ctx context.Context, op func() error, notify func(err error, wait time.Duration)) error {
	wrapped := func() error {
		err := op()
		if err != nil && !retryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}
	return backoff.RetryNotify(wrapped, p.backOff(ctx), notify)
}

// retryable reports whether err is worth another attempt: transport errors
// other than 4xx statuses. File system and parse errors are not retried.
func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code >= http.StatusInternalServerError || se.Code == http.StatusTooManyRequests
	}
	return errors.Is(err, ErrTransport)
}
