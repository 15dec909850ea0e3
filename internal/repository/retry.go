package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// ErrNotFound is returned when a requested row does not exist
var ErrNotFound = errors.New("not found")

// retryRead runs a read query with exponential backoff. Missing rows and
// cancelled contexts are not retried.
func retryRead(ctx context.Context, maxRetries int, op func() error) error {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 50 * time.Millisecond
	policy.MaxElapsedTime = 5 * time.Second

	b := backoff.WithContext(backoff.WithMaxRetries(policy, uint64(maxRetries)), ctx)

	return backoff.Retry(func() error {
		err := op()
		switch {
		case err == nil:
			return nil
		case errors.Is(err, sql.ErrNoRows), errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return backoff.Permanent(err)
		}
		return err
	}, b)
}
