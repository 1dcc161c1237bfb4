package services

import (
	"context"
	"time"

	"github.com/korpus-labs/korpus-cli/internal/core/domain"
	"github.com/korpus-labs/korpus-cli/internal/logger"
)

// Retry parameters for transient capability failures.
const (
	retryAttempts = 3
	retryBaseWait = 500 * time.Millisecond
)

// sleepFunc lets tests replace the retry wait.
type sleepFunc func(ctx context.Context, d time.Duration) error

// sleepWithContext waits for d or until the context is cancelled.
func sleepWithContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// withRetry runs op up to retryAttempts times, doubling the wait after
// each transient failure. Only errors domain.IsRetryable classifies as
// transient are retried; permanent errors and cancelled contexts
// return immediately.
func withRetry(ctx context.Context, sleep sleepFunc, what string, op func(ctx context.Context) error) error {
	wait := retryBaseWait
	var err error
	for attempt := 1; attempt <= retryAttempts; attempt++ {
		err = op(ctx)
		if err == nil {
			return nil
		}
		if !domain.IsRetryable(err) || ctx.Err() != nil {
			return err
		}
		if attempt == retryAttempts {
			break
		}
		logger.Debug("%s failed (attempt %d/%d), retrying in %s: %v",
			what, attempt, retryAttempts, wait, err)
		if sleepErr := sleep(ctx, wait); sleepErr != nil {
			return err
		}
		wait *= 2
	}
	return err
}
