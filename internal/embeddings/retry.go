package embeddings

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"go.uber.org/zap"
)

// retryConfig controls retry behavior for embedding calls.
type retryConfig struct {
	maxRetries     int
	initialBackoff time.Duration
	maxBackoff     time.Duration
}

func defaultRetryConfig(maxRetries int) retryConfig {
	if maxRetries <= 0 {
		maxRetries = 3
	}
	return retryConfig{
		maxRetries:     maxRetries,
		initialBackoff: 250 * time.Millisecond,
		maxBackoff:     5 * time.Second,
	}
}

// permanentError marks an error as not retryable.
type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// permanent wraps an error so retryOperation returns it immediately.
func permanent(err error) error {
	return &permanentError{err: err}
}

// retryOperation retries an operation with exponential backoff and full
// jitter. Context cancellation and permanent errors stop the loop early.
func retryOperation(ctx context.Context, cfg retryConfig, logger *zap.Logger, operation func() error) error {
	var lastErr error
	backoff := cfg.initialBackoff
	startTime := time.Now()

	for attempt := 0; attempt <= cfg.maxRetries; attempt++ {
		err := operation()
		if err == nil {
			if attempt > 0 {
				logger.Info("embedding call recovered after retries",
					zap.Int("attempts", attempt),
					zap.Duration("total_time", time.Since(startTime)),
				)
			}
			return nil
		}

		var perm *permanentError
		if errors.As(err, &perm) {
			return perm.err
		}
		lastErr = err

		if attempt == cfg.maxRetries {
			break
		}

		// Full jitter: sleep a uniform fraction of the current backoff.
		sleep := time.Duration(rand.Int63n(int64(backoff) + 1))

		logger.Debug("retrying embedding call after transient error",
			zap.Int("attempt", attempt+1),
			zap.Int("max_attempts", cfg.maxRetries),
			zap.Duration("backoff", sleep),
			zap.Error(err),
		)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(sleep):
		}

		backoff *= 2
		if backoff > cfg.maxBackoff {
			backoff = cfg.maxBackoff
		}
	}

	logger.Warn("embedding call failed after all retries exhausted",
		zap.Int("total_attempts", cfg.maxRetries+1),
		zap.Duration("total_time", time.Since(startTime)),
		zap.Error(lastErr),
	)
	return lastErr
}
