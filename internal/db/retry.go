package db

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"net"
	"time"

	"go.uber.org/zap"
)

type RetryConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	Jitter      bool
	// Retryable reports whether a failure may be retried. Nil retries all.
	Retryable   func(error) bool
}

// Retry runs operation until it succeeds, the attempts are exhausted or ctx
// is done. The delay doubles after every failure and is capped at MaxDelay.
func Retry(ctx context.Context, logger *zap.Logger, config RetryConfig, operation func() error) error {
	if logger == nil {
		logger = zap.NewNop()
	}

	var attempt int
	for {
		err := operation()
		if err == nil {
			return nil
		}
		if config.Retryable != nil && !config.Retryable(err) {
			return err
		}
		attempt++
		if attempt >= config.MaxAttempts {
			return fmt.Errorf("max retry attempts reached: %w", err)
		}

		//Exponential backoff with jitter
		backoff := config.BaseDelay * time.Duration(math.Pow(2, float64(attempt)))
		if config.MaxDelay > 0 {
			backoff = min(backoff, config.MaxDelay)
		}
		if config.Jitter && backoff > 1 {
			backoff += time.Duration(rand.Int63n(int64(backoff / 2)))
		}

		logger.Warn("Operation failed, retrying",
			zap.Int("attempt", attempt),
			zap.Error(err),
			zap.Duration("backoff", backoff),
		)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
			continue
		}
	}
}

// IsConnectionError reports failures that happen before a statement reaches
// the server, so running it again cannot apply it twice.
func IsConnectionError(err error) bool {
	if errors.Is(err, driver.ErrBadConn) {
		return true
	}
	var opErr *net.OpError
	return errors.As(err, &opErr) && opErr.Op == "dial"
}
