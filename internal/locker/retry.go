package locker

import (
	"context"
	"time"

	"gacha_backend/internal/domain"
	"gacha_backend/internal/logger"

	"github.com/jackc/pgx/v5"
)

// DefaultRetries is the attempt budget for a locked operation.
const DefaultRetries = 3

const backoffBase = 100 * time.Millisecond

// Options tunes a single ExecuteWithLock call. Zero values fall back to
// the manager's configured tuning (by default 30s timeout, 3 attempts).
type Options struct {
	Timeout time.Duration
	Retries int
}

// options fills zero-valued fields from the manager's tuning, so the
// LOCK_TIMEOUT_SECONDS / LOCK_RETRIES settings apply to every operation
// that does not override them per call.
func (m *Manager) options(opts Options) Options {
	if opts.Timeout <= 0 {
		opts.Timeout = m.timeout
	}
	if opts.Retries <= 0 {
		opts.Retries = m.retries
	}
	return opts
}

// ExecuteWithLock is the entry point every economy operation goes
// through: acquire the named lock, run fn inside a transaction on the
// lock's connection, release, return. Lock timeouts and transaction
// failures consume a retry with exponential backoff; validation errors
// are surfaced immediately, since a rejected operation does not become
// valid by waiting. After the last attempt the original error is
// returned unmodified.
func ExecuteWithLock[T any](ctx context.Context, m *Manager, key string, opts Options, fn func(pgx.Tx) (T, error)) (T, error) {
	var zero T
	opts = m.options(opts)

	var lastErr error
	for attempt := 1; attempt <= opts.Retries; attempt++ {
		out, err := attemptLocked(ctx, m, key, opts.Timeout, fn)
		if err == nil {
			return out, nil
		}
		if domain.IsValidation(err) {
			return zero, err
		}

		lastErr = err
		if attempt == opts.Retries {
			break
		}

		lockRetries.Inc()
		delay := backoffDelay(attempt)
		logger.Warn("locked operation failed, retrying",
			"key", key, "attempt", attempt, "backoff", delay, "error", err)

		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(delay):
		}
	}
	return zero, lastErr
}

func attemptLocked[T any](ctx context.Context, m *Manager, key string, timeout time.Duration, fn func(pgx.Tx) (T, error)) (T, error) {
	var zero T

	h, err := m.Acquire(ctx, key, timeout)
	if err != nil {
		return zero, err
	}
	defer m.Release(h)

	return RunInTx(ctx, h, fn)
}

// backoffDelay grows exponentially to spread contention: attempt 1 waits
// 200ms, attempt 2 400ms, and so on.
func backoffDelay(attempt int) time.Duration {
	return backoffBase * (1 << attempt)
}
