package locker

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// RunInTx begins a transaction on the handle's bound connection, invokes
// fn, commits on normal return and rolls back on any failure. Requiring a
// Handle guarantees the transaction runs on the connection that holds the
// lock. The caller keeps ownership of the handle and releases it afterward.
func RunInTx[T any](ctx context.Context, h *Handle, fn func(pgx.Tx) (T, error)) (T, error) {
	var zero T

	conn := h.connection()
	if conn == nil {
		return zero, fmt.Errorf("lock %q: handle already released", h.key)
	}

	tx, err := conn.Begin(ctx)
	if err != nil {
		return zero, fmt.Errorf("begin: %w", err)
	}

	out, err := fn(tx)
	if err != nil {
		_ = tx.Rollback(ctx)
		return zero, err
	}

	if err := tx.Commit(ctx); err != nil {
		return zero, fmt.Errorf("commit: %w", err)
	}
	return out, nil
}
