package locker

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"gacha_backend/internal/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrLockTimeout means the named lock was held elsewhere and not freed
// within the caller's budget. Retryable.
var ErrLockTimeout = errors.New("lock acquisition timed out")

const (
	// DefaultTimeout bounds a single lock acquisition attempt.
	DefaultTimeout = 30 * time.Second
	// DefaultTTL is how long a held lock may live before the sweep treats
	// it as orphaned. Critical sections are expected to finish in seconds;
	// the sweep firing at all indicates a bug.
	DefaultTTL = 5 * time.Minute

	pollInterval = 50 * time.Millisecond
)

// Handle is proof of a held named lock. It carries the pooled connection
// the lock is bound to: session advisory locks are connection-scoped, so
// the transaction for the critical section must run on this same
// connection. RunInTx takes a Handle, not a bare connection, to make that
// affinity impossible to bypass.
type Handle struct {
	key       string
	id        int64
	expiresAt time.Time

	mu   sync.Mutex
	conn *pgxpool.Conn
}

// Key returns the lock key this handle holds.
func (h *Handle) Key() string { return h.key }

// connection returns the bound connection, or nil once the handle has
// been released or swept.
func (h *Handle) connection() *pgxpool.Conn {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.conn
}

// takeConn detaches the connection exactly once. Release and the sweep
// both go through here, so the same handle can never free its
// connection twice no matter how the two paths interleave.
func (h *Handle) takeConn() *pgxpool.Conn {
	h.mu.Lock()
	defer h.mu.Unlock()
	c := h.conn
	h.conn = nil
	return c
}

// Manager acquires and releases store-backed named locks and keeps an
// in-process registry of held ones so the background sweep can detect
// and force-release orphans. Its timeout and retry settings are the
// fallback for every ExecuteWithLock call that passes zero Options.
type Manager struct {
	pool    *pgxpool.Pool
	ttl     time.Duration
	timeout time.Duration
	retries int

	mu   sync.Mutex
	held map[string]*Handle
}

func NewManager(pool *pgxpool.Pool) *Manager {
	return NewManagerWithTTL(pool, DefaultTTL)
}

func NewManagerWithTTL(pool *pgxpool.Pool, ttl time.Duration) *Manager {
	return NewManagerTuned(pool, ttl, DefaultTimeout, DefaultRetries)
}

// NewManagerTuned builds a manager with operator-supplied lock tuning.
// Non-positive values fall back to the package defaults.
func NewManagerTuned(pool *pgxpool.Pool, ttl, timeout time.Duration, retries int) *Manager {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if retries <= 0 {
		retries = DefaultRetries
	}
	return &Manager{pool: pool, ttl: ttl, timeout: timeout, retries: retries, held: make(map[string]*Handle)}
}

// Acquire takes an exclusive named lock, polling the store's try-lock
// primitive on a dedicated pooled connection until it succeeds or the
// timeout elapses. On failure the connection goes straight back to the
// pool and ErrLockTimeout is returned; acquisition never blocks
// indefinitely.
func (m *Manager) Acquire(ctx context.Context, key string, timeout time.Duration) (*Handle, error) {
	if timeout <= 0 {
		timeout = m.timeout
	}

	conn, err := m.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}

	id := KeyID(key)
	deadline := time.Now().Add(timeout)
	for {
		var got bool
		if err := conn.QueryRow(ctx, `SELECT pg_try_advisory_lock($1)`, id).Scan(&got); err != nil {
			conn.Release()
			return nil, fmt.Errorf("advisory lock %q: %w", key, err)
		}
		if got {
			break
		}
		if time.Now().Add(pollInterval).After(deadline) {
			conn.Release()
			lockTimeouts.WithLabelValues(keyPrefix(key)).Inc()
			return nil, fmt.Errorf("lock %q: %w", key, ErrLockTimeout)
		}
		select {
		case <-ctx.Done():
			conn.Release()
			return nil, ctx.Err()
		case <-time.After(pollInterval):
		}
	}

	h := &Handle{key: key, id: id, conn: conn, expiresAt: time.Now().Add(m.ttl)}
	m.mu.Lock()
	m.held[key] = h
	m.mu.Unlock()
	lockAcquisitions.WithLabelValues(keyPrefix(key)).Inc()
	return h, nil
}

// Release unlocks the handle on its bound connection and returns the
// connection to the pool. It runs on every exit path of a critical
// section; an unlock error is logged, never propagated, so it cannot mask
// the operation's own result.
func (m *Manager) Release(h *Handle) {
	if h == nil {
		return
	}

	m.mu.Lock()
	if cur, ok := m.held[h.key]; ok && cur == h {
		delete(m.held, h.key)
	}
	m.mu.Unlock()

	m.unlock(h)
}

func (m *Manager) unlock(h *Handle) {
	conn := h.takeConn()
	if conn == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var unlocked bool
	if err := conn.QueryRow(ctx, `SELECT pg_advisory_unlock($1)`, h.id).Scan(&unlocked); err != nil {
		logger.Error("advisory unlock failed", "key", h.key, "error", err)
	} else if !unlocked {
		logger.Warn("advisory unlock reported no lock held", "key", h.key)
	}

	conn.Release()
}

// destroy closes the underlying session instead of unlocking it. Closing
// drops the session's advisory locks server-side and the pool discards a
// closed connection on release, so a critical section that outlived its
// TTL can never find its connection lent out to another borrower: its
// next query fails on a closed connection instead.
func (m *Manager) destroy(h *Handle) {
	conn := h.takeConn()
	if conn == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := conn.Conn().Close(ctx); err != nil {
		logger.Error("closing swept lock connection failed", "key", h.key, "error", err)
	}
	conn.Release()
}

// Sweep force-releases every registered lock whose expiry has passed
// without a matching Release and returns how many it found. A hit means a
// critical section leaked its lock; the connection is closed rather than
// pooled, so a bug can neither exhaust the pool nor corrupt a later
// borrower.
func (m *Manager) Sweep() int {
	now := time.Now()

	m.mu.Lock()
	var expired []*Handle
	for key, h := range m.held {
		if now.After(h.expiresAt) {
			expired = append(expired, h)
			delete(m.held, key)
		}
	}
	m.mu.Unlock()

	for _, h := range expired {
		logger.Error("force-releasing expired lock", "key", h.key, "expired_at", h.expiresAt)
		lockSweeps.Inc()
		m.destroy(h)
	}
	return len(expired)
}

// HeldCount reports how many locks are currently registered.
func (m *Manager) HeldCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.held)
}

func keyPrefix(key string) string {
	if i := strings.IndexByte(key, '_'); i > 0 {
		return key[:i]
	}
	return key
}
