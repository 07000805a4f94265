package locker

import (
	"sync"
	"testing"
	"time"
)

func TestReleaseIsIdempotent(t *testing.T) {
	m := NewManager(nil)
	h := &Handle{key: "gacha_1"}
	m.held[h.key] = h

	m.Release(h)
	if n := m.HeldCount(); n != 0 {
		t.Fatalf("held count after release: want 0, got %d", n)
	}

	// A second release of the same handle must be a no-op.
	m.Release(h)
	m.Release(nil)
}

func TestHandleTakeConnOnce(t *testing.T) {
	h := &Handle{key: "k"}
	if c := h.takeConn(); c != nil {
		t.Fatalf("takeConn on empty handle: want nil, got %v", c)
	}
	if c := h.connection(); c != nil {
		t.Fatalf("connection after take: want nil, got %v", c)
	}
}

func TestSweepForcesOnlyExpired(t *testing.T) {
	m := NewManagerWithTTL(nil, time.Minute)
	now := time.Now()
	fresh := &Handle{key: "fresh", expiresAt: now.Add(time.Minute)}
	stale := &Handle{key: "stale", expiresAt: now.Add(-time.Second)}
	m.held[fresh.key] = fresh
	m.held[stale.key] = stale

	if n := m.Sweep(); n != 1 {
		t.Fatalf("sweep: want 1 forced release, got %d", n)
	}
	if n := m.HeldCount(); n != 1 {
		t.Fatalf("held count after sweep: want 1, got %d", n)
	}
	// The expired handle is gone from the registry; a second sweep
	// finds nothing.
	if n := m.Sweep(); n != 0 {
		t.Fatalf("second sweep: want 0, got %d", n)
	}
}

func TestSweepAndReleaseConcurrently(t *testing.T) {
	// An owner releasing its handle while the sweep force-releases the
	// same expired handle must not free the connection twice or panic.
	for i := 0; i < 100; i++ {
		m := NewManagerWithTTL(nil, time.Minute)
		h := &Handle{key: "contended", expiresAt: time.Now().Add(-time.Second)}
		m.held[h.key] = h

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			m.Release(h)
		}()
		go func() {
			defer wg.Done()
			m.Sweep()
		}()
		wg.Wait()

		if n := m.HeldCount(); n != 0 {
			t.Fatalf("held count: want 0, got %d", n)
		}
	}
}
