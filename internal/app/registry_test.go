package app

import (
	"errors"
	"sync"
	"testing"

	"github.com/questhall/questhall/internal/core"
	"github.com/questhall/questhall/internal/domain"
)

type fakeConn struct {
	mu       sync.Mutex
	frames   []core.Frame
	evicted  bool
	closed   bool
	failSend bool
}

func (f *fakeConn) TrySend(fr core.Frame) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failSend {
		return errors.New("send failed")
	}
	f.frames = append(f.frames, fr)
	return nil
}

func (f *fakeConn) CloseEvicted() {
	f.mu.Lock()
	f.evicted = true
	f.closed = true
	f.mu.Unlock()
}

func (f *fakeConn) Close() {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
}

func (f *fakeConn) sent() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.frames)
}

func (f *fakeConn) wasEvicted() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.evicted
}

func TestAuthRegistersSession(t *testing.T) {
	r := NewRegistry()
	conn := &fakeConn{}

	if err := r.Auth("u1", conn); err != nil {
		t.Fatalf("auth: %v", err)
	}
	got, ok := r.Conn("u1")
	if !ok {
		t.Fatal("expected session for u1")
	}
	if got != core.Conn(conn) {
		t.Fatal("registered connection mismatch")
	}
}

func TestAuthRejectsEmptyUserID(t *testing.T) {
	r := NewRegistry()

	err := r.Auth("", &fakeConn{})
	if !errors.Is(err, domain.ErrUserIDEmpty) {
		t.Fatalf("expected ErrUserIDEmpty, got %v", err)
	}
}

func TestDuplicateAuthEvictsPreviousConnection(t *testing.T) {
	r := NewRegistry()
	first := &fakeConn{}
	second := &fakeConn{}

	if err := r.Auth("u1", first); err != nil {
		t.Fatalf("first auth: %v", err)
	}
	if err := r.Auth("u1", second); err != nil {
		t.Fatalf("second auth: %v", err)
	}

	if !first.wasEvicted() {
		t.Fatal("expected first connection to be evicted with a normal closure")
	}
	got, ok := r.Conn("u1")
	if !ok || got != core.Conn(second) {
		t.Fatal("expected second connection to own the session")
	}
}

func TestUnregisterIgnoresStaleConnection(t *testing.T) {
	r := NewRegistry()
	stale := &fakeConn{}
	current := &fakeConn{}

	if err := r.Auth("u1", stale); err != nil {
		t.Fatalf("auth: %v", err)
	}
	if err := r.Auth("u1", current); err != nil {
		t.Fatalf("auth: %v", err)
	}

	// The evicted connection's teardown runs after the replacement is
	// installed; it must not remove the live session.
	r.Unregister("u1", stale)
	if _, ok := r.Conn("u1"); !ok {
		t.Fatal("stale unregister removed the live session")
	}

	r.Unregister("u1", current)
	if _, ok := r.Conn("u1"); ok {
		t.Fatal("expected session to be gone")
	}
}
