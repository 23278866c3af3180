package app

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/questhall/questhall/internal/core"
	"github.com/questhall/questhall/internal/domain"
)

// Registry binds an authenticated user identity to at most one live
// connection. State is purely in-memory and reset on process restart, so
// every client re-authenticates after any reconnect.
type Registry struct {
	mu       sync.Mutex
	sessions map[domain.UserID]core.Conn
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[domain.UserID]core.Conn)}
}

// Auth installs conn as the single live session for userID. If a session
// already exists for the id, its connection is closed with a normal-closure
// signal before the new one takes over.
func (r *Registry) Auth(userID domain.UserID, conn core.Conn) error {
	if err := domain.ValidateUserID(userID); err != nil {
		return err
	}
	r.mu.Lock()
	prev := r.sessions[userID]
	r.sessions[userID] = conn
	r.mu.Unlock()

	if prev != nil && prev != conn {
		prev.CloseEvicted()
		log.Info().Str("module", "app.registry").Str("user", string(userID)).Msg("evicted previous session")
	}
	log.Info().Str("module", "app.registry").Str("user", string(userID)).Msg("session registered")
	return nil
}

// Conn returns the live connection for userID, if any.
func (r *Registry) Conn(userID domain.UserID) (core.Conn, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	conn, ok := r.sessions[userID]
	return conn, ok
}

// Unregister removes the session only while conn is still the registered
// one. A stale connection torn down after an eviction must not remove the
// session that replaced it.
func (r *Registry) Unregister(userID domain.UserID, conn core.Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cur, ok := r.sessions[userID]; ok && cur == conn {
		delete(r.sessions, userID)
		log.Info().Str("module", "app.registry").Str("user", string(userID)).Msg("session unregistered")
	}
}
