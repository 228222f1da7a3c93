package api

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fmuoria/resume-reviser/internal/session"
)

// SessionFactory builds a fresh session
type SessionFactory func() *session.Session

type entry struct {
	session  *session.Session
	lastSeen time.Time
}

// Registry keeps HTTP sessions in memory and evicts idle ones
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*entry
	ttl      time.Duration
	factory  SessionFactory
	now      func() time.Time
}

// NewRegistry creates a registry whose sessions expire after ttl of inactivity
func NewRegistry(factory SessionFactory, ttl time.Duration) *Registry {
	return &Registry{
		sessions: make(map[string]*entry),
		ttl:      ttl,
		factory:  factory,
		now:      time.Now,
	}
}

// Create registers a new session and returns its ID
func (r *Registry) Create() (string, *session.Session) {
	id := uuid.NewString()
	s := r.factory()

	r.mu.Lock()
	r.sessions[id] = &entry{session: s, lastSeen: r.now()}
	r.mu.Unlock()

	slog.Info("session created", "session_id", id)
	return id, s
}

// Get returns the session and marks it as used
func (r *Registry) Get(id string) (*session.Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.sessions[id]
	if !ok {
		return nil, false
	}
	e.lastSeen = r.now()
	return e.session, true
}

// Delete removes a session. It reports whether the session existed.
func (r *Registry) Delete(id string) bool {
	r.mu.Lock()
	e, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()

	if ok {
		e.session.Reset()
		slog.Info("session deleted", "session_id", id)
	}
	return ok
}

// Len returns the number of live sessions
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Evict drops sessions idle longer than the TTL and returns how many were
// dropped. A session that is parsing or analyzing is kept.
func (r *Registry) Evict() int {
	cutoff := r.now().Add(-r.ttl)

	r.mu.Lock()
	var expired []*session.Session
	for id, e := range r.sessions {
		if !e.lastSeen.Before(cutoff) {
			continue
		}
		switch e.session.Snapshot().State {
		case session.StateParsingFile, session.StateAnalyzing:
			continue
		}
		expired = append(expired, e.session)
		delete(r.sessions, id)
	}
	r.mu.Unlock()

	for _, s := range expired {
		s.Reset()
	}
	if len(expired) > 0 {
		slog.Info("evicted idle sessions", "count", len(expired))
	}
	return len(expired)
}

// Run evicts idle sessions every interval until ctx is done
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Evict()
		}
	}
}
