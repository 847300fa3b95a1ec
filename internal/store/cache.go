// Package store provides the in-memory session cache: a plain keyed store
// with process lifetime, used when no database is configured and as the
// fast path in front of the durable store.
package store

import (
	"context"
	"sync"

	"maiveui/domain/core"
	"maiveui/internal/errors"
	"maiveui/ports"
)

// SessionCache is a concurrency-safe in-memory ports.SessionStore
type SessionCache struct {
	mu       sync.RWMutex
	sessions map[core.DatasetID]*ports.Session
}

// NewSessionCache creates an empty cache
func NewSessionCache() *SessionCache {
	return &SessionCache{sessions: make(map[core.DatasetID]*ports.Session)}
}

// Get retrieves a session by dataset id
func (c *SessionCache) Get(_ context.Context, id core.DatasetID) (*ports.Session, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	session, found := c.sessions[id]
	if !found {
		return nil, errors.NotFound("session")
	}
	return session, nil
}

// Set stores a session under its dataset id
func (c *SessionCache) Set(_ context.Context, session *ports.Session) error {
	if session == nil || session.Data == nil || session.Data.ID == "" {
		return errors.InvalidInput("session must carry a dataset id")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sessions[session.Data.ID] = session
	return nil
}

// Delete removes a session
func (c *SessionCache) Delete(_ context.Context, id core.DatasetID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.sessions, id)
	return nil
}

// Clear removes every session
func (c *SessionCache) Clear(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sessions = make(map[core.DatasetID]*ports.Session)
	return nil
}

var _ ports.SessionStore = (*SessionCache)(nil)
