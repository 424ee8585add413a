package http

import (
	"errors"
	"sync"

	"github.com/hireloop/hireloop-ats/internal/assessment"
)

var errSessionNotFound = errors.New("session not found")

// SessionHub keeps live taking-sessions, keyed by their response ID.
// A session is in-memory only; its record reaches the store through
// the persistence port on save/submit. Sessions for other gateway
// replicas are not visible here, which is fine for the single-node
// deployments this serves.
type SessionHub struct {
	mu       sync.RWMutex
	sessions map[string]*assessment.Session
}

func NewSessionHub() *SessionHub {
	return &SessionHub{sessions: map[string]*assessment.Session{}}
}

func (h *SessionHub) Add(s *assessment.Session) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sessions[s.Snapshot().ResponseID] = s
}

func (h *SessionHub) Get(id string) (*assessment.Session, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	s, ok := h.sessions[id]
	if !ok {
		return nil, errSessionNotFound
	}
	return s, nil
}

func (h *SessionHub) Remove(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.sessions, id)
}
