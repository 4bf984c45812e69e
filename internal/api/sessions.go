package api

import (
	"sync"

	"github.com/verblevel/verblevel/internal/engagement"
)

// sessionRegistry holds live engagement sessions. A Session is
// single-writer, so the registry serializes all access to a session
// through with; the HTTP layer is the session's single owner.
type sessionRegistry struct {
	mu       sync.Mutex
	sessions map[string]*engagement.Session
}

func newSessionRegistry() *sessionRegistry {
	return &sessionRegistry{sessions: make(map[string]*engagement.Session)}
}

func (r *sessionRegistry) add(s *engagement.Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.ID] = s
}

// with runs fn against the named session under the registry lock,
// reporting whether the session exists.
func (r *sessionRegistry) with(id string, fn func(*engagement.Session)) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return false
	}
	fn(s)
	return true
}

// remove drops a finished session.
func (r *sessionRegistry) remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
}
