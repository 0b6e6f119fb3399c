package collab

import "sync"

// Registry owns the documentID to Session table. It is a pure in-memory
// structure; construct one per coordinator so tests can run independent
// instances.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Session)}
}

// Get returns the session for documentID, or nil.
func (r *Registry) Get(documentID string) *Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sessions[documentID]
}

// GetOrCreate returns the session for doc.ID, creating it from doc if
// absent. Sessions are created lazily on first join or on document
// creation.
func (r *Registry) GetOrCreate(doc *Document) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[doc.ID]; ok {
		return s
	}
	s := newSession(doc)
	r.sessions[doc.ID] = s
	return s
}

// Delete tears the session down; the persisted document snapshot is
// unaffected.
func (r *Registry) Delete(documentID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, documentID)
}

// All returns the active sessions.
func (r *Registry) All() []*Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, s)
	}
	return out
}

// Len returns the number of active sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Participants returns the participant userIDs of a session in join
// order, or nil when no session is active.
func (r *Registry) Participants(documentID string) []string {
	s := r.Get(documentID)
	if s == nil {
		return nil
	}
	return s.Participants()
}

// UserSessions returns every session userID currently participates in.
func (r *Registry) UserSessions(userID string) []*Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*Session
	for _, s := range r.sessions {
		if s.hasParticipant(userID) {
			out = append(out, s)
		}
	}
	return out
}
