package collab

import (
	"sync"
	"time"

	"github.com/Vib3Cod3r/saleshub-sub000/internal/ot"
)

// ParticipantState is the ephemeral cursor/selection state of one
// connected user. It is session-scoped and never persisted.
type ParticipantState struct {
	UserID         string    `json:"userId"`
	CursorPosition int       `json:"cursorPosition"`
	SelectionStart int       `json:"selectionStart"`
	SelectionEnd   int       `json:"selectionEnd"`
	LastActivity   time.Time `json:"lastActivity"`
}

// Session is the in-memory editing state for one document: the
// authoritative document copy, the log of committed operations, and the
// currently connected participants.
//
// mu linearizes every mutation of the {content, version, log} triple;
// exactly one ApplyOperation may be transforming-and-applying for a
// given document at any instant. Presence lives behind its own lock so
// cursor updates never contend with edits.
type Session struct {
	DocumentID string

	mu  sync.Mutex
	doc *Document
	log []ot.Operation

	presenceMu   sync.RWMutex
	participants map[string]*ParticipantState
	joinOrder    []string
}

func newSession(doc *Document) *Session {
	return &Session{
		DocumentID:   doc.ID,
		doc:          doc,
		participants: make(map[string]*ParticipantState),
	}
}

// Document returns a snapshot of the session's document.
func (s *Session) Document() *Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.Clone()
}

// Version returns the session's current document version.
func (s *Session) Version() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.Version
}

// Log returns a copy of the committed operation log in ServerVersion
// order.
func (s *Session) Log() []ot.Operation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]ot.Operation(nil), s.log...)
}

// addParticipant registers userID and reports whether it was newly
// added. Rejoining refreshes LastActivity but keeps cursor state.
func (s *Session) addParticipant(userID string, now time.Time) bool {
	s.presenceMu.Lock()
	defer s.presenceMu.Unlock()
	if p, ok := s.participants[userID]; ok {
		p.LastActivity = now
		return false
	}
	s.participants[userID] = &ParticipantState{UserID: userID, LastActivity: now}
	s.joinOrder = append(s.joinOrder, userID)
	return true
}

// removeParticipant drops userID and reports whether it was present.
func (s *Session) removeParticipant(userID string) bool {
	s.presenceMu.Lock()
	defer s.presenceMu.Unlock()
	if _, ok := s.participants[userID]; !ok {
		return false
	}
	delete(s.participants, userID)
	for i, id := range s.joinOrder {
		if id == userID {
			s.joinOrder = append(s.joinOrder[:i], s.joinOrder[i+1:]...)
			break
		}
	}
	return true
}

// updateCursor mutates one participant's cursor state. Unknown
// participants are ignored: a cursor update racing a leave is expected
// and harmless.
func (s *Session) updateCursor(userID string, cursor, selStart, selEnd int, now time.Time) bool {
	s.presenceMu.Lock()
	defer s.presenceMu.Unlock()
	p, ok := s.participants[userID]
	if !ok {
		return false
	}
	p.CursorPosition = cursor
	p.SelectionStart = selStart
	p.SelectionEnd = selEnd
	p.LastActivity = now
	return true
}

// touch refreshes a participant's activity timestamp.
func (s *Session) touch(userID string, now time.Time) {
	s.presenceMu.Lock()
	defer s.presenceMu.Unlock()
	if p, ok := s.participants[userID]; ok {
		p.LastActivity = now
	}
}

// Participants returns userIDs in join order.
func (s *Session) Participants() []string {
	s.presenceMu.RLock()
	defer s.presenceMu.RUnlock()
	return append([]string(nil), s.joinOrder...)
}

// Participant returns a copy of one participant's state.
func (s *Session) Participant(userID string) (ParticipantState, bool) {
	s.presenceMu.RLock()
	defer s.presenceMu.RUnlock()
	p, ok := s.participants[userID]
	if !ok {
		return ParticipantState{}, false
	}
	return *p, true
}

func (s *Session) hasParticipant(userID string) bool {
	s.presenceMu.RLock()
	defer s.presenceMu.RUnlock()
	_, ok := s.participants[userID]
	return ok
}

func (s *Session) empty() bool {
	s.presenceMu.RLock()
	defer s.presenceMu.RUnlock()
	return len(s.participants) == 0
}

// inactiveSince returns participants whose last activity is older than
// cutoff, in join order.
func (s *Session) inactiveSince(cutoff time.Time) []string {
	s.presenceMu.RLock()
	defer s.presenceMu.RUnlock()
	var stale []string
	for _, id := range s.joinOrder {
		if p := s.participants[id]; p != nil && p.LastActivity.Before(cutoff) {
			stale = append(stale, id)
		}
	}
	return stale
}
