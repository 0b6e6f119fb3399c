// Package collab coordinates real-time collaborative editing sessions:
// it owns the authoritative in-memory document state while a session is
// active, linearizes concurrent edits through operational
// transformation, and fans committed operations and presence events out
// to participants.
package collab

import (
	"errors"
	"time"
)

var (
	// ErrDocumentNotFound is returned when no document exists for the
	// requested id.
	ErrDocumentNotFound = errors.New("document not found")

	// ErrSessionNotFound is returned when no editing session is active
	// for the requested document.
	ErrSessionNotFound = errors.New("session not found")
)

// Document is the durable snapshot of a collaboratively edited text.
// While a session is active the coordinator holds the authoritative
// copy and is its only writer.
type Document struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Content        string    `json:"content"`
	ParticipantIDs []string  `json:"participantIds"`
	Version        int       `json:"version"`
	CreatedBy      string    `json:"createdBy"`
	CreatedAt      time.Time `json:"createdAt"`
	LastModified   time.Time `json:"lastModified"`
}

// Clone returns a deep copy, so callers can hand snapshots out without
// exposing the coordinator's mutable copy.
func (d *Document) Clone() *Document {
	c := *d
	c.ParticipantIDs = append([]string(nil), d.ParticipantIDs...)
	return &c
}

// HasParticipant reports whether userID is listed on the document.
func (d *Document) HasParticipant(userID string) bool {
	for _, id := range d.ParticipantIDs {
		if id == userID {
			return true
		}
	}
	return false
}
