package collab

import (
	"context"
	"time"

	"github.com/Vib3Cod3r/saleshub-sub000/internal/ot"
)

// Event names delivered through the broadcast gateway.
const (
	EventOperation = "document_operation"
	EventCursor    = "cursor_position"
	EventSession   = "document_session_event"
)

// Session event kinds carried in SessionEvent.Event.
const (
	ParticipantJoined = "participant_joined"
	ParticipantLeft   = "participant_left"
)

// BroadcastGateway is the transport the coordinator fans events out
// through. The coordinator relies only on per-recipient delivery order;
// content convergence comes from version-based serialization, not from
// the transport.
type BroadcastGateway interface {
	SendToUser(ctx context.Context, userID, event string, payload any) error
	SendToRoom(ctx context.Context, roomID, event string, payload any) error
}

// OperationEvent notifies participants of a committed canonical
// operation.
type OperationEvent struct {
	DocumentID string       `json:"documentId"`
	Operation  ot.Operation `json:"operation"`
	Timestamp  time.Time    `json:"timestamp"`
}

// CursorEvent shares one participant's cursor/selection.
type CursorEvent struct {
	DocumentID     string    `json:"documentId"`
	UserID         string    `json:"userId"`
	Cursor         int       `json:"cursor"`
	SelectionStart int       `json:"selectionStart"`
	SelectionEnd   int       `json:"selectionEnd"`
	Timestamp      time.Time `json:"timestamp"`
}

// SessionEvent announces participant lifecycle changes.
type SessionEvent struct {
	DocumentID string    `json:"documentId"`
	Event      string    `json:"event"`
	Data       any       `json:"data,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}
