package collab

import (
	"context"
	"fmt"
	"time"

	"github.com/golang/glog"
	"github.com/google/uuid"

	"github.com/Vib3Cod3r/saleshub-sub000/internal/ot"
)

// Store persists document snapshots. Load returns ErrDocumentNotFound
// for unknown ids. Save is expected to apply the store's own retry
// policy before reporting failure.
type Store interface {
	Load(ctx context.Context, id string) (*Document, error)
	Save(ctx context.Context, doc *Document) error
}

// OperationArchive durably appends committed operations. The archive is
// best-effort from the coordinator's point of view: the snapshot store
// is authoritative, so an archive failure is logged and the edit still
// commits.
type OperationArchive interface {
	Append(ctx context.Context, documentID string, op ot.Operation) error
}

// ApplyResult reports the outcome of ApplyOperation.
type ApplyResult struct {
	Committed bool         `json:"committed"`
	Operation ot.Operation `json:"operation"`
	Document  *Document    `json:"document"`
}

// Coordinator serializes concurrent edits per document, transforms them
// into canonical operations, maintains the authoritative content, and
// broadcasts commits and presence changes. archive may be nil.
type Coordinator struct {
	store    Store
	gateway  BroadcastGateway
	registry *Registry
	archive  OperationArchive

	now func() time.Time
}

func NewCoordinator(store Store, gateway BroadcastGateway, registry *Registry, archive OperationArchive) *Coordinator {
	return &Coordinator{
		store:    store,
		gateway:  gateway,
		registry: registry,
		archive:  archive,
		now:      time.Now,
	}
}

// Registry exposes the coordinator's session registry for presence
// queries.
func (c *Coordinator) Registry() *Registry { return c.registry }

// CreateDocument persists a new document at version 0 and opens its
// session with the owner joined.
func (c *Coordinator) CreateDocument(ctx context.Context, title, initialContent, ownerID string, participantIDs []string) (*Document, error) {
	now := c.now()
	doc := &Document{
		ID:             uuid.NewString(),
		Title:          title,
		Content:        initialContent,
		ParticipantIDs: dedupe(ownerID, participantIDs),
		Version:        0,
		CreatedBy:      ownerID,
		CreatedAt:      now,
		LastModified:   now,
	}
	if err := c.store.Save(ctx, doc); err != nil {
		return nil, fmt.Errorf("persist new document: %w", err)
	}
	sess := c.registry.GetOrCreate(doc.Clone())
	sess.addParticipant(ownerID, now)
	glog.Infof("created document %s (%q) for %s", doc.ID, title, ownerID)
	return doc.Clone(), nil
}

// JoinSession adds userID to the document's participants (persisting
// the change if new) and to the live session, then announces the join
// to the other participants.
func (c *Coordinator) JoinSession(ctx context.Context, documentID, userID string) (*Document, error) {
	sess, err := c.lookup(ctx, documentID)
	if err != nil {
		return nil, err
	}
	now := c.now()

	sess.mu.Lock()
	if !sess.doc.HasParticipant(userID) {
		candidate := sess.doc.Clone()
		candidate.ParticipantIDs = append(candidate.ParticipantIDs, userID)
		if err := c.store.Save(ctx, candidate); err != nil {
			sess.mu.Unlock()
			return nil, fmt.Errorf("persist participant %s: %w", userID, err)
		}
		sess.doc = candidate
	}
	snapshot := sess.doc.Clone()
	sess.mu.Unlock()

	others := sess.Participants()
	if sess.addParticipant(userID, now) {
		c.announce(ctx, documentID, ParticipantJoined, userID, others)
	}
	return snapshot, nil
}

// ApplyOperation transforms raw against every operation committed since
// the author's observed version, applies the canonical result to the
// content, advances the version, persists the snapshot, appends to the
// log, and broadcasts to the other participants. Content, version, and
// log move together: nothing mutates until the snapshot write succeeds.
func (c *Coordinator) ApplyOperation(ctx context.Context, documentID string, raw ot.Operation) (*ApplyResult, error) {
	sess := c.registry.Get(documentID)
	if sess == nil {
		return nil, ErrSessionNotFound
	}
	now := c.now()

	op := raw
	if op.ID == "" {
		op.ID = uuid.NewString()
	}

	sess.mu.Lock()
	op = ot.TransformAgainst(op, sess.log)
	op.ServerVersion = sess.doc.Version + 1
	op.CommittedAt = now

	candidate := sess.doc.Clone()
	candidate.Content = ot.Apply(candidate.Content, op)
	candidate.Version = op.ServerVersion
	candidate.LastModified = now

	if err := c.store.Save(ctx, candidate); err != nil {
		sess.mu.Unlock()
		return nil, fmt.Errorf("persist document %s at version %d: %w", documentID, op.ServerVersion, err)
	}
	sess.doc = candidate
	sess.log = append(sess.log, op)
	snapshot := candidate.Clone()
	sess.mu.Unlock()

	if c.archive != nil {
		if err := c.archive.Append(ctx, documentID, op); err != nil {
			glog.Warningf("archive append for %s v%d: %v", documentID, op.ServerVersion, err)
		}
	}
	sess.touch(op.AuthorID, now)

	event := OperationEvent{DocumentID: documentID, Operation: op, Timestamp: now}
	for _, userID := range sess.Participants() {
		if userID == op.AuthorID {
			continue
		}
		if err := c.gateway.SendToUser(ctx, userID, EventOperation, event); err != nil {
			glog.Warningf("broadcast %s to %s: %v", EventOperation, userID, err)
		}
	}
	glog.V(1).Infof("committed %s op on %s: v%d by %s", op.Type, documentID, op.ServerVersion, op.AuthorID)
	return &ApplyResult{Committed: true, Operation: op, Document: snapshot}, nil
}

// UpdateCursor shares userID's cursor/selection with the other
// participants. It never touches document content or version. Updates
// from users no longer in the session are silently dropped; that race
// is expected right after a leave.
func (c *Coordinator) UpdateCursor(ctx context.Context, documentID, userID string, cursor, selStart, selEnd int) error {
	sess := c.registry.Get(documentID)
	if sess == nil {
		return ErrSessionNotFound
	}
	now := c.now()
	if !sess.updateCursor(userID, cursor, selStart, selEnd, now) {
		return nil
	}
	event := CursorEvent{
		DocumentID:     documentID,
		UserID:         userID,
		Cursor:         cursor,
		SelectionStart: selStart,
		SelectionEnd:   selEnd,
		Timestamp:      now,
	}
	for _, id := range sess.Participants() {
		if id == userID {
			continue
		}
		if err := c.gateway.SendToUser(ctx, id, EventCursor, event); err != nil {
			glog.Warningf("broadcast %s to %s: %v", EventCursor, id, err)
		}
	}
	return nil
}

// LeaveSession removes the participant and announces the departure.
// When the last participant leaves, the session (log and presence
// state) is torn down; the persisted snapshot remains.
func (c *Coordinator) LeaveSession(ctx context.Context, documentID, userID string) error {
	sess := c.registry.Get(documentID)
	if sess == nil {
		return ErrSessionNotFound
	}
	c.removeAndAnnounce(ctx, sess, userID)
	return nil
}

// CleanupInactiveSessions force-removes every participant idle longer
// than threshold and tears down sessions left empty. Returns the number
// of participants removed.
func (c *Coordinator) CleanupInactiveSessions(ctx context.Context, threshold time.Duration) int {
	cutoff := c.now().Add(-threshold)
	removed := 0
	for _, sess := range c.registry.All() {
		for _, userID := range sess.inactiveSince(cutoff) {
			c.removeAndAnnounce(ctx, sess, userID)
			removed++
		}
	}
	if removed > 0 {
		glog.Infof("inactivity sweep removed %d participant(s)", removed)
	}
	return removed
}

// GetDocument returns the live session's copy when one is active,
// falling back to the persisted snapshot.
func (c *Coordinator) GetDocument(ctx context.Context, documentID string) (*Document, error) {
	if sess := c.registry.Get(documentID); sess != nil {
		return sess.Document(), nil
	}
	return c.store.Load(ctx, documentID)
}

// GetParticipants returns the active participants in join order.
func (c *Coordinator) GetParticipants(documentID string) ([]string, error) {
	sess := c.registry.Get(documentID)
	if sess == nil {
		return nil, ErrSessionNotFound
	}
	return sess.Participants(), nil
}

// lookup finds the live session, lazily reopening one from the
// persisted snapshot for the first joiner.
func (c *Coordinator) lookup(ctx context.Context, documentID string) (*Session, error) {
	if sess := c.registry.Get(documentID); sess != nil {
		return sess, nil
	}
	doc, err := c.store.Load(ctx, documentID)
	if err != nil {
		return nil, err
	}
	return c.registry.GetOrCreate(doc), nil
}

func (c *Coordinator) removeAndAnnounce(ctx context.Context, sess *Session, userID string) {
	if !sess.removeParticipant(userID) {
		return
	}
	c.announce(ctx, sess.DocumentID, ParticipantLeft, userID, sess.Participants())
	if sess.empty() {
		c.registry.Delete(sess.DocumentID)
		glog.Infof("session %s empty, torn down", sess.DocumentID)
	}
}

func (c *Coordinator) announce(ctx context.Context, documentID, kind, userID string, recipients []string) {
	event := SessionEvent{
		DocumentID: documentID,
		Event:      kind,
		Data:       map[string]string{"userId": userID},
		Timestamp:  c.now(),
	}
	for _, id := range recipients {
		if id == userID {
			continue
		}
		if err := c.gateway.SendToUser(ctx, id, EventSession, event); err != nil {
			glog.Warningf("broadcast %s to %s: %v", kind, id, err)
		}
	}
}

func dedupe(ownerID string, participantIDs []string) []string {
	seen := map[string]bool{ownerID: true}
	out := []string{ownerID}
	for _, id := range participantIDs {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
