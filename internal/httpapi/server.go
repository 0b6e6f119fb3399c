// Package httpapi is the thin HTTP controller over the collaboration
// coordinator. It maps coordinator outcomes onto status codes and does
// no business logic of its own. Callers are expected to arrive
// authenticated; the userId fields in request bodies are trusted.
package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/golang/glog"
	"github.com/gorilla/mux"

	"github.com/Vib3Cod3r/saleshub-sub000/internal/collab"
	"github.com/Vib3Cod3r/saleshub-sub000/internal/ot"
)

type Server struct {
	coord *collab.Coordinator
}

// NewRouter mounts the collaboration API. hub, when non-nil, is mounted
// at /ws for event delivery.
func NewRouter(coord *collab.Coordinator, hub http.Handler) *mux.Router {
	s := &Server{coord: coord}
	r := mux.NewRouter()
	r.HandleFunc("/documents", s.createDocument).Methods(http.MethodPost)
	r.HandleFunc("/documents/{id}", s.getDocument).Methods(http.MethodGet)
	r.HandleFunc("/documents/{id}/join", s.joinSession).Methods(http.MethodPost)
	r.HandleFunc("/documents/{id}/leave", s.leaveSession).Methods(http.MethodPost)
	r.HandleFunc("/documents/{id}/operations", s.applyOperation).Methods(http.MethodPost)
	r.HandleFunc("/documents/{id}/cursor", s.updateCursor).Methods(http.MethodPost)
	r.HandleFunc("/documents/{id}/participants", s.getParticipants).Methods(http.MethodGet)
	if hub != nil {
		r.Handle("/ws", hub)
	}
	return r
}

type createDocumentRequest struct {
	Title          string   `json:"title"`
	Content        string   `json:"content"`
	OwnerID        string   `json:"ownerId"`
	ParticipantIDs []string `json:"participantIds"`
}

func (s *Server) createDocument(w http.ResponseWriter, r *http.Request) {
	var req createDocumentRequest
	if !decode(w, r, &req) {
		return
	}
	if req.OwnerID == "" {
		http.Error(w, "ownerId required", http.StatusBadRequest)
		return
	}
	doc, err := s.coord.CreateDocument(r.Context(), req.Title, req.Content, req.OwnerID, req.ParticipantIDs)
	if err != nil {
		fail(w, err)
		return
	}
	respond(w, http.StatusCreated, doc)
}

func (s *Server) getDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := s.coord.GetDocument(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		fail(w, err)
		return
	}
	respond(w, http.StatusOK, doc)
}

type userRequest struct {
	UserID string `json:"userId"`
}

func (s *Server) joinSession(w http.ResponseWriter, r *http.Request) {
	var req userRequest
	if !decode(w, r, &req) {
		return
	}
	doc, err := s.coord.JoinSession(r.Context(), mux.Vars(r)["id"], req.UserID)
	if err != nil {
		fail(w, err)
		return
	}
	respond(w, http.StatusOK, doc)
}

func (s *Server) leaveSession(w http.ResponseWriter, r *http.Request) {
	var req userRequest
	if !decode(w, r, &req) {
		return
	}
	if err := s.coord.LeaveSession(r.Context(), mux.Vars(r)["id"], req.UserID); err != nil {
		fail(w, err)
		return
	}
	respond(w, http.StatusOK, map[string]bool{"left": true})
}

func (s *Server) applyOperation(w http.ResponseWriter, r *http.Request) {
	var op ot.Operation
	if !decode(w, r, &op) {
		return
	}
	if op.Type != ot.OpInsert && op.Type != ot.OpDelete {
		http.Error(w, "type must be insert or delete", http.StatusBadRequest)
		return
	}
	result, err := s.coord.ApplyOperation(r.Context(), mux.Vars(r)["id"], op)
	if err != nil {
		fail(w, err)
		return
	}
	respond(w, http.StatusOK, result)
}

type cursorRequest struct {
	UserID         string `json:"userId"`
	Cursor         int    `json:"cursor"`
	SelectionStart *int   `json:"selectionStart"`
	SelectionEnd   *int   `json:"selectionEnd"`
}

func (s *Server) updateCursor(w http.ResponseWriter, r *http.Request) {
	var req cursorRequest
	if !decode(w, r, &req) {
		return
	}
	selStart, selEnd := req.Cursor, req.Cursor
	if req.SelectionStart != nil {
		selStart = *req.SelectionStart
	}
	if req.SelectionEnd != nil {
		selEnd = *req.SelectionEnd
	}
	if err := s.coord.UpdateCursor(r.Context(), mux.Vars(r)["id"], req.UserID, req.Cursor, selStart, selEnd); err != nil {
		fail(w, err)
		return
	}
	respond(w, http.StatusOK, map[string]bool{"updated": true})
}

func (s *Server) getParticipants(w http.ResponseWriter, r *http.Request) {
	participants, err := s.coord.GetParticipants(mux.Vars(r)["id"])
	if err != nil {
		fail(w, err)
		return
	}
	respond(w, http.StatusOK, map[string][]string{"participants": participants})
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}

func respond(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		glog.Errorf("encode response: %v", err)
	}
}

func fail(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, collab.ErrDocumentNotFound), errors.Is(err, collab.ErrSessionNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		glog.Errorf("request failed: %v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
