// Package server exposes the assistant over HTTP. Chat replies are streamed
// as Server-Sent Events.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/workspacehq/assistant/internal/assistant"
	"github.com/workspacehq/assistant/internal/conversation"
	"github.com/workspacehq/assistant/internal/history"
	"github.com/workspacehq/assistant/internal/logger"
	"github.com/workspacehq/assistant/internal/workspace"
)

// Lister reads archived messages. *history.Store implements it.
type Lister interface {
	List(ctx context.Context, conversationID string) ([]history.Record, error)
}

// Server routes dashboard requests to one assistant session.
type Server struct {
	session *assistant.Session
	client  *assistant.Client
	archive Lister
}

// New creates a server. archive may be nil.
func New(session *assistant.Session, client *assistant.Client, archive Lister) *Server {
	return &Server{session: session, client: client, archive: archive}
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("GET /api/conversation", s.handleConversation)
	mux.HandleFunc("POST /api/chat", s.handleChat)
	mux.HandleFunc("GET /api/history", s.handleHistory)
	mux.HandleFunc("GET /api/projects", s.handleProjects)
	mux.HandleFunc("GET /api/projects/{id}/summary", s.handleSummary)
	mux.HandleFunc("POST /api/brief", s.handleBrief)
	return mux
}

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 64 << 10

type conversationResponse struct {
	ID       string                 `json:"id"`
	Busy     bool                   `json:"busy"`
	Messages []conversation.Message `json:"messages"`
}

type chatRequest struct {
	Message string `json:"message"`
}

type briefRequest struct {
	Topic string `json:"topic"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.L.Error("write response error", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func (s *Server) handleConversation(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, conversationResponse{
		ID:       s.session.ConversationID(),
		Busy:     s.session.Busy(),
		Messages: s.session.Messages(),
	})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.L.Error("read body error", "err", err)
		writeError(w, http.StatusBadRequest, "failed to read request body")
		return
	}
	logger.L.Info("chat request", "length", len(req.Message))

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	started := false
	_, err := s.session.Submit(r.Context(), req.Message, func(e assistant.Event) {
		if !started {
			h := w.Header()
			h.Set("Content-Type", "text/event-stream")
			h.Set("Cache-Control", "no-cache")
			h.Set("Connection", "keep-alive")
			w.WriteHeader(http.StatusOK)
			started = true
		}
		if err := writeEvent(w, e); err != nil {
			logger.L.Warn("sse write failed", "error", err)
			return
		}
		flusher.Flush()
	})
	if err == nil {
		return
	}

	logger.L.Warn("chat rejected", "error", err)
	if started {
		return
	}
	switch {
	case errors.Is(err, conversation.ErrValidation):
		writeError(w, http.StatusBadRequest, "message must not be blank")
	case errors.Is(err, conversation.ErrBusy):
		writeError(w, http.StatusConflict, "a reply is already in progress")
	default:
		writeError(w, http.StatusInternalServerError, "failed to process request")
	}
}

func writeEvent(w http.ResponseWriter, e assistant.Event) error {
	data, err := json.Marshal(e)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", e.Kind, data)
	return err
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.archive == nil {
		writeError(w, http.StatusNotFound, "history is disabled")
		return
	}
	records, err := s.archive.List(r.Context(), s.session.ConversationID())
	if err != nil {
		logger.L.Error("history list error", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to read history")
		return
	}
	if records == nil {
		records = []history.Record{}
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleProjects(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, workspace.Projects())
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	p, err := workspace.ProjectByID(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"project_id": p.ID,
		"summary":    s.client.ProjectSummary(r.Context(), p),
	})
}

func (s *Server) handleBrief(w http.ResponseWriter, r *http.Request) {
	var req briefRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "failed to read request body")
		return
	}
	brief, err := s.client.SmartBrief(r.Context(), req.Topic)
	if err != nil {
		writeError(w, http.StatusBadRequest, "topic must not be blank")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"brief": brief})
}
