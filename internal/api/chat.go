package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/anshaggr/foliochat/internal/chat"
	"github.com/anshaggr/foliochat/internal/component"
	"github.com/anshaggr/foliochat/internal/storage"
)

type chatRequest struct {
	SessionID string         `json:"session_id"`
	RequestID string         `json:"request_id,omitempty"`
	Message   string         `json:"message"`
	History   []chat.Message `json:"history,omitempty"`
}

type chatResponse struct {
	SessionID string         `json:"session_id"`
	Intent    string         `json:"intent"`
	Component string         `json:"component,omitempty"`
	Messages  []chat.Message `json:"messages"`
}

func handleChat(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		defer r.Body.Close()

		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}
		if strings.TrimSpace(req.Message) == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "message is required")
			return
		}
		if req.SessionID == "" {
			req.SessionID = uuid.New().String()
		}

		started := time.Now()
		resp, err := deps.Handler.Handle(r.Context(), component.Request{
			SessionID: req.SessionID,
			RequestID: req.RequestID,
			Message:   req.Message,
			History:   req.History,
		})
		if errors.Is(err, component.ErrDuplicateRequest) {
			httpError(w, http.StatusConflict, "invalid_request_error", "%v", err)
			return
		}
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to process message: %v", err)
			return
		}

		messages := resp.Messages
		if resp.FollowUp != nil {
			// The component message precedes its generated follow-up in
			// the response. On client disconnect the follow-up is dropped
			// from the reply but still completes in the background.
			select {
			case msg, ok := <-resp.FollowUp:
				if ok {
					messages = append(messages, msg)
				}
			case <-r.Context().Done():
			}
		}

		recordInteraction(deps.Store, req, resp, messages, time.Since(started))

		writeJSON(w, chatResponse{
			SessionID: req.SessionID,
			Intent:    string(resp.Result.Intent.Type),
			Component: string(resp.Result.ComponentType),
			Messages:  messages,
		})
	}
}

func recordInteraction(store *storage.Store, req chatRequest, resp *component.Response, messages []chat.Message, latency time.Duration) {
	if store == nil {
		return
	}

	var parts []string
	for _, msg := range messages {
		if msg.Content != "" {
			parts = append(parts, msg.Content)
		}
	}

	err := store.SaveInteraction(storage.Interaction{
		ID:            uuid.New().String(),
		SessionID:     req.SessionID,
		CreatedAt:     time.Now().UTC(),
		UserQuery:     req.Message,
		IntentType:    string(resp.Result.Intent.Type),
		ComponentType: string(resp.Result.ComponentType),
		Response:      strings.Join(parts, "\n\n"),
		LatencyMs:     latency.Milliseconds(),
	})
	if err != nil {
		slog.Warn("failed to record interaction", "session", req.SessionID, "error", err)
	}
}

func handleHistory(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := chi.URLParam(r, "session")
		limit := parseIntParam(r, "limit", 20, 100)

		interactions, err := deps.Store.ListInteractions(sessionID, limit)
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to list history: %v", err)
			return
		}
		if interactions == nil {
			interactions = []storage.Interaction{}
		}

		writeJSON(w, interactions)
	}
}

func handleDeleteSession(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := chi.URLParam(r, "session")

		if err := deps.Sessions.Delete(r.Context(), sessionID); err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to clear session: %v", err)
			return
		}

		writeJSON(w, map[string]string{"status": "cleared"})
	}
}
