package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/anshaggr/foliochat/internal/component"
	"github.com/anshaggr/foliochat/internal/credential"
	"github.com/anshaggr/foliochat/internal/ingest"
	"github.com/anshaggr/foliochat/internal/knowledge"
	"github.com/anshaggr/foliochat/internal/storage"
)

const maxRequestBodySize = 1 << 20 // 1MB

// SessionDeleter clears a session's conversation state.
type SessionDeleter interface {
	Delete(ctx context.Context, sessionID string) error
}

// Deps holds everything the HTTP surface needs.
type Deps struct {
	Handler   *component.Handler
	Knowledge *knowledge.Store
	Ingestor  *ingest.Ingestor
	Pool      *credential.Pool
	Store     *storage.Store
	Sessions  SessionDeleter
	Token     string // admin bearer token; empty disables admin routes
}

// NewHandler builds the chat API router. Admin routes (credential stats and
// document ingestion) are mounted only when a token is configured.
func NewHandler(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Get("/health", handleHealth(deps))
	r.Post("/v1/chat", handleChat(deps))
	r.Get("/v1/chat/{session}/history", handleHistory(deps))
	r.Delete("/v1/chat/{session}", handleDeleteSession(deps))

	if deps.Token != "" {
		r.Group(func(admin chi.Router) {
			admin.Use(BearerAuth(deps.Token))
			admin.Get("/v1/credentials", handleCredentialStats(deps))
			admin.Post("/v1/documents", handleAddDocument(deps))
		})
	}

	return r
}

func handleHealth(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{
			"status":              "ok",
			"documents":           deps.Knowledge.Count(),
			"healthy_credentials": deps.Pool.HealthyCount(),
		})
	}
}

func handleCredentialStats(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{
			"total":       deps.Pool.Size(),
			"healthy":     deps.Pool.HealthyCount(),
			"credentials": deps.Pool.Stats(),
		})
	}
}

type addDocumentRequest struct {
	Content string `json:"content"`
	URL     string `json:"url"`
	Title   string `json:"title"`
	Type    string `json:"type"`
}

func handleAddDocument(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		defer r.Body.Close()

		var req addDocumentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}
		if req.Content == "" && req.URL == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "one of content or url is required")
			return
		}

		var id string
		var err error
		switch {
		case req.URL != "":
			id, err = deps.Ingestor.IngestURL(r.Context(), req.URL)
		default:
			if req.Title == "" {
				httpError(w, http.StatusBadRequest, "invalid_request_error", "title is required with inline content")
				return
			}
			if req.Type == "" {
				req.Type = "text"
			}
			id, err = deps.Knowledge.AddDocument(r.Context(), req.Content, req.Title, req.Type)
		}
		if err != nil {
			httpError(w, http.StatusBadGateway, "api_error", "failed to add document: %v", err)
			return
		}

		writeJSON(w, map[string]string{"id": id, "status": "stored"})
	}
}

func parseIntParam(r *http.Request, key string, defaultVal, maxVal int) int {
	s := r.URL.Query().Get(key)
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 0 {
		return defaultVal
	}
	if maxVal > 0 && v > maxVal {
		return maxVal
	}
	return v
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func httpError(w http.ResponseWriter, code int, errType string, format string, args ...any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{
			"message": fmt.Sprintf(format, args...),
			"type":    errType,
		},
	})
}
