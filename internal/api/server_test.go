package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/anshaggr/foliochat/internal/chat"
	"github.com/anshaggr/foliochat/internal/component"
	"github.com/anshaggr/foliochat/internal/conversation"
	"github.com/anshaggr/foliochat/internal/credential"
	"github.com/anshaggr/foliochat/internal/ingest"
	"github.com/anshaggr/foliochat/internal/intent"
	"github.com/anshaggr/foliochat/internal/knowledge"
	"github.com/anshaggr/foliochat/internal/processor"
	"github.com/anshaggr/foliochat/internal/provider"
	"github.com/anshaggr/foliochat/internal/rag"
	"github.com/anshaggr/foliochat/internal/storage"
)

// stubProvider answers every call with fixed values, keeping the credential
// pool functional without network access.
type stubProvider struct{}

func (stubProvider) Embed(context.Context, string) ([]float32, error) {
	return []float32{1, 0, 0}, nil
}

func (stubProvider) Generate(context.Context, string) (string, error) {
	return "stub reply", nil
}

func newTestServer(t *testing.T, token string) (http.Handler, *storage.Store) {
	t.Helper()

	store, err := storage.Open(t.TempDir())
	if err != nil {
		t.Fatalf("storage.Open: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	pool, err := credential.NewPool([]string{"test-secret"},
		func(string) provider.Provider { return stubProvider{} },
		credential.DefaultLimits())
	if err != nil {
		t.Fatalf("NewPool: %v", err)
	}

	kb := knowledge.NewStore(pool, store, "test-model")
	if _, err := kb.AddDocument(context.Background(), "BTech CSE student", "Education", "education"); err != nil {
		t.Fatalf("AddDocument: %v", err)
	}

	sessions := conversation.NewMemoryStore()
	engine := rag.NewEngine(kb, pool)
	handler := component.NewHandler(processor.New(intent.NewAnalyzer()), engine, sessions)

	return NewHandler(Deps{
		Handler:   handler,
		Knowledge: kb,
		Ingestor:  ingest.New(kb),
		Pool:      pool,
		Store:     store,
		Sessions:  sessions,
		Token:     token,
	}), store
}

func postJSON(t *testing.T, h http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	req := httptest.NewRequest("POST", path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoint(t *testing.T) {
	h, _ := newTestServer(t, "")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body struct {
		Status             string `json:"status"`
		Documents          int    `json:"documents"`
		HealthyCredentials int    `json:"healthy_credentials"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Status != "ok" || body.Documents != 1 || body.HealthyCredentials != 1 {
		t.Errorf("body = %+v", body)
	}
}

func TestChatEndpoint(t *testing.T) {
	h, store := newTestServer(t, "")

	rec := postJSON(t, h, "/v1/chat", map[string]string{"message": "show me your projects"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}

	var body struct {
		SessionID string         `json:"session_id"`
		Intent    string         `json:"intent"`
		Component string         `json:"component"`
		Messages  []chat.Message `json:"messages"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}

	if body.SessionID == "" {
		t.Error("missing generated session ID")
	}
	if body.Intent != "component" || body.Component != "projects" {
		t.Errorf("intent = %q, component = %q", body.Intent, body.Component)
	}
	// Component message plus the resolved follow-up.
	if len(body.Messages) != 2 {
		t.Fatalf("messages = %d, want 2", len(body.Messages))
	}
	if body.Messages[0].Type != chat.ComponentProjects {
		t.Errorf("first message type = %q", body.Messages[0].Type)
	}
	if body.Messages[1].Content != "stub reply" {
		t.Errorf("follow-up = %q", body.Messages[1].Content)
	}

	// The turn was recorded for the history endpoint.
	interactions, err := store.ListInteractions(body.SessionID, 10)
	if err != nil {
		t.Fatalf("ListInteractions: %v", err)
	}
	if len(interactions) != 1 {
		t.Fatalf("interactions = %d, want 1", len(interactions))
	}
	if interactions[0].IntentType != "component" {
		t.Errorf("recorded intent = %q", interactions[0].IntentType)
	}
}

func TestChatEndpointValidation(t *testing.T) {
	h, _ := newTestServer(t, "")

	rec := postJSON(t, h, "/v1/chat", map[string]string{"message": "   "})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("blank message: status = %d, want 400", rec.Code)
	}

	req := httptest.NewRequest("POST", "/v1/chat", bytes.NewReader([]byte("{not json")))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("malformed body: status = %d, want 400", rec.Code)
	}

	var errBody struct {
		Error struct {
			Message string `json:"message"`
			Type    string `json:"type"`
		} `json:"error"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&errBody); err != nil {
		t.Fatalf("decode error envelope: %v", err)
	}
	if errBody.Error.Type != "invalid_request_error" {
		t.Errorf("error type = %q", errBody.Error.Type)
	}
}

func TestChatDuplicateRequestID(t *testing.T) {
	h, _ := newTestServer(t, "")

	body := map[string]string{
		"message":    "where are you based",
		"request_id": "dup-1",
		"session_id": "s1",
	}
	if rec := postJSON(t, h, "/v1/chat", body); rec.Code != http.StatusOK {
		t.Fatalf("first request: status = %d", rec.Code)
	}
	// The first turn finished, so the same ID is accepted again.
	if rec := postJSON(t, h, "/v1/chat", body); rec.Code != http.StatusOK {
		t.Fatalf("sequential reuse: status = %d", rec.Code)
	}
}

func TestHistoryAndDeleteSession(t *testing.T) {
	h, _ := newTestServer(t, "")

	postJSON(t, h, "/v1/chat", map[string]string{"message": "hi there", "session_id": "s9"})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/v1/chat/s9/history", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("history status = %d", rec.Code)
	}
	var interactions []storage.Interaction
	if err := json.NewDecoder(rec.Body).Decode(&interactions); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(interactions) != 1 {
		t.Fatalf("interactions = %d, want 1", len(interactions))
	}
	if interactions[0].UserQuery != "hi there" {
		t.Errorf("UserQuery = %q", interactions[0].UserQuery)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("DELETE", "/v1/chat/s9", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("delete status = %d", rec.Code)
	}
}

func TestAdminRoutesRequireToken(t *testing.T) {
	h, _ := newTestServer(t, "sekrit")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/v1/credentials", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("no token: status = %d, want 401", rec.Code)
	}

	req := httptest.NewRequest("GET", "/v1/credentials", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("wrong token: status = %d, want 401", rec.Code)
	}

	req = httptest.NewRequest("GET", "/v1/credentials", nil)
	req.Header.Set("Authorization", "Bearer sekrit")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("valid token: status = %d", rec.Code)
	}

	var body struct {
		Total   int `json:"total"`
		Healthy int `json:"healthy"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Total != 1 || body.Healthy != 1 {
		t.Errorf("body = %+v", body)
	}
}

func TestAdminRoutesDisabledWithoutToken(t *testing.T) {
	h, _ := newTestServer(t, "")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/v1/credentials", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404 with admin surface unmounted", rec.Code)
	}
}

func TestAddDocumentEndpoint(t *testing.T) {
	h, _ := newTestServer(t, "tok")

	post := func(body any) *httptest.ResponseRecorder {
		data, _ := json.Marshal(body)
		req := httptest.NewRequest("POST", "/v1/documents", bytes.NewReader(data))
		req.Header.Set("Authorization", "Bearer tok")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	rec := post(map[string]string{"content": "new fact", "title": "Fact"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}
	var result map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if result["id"] == "" || result["status"] != "stored" {
		t.Errorf("result = %v", result)
	}

	// Inline content without a title is rejected.
	if rec := post(map[string]string{"content": "untitled"}); rec.Code != http.StatusBadRequest {
		t.Errorf("untitled content: status = %d, want 400", rec.Code)
	}
	// Neither content nor URL is rejected.
	if rec := post(map[string]string{"title": "empty"}); rec.Code != http.StatusBadRequest {
		t.Errorf("empty body: status = %d, want 400", rec.Code)
	}
}
