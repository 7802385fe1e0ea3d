// Package component orchestrates one chat turn: routing the message,
// emitting the canned component message, and producing the generated reply
// or follow-up.
package component

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/anshaggr/foliochat/internal/chat"
	"github.com/anshaggr/foliochat/internal/conversation"
	"github.com/anshaggr/foliochat/internal/processor"
	"github.com/anshaggr/foliochat/internal/rag"
)

// ErrDuplicateRequest means a request with the same ID is still in flight.
var ErrDuplicateRequest = errors.New("request already in flight")

// Request is one user chat turn.
type Request struct {
	SessionID string
	RequestID string
	Message   string
	History   []chat.Message
}

// Response is the outcome of handling one turn. Messages holds everything
// emitted synchronously. FollowUp, when non-nil, delivers exactly one
// asynchronously generated assistant message and is then closed; the
// component message is always emitted before the follow-up is requested.
type Response struct {
	Result   processor.Result
	Messages []chat.Message
	FollowUp <-chan chat.Message
}

type Handler struct {
	processor *processor.Processor
	engine    *rag.Engine
	sessions  conversation.Store
	logger    *slog.Logger

	mu       sync.Mutex
	inflight map[string]struct{}
}

func NewHandler(proc *processor.Processor, engine *rag.Engine, sessions conversation.Store) *Handler {
	return &Handler{
		processor: proc,
		engine:    engine,
		sessions:  sessions,
		logger:    slog.Default(),
		inflight:  make(map[string]struct{}),
	}
}

// Handle processes one chat turn for a session. Requests are deduplicated
// by RequestID; a second call with an in-flight ID fails immediately with
// ErrDuplicateRequest.
func (h *Handler) Handle(ctx context.Context, req Request) (*Response, error) {
	if req.RequestID == "" {
		req.RequestID = uuid.New().String()
	}
	if err := h.begin(req.RequestID); err != nil {
		return nil, err
	}

	mem, err := h.sessions.Get(ctx, req.SessionID)
	if err != nil {
		h.finish(req.RequestID)
		return nil, fmt.Errorf("loading session: %w", err)
	}

	result := h.processor.Process(req.Message, req.History, mem)

	if result.ShowComponent {
		return h.handleComponent(ctx, req, result, mem)
	}

	defer h.finish(req.RequestID)

	var contextType chat.ComponentType
	if result.NeedsContext {
		if last, ok := mem.LastShown(); ok {
			contextType = last.Type
		}
	}
	enhanced := mem.EnhancedContext(req.Message, contextType)

	text := h.engine.Generate(ctx, req.Message, req.History, nil, enhanced, result.Intent.Type)

	if err := h.sessions.Save(ctx, req.SessionID, mem); err != nil {
		h.logger.Warn("saving session failed", "session", req.SessionID, "error", err)
	}

	return &Response{
		Result:   result,
		Messages: []chat.Message{assistantMessage(text)},
	}, nil
}

func (h *Handler) handleComponent(ctx context.Context, req Request, result processor.Result, mem *conversation.Memory) (*Response, error) {
	// "more" renders a picklist client-side; no generation involved.
	if result.ComponentType == chat.ComponentMore {
		defer h.finish(req.RequestID)
		msg := assistantMessage("")
		msg.Type = chat.ComponentMore
		return &Response{Result: result, Messages: []chat.Message{msg}}, nil
	}

	preamble, cc := componentPreamble(result.ComponentType, req.Message)
	componentMsg := assistantMessage(preamble)
	componentMsg.Type = result.ComponentType
	componentMsg.ComponentContext = &cc

	mem.Observe(componentMsg)
	if err := h.sessions.Save(ctx, req.SessionID, mem); err != nil {
		h.logger.Warn("saving session failed", "session", req.SessionID, "error", err)
	}

	// The follow-up outlives the request; it is delivered whenever
	// generation resolves, never dropped on client disconnect.
	followCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Minute)
	follow := make(chan chat.Message, 1)
	go func() {
		defer cancel()
		defer h.finish(req.RequestID)
		defer close(follow)
		text := h.engine.ComponentFollowUp(followCtx, cc, req.History)
		follow <- assistantMessage(text)
	}()

	return &Response{
		Result:   result,
		Messages: []chat.Message{componentMsg},
		FollowUp: follow,
	}, nil
}

func (h *Handler) begin(requestID string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.inflight[requestID]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateRequest, requestID)
	}
	h.inflight[requestID] = struct{}{}
	return nil
}

func (h *Handler) finish(requestID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.inflight, requestID)
}

func assistantMessage(content string) chat.Message {
	return chat.Message{
		ID:        uuid.New().String(),
		Role:      chat.RoleAssistant,
		Content:   content,
		Timestamp: time.Now().UTC(),
	}
}

// componentPreamble returns the canned announcement text and the context
// record for a rendered component.
func componentPreamble(t chat.ComponentType, userQuery string) (string, chat.ComponentContext) {
	cc := chat.ComponentContext{Type: t, Shown: true, UserQuery: userQuery}

	switch t {
	case chat.ComponentProfile:
		return "Here's my profile:", cc
	case chat.ComponentProjects:
		cc.AvailableProjects = []string{"Study Buddy", "RAG Chatbot", "AI Cheat Detection", "Helping Vision"}
		return "Here are some of my recent projects:", cc
	case chat.ComponentSkills:
		cc.SkillCategories = []string{"Frontend", "Backend", "AI/ML", "Tools"}
		return "Here are my skills and expertise:", cc
	case chat.ComponentContact:
		return "Here's how you can reach me:", cc
	case chat.ComponentResume:
		return "Here's my resume, you can download it:", cc
	case chat.ComponentFun:
		cc.AdventureHighlights = []string{"Kedarnath Trek", "Mountain Photography", "Outdoor Adventures"}
		return "Check out my adventures and crazy experiences:", cc
	case chat.ComponentInternship:
		cc.Availability = "Summer 2026, Part-time"
		cc.Interests = []string{"AI/ML", "Full-stack Development", "Startups"}
		return "Here's my internship availability and what I'm looking for:", cc
	}
	return "Here's what you asked for:", cc
}
