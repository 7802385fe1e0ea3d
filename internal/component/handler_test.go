package component

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/anshaggr/foliochat/internal/chat"
	"github.com/anshaggr/foliochat/internal/conversation"
	"github.com/anshaggr/foliochat/internal/intent"
	"github.com/anshaggr/foliochat/internal/knowledge"
	"github.com/anshaggr/foliochat/internal/processor"
	"github.com/anshaggr/foliochat/internal/rag"
)

type fakeRetriever struct{}

func (fakeRetriever) RetrieveTopK(context.Context, string, int) []knowledge.ScoredDocument {
	return nil
}

type fakeGenerator struct {
	reply     string
	err       error
	started   chan struct{}
	startOnce sync.Once
	release   chan struct{}
}

func (f *fakeGenerator) Generate(context.Context, string) (string, error) {
	if f.started != nil {
		f.startOnce.Do(func() { close(f.started) })
	}
	if f.release != nil {
		<-f.release
	}
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func newTestHandler(gen *fakeGenerator) *Handler {
	proc := processor.New(intent.NewAnalyzer())
	engine := rag.NewEngine(fakeRetriever{}, gen)
	return NewHandler(proc, engine, conversation.NewMemoryStore())
}

func receiveFollowUp(t *testing.T, ch <-chan chat.Message) (chat.Message, bool) {
	t.Helper()
	select {
	case msg, ok := <-ch:
		return msg, ok
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for follow-up")
		return chat.Message{}, false
	}
}

func TestHandleComponentRequest(t *testing.T) {
	h := newTestHandler(&fakeGenerator{reply: "love these projects!"})

	resp, err := h.Handle(context.Background(), Request{
		SessionID: "s1",
		Message:   "show me your projects",
	})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}

	if !resp.Result.ShowComponent {
		t.Fatal("ShowComponent = false")
	}
	if len(resp.Messages) != 1 {
		t.Fatalf("Messages = %d, want 1 synchronous message", len(resp.Messages))
	}

	msg := resp.Messages[0]
	if msg.Type != chat.ComponentProjects {
		t.Errorf("message type = %q, want %q", msg.Type, chat.ComponentProjects)
	}
	if msg.Content != "Here are some of my recent projects:" {
		t.Errorf("preamble = %q", msg.Content)
	}
	if msg.ComponentContext == nil || msg.ComponentContext.UserQuery != "show me your projects" {
		t.Errorf("ComponentContext = %+v", msg.ComponentContext)
	}

	if resp.FollowUp == nil {
		t.Fatal("FollowUp channel missing for component turn")
	}
	follow, ok := receiveFollowUp(t, resp.FollowUp)
	if !ok {
		t.Fatal("follow-up channel closed without a message")
	}
	if follow.Content != "love these projects!" {
		t.Errorf("follow-up = %q", follow.Content)
	}
	if _, open := receiveFollowUp(t, resp.FollowUp); open {
		t.Error("follow-up channel delivered more than one message")
	}
}

func TestHandleMoreBypass(t *testing.T) {
	// The generator blocks forever; "more" must not invoke it.
	gen := &fakeGenerator{release: make(chan struct{})}
	h := newTestHandler(gen)

	resp, err := h.Handle(context.Background(), Request{SessionID: "s1", Message: "what else"})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if resp.Result.ComponentType != chat.ComponentMore {
		t.Fatalf("component = %q, want %q", resp.Result.ComponentType, chat.ComponentMore)
	}
	if resp.FollowUp != nil {
		t.Error("more picklist spawned a follow-up")
	}
	if resp.Messages[0].Content != "" {
		t.Errorf("more message content = %q, want empty", resp.Messages[0].Content)
	}
}

func TestHandleDuplicateRequest(t *testing.T) {
	gen := &fakeGenerator{
		reply:   "slow answer",
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	h := newTestHandler(gen)

	resp, err := h.Handle(context.Background(), Request{
		SessionID: "s1",
		RequestID: "req-1",
		Message:   "show me your skills",
	})
	if err != nil {
		t.Fatalf("first Handle: %v", err)
	}
	<-gen.started

	_, err = h.Handle(context.Background(), Request{
		SessionID: "s1",
		RequestID: "req-1",
		Message:   "show me your skills",
	})
	if !errors.Is(err, ErrDuplicateRequest) {
		t.Fatalf("second Handle error = %v, want ErrDuplicateRequest", err)
	}

	close(gen.release)
	receiveFollowUp(t, resp.FollowUp)

	// Once the follow-up resolves the ID is reusable.
	if _, err := h.Handle(context.Background(), Request{
		SessionID: "s1",
		RequestID: "req-1",
		Message:   "where are you based",
	}); err != nil {
		t.Fatalf("reuse after completion: %v", err)
	}
}

func TestHandleGeneratedRequestIDsAreIndependent(t *testing.T) {
	h := newTestHandler(&fakeGenerator{reply: "hi"})

	for i := 0; i < 2; i++ {
		if _, err := h.Handle(context.Background(), Request{
			SessionID: "s1",
			Message:   "where are you based",
		}); err != nil {
			t.Fatalf("Handle %d: %v", i, err)
		}
	}
}

func TestHandleFollowUpFallbackOnError(t *testing.T) {
	h := newTestHandler(&fakeGenerator{err: errors.New("generation failed")})

	resp, err := h.Handle(context.Background(), Request{
		SessionID: "s1",
		Message:   "show me your projects",
	})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}

	follow, ok := receiveFollowUp(t, resp.FollowUp)
	if !ok {
		t.Fatal("follow-up channel closed without a message")
	}
	if !strings.Contains(follow.Content, "Study Buddy") {
		t.Errorf("fallback follow-up = %q", follow.Content)
	}
}

func TestElaborationFlowAcrossTurns(t *testing.T) {
	h := newTestHandler(&fakeGenerator{reply: "sure, here's the story"})
	ctx := context.Background()

	first, err := h.Handle(ctx, Request{SessionID: "s1", Message: "who are you"})
	if err != nil {
		t.Fatalf("first turn: %v", err)
	}
	if first.Result.ComponentType != chat.ComponentProfile {
		t.Fatalf("first turn component = %q", first.Result.ComponentType)
	}
	follow, _ := receiveFollowUp(t, first.FollowUp)

	history := []chat.Message{
		{Role: chat.RoleUser, Content: "who are you"},
		first.Messages[0],
		follow,
	}
	second, err := h.Handle(ctx, Request{
		SessionID: "s1",
		Message:   "tell me more about that",
		History:   history,
	})
	if err != nil {
		t.Fatalf("second turn: %v", err)
	}
	if second.Result.Intent.Type != intent.TypeElaboration {
		t.Fatalf("second turn intent = %q, want %q", second.Result.Intent.Type, intent.TypeElaboration)
	}
	if second.Result.Intent.RecentComponentRef != chat.ComponentProfile {
		t.Errorf("RecentComponentRef = %q, want %q",
			second.Result.Intent.RecentComponentRef, chat.ComponentProfile)
	}
	if len(second.Messages) != 1 || second.Messages[0].Content != "sure, here's the story" {
		t.Errorf("second turn messages = %+v", second.Messages)
	}
}
