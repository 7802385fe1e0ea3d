package rag

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/anshaggr/foliochat/internal/chat"
	"github.com/anshaggr/foliochat/internal/intent"
	"github.com/anshaggr/foliochat/internal/knowledge"
)

type fakeRetriever struct {
	docs      []knowledge.ScoredDocument
	lastQuery string
	lastK     int
}

func (f *fakeRetriever) RetrieveTopK(_ context.Context, query string, k int) []knowledge.ScoredDocument {
	f.lastQuery = query
	f.lastK = k
	return f.docs
}

type fakeGenerator struct {
	reply      string
	err        error
	lastPrompt string
}

func (f *fakeGenerator) Generate(_ context.Context, prompt string) (string, error) {
	f.lastPrompt = prompt
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func scoredDoc(title, content string) knowledge.ScoredDocument {
	return knowledge.ScoredDocument{
		Document: knowledge.Document{Title: title, Content: content},
		Score:    0.9,
	}
}

func TestRegularResponsePrompt(t *testing.T) {
	retriever := &fakeRetriever{docs: []knowledge.ScoredDocument{
		scoredDoc("Education", "BTech CSE at Manipal University Jaipur"),
	}}
	gen := &fakeGenerator{reply: "generated answer"}
	engine := NewEngine(retriever, gen)

	history := []chat.Message{
		{Role: chat.RoleUser, Content: "hi"},
		{Role: chat.RoleAssistant, Content: "hey!"},
	}

	got := engine.Generate(context.Background(), "where do you study", history, nil, "", intent.TypeInformational)
	if got != "generated answer" {
		t.Fatalf("Generate = %q", got)
	}

	if retriever.lastQuery != "where do you study" {
		t.Errorf("retrieval query = %q", retriever.lastQuery)
	}
	if retriever.lastK != generalTopK {
		t.Errorf("retrieval k = %d, want %d", retriever.lastK, generalTopK)
	}

	prompt := gen.lastPrompt
	for _, want := range []string{
		"[Education]: BTech CSE at Manipal University Jaipur",
		"user: hi",
		"assistant: hey!",
		"USER INTENT: informational",
		"Current question: where do you study",
		"Respond as Ansh Agrawal",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestRegularResponseEnhancedContext(t *testing.T) {
	gen := &fakeGenerator{reply: "ok"}
	engine := NewEngine(&fakeRetriever{}, gen)

	engine.Generate(context.Background(), "more please", nil,
		nil, "RECENT COMPONENT CONTEXT: projects", intent.TypeElaboration)

	if !strings.Contains(gen.lastPrompt, "Additional Context:\nRECENT COMPONENT CONTEXT: projects") {
		t.Error("enhanced context missing from prompt")
	}
	if !strings.Contains(gen.lastPrompt, "USER INTENT: elaboration") {
		t.Error("intent instruction missing from prompt")
	}
}

func TestRegularResponseFallback(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("all credentials exhausted")}
	engine := NewEngine(&fakeRetriever{}, gen)

	got := engine.Generate(context.Background(), "anything", nil, nil, "", intent.TypeInformational)
	if got != genericFallback {
		t.Errorf("Generate = %q, want generic fallback", got)
	}
}

func TestComponentFollowUpPrompt(t *testing.T) {
	retriever := &fakeRetriever{docs: []knowledge.ScoredDocument{
		scoredDoc("Projects", "Study Buddy and friends"),
	}}
	gen := &fakeGenerator{reply: "nice follow-up"}
	engine := NewEngine(retriever, gen)

	cc := chat.ComponentContext{
		Type:      chat.ComponentProjects,
		UserQuery: "show me your projects",
		Shown:     true,
	}

	got := engine.Generate(context.Background(), "show me your projects", nil, &cc, "", intent.TypeComponent)
	if got != "nice follow-up" {
		t.Fatalf("Generate = %q", got)
	}

	// Retrieval is biased toward the rendered component.
	if retriever.lastQuery != "projects show me your projects" {
		t.Errorf("retrieval query = %q", retriever.lastQuery)
	}
	if retriever.lastK != componentTopK {
		t.Errorf("retrieval k = %d, want %d", retriever.lastK, componentTopK)
	}

	prompt := gen.lastPrompt
	for _, want := range []string{
		"Displayed projects showcase",
		"Study Buddy",
		"Component Status: Displayed successfully",
		"You just showed your projects component",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestComponentFollowUpFallbacks(t *testing.T) {
	tests := []struct {
		component chat.ComponentType
		want      string
	}{
		{chat.ComponentProjects, "**Study Buddy**"},
		{chat.ComponentFun, "Kedarnath trek"},
		{chat.ComponentInternship, "Summer 2026"},
		{chat.ComponentMore, "That was fun to show!"},
	}

	engine := NewEngine(&fakeRetriever{}, &fakeGenerator{err: errors.New("boom")})
	for _, tt := range tests {
		t.Run(string(tt.component), func(t *testing.T) {
			got := engine.ComponentFollowUp(context.Background(),
				chat.ComponentContext{Type: tt.component}, nil)
			if !strings.Contains(got, tt.want) {
				t.Errorf("fallback = %q, want it to contain %q", got, tt.want)
			}
		})
	}
}

func TestComponentContextFailedStatus(t *testing.T) {
	got := buildComponentContext(chat.ComponentContext{
		Type:      chat.ComponentSkills,
		UserQuery: "skills",
		Shown:     false,
	})
	if !strings.Contains(got, "Component Status: Tried but failed") {
		t.Errorf("missing failed status in %q", got)
	}
}

func TestComponentContextDefaults(t *testing.T) {
	got := buildComponentContext(chat.ComponentContext{
		Type:  chat.ComponentInternship,
		Shown: true,
	})
	if !strings.Contains(got, "Summer 2026, part-time anytime") {
		t.Errorf("missing default availability in %q", got)
	}

	withValues := buildComponentContext(chat.ComponentContext{
		Type:         chat.ComponentInternship,
		Shown:        true,
		Availability: "Summer 2026 only",
		Interests:    []string{"GenAI"},
	})
	if !strings.Contains(withValues, "Availability: Summer 2026 only") {
		t.Errorf("explicit availability not used in %q", withValues)
	}
	if !strings.Contains(withValues, "Interest: GenAI") {
		t.Errorf("explicit interest not used in %q", withValues)
	}
}

func TestFormatHistoryWindow(t *testing.T) {
	history := []chat.Message{
		{Role: chat.RoleUser, Content: "one"},
		{Role: chat.RoleAssistant, Content: "two"},
		{Role: chat.RoleUser, Content: "three"},
	}

	got := formatHistory(history, 2)
	if strings.Contains(got, "one") {
		t.Errorf("history window leaked older message: %q", got)
	}
	if !strings.Contains(got, "assistant: two") || !strings.Contains(got, "user: three") {
		t.Errorf("history window dropped recent messages: %q", got)
	}
}
