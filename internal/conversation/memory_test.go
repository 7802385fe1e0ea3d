package conversation

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/anshaggr/foliochat/internal/chat"
)

func TestContextStringEmptyMemory(t *testing.T) {
	m := NewMemory()
	if got := m.ContextString(""); got != "" {
		t.Errorf("ContextString on empty memory = %q, want empty", got)
	}
	if got := m.ContextString(chat.ComponentProjects); got != "" {
		t.Errorf("ContextString for unshown component = %q, want empty", got)
	}
}

func TestContextStringAfterShown(t *testing.T) {
	m := NewMemory()
	m.RecordComponentShown(chat.ComponentProjects, "show me your projects")

	got := m.ContextString(chat.ComponentProjects)
	if !strings.Contains(got, "RECENT COMPONENT CONTEXT") {
		t.Errorf("missing header in %q", got)
	}
	if !strings.Contains(got, "show me your projects") {
		t.Errorf("missing originating query in %q", got)
	}
	if !strings.Contains(got, "Study Buddy") {
		t.Errorf("missing project facts in %q", got)
	}

	// Empty component type falls back to the last shown component.
	if got := m.ContextString(""); !strings.Contains(got, "PROJECT DETAILS") {
		t.Errorf("last-shown fallback = %q, want project details", got)
	}
}

func TestContextStringDefaultBlock(t *testing.T) {
	m := NewMemory()
	m.RecordComponentShown(chat.ComponentContact, "how do I reach you")

	got := m.ContextString(chat.ComponentContact)
	if !strings.Contains(got, "Component data available for elaboration") {
		t.Errorf("default block missing in %q", got)
	}
}

func TestLastShownTracksNewest(t *testing.T) {
	m := NewMemory()

	if _, ok := m.LastShown(); ok {
		t.Fatal("LastShown on empty memory reported a component")
	}

	m.RecordComponentShown(chat.ComponentProfile, "who are you")
	m.RecordComponentShown(chat.ComponentSkills, "what are your skills")

	last, ok := m.LastShown()
	if !ok {
		t.Fatal("LastShown = none after two records")
	}
	if last.Type != chat.ComponentSkills {
		t.Errorf("last.Type = %q, want %q", last.Type, chat.ComponentSkills)
	}

	rec, ok := m.Component(chat.ComponentProfile)
	if !ok {
		t.Fatal("profile record lost after second component")
	}
	if rec.UserQuery != "who are you" {
		t.Errorf("UserQuery = %q, want %q", rec.UserQuery, "who are you")
	}
}

func TestHasRecent(t *testing.T) {
	m := NewMemory()
	current := time.Now()
	m.now = func() time.Time { return current }

	m.RecordComponentShown(chat.ComponentFun, "craziest thing")

	if !m.HasRecent(chat.ComponentFun, 5*time.Minute) {
		t.Error("HasRecent = false immediately after showing")
	}

	current = current.Add(10 * time.Minute)
	if m.HasRecent(chat.ComponentFun, 5*time.Minute) {
		t.Error("HasRecent = true after the window elapsed")
	}
	if m.HasRecent(chat.ComponentProjects, time.Hour) {
		t.Error("HasRecent = true for a component never shown")
	}
}

func TestObserve(t *testing.T) {
	m := NewMemory()

	m.Observe(chat.Message{
		Role:             chat.RoleAssistant,
		Type:             chat.ComponentProjects,
		ComponentContext: &chat.ComponentContext{Type: chat.ComponentProjects, Shown: true, UserQuery: "show me projects"},
	})
	m.Observe(chat.Message{Role: chat.RoleUser, Content: "tell me more"})
	m.Observe(chat.Message{Role: chat.RoleAssistant, Content: "plain reply"})

	last, ok := m.LastShown()
	if !ok || last.Type != chat.ComponentProjects {
		t.Fatalf("LastShown = %+v, %v", last, ok)
	}

	flow := m.Flow()
	want := []string{"shown_projects", "query_tell me more"}
	if len(flow) != len(want) {
		t.Fatalf("flow = %v, want %v", flow, want)
	}
	for i := range want {
		if flow[i] != want[i] {
			t.Errorf("flow[%d] = %q, want %q", i, flow[i], want[i])
		}
	}
}

func TestFlowTruncation(t *testing.T) {
	m := NewMemory()
	for i := 0; i < flowLimit+10; i++ {
		m.RecordUserQuery("a very long user query that gets trimmed to a prefix")
	}
	if got := len(m.Flow()); got != flowLimit {
		t.Errorf("flow length = %d, want %d", got, flowLimit)
	}
	if got := m.Flow()[0]; got != "query_a very long user que" {
		t.Errorf("flow[0] = %q", got)
	}
}

func TestRecordUserQueryKeepsRunesIntact(t *testing.T) {
	m := NewMemory()
	m.RecordUserQuery("अगला प्रोजेक्ट दिखाओ ना यार प्लीज़ 🙏")

	got := m.Flow()[0]
	if !utf8.ValidString(got) {
		t.Fatalf("flow event is not valid UTF-8: %q", got)
	}
	if want := "query_" + string([]rune("अगला प्रोजेक्ट दिखाओ ना यार प्लीज़ 🙏")[:20]); got != want {
		t.Errorf("flow[0] = %q, want %q", got, want)
	}
}

func TestClear(t *testing.T) {
	m := NewMemory()
	m.RecordComponentShown(chat.ComponentSkills, "skills")
	m.RecordUserQuery("hello")

	m.Clear()

	if _, ok := m.LastShown(); ok {
		t.Error("LastShown survived Clear")
	}
	if len(m.Flow()) != 0 {
		t.Error("flow survived Clear")
	}
	if m.ContextString(chat.ComponentSkills) != "" {
		t.Error("ContextString survived Clear")
	}
}

func TestEnhancedContext(t *testing.T) {
	m := NewMemory()
	m.RecordComponentShown(chat.ComponentFun, "craziest thing you did")

	got := m.EnhancedContext("what was the craziest part", chat.ComponentFun)
	if !strings.Contains(got, "ADVENTURE DETAILS AVAILABLE") {
		t.Errorf("missing component block in %q", got)
	}
	if !strings.Contains(got, "crazy/adventure experiences") {
		t.Errorf("missing adventure steering hint in %q", got)
	}

	got = m.EnhancedContext("what is your work philosophy", "")
	if !strings.Contains(got, "philosophical question") {
		t.Errorf("missing philosophy hint in %q", got)
	}

	if got := m.EnhancedContext("where are you based", ""); got != "" {
		t.Errorf("EnhancedContext = %q for plain query without component, want empty", got)
	}
}

func TestMemoryJSONRoundTrip(t *testing.T) {
	m := NewMemory()
	m.RecordComponentShown(chat.ComponentProfile, "who are you")
	m.RecordUserQuery("nice to meet you")

	data, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	restored := NewMemory()
	if err := json.Unmarshal(data, restored); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	last, ok := restored.LastShown()
	if !ok || last.Type != chat.ComponentProfile {
		t.Fatalf("restored LastShown = %+v, %v", last, ok)
	}
	if last.UserQuery != "who are you" {
		t.Errorf("restored UserQuery = %q", last.UserQuery)
	}
	if len(restored.Flow()) != 2 {
		t.Errorf("restored flow = %v", restored.Flow())
	}
	if restored.ContextString(chat.ComponentProfile) == "" {
		t.Error("restored memory lost component context")
	}
}
