package conversation

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/anshaggr/foliochat/internal/chat"
)

// flowLimit caps the event log so serialized sessions stay bounded.
const flowLimit = 100

// ComponentMemory records one rendered portfolio component.
type ComponentMemory struct {
	Type      chat.ComponentType `json:"type"`
	ShownAt   time.Time          `json:"shown_at"`
	UserQuery string             `json:"user_query"`
}

// Memory tracks which components a session has seen, which was shown most
// recently, and a compact log of conversational events. Safe for concurrent
// use by handlers sharing a session.
type Memory struct {
	mu    sync.Mutex
	shown map[chat.ComponentType]ComponentMemory
	last  *ComponentMemory
	flow  []string

	now func() time.Time
}

func NewMemory() *Memory {
	return &Memory{
		shown: make(map[chat.ComponentType]ComponentMemory),
		now:   time.Now,
	}
}

// Observe folds a message into memory. Assistant messages that rendered a
// component update the per-type record and the last-shown pointer; user
// messages only extend the event log.
func (m *Memory) Observe(msg chat.Message) {
	if msg.IsShownComponent() {
		m.RecordComponentShown(msg.Type, msg.ComponentContext.UserQuery)
		return
	}
	if msg.Role == chat.RoleUser {
		m.RecordUserQuery(msg.Content)
	}
}

// RecordComponentShown marks componentType as rendered for userQuery.
func (m *Memory) RecordComponentShown(componentType chat.ComponentType, userQuery string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec := ComponentMemory{
		Type:      componentType,
		ShownAt:   m.now(),
		UserQuery: userQuery,
	}
	m.shown[componentType] = rec
	m.last = &rec
	m.appendFlow("shown_" + string(componentType))
}

// RecordUserQuery logs a user query as a flow event, keyed by its prefix.
func (m *Memory) RecordUserQuery(query string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	prefix := query
	if runes := []rune(prefix); len(runes) > 20 {
		prefix = string(runes[:20])
	}
	m.appendFlow("query_" + prefix)
}

func (m *Memory) appendFlow(event string) {
	m.flow = append(m.flow, event)
	if len(m.flow) > flowLimit {
		m.flow = m.flow[len(m.flow)-flowLimit:]
	}
}

// LastShown returns the most recently rendered component, if any.
func (m *Memory) LastShown() (ComponentMemory, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.last == nil {
		return ComponentMemory{}, false
	}
	return *m.last, true
}

// Component returns the record for componentType, if it was ever shown.
func (m *Memory) Component(componentType chat.ComponentType) (ComponentMemory, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.shown[componentType]
	return rec, ok
}

// HasRecent reports whether componentType was shown within the given window.
func (m *Memory) HasRecent(componentType chat.ComponentType, within time.Duration) bool {
	rec, ok := m.Component(componentType)
	if !ok {
		return false
	}
	return m.now().Sub(rec.ShownAt) <= within
}

// Flow returns a copy of the event log, oldest first.
func (m *Memory) Flow() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.flow))
	copy(out, m.flow)
	return out
}

// Clear resets all session state.
func (m *Memory) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shown = make(map[chat.ComponentType]ComponentMemory)
	m.last = nil
	m.flow = nil
}

// ContextString renders a prompt block describing a previously shown
// component. With an empty componentType the last-shown component is used.
// Returns "" when nothing relevant was shown.
func (m *Memory) ContextString(componentType chat.ComponentType) string {
	if componentType == "" {
		last, ok := m.LastShown()
		if !ok {
			return ""
		}
		componentType = last.Type
	}

	rec, ok := m.Component(componentType)
	if !ok {
		return ""
	}

	var b strings.Builder
	b.WriteString("\nRECENT COMPONENT CONTEXT:\n")
	fmt.Fprintf(&b, "Component: %s (shown for query: %q)\n", componentType, rec.UserQuery)
	fmt.Fprintf(&b, "Shown at: %s\n", rec.ShownAt.Format(time.RFC1123))

	switch componentType {
	case chat.ComponentFun:
		b.WriteString("\nADVENTURE DETAILS AVAILABLE:\n")
		b.WriteString("- Adventures: Kedarnath Trek, Mountain Photography, Outdoor Adventures\n")
		b.WriteString("- Kedarnath Trek Details: Epic 22km trek to Kedarnath Temple\n")
		b.WriteString("- Experience: Life-changing spiritual and physical journey\n")
		b.WriteString("- Challenges: High altitude, weather conditions, physical endurance\n")
	case chat.ComponentProjects:
		b.WriteString("\nPROJECT DETAILS AVAILABLE:\n")
		b.WriteString("- Featured Projects: Study Buddy, RAG Chatbot, AI Cheat Detection, Helping Vision\n")
		b.WriteString("- Study Buddy: AI-powered study companion\n")
		b.WriteString("- Impact: Helped 200+ students\n")
		b.WriteString("- Duration: 6 months development\n")
	case chat.ComponentSkills:
		b.WriteString("\nSKILLS DETAILS AVAILABLE:\n")
		b.WriteString("- Categories: Frontend, Backend, AI/ML, Tools\n")
		b.WriteString("- Favorites: React, Python\n")
		b.WriteString("- Expertise Note: React for UI magic, Python for AI wizardry\n")
	case chat.ComponentProfile:
		b.WriteString("\nPROFILE CONTEXT:\n")
		b.WriteString("- Current Status: BTech Student at Manipal University Jaipur\n")
		b.WriteString("- Location: Gurgaon, Haryana\n")
		b.WriteString("- Experience: Student + Developer life in Gurgaon\n")
	default:
		b.WriteString("- Component data available for elaboration\n")
	}

	return b.String()
}

var (
	adventureQueryRe    = regexp.MustCompile(`(?i)craziest|crazy|adventure`)
	philosophyQueryRe   = regexp.MustCompile(`(?i)work philosophy|approach`)
	professionalQueryRe = regexp.MustCompile(`(?i)professional experience`)
)

// EnhancedContext combines the component context block with query-specific
// steering hints for the generator.
func (m *Memory) EnhancedContext(query string, componentType chat.ComponentType) string {
	var b strings.Builder

	if componentType != "" {
		b.WriteString(m.ContextString(componentType))
	}

	if adventureQueryRe.MatchString(query) && m.HasRecent(chat.ComponentFun, 5*time.Minute) {
		b.WriteString("\nQUERY CONTEXT: User is asking about crazy/adventure experiences after seeing the fun component with Kedarnath trek details.\n")
	}
	if philosophyQueryRe.MatchString(query) {
		b.WriteString("\nQUERY CONTEXT: User is asking about work philosophy/approach. This is a philosophical question, not a request to see projects.\n")
	}
	if professionalQueryRe.MatchString(query) {
		b.WriteString("\nQUERY CONTEXT: User wants details about professional experience. Focus on hackathons, achievements, and the experience narrative rather than just showing the profile.\n")
	}

	return b.String()
}

// memoryState is the serialized form used by persistent session stores.
type memoryState struct {
	Shown map[chat.ComponentType]ComponentMemory `json:"shown"`
	Last  *ComponentMemory                       `json:"last,omitempty"`
	Flow  []string                               `json:"flow,omitempty"`
}

func (m *Memory) MarshalJSON() ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return json.Marshal(memoryState{Shown: m.shown, Last: m.last, Flow: m.flow})
}

func (m *Memory) UnmarshalJSON(data []byte) error {
	var st memoryState
	if err := json.Unmarshal(data, &st); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shown = st.Shown
	if m.shown == nil {
		m.shown = make(map[chat.ComponentType]ComponentMemory)
	}
	m.last = st.Last
	m.flow = st.Flow
	if m.now == nil {
		m.now = time.Now
	}
	return nil
}
