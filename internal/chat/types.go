package chat

import "time"

// ComponentType identifies a pre-built UI panel the front-end can render
// instead of (or alongside) a generated reply.
type ComponentType string

const (
	ComponentProfile    ComponentType = "profile"
	ComponentProjects   ComponentType = "projects"
	ComponentSkills     ComponentType = "skills"
	ComponentContact    ComponentType = "contact"
	ComponentResume     ComponentType = "resume"
	ComponentFun        ComponentType = "fun"
	ComponentMore       ComponentType = "more"
	ComponentInternship ComponentType = "internship"
)

// KnownComponents lists every component type the engine can route to,
// in display priority order.
var KnownComponents = []ComponentType{
	ComponentProfile,
	ComponentProjects,
	ComponentSkills,
	ComponentContact,
	ComponentResume,
	ComponentFun,
	ComponentInternship,
	ComponentMore,
}

// Valid reports whether t is one of the known component types.
func (t ComponentType) Valid() bool {
	for _, k := range KnownComponents {
		if t == k {
			return true
		}
	}
	return false
}

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ComponentContext carries structured facts about a component that was
// rendered, so follow-up generation can reference what the user actually saw.
type ComponentContext struct {
	Type                ComponentType `json:"type"`
	Shown               bool          `json:"shown"`
	UserQuery           string        `json:"user_query"`
	AvailableProjects   []string      `json:"available_projects,omitempty"`
	SkillCategories     []string      `json:"skill_categories,omitempty"`
	AdventureHighlights []string      `json:"adventure_highlights,omitempty"`
	Availability        string        `json:"availability,omitempty"`
	Interests           []string      `json:"interests,omitempty"`
}

// Message is one chat turn. Messages are append-only: once created they are
// never mutated, and their insertion order is the conversation history.
type Message struct {
	ID               string            `json:"id"`
	Role             string            `json:"role"`
	Content          string            `json:"content"`
	Timestamp        time.Time         `json:"timestamp"`
	Type             ComponentType     `json:"type,omitempty"`
	ComponentContext *ComponentContext `json:"component_context,omitempty"`
}

// IsShownComponent reports whether the message is an assistant message that
// successfully rendered a component.
func (m Message) IsShownComponent() bool {
	return m.Role == RoleAssistant && m.Type != "" && m.ComponentContext != nil && m.ComponentContext.Shown
}
