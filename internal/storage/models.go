package storage

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// Interaction is one processed user message together with its routing
// decision and the reply that was produced.
type Interaction struct {
	ID            string    `json:"id"`
	SessionID     string    `json:"session_id"`
	CreatedAt     time.Time `json:"created_at"`
	UserQuery     string    `json:"user_query"`
	IntentType    string    `json:"intent_type"`
	ComponentType string    `json:"component_type,omitempty"`
	Response      string    `json:"response"`
	LatencyMs     int64     `json:"latency_ms"`
}
