// Package processor turns a user message plus conversation state into a
// routing decision: which portfolio component to render, whether grounded
// generation should run, and how much context it needs.
package processor

import (
	"log/slog"

	"github.com/anshaggr/foliochat/internal/chat"
	"github.com/anshaggr/foliochat/internal/conversation"
	"github.com/anshaggr/foliochat/internal/intent"
)

// Result is the routing decision for one message.
type Result struct {
	ShowComponent bool
	ComponentType chat.ComponentType
	UseRAG        bool
	NeedsContext  bool
	Intent        intent.Analysis
}

type Processor struct {
	analyzer *intent.Analyzer
	logger   *slog.Logger
}

func New(analyzer *intent.Analyzer) *Processor {
	return &Processor{analyzer: analyzer, logger: slog.Default()}
}

// Process folds recent history into session memory, classifies the message,
// and maps the intent to a routing decision. Every path keeps UseRAG true;
// even explicit component requests get a generated follow-up.
func (p *Processor) Process(message string, history []chat.Message, mem *conversation.Memory) Result {
	p.syncMemory(history, mem)

	analysis := p.analyzer.Analyze(message, history)
	p.logger.Debug("intent classified",
		"intent", analysis.Type,
		"component", analysis.ComponentType,
		"confidence", analysis.Confidence)

	result := Result{
		UseRAG:       true,
		NeedsContext: analysis.NeedsContext,
		Intent:       analysis,
	}

	switch analysis.Type {
	case intent.TypeComponent:
		result.ShowComponent = true
		result.ComponentType = analysis.ComponentType
	case intent.TypeElaboration:
		result.NeedsContext = true
	case intent.TypePhilosophical:
		result.NeedsContext = false
	}

	return result
}

// syncMemory folds the trailing two history messages into memory. Observe
// is idempotent per component type, so replaying a message is harmless.
func (p *Processor) syncMemory(history []chat.Message, mem *conversation.Memory) {
	if mem == nil {
		return
	}
	start := len(history) - 2
	if start < 0 {
		start = 0
	}
	for _, msg := range history[start:] {
		mem.Observe(msg)
	}
}
