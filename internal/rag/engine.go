// Package rag grounds chat responses in the knowledge base. The engine
// never returns an error to callers; every failure degrades to a canned
// fallback so the conversation keeps moving.
package rag

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/anshaggr/foliochat/internal/chat"
	"github.com/anshaggr/foliochat/internal/intent"
	"github.com/anshaggr/foliochat/internal/knowledge"
)

// Generator produces text from a prompt. The credential pool satisfies it.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Retriever finds the documents most relevant to a query.
type Retriever interface {
	RetrieveTopK(ctx context.Context, query string, k int) []knowledge.ScoredDocument
}

const (
	componentTopK   = 3
	componentTurns  = 3
	generalTopK     = 4
	generalTurns    = 4
	genericFallback = "Yo! Something went wrong on my end. Mind trying again?"
)

type Engine struct {
	retriever Retriever
	generator Generator
	logger    *slog.Logger
}

func NewEngine(retriever Retriever, generator Generator) *Engine {
	return &Engine{retriever: retriever, generator: generator, logger: slog.Default()}
}

// Generate answers query. When componentContext is set the response is a
// follow-up to a just-rendered component; otherwise it is a general grounded
// answer steered by enhancedContext and the classified intent.
func (e *Engine) Generate(ctx context.Context, query string, history []chat.Message, componentContext *chat.ComponentContext, enhancedContext string, intentType intent.Type) string {
	if componentContext != nil {
		return e.ComponentFollowUp(ctx, *componentContext, history)
	}
	return e.regularResponse(ctx, query, history, enhancedContext, intentType)
}

// ComponentFollowUp generates the conversational message that accompanies a
// rendered component. Retrieval is biased toward the component by prefixing
// its type to the query.
func (e *Engine) ComponentFollowUp(ctx context.Context, cc chat.ComponentContext, history []chat.Message) string {
	docs := e.retriever.RetrieveTopK(ctx, fmt.Sprintf("%s %s", cc.Type, cc.UserQuery), componentTopK)

	var b strings.Builder
	b.WriteString(buildComponentContext(cc))
	b.WriteString("\n\nRelevant Knowledge Base:\n")
	b.WriteString(formatDocs(docs))
	b.WriteString("\n\nRecent Conversation:\n")
	b.WriteString(formatHistory(history, componentTurns))
	fmt.Fprintf(&b, `

Instructions:
- You just showed your %s component to the user
- Generate a personalized, engaging follow-up response as Ansh
- Reference specific items that were shown in the component
- Add personal commentary, stories, or fun facts about the displayed content
- Keep it casual, friendly, and conversational
- Always end with an engaging question to continue the conversation
- Use **bold text** for emphasis
- Keep response to 2-3 sentences max
- Show genuine enthusiasm about your work
`, cc.Type)

	text, err := e.generator.Generate(ctx, b.String())
	if err != nil {
		e.logger.Warn("component follow-up generation failed, using fallback",
			"component", cc.Type, "error", err)
		return componentFallback(cc.Type)
	}
	return text
}

func (e *Engine) regularResponse(ctx context.Context, query string, history []chat.Message, enhancedContext string, intentType intent.Type) string {
	docs := e.retriever.RetrieveTopK(ctx, query, generalTopK)

	var b strings.Builder
	b.WriteString("Context from knowledge base:\n")
	b.WriteString(formatDocs(docs))
	b.WriteString("\n\nRecent conversation:\n")
	b.WriteString(formatHistory(history, generalTurns))
	b.WriteString("\n")

	if enhancedContext != "" {
		fmt.Fprintf(&b, "\nAdditional Context:\n%s\n", enhancedContext)
	}
	if instr := intentInstruction(intentType); instr != "" {
		fmt.Fprintf(&b, "\nUSER INTENT: %s\n%s\n", intentType, instr)
	}

	fmt.Fprintf(&b, `
Current question: %s

Instructions:
- Respond as Ansh Agrawal based on the context above
- Keep it casual, fun, and personal
- If the question is about philosophy, approach, goals, experience, or education, use the detailed info from the knowledge base
- If there's enhanced context about recently shown components, reference that information appropriately
- For elaboration requests about components, provide specific detailed stories
- For philosophical questions, give thoughtful personal responses
- Always end with a follow-up question to keep the conversation going
- Use emojis sparingly but effectively
- Use **bold text** for emphasis instead of *asterisks*
- If you don't know something specific, just say so honestly
- Keep responses conversational and engaging
`, query)

	text, err := e.generator.Generate(ctx, b.String())
	if err != nil {
		e.logger.Warn("response generation failed, using fallback", "error", err)
		return genericFallback
	}
	return text
}

// intentInstruction returns the steering line appended for each intent.
func intentInstruction(t intent.Type) string {
	switch t {
	case intent.TypeElaboration:
		return "INSTRUCTION: User wants more details about the recently shown component. Provide specific, detailed information rather than showing new components."
	case intent.TypePhilosophical:
		return "INSTRUCTION: User is asking a philosophical/opinion question. Provide thoughtful, personal responses about work philosophy, approach, beliefs, etc."
	case intent.TypeComponent:
		return "INSTRUCTION: User requested to see a specific component. This message is a follow-up after showing the component."
	case intent.TypeInformational:
		return "INSTRUCTION: User wants general information. Use any available context to provide relevant details."
	}
	return ""
}

func formatDocs(docs []knowledge.ScoredDocument) string {
	parts := make([]string, len(docs))
	for i, doc := range docs {
		parts[i] = fmt.Sprintf("[%s]: %s", doc.Title, doc.Content)
	}
	return strings.Join(parts, "\n\n")
}

func formatHistory(history []chat.Message, lastN int) string {
	start := len(history) - lastN
	if start < 0 {
		start = 0
	}
	parts := make([]string, 0, lastN)
	for _, msg := range history[start:] {
		parts = append(parts, fmt.Sprintf("%s: %s", msg.Role, msg.Content))
	}
	return strings.Join(parts, "\n")
}
