package api

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/anshaggr/foliochat/internal/component"
	"github.com/anshaggr/foliochat/internal/knowledge"
	"github.com/anshaggr/foliochat/internal/storage"
)

// MCPRetriever abstracts knowledge search for the MCP layer.
type MCPRetriever interface {
	RetrieveTopK(ctx context.Context, query string, k int) []knowledge.ScoredDocument
}

// MCPDeps holds dependencies for the MCP server.
type MCPDeps struct {
	Handler   *component.Handler
	Retriever MCPRetriever
	Store     *storage.Store
}

// NewMCPServer exposes the portfolio assistant over MCP: a knowledge search
// tool, an ask tool running the full intent-routing pipeline, and recent
// interactions as a resource.
func NewMCPServer(deps MCPDeps) *server.MCPServer {
	s := server.NewMCPServer(
		"foliochat",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithInstructions("foliochat answers questions about Ansh Agrawal's portfolio, projects, skills, and availability."),
		server.WithRecovery(),
	)

	s.AddTool(
		mcp.NewTool("search_knowledge",
			mcp.WithDescription("Semantically search the portfolio knowledge base and return the most relevant documents."),
			mcp.WithString("query", mcp.Description("Search query"), mcp.Required()),
			mcp.WithNumber("limit", mcp.Description("Maximum number of results (default 3)")),
		),
		mcpSearchKnowledge(deps),
	)

	s.AddTool(
		mcp.NewTool("ask",
			mcp.WithDescription("Ask the portfolio assistant a question. Runs intent routing and grounded generation, same as the chat API."),
			mcp.WithString("message", mcp.Description("The question to ask"), mcp.Required()),
			mcp.WithString("session", mcp.Description("Session ID for conversational continuity (optional)")),
		),
		mcpAsk(deps),
	)

	s.AddResource(
		mcp.NewResource(
			"chat://recent",
			"Recent Interactions",
			mcp.WithResourceDescription("Last 10 chat interactions (queries and routed intents)"),
			mcp.WithMIMEType("application/json"),
		),
		mcpResourceRecent(deps),
	)

	return s
}

func mcpSearchKnowledge(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query, err := req.RequireString("query")
		if err != nil {
			return mcpError("query is required"), nil
		}

		limit := req.GetInt("limit", 3)
		if limit <= 0 {
			limit = 3
		}
		if limit > 10 {
			limit = 10
		}

		docs := deps.Retriever.RetrieveTopK(ctx, query, limit)
		if len(docs) == 0 {
			return mcpText("[]"), nil
		}

		type docResult struct {
			ID    string  `json:"id"`
			Title string  `json:"title"`
			Type  string  `json:"type"`
			Text  string  `json:"text"`
			Score float32 `json:"score"`
		}

		results := make([]docResult, len(docs))
		for i, d := range docs {
			results[i] = docResult{
				ID:    d.ID,
				Title: d.Title,
				Type:  d.Type,
				Text:  d.Content,
				Score: d.Score,
			}
		}

		b, err := json.Marshal(results)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal results: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpAsk(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		message, err := req.RequireString("message")
		if err != nil {
			return mcpError("message is required"), nil
		}

		session := req.GetString("session", "")
		if session == "" {
			session = uuid.New().String()
		}

		resp, err := deps.Handler.Handle(ctx, component.Request{
			SessionID: session,
			Message:   message,
		})
		if err != nil {
			return mcpError(fmt.Sprintf("ask failed: %v", err)), nil
		}

		var out string
		for _, msg := range resp.Messages {
			if msg.Content != "" {
				out += msg.Content + "\n"
			}
		}
		if resp.FollowUp != nil {
			if msg, ok := <-resp.FollowUp; ok {
				out += msg.Content + "\n"
			}
		}

		return mcpText(out), nil
	}
}

func mcpResourceRecent(deps MCPDeps) server.ResourceHandlerFunc {
	return func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		interactions, err := deps.Store.ListInteractions("", 10)
		if err != nil {
			return nil, fmt.Errorf("failed to load recent interactions: %w", err)
		}

		type interactionSummary struct {
			ID        string `json:"id"`
			CreatedAt string `json:"created_at"`
			Query     string `json:"query"`
			Intent    string `json:"intent"`
			Component string `json:"component,omitempty"`
		}

		summaries := make([]interactionSummary, len(interactions))
		for i, ix := range interactions {
			query := ix.UserQuery
			if utf8.RuneCountInString(query) > 200 {
				runes := []rune(query)
				query = string(runes[:200]) + "..."
			}
			summaries[i] = interactionSummary{
				ID:        ix.ID,
				CreatedAt: ix.CreatedAt.Format(time.RFC3339),
				Query:     query,
				Intent:    ix.IntentType,
				Component: ix.ComponentType,
			}
		}

		b, err := json.Marshal(summaries)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal interactions: %w", err)
		}

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      req.Params.URI,
				MIMEType: "application/json",
				Text:     string(b),
			},
		}, nil
	}
}

func mcpText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

func mcpError(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: msg},
		},
		IsError: true,
	}
}
