package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/anshaggr/foliochat/internal/config"
)

// --- ingest ---

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Add content to the knowledge base",
	Long: `Add content to the knowledge base.

Examples:
  foliochat ingest --text "Built a URL shortener in Go" --title "Projects addendum"
  foliochat ingest --url https://example.com/blog-post
  foliochat ingest --file ./notes.md --title "Interview notes"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		text, _ := cmd.Flags().GetString("text")
		url, _ := cmd.Flags().GetString("url")
		file, _ := cmd.Flags().GetString("file")
		title, _ := cmd.Flags().GetString("title")
		docType, _ := cmd.Flags().GetString("type")

		if text == "" && url == "" && file == "" {
			return fmt.Errorf("one of --text, --url, or --file is required")
		}

		req := map[string]any{}
		if title != "" {
			req["title"] = title
		}
		if docType != "" {
			req["type"] = docType
		}

		switch {
		case text != "":
			req["content"] = text
		case url != "":
			req["url"] = url
		case file != "":
			data, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("reading file: %w", err)
			}
			req["content"] = string(data)
			if title == "" {
				req["title"] = file
			}
		}

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.post(cmd.Context(), "/v1/documents", req)
		if err != nil {
			return err
		}

		var result map[string]string
		if err := decodeJSON(resp, &result); err != nil {
			return err
		}

		printSuccess("Stored document %s", result["id"])
		return nil
	},
}

func init() {
	ingestCmd.Flags().String("text", "", "text content to add")
	ingestCmd.Flags().String("url", "", "URL to fetch and add")
	ingestCmd.Flags().String("file", "", "file path to add")
	ingestCmd.Flags().String("title", "", "title for the document")
	ingestCmd.Flags().String("type", "", "document type (default: text)")
}

// --- ask ---

var askCmd = &cobra.Command{
	Use:   "ask <message>",
	Short: "Send a chat message to the running server",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		message := strings.Join(args, " ")
		session, _ := cmd.Flags().GetString("session")

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		req := map[string]any{"message": message}
		if session != "" {
			req["session_id"] = session
		}

		resp, err := client.post(cmd.Context(), "/v1/chat", req)
		if err != nil {
			return err
		}

		var result struct {
			SessionID string `json:"session_id"`
			Intent    string `json:"intent"`
			Component string `json:"component"`
			Messages  []struct {
				Content string `json:"content"`
				Type    string `json:"type"`
			} `json:"messages"`
		}
		if err := decodeJSON(resp, &result); err != nil {
			return err
		}

		for _, msg := range result.Messages {
			if msg.Type != "" {
				printStep("[%s component]", msg.Type)
			}
			if msg.Content != "" {
				fmt.Println(msg.Content)
			}
		}
		printStatus("Session", "%s", result.SessionID)
		printStatus("Intent", "%s", result.Intent)
		return nil
	},
}

func init() {
	askCmd.Flags().String("session", "", "session ID to continue a conversation")
}

// --- credentials ---

var credentialsCmd = &cobra.Command{
	Use:   "credentials",
	Short: "Show credential pool status",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.get(cmd.Context(), "/v1/credentials")
		if err != nil {
			return err
		}

		var result struct {
			Total       int `json:"total"`
			Healthy     int `json:"healthy"`
			Credentials []struct {
				ID            string  `json:"id"`
				Healthy       bool    `json:"healthy"`
				Requests      int64   `json:"requests"`
				Errors        int64   `json:"errors"`
				DailyRequests int64   `json:"daily_requests"`
				ErrorRate     float64 `json:"error_rate"`
			} `json:"credentials"`
		}
		if err := decodeJSON(resp, &result); err != nil {
			return err
		}

		printStatus("Credentials", "%d healthy / %d total", result.Healthy, result.Total)
		for _, c := range result.Credentials {
			state := colorize(colorGreen, "healthy")
			if !c.Healthy {
				state = colorize(colorRed, "unhealthy")
			}
			fmt.Printf("  %s  %s  requests=%d today=%d errors=%d (%.1f%%)\n",
				colorize(colorCyan, c.ID), state,
				c.Requests, c.DailyRequests, c.Errors, c.ErrorRate*100)
		}
		return nil
	},
}

// --- config ---

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or update configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		keys := config.ShowAll(cfg)
		for _, k := range keys {
			fmt.Printf("  %s = %s\n", colorize(colorBold, k.Key), k.Value)
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]

		if err := config.SetKey(key, value); err != nil {
			return err
		}

		printSuccess("Set %s = %s", key, value)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
