// Package ingest loads external documents into the knowledge base: the
// resume PDF and arbitrary web pages.
package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// DocumentAdder receives extracted text. knowledge.Store implements it.
type DocumentAdder interface {
	AddDocument(ctx context.Context, content, title, docType string) (string, error)
}

type Ingestor struct {
	docs   DocumentAdder
	client *http.Client
	logger *slog.Logger
}

func New(docs DocumentAdder) *Ingestor {
	return &Ingestor{
		docs:   docs,
		client: &http.Client{Timeout: 30 * time.Second},
		logger: slog.Default(),
	}
}

// IngestResume extracts text from the resume PDF at path and adds it as a
// resume document.
func (in *Ingestor) IngestResume(ctx context.Context, path string) (string, error) {
	text, err := extractPDFText(path)
	if err != nil {
		return "", fmt.Errorf("extracting resume text: %w", err)
	}
	if text == "" {
		return "", fmt.Errorf("resume %s contains no extractable text", path)
	}

	id, err := in.docs.AddDocument(ctx, text, "Resume", "resume")
	if err != nil {
		return "", err
	}
	in.logger.Info("resume ingested", "path", path, "chars", len(text))
	return id, nil
}

// IngestURL fetches a web page, strips markup, and adds the text content as
// a document. The page title becomes the document title when present.
func (in *Ingestor) IngestURL(ctx context.Context, rawURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("building request for %s: %w", rawURL, err)
	}

	resp, err := in.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetching %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetching %s: unexpected status %d", rawURL, resp.StatusCode)
	}

	title, text, err := extractHTMLText(resp.Body)
	if err != nil {
		return "", fmt.Errorf("parsing %s: %w", rawURL, err)
	}
	if text == "" {
		return "", fmt.Errorf("page %s contains no text content", rawURL)
	}
	if title == "" {
		title = rawURL
	}

	id, err := in.docs.AddDocument(ctx, text, title, "web")
	if err != nil {
		return "", err
	}
	in.logger.Info("page ingested", "url", rawURL, "title", title, "chars", len(text))
	return id, nil
}
