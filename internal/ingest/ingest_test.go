package ingest

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

type fakeAdder struct {
	content string
	title   string
	docType string
	err     error
}

func (f *fakeAdder) AddDocument(_ context.Context, content, title, docType string) (string, error) {
	f.content, f.title, f.docType = content, title, docType
	if f.err != nil {
		return "", f.err
	}
	return "doc-1", nil
}

func TestIngestURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><head><title>About Ansh</title><script>var x = 1;</script></head>
			<body><style>.a{color:red}</style><h1>Hello</h1><p>I build things.</p></body></html>`)
	}))
	defer srv.Close()

	adder := &fakeAdder{}
	id, err := New(adder).IngestURL(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("IngestURL: %v", err)
	}
	if id != "doc-1" {
		t.Errorf("id = %q", id)
	}
	if adder.title != "About Ansh" {
		t.Errorf("title = %q", adder.title)
	}
	if adder.docType != "web" {
		t.Errorf("docType = %q", adder.docType)
	}
	if !strings.Contains(adder.content, "I build things.") {
		t.Errorf("content = %q", adder.content)
	}
	if strings.Contains(adder.content, "var x") || strings.Contains(adder.content, "color:red") {
		t.Errorf("script/style leaked into content: %q", adder.content)
	}
}

func TestIngestURLTitleFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><p>untitled page</p></body></html>`)
	}))
	defer srv.Close()

	adder := &fakeAdder{}
	if _, err := New(adder).IngestURL(context.Background(), srv.URL); err != nil {
		t.Fatalf("IngestURL: %v", err)
	}
	if adder.title != srv.URL {
		t.Errorf("title = %q, want URL fallback %q", adder.title, srv.URL)
	}
}

func TestIngestURLErrors(t *testing.T) {
	notFound := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer notFound.Close()

	empty := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><script>only code</script></body></html>`)
	}))
	defer empty.Close()

	ing := New(&fakeAdder{})
	ctx := context.Background()

	if _, err := ing.IngestURL(ctx, notFound.URL); err == nil {
		t.Error("IngestURL accepted a 404 response")
	}
	if _, err := ing.IngestURL(ctx, empty.URL); err == nil {
		t.Error("IngestURL accepted a page with no text")
	}
}

func TestIngestURLAdderFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><p>fine content</p></body></html>`)
	}))
	defer srv.Close()

	adder := &fakeAdder{err: errors.New("embedding failed")}
	if _, err := New(adder).IngestURL(context.Background(), srv.URL); err == nil {
		t.Error("IngestURL swallowed the store error")
	}
}

func TestIngestResumeMissingFile(t *testing.T) {
	ing := New(&fakeAdder{})
	if _, err := ing.IngestResume(context.Background(), t.TempDir()+"/missing.pdf"); err == nil {
		t.Error("IngestResume accepted a missing file")
	}
}

func TestExtractHTMLText(t *testing.T) {
	title, text, err := extractHTMLText(strings.NewReader(
		`<html><head><title> Spaced Title </title></head>
		<body>one<div>two</div>
		three</body></html>`))
	if err != nil {
		t.Fatalf("extractHTMLText: %v", err)
	}
	if title != "Spaced Title" {
		t.Errorf("title = %q", title)
	}
	if text != "one two three" {
		t.Errorf("text = %q, want %q", text, "one two three")
	}
}

func TestNormalizeWhitespace(t *testing.T) {
	got := normalizeWhitespace("  a\n\tb   c  ")
	if got != "a b c" {
		t.Errorf("normalizeWhitespace = %q", got)
	}
}
