package ingest

import (
	"bytes"

	"github.com/ledongthuc/pdf"
)

// extractPDFText returns the plain text of a PDF file.
func extractPDFText(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	reader, err := r.GetPlainText()
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(reader); err != nil {
		return "", err
	}
	return normalizeWhitespace(buf.String()), nil
}
