package ingest

import (
	"io"
	"strings"

	"golang.org/x/net/html"
)

// extractHTMLText tokenizes an HTML document and returns its title and
// visible text. Script and style contents are dropped.
func extractHTMLText(r io.Reader) (title, text string, err error) {
	z := html.NewTokenizer(r)

	var b strings.Builder
	var skipDepth int
	var inTitle bool

	for {
		switch z.Next() {
		case html.ErrorToken:
			if z.Err() == io.EOF {
				return title, normalizeWhitespace(b.String()), nil
			}
			return "", "", z.Err()

		case html.StartTagToken:
			name, _ := z.TagName()
			switch string(name) {
			case "script", "style", "noscript":
				skipDepth++
			case "title":
				inTitle = true
			}

		case html.EndTagToken:
			name, _ := z.TagName()
			switch string(name) {
			case "script", "style", "noscript":
				if skipDepth > 0 {
					skipDepth--
				}
			case "title":
				inTitle = false
			}

		case html.TextToken:
			if skipDepth > 0 {
				continue
			}
			chunk := string(z.Text())
			if inTitle {
				title = strings.TrimSpace(chunk)
				continue
			}
			b.WriteString(chunk)
			b.WriteByte(' ')
		}
	}
}

func normalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
