package webapi

import (
	"bytes"
	"html"

	"github.com/yuin/goldmark"
)

// renderMarkdown converts transcript Markdown to HTML for the snapshot and
// stream endpoints. On a conversion failure the raw text is escaped and
// returned as-is rather than dropped.
func renderMarkdown(src string) string {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(src), &buf); err != nil {
		return "<p>" + html.EscapeString(src) + "</p>"
	}
	return buf.String()
}
