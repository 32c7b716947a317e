package ingest

import (
	"strings"

	"github.com/neurosnap/sentences"
)

// Snippet derives a short preview from a message body: whole leading
// sentences while they fit within maxLen, falling back to a hard truncate
// when even the first sentence is too long.
func Snippet(body string, maxLen int) string {
	body = collapseWhitespace(body)
	if body == "" || maxLen <= 0 {
		return ""
	}
	if len(body) <= maxLen {
		return body
	}

	tokenizer := sentences.NewSentenceTokenizer(nil)
	var b strings.Builder
	for _, sent := range tokenizer.Tokenize(body) {
		text := strings.TrimSpace(sent.Text)
		if text == "" {
			continue
		}
		if b.Len() > 0 && b.Len()+1+len(text) > maxLen {
			break
		}
		if b.Len() == 0 && len(text) > maxLen {
			break
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(text)
	}
	if b.Len() > 0 {
		return b.String()
	}
	return strings.TrimSpace(body[:maxLen]) + "..."
}
