package ingest

import (
	"bytes"
	"encoding/base64"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/net/html"
)

// DecodeBase64Body decodes a base64-encoded message body. Invalid UTF-8
// in the decoded bytes is replaced rather than rejected; exports from
// real mailboxes are not reliably clean.
func DecodeBase64Body(encoded string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(raw) {
		raw = bytes.ToValidUTF8(raw, []byte(string(utf8.RuneError)))
	}
	return string(raw), nil
}

var htmlMarkers = []string{"<html", "<!doctype", "<body", "<div", "<p>", "<p ", "<br", "<table", "<span", "&nbsp;"}

// IsHTML reports whether content looks like HTML markup rather than plain
// text. Marker-based on purpose; full parsing happens in ExtractText.
func IsHTML(content string) bool {
	lower := strings.ToLower(content)
	for _, marker := range htmlMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// ExtractText strips markup from an HTML document and returns the visible
// text with whitespace collapsed. Script and style contents are dropped.
func ExtractText(content string) string {
	tokenizer := html.NewTokenizer(strings.NewReader(content))

	var b strings.Builder
	skipDepth := 0
	for {
		tt := tokenizer.Next()
		switch tt {
		case html.ErrorToken:
			return collapseWhitespace(b.String())
		case html.StartTagToken:
			name, _ := tokenizer.TagName()
			if skippedTag(string(name)) {
				skipDepth++
			}
		case html.EndTagToken:
			name, _ := tokenizer.TagName()
			if skippedTag(string(name)) && skipDepth > 0 {
				skipDepth--
			}
		case html.TextToken:
			if skipDepth == 0 {
				b.Write(tokenizer.Text())
				b.WriteByte(' ')
			}
		}
	}
}

func skippedTag(name string) bool {
	return name == "script" || name == "style" || name == "head"
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// ParseISODate parses an ISO-8601 timestamp, accepting both offset and
// bare-seconds forms.
func ParseISODate(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02T15:04:05", value)
}
