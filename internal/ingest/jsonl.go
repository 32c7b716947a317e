// Package ingest holds the normalization helpers applied to message input
// before it reaches the classification core: JSONL parsing, base64 body
// decoding, HTML-to-text extraction, date parsing and snippet derivation.
package ingest

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
)

// MessageRecord is one line of a messages JSONL file, in the Gmail-style
// export shape. The body is base64-encoded on disk.
type MessageRecord struct {
	ID      string   `json:"id"`
	Subject string   `json:"subject"`
	From    string   `json:"from"`
	To      []string `json:"to"`
	Snippet string   `json:"snippet"`
	Body    string   `json:"body"`
	Date    string   `json:"date"`
}

// CategoryRecord is one line of a categories JSONL file.
type CategoryRecord struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ParseJSONL decodes one JSON document per line, skipping blank lines.
func ParseJSONL[T any](r io.Reader) ([]T, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	var out []T
	line := 0
	for scanner.Scan() {
		line++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		var item T
		if err := json.Unmarshal(raw, &item); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		out = append(out, item)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
