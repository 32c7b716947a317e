// Package textrep builds the canonical text blocks consumed by both
// classification strategies. The output doubles as embedding input and as
// prompt content, so identical inputs must always yield byte-identical
// text; any variance here breaks embedding cache reuse and reproducibility
// of generative comparisons.
package textrep

import (
	"fmt"
	"strings"
	"time"

	"mailsift/internal/models"
)

// MaxBodyBytes caps the body portion of the message block. Provider token
// limits make unbounded bodies both expensive and pointless.
const MaxBodyBytes = 8000

// MessageText renders a message as a labeled block with a fixed field
// order. Missing optional fields are omitted entirely rather than rendered
// as empty labels.
func MessageText(m *models.Message) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Subject: %s\n", m.Subject)
	fmt.Fprintf(&b, "From: %s\n", m.Sender)
	if len(m.To) > 0 {
		fmt.Fprintf(&b, "To: %s\n", strings.Join(m.To, ", "))
	}
	if m.Date != nil {
		fmt.Fprintf(&b, "Date: %s\n", m.Date.UTC().Format(time.RFC3339))
	}
	if m.Snippet != nil && *m.Snippet != "" {
		fmt.Fprintf(&b, "Preview: %s\n", *m.Snippet)
	}
	if m.Body != nil && *m.Body != "" {
		body := *m.Body
		if len(body) > MaxBodyBytes {
			body = body[:MaxBodyBytes] + "... (truncated)"
		}
		fmt.Fprintf(&b, "Body: %s\n", body)
	}
	return b.String()
}

// CategoryText renders a category as a labeled block of name and
// description.
func CategoryText(c *models.Category) string {
	return fmt.Sprintf("Category: %s\nDescription: %s\n", c.Name, c.Description)
}
