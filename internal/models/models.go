package models

import (
	"strings"
	"time"

	"github.com/pgvector/pgvector-go"
)

// Message is a Gmail-style message as stored in the primary store.
// The ID is externally assigned (or derived at ingest time); the embedding
// is nil until it has been computed by an embedding provider.
type Message struct {
	ID        string           `db:"id"`
	Subject   string           `db:"subject"`
	Sender    string           `db:"sender"`
	To        []string         `db:"recipients"`
	Snippet   *string          `db:"snippet"`
	Body      *string          `db:"body"`
	Date      *time.Time       `db:"date"`
	Embedding *pgvector.Vector `db:"embedding"`
	CreatedAt time.Time        `db:"created_at"`
	UpdatedAt time.Time        `db:"updated_at"`
}

// HasEmbedding reports whether the message carries a non-empty embedding.
func (m *Message) HasEmbedding() bool {
	return m.Embedding != nil && len(m.Embedding.Slice()) > 0
}

// Category is a user-defined classification target. Name is unique across
// the store; creation with a duplicate name fails, it never overwrites.
type Category struct {
	ID          int64            `db:"id"`
	Name        string           `db:"name"`
	Description string           `db:"description"`
	Embedding   *pgvector.Vector `db:"embedding"`
	CreatedAt   time.Time        `db:"created_at"`
	UpdatedAt   time.Time        `db:"updated_at"`
}

// HasEmbedding reports whether the category carries a non-empty embedding.
func (c *Category) HasEmbedding() bool {
	return c.Embedding != nil && len(c.Embedding.Slice()) > 0
}

// ClassificationRecord is the persisted outcome of a matching judgment.
// At most one record exists per (message, category) pair; re-classifying
// the same pair overwrites score, explanation and timestamp in place.
type ClassificationRecord struct {
	MessageID    string    `db:"message_id"`
	CategoryID   int64     `db:"category_id"`
	Score        float64   `db:"score"`
	Explanation  string    `db:"explanation"`
	ClassifiedAt time.Time `db:"classified_at"`
}

// CategoryAssignment is a classification record joined with the category
// it points at, for listing a message's categories.
type CategoryAssignment struct {
	CategoryID   int64     `db:"category_id"`
	CategoryName string    `db:"category_name"`
	Score        float64   `db:"score"`
	Explanation  string    `db:"explanation"`
	ClassifiedAt time.Time `db:"classified_at"`
}

// Preview returns a short single-line rendering of the message body.
func (m *Message) Preview(max int) string {
	if m.Body == nil {
		return ""
	}
	body := strings.NewReplacer("\n", " ", "\r", "").Replace(*m.Body)
	if len(body) > max {
		return body[:max] + "..."
	}
	return body
}
