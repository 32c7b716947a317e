// Package classifier holds the pluggable decision logic that turns a
// message and a set of category descriptions into per-category judgments.
// Strategies form a closed tag set; adding a new one extends the tags
// without touching the orchestrator.
package classifier

import (
	"context"

	"mailsift/internal/models"
)

// Strategy tags.
const (
	StrategyEmbedding = "embedding"
	StrategyLLM       = "llm"
)

// Judgment is an in-memory, unpersisted per-category decision. Only
// judgments with Match set ever become persisted classification records;
// non-matches are still returned so callers can inspect the explanation.
type Judgment struct {
	CategoryID   int64
	CategoryName string
	Match        bool
	Score        float64
	Explanation  string
}

// Options are the post-filtering knobs. TopN <= 0 means unrestricted;
// Threshold only applies to the similarity strategy.
type Options struct {
	TopN      int
	Threshold float64
}

// Strategy is the classification capability both variants implement.
type Strategy interface {
	Classify(ctx context.Context, msg *models.Message, categories []*models.Category, opts Options) ([]Judgment, error)
}
