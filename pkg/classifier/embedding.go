package classifier

import (
	"context"
	"fmt"
	"math"
	"sort"

	"mailsift/internal/models"
)

// Embedder lazily computes and persists embeddings for messages and
// categories. The contract is compute-if-absent: entities that already
// carry an embedding are returned untouched. This is the only point where
// the classification path mutates a Message or Category.
type Embedder interface {
	EnsureMessageEmbedding(ctx context.Context, msg *models.Message) error
	EnsureCategoryEmbedding(ctx context.Context, cat *models.Category) error
}

// EmbeddingStrategy judges membership by cosine similarity between the
// message embedding and each category embedding. It carries no semantic
// reasoning, so explanations are synthesized from the score alone.
type EmbeddingStrategy struct {
	embedder Embedder
}

func NewEmbeddingStrategy(embedder Embedder) *EmbeddingStrategy {
	return &EmbeddingStrategy{embedder: embedder}
}

func (s *EmbeddingStrategy) Classify(ctx context.Context, msg *models.Message, categories []*models.Category, opts Options) ([]Judgment, error) {
	if len(categories) == 0 {
		return nil, nil
	}

	if err := s.embedder.EnsureMessageEmbedding(ctx, msg); err != nil {
		return nil, fmt.Errorf("embed message %s: %w", msg.ID, err)
	}

	judgments := make([]Judgment, 0, len(categories))
	msgVec := msg.Embedding.Slice()
	for _, cat := range categories {
		if err := s.embedder.EnsureCategoryEmbedding(ctx, cat); err != nil {
			return nil, fmt.Errorf("embed category %d: %w", cat.ID, err)
		}
		catVec := cat.Embedding.Slice()
		if len(catVec) != len(msgVec) {
			return nil, fmt.Errorf("embedding dimension mismatch for category %d (%d != %d): %w",
				cat.ID, len(catVec), len(msgVec), models.ErrDataIntegrity)
		}
		sim := cosineSimilarity(msgVec, catVec)
		if sim < opts.Threshold {
			continue
		}
		judgments = append(judgments, Judgment{
			CategoryID:   cat.ID,
			CategoryName: cat.Name,
			Match:        true,
			Score:        sim,
			Explanation: fmt.Sprintf("cosine similarity between the message and category %q is %.4f (threshold %.2f)",
				cat.Name, sim, opts.Threshold),
		})
	}

	// Descending score, category id ascending as a deterministic tie-break.
	sort.Slice(judgments, func(i, j int) bool {
		if judgments[i].Score != judgments[j].Score {
			return judgments[i].Score > judgments[j].Score
		}
		return judgments[i].CategoryID < judgments[j].CategoryID
	})

	if opts.TopN > 0 && len(judgments) > opts.TopN {
		judgments = judgments[:opts.TopN]
	}
	return judgments, nil
}

// cosineSimilarity computes dot(a,b) / (|a|*|b|) in float64, defined as 0
// when either vector has zero magnitude.
func cosineSimilarity(a, b []float32) float64 {
	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
