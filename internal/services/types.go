package services

import (
	"context"

	"github.com/pgvector/pgvector-go"
)

// EmbeddingProvider turns arbitrary text into a fixed-length vector.
// Implementations wrap one concrete backend; all vectors a provider emits
// share one dimensionality.
type EmbeddingProvider interface {
	GenerateEmbedding(ctx context.Context, text string) (pgvector.Vector, error)
	Dimension() int
	Name() string
	ModelName() string
}
