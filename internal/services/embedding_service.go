package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/pgvector/pgvector-go"
	log "github.com/sirupsen/logrus"

	"mailsift/internal/models"
	"mailsift/internal/store"
	"mailsift/internal/textrep"
)

// EmbeddingService wraps an embedding provider with the ensure-embedded
// contract: compute-if-absent, persist on the entity, return the cached
// vector otherwise. It also serves the eager embedding done at message
// and category creation time.
type EmbeddingService struct {
	provider   EmbeddingProvider
	messages   store.MessageStore
	categories store.CategoryStore
}

func NewEmbeddingService(provider EmbeddingProvider, messages store.MessageStore, categories store.CategoryStore) *EmbeddingService {
	return &EmbeddingService{provider: provider, messages: messages, categories: categories}
}

// Dimension returns the provider's vector dimensionality.
func (s *EmbeddingService) Dimension() int { return s.provider.Dimension() }

// EmbedText embeds a canonical text block, retrying once on transient
// provider failure.
func (s *EmbeddingService) EmbedText(ctx context.Context, text string) (pgvector.Vector, error) {
	vec, err := s.provider.GenerateEmbedding(ctx, text)
	if err == nil {
		return vec, nil
	}
	if ctx.Err() != nil {
		return pgvector.Vector{}, err
	}
	log.Warnf("embedding call failed, retrying once: %v", err)
	return s.provider.GenerateEmbedding(ctx, text)
}

// EnsureMessageEmbedding computes and persists the message embedding when
// absent. Already-embedded messages are left untouched.
func (s *EmbeddingService) EnsureMessageEmbedding(ctx context.Context, msg *models.Message) error {
	if msg.HasEmbedding() {
		return nil
	}
	vec, err := s.EmbedText(ctx, textrep.MessageText(msg))
	if err != nil {
		return err
	}
	if err := s.messages.SetMessageEmbedding(ctx, msg.ID, vec); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("message %s: %w", msg.ID, models.ErrNotFound)
		}
		return fmt.Errorf("persist message embedding: %w", err)
	}
	msg.Embedding = &vec
	return nil
}

// EnsureCategoryEmbedding computes and persists the category embedding
// when absent.
func (s *EmbeddingService) EnsureCategoryEmbedding(ctx context.Context, cat *models.Category) error {
	if cat.HasEmbedding() {
		return nil
	}
	vec, err := s.EmbedText(ctx, textrep.CategoryText(cat))
	if err != nil {
		return err
	}
	if err := s.categories.SetCategoryEmbedding(ctx, cat.ID, vec); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("category %d: %w", cat.ID, models.ErrNotFound)
		}
		return fmt.Errorf("persist category embedding: %w", err)
	}
	cat.Embedding = &vec
	return nil
}
