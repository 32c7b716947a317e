package services

import (
	"context"
	"errors"
	"testing"

	"github.com/pgvector/pgvector-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mailsift/internal/models"
)

func TestEmbedText_RetriesOnceOnFailure(t *testing.T) {
	provider := &fakeProvider{vec: []float32{1, 2}, errs: []error{errors.New("transient")}}
	svc := NewEmbeddingService(provider, newFakeMessageStore(), newFakeCategoryStore())

	vec, err := svc.EmbedText(context.Background(), "some text")
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 2}, vec.Slice())
	assert.Equal(t, 2, provider.calls)
}

func TestEmbedText_FailsAfterRetry(t *testing.T) {
	provider := &fakeProvider{vec: []float32{1, 2}, errs: []error{errors.New("one"), errors.New("two")}}
	svc := NewEmbeddingService(provider, newFakeMessageStore(), newFakeCategoryStore())

	_, err := svc.EmbedText(context.Background(), "some text")
	require.Error(t, err)
	assert.Equal(t, 2, provider.calls)
}

func TestEnsureMessageEmbedding_ComputeIfAbsent(t *testing.T) {
	provider := &fakeProvider{vec: []float32{1, 2}}
	messages := newFakeMessageStore()
	svc := NewEmbeddingService(provider, messages, newFakeCategoryStore())

	msg := &models.Message{ID: "m1", Subject: "s", Sender: "a@example.com"}
	require.NoError(t, messages.CreateMessage(context.Background(), msg))

	require.NoError(t, svc.EnsureMessageEmbedding(context.Background(), msg))
	assert.True(t, msg.HasEmbedding())
	assert.Equal(t, 1, provider.calls)

	stored, err := messages.GetMessage(context.Background(), "m1")
	require.NoError(t, err)
	assert.True(t, stored.HasEmbedding())

	// Second call is a no-op.
	require.NoError(t, svc.EnsureMessageEmbedding(context.Background(), msg))
	assert.Equal(t, 1, provider.calls)
}

func TestEnsureMessageEmbedding_AlreadyEmbedded(t *testing.T) {
	provider := &fakeProvider{vec: []float32{1, 2}}
	svc := NewEmbeddingService(provider, newFakeMessageStore(), newFakeCategoryStore())

	vec := pgvector.NewVector([]float32{9, 9})
	msg := &models.Message{ID: "m1", Subject: "s", Sender: "a@example.com", Embedding: &vec}

	require.NoError(t, svc.EnsureMessageEmbedding(context.Background(), msg))
	assert.Zero(t, provider.calls)
	assert.Equal(t, []float32{9, 9}, msg.Embedding.Slice())
}

func TestEnsureMessageEmbedding_UnknownMessage(t *testing.T) {
	provider := &fakeProvider{vec: []float32{1, 2}}
	svc := NewEmbeddingService(provider, newFakeMessageStore(), newFakeCategoryStore())

	msg := &models.Message{ID: "ghost", Subject: "s", Sender: "a@example.com"}
	err := svc.EnsureMessageEmbedding(context.Background(), msg)
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestEnsureCategoryEmbedding_ComputeIfAbsent(t *testing.T) {
	provider := &fakeProvider{vec: []float32{1, 2}}
	categories := newFakeCategoryStore()
	svc := NewEmbeddingService(provider, newFakeMessageStore(), categories)

	cat := &models.Category{Name: "Work", Description: "job"}
	require.NoError(t, categories.CreateCategory(context.Background(), cat))

	require.NoError(t, svc.EnsureCategoryEmbedding(context.Background(), cat))
	assert.True(t, cat.HasEmbedding())

	stored, err := categories.GetCategory(context.Background(), cat.ID)
	require.NoError(t, err)
	assert.True(t, stored.HasEmbedding())
}
