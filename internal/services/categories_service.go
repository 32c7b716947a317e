package services

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"mailsift/internal/models"
	"mailsift/internal/store"
	"mailsift/internal/textrep"
)

// CategoriesService owns category lifecycle: uniqueness of names, eager
// embedding of the name+description block, CRUD and assignment listings.
type CategoriesService struct {
	categories store.CategoryStore
	records    store.ClassificationStore
	embedding  *EmbeddingService
}

func NewCategoriesService(categories store.CategoryStore, records store.ClassificationStore, embedding *EmbeddingService) *CategoriesService {
	return &CategoriesService{categories: categories, records: records, embedding: embedding}
}

// CreateCategory embeds and stores a new category. A duplicate name fails
// with ErrConflict and leaves the existing category untouched.
func (s *CategoriesService) CreateCategory(ctx context.Context, name, description string) (*models.Category, error) {
	if name == "" {
		return nil, fmt.Errorf("category name must not be empty: %w", models.ErrValidation)
	}

	cat := &models.Category{Name: name, Description: description}
	vec, err := s.embedding.EmbedText(ctx, textrep.CategoryText(cat))
	if err != nil {
		return nil, err
	}
	cat.Embedding = &vec

	if err := s.categories.CreateCategory(ctx, cat); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, fmt.Errorf("category with name %q already exists: %w", name, models.ErrConflict)
		}
		return nil, fmt.Errorf("create category: %w", err)
	}
	log.Debugf("created category %d (name=%q)", cat.ID, cat.Name)
	return cat, nil
}

func (s *CategoriesService) GetCategory(ctx context.Context, id int64) (*models.Category, error) {
	cat, err := s.categories.GetCategory(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("category %d: %w", id, models.ErrNotFound)
		}
		return nil, err
	}
	return cat, nil
}

func (s *CategoriesService) GetCategoryByName(ctx context.Context, name string) (*models.Category, error) {
	cat, err := s.categories.GetCategoryByName(ctx, name)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("category %q: %w", name, models.ErrNotFound)
		}
		return nil, err
	}
	return cat, nil
}

func (s *CategoriesService) ListCategories(ctx context.Context) ([]*models.Category, error) {
	return s.categories.ListCategories(ctx)
}

// UpdateCategory applies non-empty fields and regenerates the embedding,
// keeping update idempotent with create for identical content.
func (s *CategoriesService) UpdateCategory(ctx context.Context, id int64, name, description string) (*models.Category, error) {
	cat, err := s.GetCategory(ctx, id)
	if err != nil {
		return nil, err
	}
	if name != "" {
		cat.Name = name
	}
	if description != "" {
		cat.Description = description
	}

	vec, err := s.embedding.EmbedText(ctx, textrep.CategoryText(cat))
	if err != nil {
		return nil, err
	}
	cat.Embedding = &vec

	if err := s.categories.UpdateCategory(ctx, cat); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, fmt.Errorf("category with name %q already exists: %w", name, models.ErrConflict)
		}
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("category %d: %w", id, models.ErrNotFound)
		}
		return nil, fmt.Errorf("update category: %w", err)
	}
	return cat, nil
}

func (s *CategoriesService) DeleteCategory(ctx context.Context, id int64) error {
	if err := s.categories.DeleteCategory(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("category %d: %w", id, models.ErrNotFound)
		}
		return err
	}
	return nil
}

// ListAssignmentsForMessage returns the categories currently assigned to
// a message, with score and explanation from the latest matching run.
func (s *CategoriesService) ListAssignmentsForMessage(ctx context.Context, messageID string) ([]*models.CategoryAssignment, error) {
	return s.records.ListAssignmentsForMessage(ctx, messageID)
}
