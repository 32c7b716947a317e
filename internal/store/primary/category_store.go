package primary

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pgvector/pgvector-go"

	"mailsift/internal/models"
	"mailsift/internal/store"
)

const categoryColumns = `id, name, description, embedding::text, created_at, updated_at`

func (s *StoreImpl) CreateCategory(ctx context.Context, cat *models.Category) error {
	now := time.Now().UTC()
	cat.CreatedAt = now
	cat.UpdatedAt = now

	query := `
		INSERT INTO categories (name, description, embedding, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`
	err := s.db.QueryRow(ctx, query,
		cat.Name, cat.Description, embeddingParam(cat.Embedding), cat.CreatedAt, cat.UpdatedAt,
	).Scan(&cat.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("category name %q: %w", cat.Name, store.ErrDuplicate)
		}
		return fmt.Errorf("insert category: %w", err)
	}
	return nil
}

func (s *StoreImpl) GetCategory(ctx context.Context, id int64) (*models.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE id = $1`
	cat, err := scanCategory(s.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("get category: %w", err)
	}
	return cat, nil
}

func (s *StoreImpl) GetCategoryByName(ctx context.Context, name string) (*models.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE name = $1`
	cat, err := scanCategory(s.db.QueryRow(ctx, query, name))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("get category by name: %w", err)
	}
	return cat, nil
}

func (s *StoreImpl) ListCategories(ctx context.Context) ([]*models.Category, error) {
	rows, err := s.db.Query(ctx, `SELECT `+categoryColumns+` FROM categories ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	categories := []*models.Category{}
	for rows.Next() {
		cat, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, cat)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return categories, nil
}

func (s *StoreImpl) UpdateCategory(ctx context.Context, cat *models.Category) error {
	cat.UpdatedAt = time.Now().UTC()
	query := `
		UPDATE categories
		SET name = $2, description = $3, embedding = $4, updated_at = $5
		WHERE id = $1`
	tag, err := s.db.Exec(ctx, query,
		cat.ID, cat.Name, cat.Description, embeddingParam(cat.Embedding), cat.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("category name %q: %w", cat.Name, store.ErrDuplicate)
		}
		return fmt.Errorf("update category: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *StoreImpl) DeleteCategory(ctx context.Context, id int64) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *StoreImpl) SetCategoryEmbedding(ctx context.Context, id int64, vec pgvector.Vector) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE categories SET embedding = $2, updated_at = $3 WHERE id = $1`,
		id, vec, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("set category embedding: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func scanCategory(row pgx.Row) (*models.Category, error) {
	cat := &models.Category{}
	var embRaw *string
	err := row.Scan(&cat.ID, &cat.Name, &cat.Description, &embRaw, &cat.CreatedAt, &cat.UpdatedAt)
	if err != nil {
		return nil, err
	}
	cat.Embedding, err = parseEmbedding(embRaw)
	if err != nil {
		return nil, err
	}
	return cat, nil
}
