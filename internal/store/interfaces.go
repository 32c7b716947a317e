package store

import (
	"context"

	"github.com/pgvector/pgvector-go"

	"mailsift/internal/models"
)

// MessageStore manages persistence of messages.
type MessageStore interface {
	CreateMessage(ctx context.Context, msg *models.Message) error
	GetMessage(ctx context.Context, id string) (*models.Message, error)
	ListMessages(ctx context.Context, limit, offset int) ([]*models.Message, error)
	UpdateMessage(ctx context.Context, msg *models.Message) error
	DeleteMessage(ctx context.Context, id string) error
	// SetMessageEmbedding persists a lazily computed embedding without
	// touching the rest of the row.
	SetMessageEmbedding(ctx context.Context, id string, vec pgvector.Vector) error
	// ListMessagesByCategory returns messages that currently hold a
	// classification record for the given category.
	ListMessagesByCategory(ctx context.Context, categoryID int64) ([]*models.Message, error)
}

// CategoryStore manages persistence of categories.
type CategoryStore interface {
	CreateCategory(ctx context.Context, cat *models.Category) error
	GetCategory(ctx context.Context, id int64) (*models.Category, error)
	GetCategoryByName(ctx context.Context, name string) (*models.Category, error)
	ListCategories(ctx context.Context) ([]*models.Category, error)
	UpdateCategory(ctx context.Context, cat *models.Category) error
	DeleteCategory(ctx context.Context, id int64) error
	SetCategoryEmbedding(ctx context.Context, id int64, vec pgvector.Vector) error
}

// ClassificationStore manages the message-category association records.
type ClassificationStore interface {
	// UpsertClassifications writes all records of one classification run in
	// a single transaction: insert when the (message, category) pair is new,
	// otherwise overwrite score, explanation and timestamp. All-or-nothing.
	UpsertClassifications(ctx context.Context, messageID string, records []*models.ClassificationRecord) error
	ListAssignmentsForMessage(ctx context.Context, messageID string) ([]*models.CategoryAssignment, error)
}

// SchemaStore bootstraps the relational schema.
type SchemaStore interface {
	InitSchema(ctx context.Context, dropExisting bool) error
}
