// Package primary implements the store interfaces on PostgreSQL with
// pgvector columns for the message and category embeddings.
package primary

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

// StoreImpl implements MessageStore, CategoryStore, ClassificationStore
// and SchemaStore on one connection pool.
type StoreImpl struct {
	db  *pgxpool.Pool
	dim int
}

// NewStore connects to PostgreSQL. dim is the embedding dimensionality
// used when creating the vector columns.
func NewStore(ctx context.Context, dsn string, dim int) (*StoreImpl, error) {
	if dsn == "" {
		return nil, errors.New("database DSN cannot be empty")
	}
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse database DSN: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &StoreImpl{db: pool, dim: dim}, nil
}

func (s *StoreImpl) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

func (s *StoreImpl) Close() {
	s.db.Close()
}

// InitSchema creates the schema, optionally dropping existing tables
// first. The classification table's composite primary key is what backs
// the at-most-one-record-per-pair invariant.
func (s *StoreImpl) InitSchema(ctx context.Context, dropExisting bool) error {
	if dropExisting {
		_, err := s.db.Exec(ctx, `DROP TABLE IF EXISTS message_categories, messages, categories`)
		if err != nil {
			return fmt.Errorf("drop tables: %w", err)
		}
	}

	stmts := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS messages (
			id TEXT PRIMARY KEY,
			subject TEXT NOT NULL,
			sender TEXT NOT NULL,
			recipients JSONB NOT NULL DEFAULT '[]',
			snippet TEXT,
			body TEXT,
			date TIMESTAMPTZ,
			embedding vector(%d),
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`, s.dim),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS categories (
			id BIGSERIAL PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			description TEXT NOT NULL,
			embedding vector(%d),
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`, s.dim),
		`CREATE TABLE IF NOT EXISTS message_categories (
			message_id TEXT NOT NULL REFERENCES messages(id) ON DELETE CASCADE,
			category_id BIGINT NOT NULL REFERENCES categories(id) ON DELETE CASCADE,
			score DOUBLE PRECISION NOT NULL,
			explanation TEXT NOT NULL,
			classified_at TIMESTAMPTZ NOT NULL,
			PRIMARY KEY (message_id, category_id)
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}

// --- Helpers ---

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// embeddingParam renders an optional embedding for insertion; NULL when
// absent.
func embeddingParam(vec *pgvector.Vector) interface{} {
	if vec == nil {
		return nil
	}
	return *vec
}

// parseEmbedding converts a nullable vector column read as text back into
// a pgvector value.
func parseEmbedding(raw *string) (*pgvector.Vector, error) {
	if raw == nil {
		return nil, nil
	}
	var vec pgvector.Vector
	if err := vec.Parse(*raw); err != nil {
		return nil, fmt.Errorf("parse stored embedding: %w", err)
	}
	return &vec, nil
}
