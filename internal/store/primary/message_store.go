package primary

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pgvector/pgvector-go"

	"mailsift/internal/models"
	"mailsift/internal/store"
)

const messageColumns = `id, subject, sender, recipients, snippet, body, date, embedding::text, created_at, updated_at`

func (s *StoreImpl) CreateMessage(ctx context.Context, msg *models.Message) error {
	recipients, err := json.Marshal(msg.To)
	if err != nil {
		return fmt.Errorf("encode recipients: %w", err)
	}

	now := time.Now().UTC()
	msg.CreatedAt = now
	msg.UpdatedAt = now

	query := `
		INSERT INTO messages (id, subject, sender, recipients, snippet, body, date, embedding, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err = s.db.Exec(ctx, query,
		msg.ID, msg.Subject, msg.Sender, recipients, msg.Snippet, msg.Body, msg.Date,
		embeddingParam(msg.Embedding), msg.CreatedAt, msg.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("message %s: %w", msg.ID, store.ErrDuplicate)
		}
		return fmt.Errorf("insert message: %w", err)
	}
	return nil
}

func (s *StoreImpl) GetMessage(ctx context.Context, id string) (*models.Message, error) {
	query := `SELECT ` + messageColumns + ` FROM messages WHERE id = $1`
	msg, err := scanMessage(s.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("get message: %w", err)
	}
	return msg, nil
}

func (s *StoreImpl) ListMessages(ctx context.Context, limit, offset int) ([]*models.Message, error) {
	query := `SELECT ` + messageColumns + ` FROM messages ORDER BY date DESC NULLS LAST, id`
	args := []interface{}{}
	if limit > 0 {
		query += ` LIMIT $1 OFFSET $2`
		args = append(args, limit, offset)
	}

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()
	return collectMessages(rows)
}

func (s *StoreImpl) ListMessagesByCategory(ctx context.Context, categoryID int64) ([]*models.Message, error) {
	query := `
		SELECT ` + prefixedMessageColumns("m") + `
		FROM messages m
		JOIN message_categories mc ON mc.message_id = m.id
		WHERE mc.category_id = $1
		ORDER BY mc.score DESC, m.id`
	rows, err := s.db.Query(ctx, query, categoryID)
	if err != nil {
		return nil, fmt.Errorf("list messages by category: %w", err)
	}
	defer rows.Close()
	return collectMessages(rows)
}

func (s *StoreImpl) UpdateMessage(ctx context.Context, msg *models.Message) error {
	recipients, err := json.Marshal(msg.To)
	if err != nil {
		return fmt.Errorf("encode recipients: %w", err)
	}

	msg.UpdatedAt = time.Now().UTC()
	query := `
		UPDATE messages
		SET subject = $2, sender = $3, recipients = $4, snippet = $5, body = $6,
		    date = $7, embedding = $8, updated_at = $9
		WHERE id = $1`
	tag, err := s.db.Exec(ctx, query,
		msg.ID, msg.Subject, msg.Sender, recipients, msg.Snippet, msg.Body, msg.Date,
		embeddingParam(msg.Embedding), msg.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update message: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *StoreImpl) DeleteMessage(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM messages WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete message: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *StoreImpl) SetMessageEmbedding(ctx context.Context, id string, vec pgvector.Vector) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE messages SET embedding = $2, updated_at = $3 WHERE id = $1`,
		id, vec, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("set message embedding: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

// --- Scanning helpers ---

func prefixedMessageColumns(alias string) string {
	return alias + `.id, ` + alias + `.subject, ` + alias + `.sender, ` + alias + `.recipients, ` +
		alias + `.snippet, ` + alias + `.body, ` + alias + `.date, ` + alias + `.embedding::text, ` +
		alias + `.created_at, ` + alias + `.updated_at`
}

func scanMessage(row pgx.Row) (*models.Message, error) {
	msg := &models.Message{}
	var recipients []byte
	var embRaw *string
	err := row.Scan(
		&msg.ID, &msg.Subject, &msg.Sender, &recipients, &msg.Snippet, &msg.Body,
		&msg.Date, &embRaw, &msg.CreatedAt, &msg.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(recipients, &msg.To); err != nil {
		return nil, fmt.Errorf("decode recipients: %w", err)
	}
	msg.Embedding, err = parseEmbedding(embRaw)
	if err != nil {
		return nil, err
	}
	return msg, nil
}

func collectMessages(rows pgx.Rows) ([]*models.Message, error) {
	messages := []*models.Message{}
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return messages, nil
}
