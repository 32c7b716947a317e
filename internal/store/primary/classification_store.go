package primary

import (
	"context"
	"fmt"

	"mailsift/internal/models"
)

// UpsertClassifications commits all records of one classification run in
// a single transaction. The composite primary key on (message_id,
// category_id) makes concurrent runs over the same message converge to a
// single record per pair instead of accumulating duplicates.
func (s *StoreImpl) UpsertClassifications(ctx context.Context, messageID string, records []*models.ClassificationRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin classification transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO message_categories (message_id, category_id, score, explanation, classified_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (message_id, category_id)
		DO UPDATE SET score = EXCLUDED.score,
		              explanation = EXCLUDED.explanation,
		              classified_at = EXCLUDED.classified_at`
	for _, rec := range records {
		if _, err := tx.Exec(ctx, query,
			rec.MessageID, rec.CategoryID, rec.Score, rec.Explanation, rec.ClassifiedAt); err != nil {
			return fmt.Errorf("upsert classification (%s, %d): %w", rec.MessageID, rec.CategoryID, err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit classification transaction: %w", err)
	}
	return nil
}

func (s *StoreImpl) ListAssignmentsForMessage(ctx context.Context, messageID string) ([]*models.CategoryAssignment, error) {
	query := `
		SELECT c.id, c.name, mc.score, mc.explanation, mc.classified_at
		FROM message_categories mc
		JOIN categories c ON c.id = mc.category_id
		WHERE mc.message_id = $1
		ORDER BY mc.score DESC, c.id`
	rows, err := s.db.Query(ctx, query, messageID)
	if err != nil {
		return nil, fmt.Errorf("list assignments for message: %w", err)
	}
	defer rows.Close()

	assignments := []*models.CategoryAssignment{}
	for rows.Next() {
		a := &models.CategoryAssignment{}
		if err := rows.Scan(&a.CategoryID, &a.CategoryName, &a.Score, &a.Explanation, &a.ClassifiedAt); err != nil {
			return nil, err
		}
		assignments = append(assignments, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return assignments, nil
}
