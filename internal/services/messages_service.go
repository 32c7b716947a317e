package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"mailsift/internal/ingest"
	"mailsift/internal/models"
	"mailsift/internal/store"
	"mailsift/internal/textrep"
)

// MessageParams carries the caller-supplied fields for creating or
// updating a message. An empty ID gets a generated one at create time.
type MessageParams struct {
	ID           string
	Subject      string
	Sender       string
	To           []string
	Snippet      *string
	Body         *string
	Date         *time.Time
	BodyIsBase64 bool
}

// MessagesService owns message ingestion and lifecycle: body
// normalization, snippet derivation, eager embedding and CRUD.
type MessagesService struct {
	messages  store.MessageStore
	embedding *EmbeddingService
}

func NewMessagesService(messages store.MessageStore, embedding *EmbeddingService) *MessagesService {
	return &MessagesService{messages: messages, embedding: embedding}
}

// CreateMessage normalizes, embeds and stores a new message. A duplicate
// ID fails with ErrConflict.
func (s *MessagesService) CreateMessage(ctx context.Context, params MessageParams) (*models.Message, error) {
	body, err := normalizeBody(params.Body, params.BodyIsBase64)
	if err != nil {
		return nil, fmt.Errorf("normalize body: %v: %w", err, models.ErrValidation)
	}

	snippet := params.Snippet
	if (snippet == nil || *snippet == "") && body != nil {
		derived := ingest.Snippet(*body, 160)
		if derived != "" {
			snippet = &derived
		}
	}

	id := params.ID
	if id == "" {
		id = uuid.NewString()
	}

	msg := &models.Message{
		ID:      id,
		Subject: params.Subject,
		Sender:  params.Sender,
		To:      params.To,
		Snippet: snippet,
		Body:    body,
		Date:    params.Date,
	}

	vec, err := s.embedding.EmbedText(ctx, textrep.MessageText(msg))
	if err != nil {
		return nil, err
	}
	msg.Embedding = &vec

	if err := s.messages.CreateMessage(ctx, msg); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, fmt.Errorf("message with id %q already exists: %w", id, models.ErrConflict)
		}
		return nil, fmt.Errorf("create message: %w", err)
	}
	log.Debugf("created message %s (subject=%q)", msg.ID, msg.Subject)
	return msg, nil
}

func (s *MessagesService) GetMessage(ctx context.Context, id string) (*models.Message, error) {
	msg, err := s.messages.GetMessage(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("message %s: %w", id, models.ErrNotFound)
		}
		return nil, err
	}
	return msg, nil
}

func (s *MessagesService) ListMessages(ctx context.Context, limit, offset int) ([]*models.Message, error) {
	return s.messages.ListMessages(ctx, limit, offset)
}

// UpdateMessage applies non-nil fields and regenerates the embedding so a
// created and an updated message with the same content embed identically.
func (s *MessagesService) UpdateMessage(ctx context.Context, id string, params MessageParams) (*models.Message, error) {
	msg, err := s.GetMessage(ctx, id)
	if err != nil {
		return nil, err
	}

	if params.Subject != "" {
		msg.Subject = params.Subject
	}
	if params.Sender != "" {
		msg.Sender = params.Sender
	}
	if params.To != nil {
		msg.To = params.To
	}
	if params.Snippet != nil {
		msg.Snippet = params.Snippet
	}
	if params.Body != nil {
		body, err := normalizeBody(params.Body, params.BodyIsBase64)
		if err != nil {
			return nil, fmt.Errorf("normalize body: %v: %w", err, models.ErrValidation)
		}
		msg.Body = body
	}
	if params.Date != nil {
		msg.Date = params.Date
	}

	vec, err := s.embedding.EmbedText(ctx, textrep.MessageText(msg))
	if err != nil {
		return nil, err
	}
	msg.Embedding = &vec

	if err := s.messages.UpdateMessage(ctx, msg); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("message %s: %w", id, models.ErrNotFound)
		}
		return nil, fmt.Errorf("update message: %w", err)
	}
	return msg, nil
}

func (s *MessagesService) DeleteMessage(ctx context.Context, id string) error {
	if err := s.messages.DeleteMessage(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("message %s: %w", id, models.ErrNotFound)
		}
		return err
	}
	return nil
}

// ListMessagesByCategory returns the messages currently assigned to a
// category through classification records.
func (s *MessagesService) ListMessagesByCategory(ctx context.Context, categoryID int64) ([]*models.Message, error) {
	return s.messages.ListMessagesByCategory(ctx, categoryID)
}

// normalizeBody centralizes message content parsing: base64 decoding when
// flagged, then plain-text extraction when the content looks like HTML.
func normalizeBody(body *string, isBase64 bool) (*string, error) {
	if body == nil {
		return nil, nil
	}
	content := *body
	if isBase64 {
		decoded, err := ingest.DecodeBase64Body(content)
		if err != nil {
			return nil, err
		}
		content = decoded
	}
	if content != "" && ingest.IsHTML(content) {
		content = ingest.ExtractText(content)
	}
	return &content, nil
}
