package services

import (
	"context"
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"

	"mailsift/internal/ingest"
	"mailsift/internal/models"
	"mailsift/internal/store"
)

// BootstrapOptions configures a bootstrap run. File paths may be empty to
// skip that input; auto-classification runs sequentially, one message at
// a time, to respect provider rate limits.
type BootstrapOptions struct {
	MessagesFile   string
	CategoriesFile string
	DropExisting   bool
	AutoClassify   bool
	Strategy       StrategyOptions
}

// BootstrapResult summarizes a bootstrap run.
type BootstrapResult struct {
	TotalCategories   int
	TotalMessages     int
	TotalClassified   int
	PreviewMessages   []*models.Message
	PreviewCategories []*models.Category
}

// BootstrapService seeds the system from JSONL files: categories first,
// then messages, then an optional sequential classification pass.
type BootstrapService struct {
	schema         store.SchemaStore
	messages       *MessagesService
	categories     *CategoriesService
	classification *ClassificationService
}

func NewBootstrapService(schema store.SchemaStore, messages *MessagesService, categories *CategoriesService, classification *ClassificationService) *BootstrapService {
	return &BootstrapService{
		schema:         schema,
		messages:       messages,
		categories:     categories,
		classification: classification,
	}
}

func (s *BootstrapService) Bootstrap(ctx context.Context, opts BootstrapOptions) (*BootstrapResult, error) {
	if err := s.schema.InitSchema(ctx, opts.DropExisting); err != nil {
		return nil, fmt.Errorf("init schema: %w", err)
	}

	result := &BootstrapResult{}

	if opts.CategoriesFile != "" {
		categories, err := s.importCategories(ctx, opts.CategoriesFile)
		if err != nil {
			return nil, err
		}
		result.TotalCategories = len(categories)
		if len(categories) > 5 {
			categories = categories[:5]
		}
		result.PreviewCategories = categories
	}

	var imported []*models.Message
	if opts.MessagesFile != "" {
		var err error
		imported, err = s.importMessages(ctx, opts.MessagesFile)
		if err != nil {
			return nil, err
		}
		result.TotalMessages = len(imported)
	}

	if opts.AutoClassify && result.TotalCategories > 0 {
		for _, msg := range imported {
			if _, err := s.classification.ClassifyMessage(ctx, msg.ID, opts.Strategy); err != nil {
				if ctx.Err() != nil {
					return nil, err
				}
				log.Warnf("bootstrap: classification of message %s failed, skipping: %v", msg.ID, err)
				continue
			}
			result.TotalClassified++
		}
	}

	preview := imported
	if len(preview) > 5 {
		preview = preview[:5]
	}
	result.PreviewMessages = preview
	return result, nil
}

func (s *BootstrapService) importCategories(ctx context.Context, path string) ([]*models.Category, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open categories file: %w", err)
	}
	defer f.Close()

	lines, err := ingest.ParseJSONL[ingest.CategoryRecord](f)
	if err != nil {
		return nil, fmt.Errorf("parse categories file: %w", err)
	}

	categories := make([]*models.Category, 0, len(lines))
	for _, rec := range lines {
		cat, err := s.categories.CreateCategory(ctx, rec.Name, rec.Description)
		if err != nil {
			return nil, fmt.Errorf("import category %q: %w", rec.Name, err)
		}
		categories = append(categories, cat)
	}
	log.Infof("bootstrap: imported %d categories from %s", len(categories), path)
	return categories, nil
}

func (s *BootstrapService) importMessages(ctx context.Context, path string) ([]*models.Message, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open messages file: %w", err)
	}
	defer f.Close()

	lines, err := ingest.ParseJSONL[ingest.MessageRecord](f)
	if err != nil {
		return nil, fmt.Errorf("parse messages file: %w", err)
	}

	messages := make([]*models.Message, 0, len(lines))
	for _, rec := range lines {
		params, err := messageParamsFromRecord(rec)
		if err != nil {
			return nil, fmt.Errorf("import message %q: %w", rec.ID, err)
		}
		msg, err := s.messages.CreateMessage(ctx, params)
		if err != nil {
			return nil, fmt.Errorf("import message %q: %w", rec.ID, err)
		}
		messages = append(messages, msg)
	}
	log.Infof("bootstrap: imported %d messages from %s", len(messages), path)
	return messages, nil
}

// messageParamsFromRecord converts a JSONL line into create params. The
// on-disk format carries base64-encoded bodies and ISO-8601 dates.
func messageParamsFromRecord(rec ingest.MessageRecord) (MessageParams, error) {
	params := MessageParams{
		ID:           rec.ID,
		Subject:      rec.Subject,
		Sender:       rec.From,
		To:           rec.To,
		BodyIsBase64: true,
	}
	if rec.Snippet != "" {
		snippet := rec.Snippet
		params.Snippet = &snippet
	}
	if rec.Body != "" {
		body := rec.Body
		params.Body = &body
	}
	if rec.Date != "" {
		date, err := ingest.ParseISODate(rec.Date)
		if err != nil {
			return MessageParams{}, fmt.Errorf("parse date %q: %v: %w", rec.Date, err, models.ErrValidation)
		}
		params.Date = &date
	}
	return params, nil
}
