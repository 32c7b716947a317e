package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	log "github.com/sirupsen/logrus"

	"mailsift/internal/models"
	"mailsift/internal/store"
	"mailsift/pkg/classifier"
)

// StrategyOptions selects and parameterizes a classification strategy for
// one call. Zero values fall back to the configured defaults.
type StrategyOptions struct {
	Strategy  string  `json:"strategy"`
	TopN      int     `json:"top_n"`
	Threshold float64 `json:"threshold"`
}

// ClassificationEntry is one matched category in a classify response.
type ClassificationEntry struct {
	CategoryID   int64   `json:"category_id"`
	CategoryName string  `json:"category_name"`
	Score        float64 `json:"score"`
	IsInCategory bool    `json:"is_in_category"`
	Explanation  string  `json:"explanation"`
}

// ClassifyResponse is the outcome of classifying one message, entries
// ordered by descending score.
type ClassifyResponse struct {
	MessageID       string                `json:"message_id"`
	Classifications []ClassificationEntry `json:"classifications"`
}

// ClassificationService orchestrates a classification run: it loads the
// message and the full category set, invokes the selected strategy exactly
// once, filters to matching judgments and commits them as classification
// records in a single transaction.
type ClassificationService struct {
	messages   store.MessageStore
	categories store.CategoryStore
	records    store.ClassificationStore
	strategies map[string]classifier.Strategy
	defaults   StrategyOptions
}

func NewClassificationService(
	messages store.MessageStore,
	categories store.CategoryStore,
	records store.ClassificationStore,
	strategies map[string]classifier.Strategy,
	defaults StrategyOptions,
) *ClassificationService {
	return &ClassificationService{
		messages:   messages,
		categories: categories,
		records:    records,
		strategies: strategies,
		defaults:   defaults,
	}
}

// ClassifyMessage classifies one message against all known categories and
// upserts a classification record per matching judgment. Classifying the
// same message twice with identical inputs converges to the same stored
// state: the (message, category) pair is the idempotency key.
//
// A pair that matched on an earlier run but not on this one keeps its old
// record; classification never deletes records. Stale records only go
// away when the underlying message or category is deleted.
func (s *ClassificationService) ClassifyMessage(ctx context.Context, messageID string, opts StrategyOptions) (*ClassifyResponse, error) {
	opts = s.withDefaults(opts)
	strat, ok := s.strategies[opts.Strategy]
	if !ok {
		return nil, fmt.Errorf("unknown classification strategy %q: %w", opts.Strategy, models.ErrValidation)
	}

	msg, err := s.messages.GetMessage(ctx, messageID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("message %s: %w", messageID, models.ErrNotFound)
		}
		return nil, fmt.Errorf("load message %s: %w", messageID, err)
	}

	categories, err := s.categories.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("load categories: %w", err)
	}
	// An empty category set is valid and produces an empty response
	// without touching any provider.
	if len(categories) == 0 {
		return &ClassifyResponse{MessageID: messageID, Classifications: []ClassificationEntry{}}, nil
	}

	judgments, err := strat.Classify(ctx, msg, categories, classifier.Options{
		TopN:      opts.TopN,
		Threshold: opts.Threshold,
	})
	if err != nil {
		return nil, err
	}

	matched := make([]classifier.Judgment, 0, len(judgments))
	for _, j := range judgments {
		if j.Match {
			matched = append(matched, j)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].Score != matched[j].Score {
			return matched[i].Score > matched[j].Score
		}
		return matched[i].CategoryID < matched[j].CategoryID
	})

	now := time.Now().UTC()
	records := make([]*models.ClassificationRecord, len(matched))
	for i, j := range matched {
		records[i] = &models.ClassificationRecord{
			MessageID:    messageID,
			CategoryID:   j.CategoryID,
			Score:        j.Score,
			Explanation:  j.Explanation,
			ClassifiedAt: now,
		}
	}
	if err := s.records.UpsertClassifications(ctx, messageID, records); err != nil {
		return nil, fmt.Errorf("persist classifications for message %s: %w", messageID, err)
	}

	entries := make([]ClassificationEntry, len(matched))
	for i, j := range matched {
		entries[i] = ClassificationEntry{
			CategoryID:   j.CategoryID,
			CategoryName: j.CategoryName,
			Score:        j.Score,
			IsInCategory: true,
			Explanation:  j.Explanation,
		}
	}
	log.Debugf("classified message %s: %d of %d categories matched (strategy=%s)",
		messageID, len(matched), len(categories), opts.Strategy)
	return &ClassifyResponse{MessageID: messageID, Classifications: entries}, nil
}

func (s *ClassificationService) withDefaults(opts StrategyOptions) StrategyOptions {
	if opts.Strategy == "" {
		opts.Strategy = s.defaults.Strategy
	}
	if opts.TopN <= 0 {
		opts.TopN = s.defaults.TopN
	}
	if opts.Threshold <= 0 {
		opts.Threshold = s.defaults.Threshold
	}
	return opts
}
