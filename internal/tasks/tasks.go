// Package tasks defines the asynq task types and handlers used for
// background classification.
package tasks

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	log "github.com/sirupsen/logrus"

	"mailsift/internal/services"
)

// TypeClassifyMessage classifies one message against all categories.
const TypeClassifyMessage = "classify:message"

// ClassifyMessagePayload is the JSON payload of a classify task.
type ClassifyMessagePayload struct {
	MessageID string  `json:"message_id"`
	Strategy  string  `json:"strategy"`
	TopN      int     `json:"top_n"`
	Threshold float64 `json:"threshold"`
}

// NewClassifyMessageTask builds a classify task for the given message.
func NewClassifyMessageTask(payload ClassifyMessagePayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode classify payload: %w", err)
	}
	return asynq.NewTask(TypeClassifyMessage, data), nil
}

// NewClassifyMessageHandler returns the worker-side handler. Each task is
// one classification unit of work; the record upserts stay all-or-nothing
// inside the service.
func NewClassifyMessageHandler(svc *services.ClassificationService) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload ClassifyMessagePayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return fmt.Errorf("decode classify payload: %v: %w", err, asynq.SkipRetry)
		}

		resp, err := svc.ClassifyMessage(ctx, payload.MessageID, services.StrategyOptions{
			Strategy:  payload.Strategy,
			TopN:      payload.TopN,
			Threshold: payload.Threshold,
		})
		if err != nil {
			return fmt.Errorf("classify message %s: %w", payload.MessageID, err)
		}
		log.Infof("worker: classified message %s into %d categories", payload.MessageID, len(resp.Classifications))
		return nil
	}
}
