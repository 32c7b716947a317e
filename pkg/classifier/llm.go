package classifier

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
	log "github.com/sirupsen/logrus"

	"mailsift/internal/models"
	"mailsift/internal/textrep"
)

// ChatCompleter is the minimal slice of the OpenAI client the generative
// strategy needs, kept narrow so tests can substitute a mock.
type ChatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// LLMStrategy evaluates every category with a single structured generation
// request per message. Categories are presented as indexed blocks; the
// model must return one verdict per index, which is mapped back to the
// originating category after validation.
type LLMStrategy struct {
	client ChatCompleter
	model  string
}

func NewLLMStrategy(client ChatCompleter, model string) *LLMStrategy {
	return &LLMStrategy{client: client, model: model}
}

// categoryVerdict is the structured tuple the model returns per category.
type categoryVerdict struct {
	CategoryIndex int     `json:"category_index"`
	IsInCategory  bool    `json:"is_in_category"`
	Confidence    float64 `json:"confidence"`
	Explanation   string  `json:"explanation"`
}

type verdictEnvelope struct {
	Results []categoryVerdict `json:"results"`
}

const llmSystemPrompt = `You judge whether a message belongs to each of a set of user-defined categories. Each category is judged independently; a message may belong to several categories or to none. Respond with JSON only, shaped as {"results": [{"category_index": <int>, "is_in_category": <bool>, "confidence": <float between 0 and 1>, "explanation": <string>}]}, with exactly one entry per category index.`

func (s *LLMStrategy) Classify(ctx context.Context, msg *models.Message, categories []*models.Category, opts Options) ([]Judgment, error) {
	if len(categories) == 0 {
		return nil, nil
	}
	if s.client == nil {
		return nil, fmt.Errorf("llm strategy has no chat client configured: %w", models.ErrProvider)
	}

	prompt := s.buildPrompt(msg, categories)

	// One retry with identical inputs, whether the call failed or the
	// structured output did not validate. No retry beyond that.
	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model: s.model,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleSystem, Content: llmSystemPrompt},
				{Role: openai.ChatMessageRoleUser, Content: prompt},
			},
			ResponseFormat: &openai.ChatCompletionResponseFormat{
				Type: openai.ChatCompletionResponseFormatTypeJSONObject,
			},
		})
		if err != nil {
			lastErr = fmt.Errorf("chat completion failed: %v: %w", err, models.ErrProvider)
			log.Warnf("llm strategy attempt %d for message %s failed: %v", attempt+1, msg.ID, err)
			continue
		}
		if len(resp.Choices) == 0 {
			lastErr = fmt.Errorf("chat completion returned no choices: %w", models.ErrProvider)
			continue
		}

		judgments, err := mapVerdicts(resp.Choices[0].Message.Content, categories)
		if err != nil {
			lastErr = fmt.Errorf("invalid structured output for message %s: %v: %w", msg.ID, err, models.ErrValidation)
			log.Warnf("llm strategy attempt %d for message %s returned invalid output: %v", attempt+1, msg.ID, err)
			continue
		}
		return judgments, nil
	}
	return nil, lastErr
}

// buildPrompt renders the canonical message block followed by every
// category as an indexed block in stable slice order. Index positions are
// what the response is mapped back through, so the order here must match
// the categories slice exactly.
func (s *LLMStrategy) buildPrompt(msg *models.Message, categories []*models.Category) string {
	var b strings.Builder
	b.WriteString("Message:\n")
	b.WriteString(textrep.MessageText(msg))
	b.WriteString("\nCategories:\n")
	for i, cat := range categories {
		fmt.Fprintf(&b, "[%d] %s\n", i, textrep.CategoryText(cat))
	}
	return b.String()
}

// mapVerdicts validates the model output and maps each verdict back to
// its category by index. Every expected index must appear exactly once
// and confidence must lie in [0,1]; unknown indices are dropped with a
// warning rather than failing the call.
func mapVerdicts(content string, categories []*models.Category) ([]Judgment, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")

	var envelope verdictEnvelope
	if err := json.Unmarshal([]byte(content), &envelope); err != nil {
		return nil, fmt.Errorf("parse response JSON: %v", err)
	}

	seen := make(map[int]bool, len(categories))
	judgments := make([]Judgment, len(categories))
	for _, v := range envelope.Results {
		if v.CategoryIndex < 0 || v.CategoryIndex >= len(categories) {
			log.Warnf("dropping verdict for unknown category index %d", v.CategoryIndex)
			continue
		}
		if seen[v.CategoryIndex] {
			return nil, fmt.Errorf("duplicate verdict for category index %d", v.CategoryIndex)
		}
		if v.Confidence < 0 || v.Confidence > 1 {
			return nil, fmt.Errorf("confidence %v for category index %d outside [0,1]", v.Confidence, v.CategoryIndex)
		}
		seen[v.CategoryIndex] = true
		cat := categories[v.CategoryIndex]
		judgments[v.CategoryIndex] = Judgment{
			CategoryID:   cat.ID,
			CategoryName: cat.Name,
			Match:        v.IsInCategory,
			Score:        v.Confidence,
			Explanation:  v.Explanation,
		}
	}
	for i := range categories {
		if !seen[i] {
			return nil, fmt.Errorf("missing verdict for category index %d", i)
		}
	}
	return judgments, nil
}
