package classifier

import (
	"context"
	"errors"
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mailsift/internal/models"
)

// mockChatClient replays a sequence of canned responses, one per call.
type mockChatClient struct {
	responses []string
	errs      []error
	calls     int
	requests  []openai.ChatCompletionRequest
}

func (m *mockChatClient) CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	i := m.calls
	m.calls++
	m.requests = append(m.requests, req)
	if i < len(m.errs) && m.errs[i] != nil {
		return openai.ChatCompletionResponse{}, m.errs[i]
	}
	content := ""
	if i < len(m.responses) {
		content = m.responses[i]
	}
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: content}},
		},
	}, nil
}

func llmCategories() []*models.Category {
	return []*models.Category{
		{ID: 10, Name: "Work", Description: "Job-related messages"},
		{ID: 20, Name: "Travel", Description: "Bookings and itineraries"},
	}
}

func TestLLMStrategy_MapsVerdictsByIndex(t *testing.T) {
	client := &mockChatClient{responses: []string{
		`{"results": [
			{"category_index": 1, "is_in_category": true, "confidence": 0.9, "explanation": "mentions a flight"},
			{"category_index": 0, "is_in_category": false, "confidence": 0.2, "explanation": "not about work"}
		]}`,
	}}
	strategy := NewLLMStrategy(client, "gpt-test")

	judgments, err := strategy.Classify(context.Background(), testMessage(), llmCategories(), Options{})
	require.NoError(t, err)
	require.Len(t, judgments, 2)

	// Judgments come back in category slice order regardless of the
	// order the model answered in.
	assert.Equal(t, int64(10), judgments[0].CategoryID)
	assert.Equal(t, "Work", judgments[0].CategoryName)
	assert.False(t, judgments[0].Match)
	assert.Equal(t, 0.2, judgments[0].Score)

	assert.Equal(t, int64(20), judgments[1].CategoryID)
	assert.True(t, judgments[1].Match)
	assert.Equal(t, 0.9, judgments[1].Score)
	assert.Equal(t, "mentions a flight", judgments[1].Explanation)

	assert.Equal(t, 1, client.calls)
}

func TestLLMStrategy_PromptContainsIndexedCategories(t *testing.T) {
	client := &mockChatClient{responses: []string{
		`{"results": [
			{"category_index": 0, "is_in_category": false, "confidence": 0.1, "explanation": "no"},
			{"category_index": 1, "is_in_category": false, "confidence": 0.1, "explanation": "no"}
		]}`,
	}}
	strategy := NewLLMStrategy(client, "gpt-test")

	_, err := strategy.Classify(context.Background(), testMessage(), llmCategories(), Options{})
	require.NoError(t, err)

	require.Len(t, client.requests, 1)
	req := client.requests[0]
	assert.Equal(t, "gpt-test", req.Model)
	require.NotNil(t, req.ResponseFormat)
	assert.Equal(t, openai.ChatCompletionResponseFormatTypeJSONObject, req.ResponseFormat.Type)

	require.Len(t, req.Messages, 2)
	prompt := req.Messages[1].Content
	assert.Contains(t, prompt, "Subject: hello")
	assert.Contains(t, prompt, "[0] Category: Work")
	assert.Contains(t, prompt, "[1] Category: Travel")
}

func TestLLMStrategy_RetriesOnceOnProviderError(t *testing.T) {
	client := &mockChatClient{
		errs: []error{errors.New("rate limited"), nil},
		responses: []string{"", `{"results": [
			{"category_index": 0, "is_in_category": true, "confidence": 0.8, "explanation": "yes"},
			{"category_index": 1, "is_in_category": false, "confidence": 0.3, "explanation": "no"}
		]}`},
	}
	strategy := NewLLMStrategy(client, "gpt-test")

	judgments, err := strategy.Classify(context.Background(), testMessage(), llmCategories(), Options{})
	require.NoError(t, err)
	assert.Len(t, judgments, 2)
	assert.Equal(t, 2, client.calls)
}

func TestLLMStrategy_ProviderErrorAfterRetry(t *testing.T) {
	client := &mockChatClient{errs: []error{errors.New("down"), errors.New("still down")}}
	strategy := NewLLMStrategy(client, "gpt-test")

	_, err := strategy.Classify(context.Background(), testMessage(), llmCategories(), Options{})
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrProvider)
	assert.Equal(t, 2, client.calls)
}

func TestLLMStrategy_MissingIndexFailsValidationAfterRetry(t *testing.T) {
	incomplete := `{"results": [{"category_index": 0, "is_in_category": true, "confidence": 0.8, "explanation": "yes"}]}`
	client := &mockChatClient{responses: []string{incomplete, incomplete}}
	strategy := NewLLMStrategy(client, "gpt-test")

	_, err := strategy.Classify(context.Background(), testMessage(), llmCategories(), Options{})
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrValidation)
	assert.Contains(t, err.Error(), "missing verdict")
	assert.Equal(t, 2, client.calls)
}

func TestLLMStrategy_DuplicateIndexFailsValidation(t *testing.T) {
	dup := `{"results": [
		{"category_index": 0, "is_in_category": true, "confidence": 0.8, "explanation": "a"},
		{"category_index": 0, "is_in_category": false, "confidence": 0.2, "explanation": "b"}
	]}`
	client := &mockChatClient{responses: []string{dup, dup}}
	strategy := NewLLMStrategy(client, "gpt-test")

	_, err := strategy.Classify(context.Background(), testMessage(), llmCategories(), Options{})
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrValidation)
	assert.Contains(t, err.Error(), "duplicate verdict")
}

func TestLLMStrategy_ConfidenceOutOfRangeFailsValidation(t *testing.T) {
	bad := `{"results": [
		{"category_index": 0, "is_in_category": true, "confidence": 1.5, "explanation": "too sure"},
		{"category_index": 1, "is_in_category": false, "confidence": 0.2, "explanation": "no"}
	]}`
	client := &mockChatClient{responses: []string{bad, bad}}
	strategy := NewLLMStrategy(client, "gpt-test")

	_, err := strategy.Classify(context.Background(), testMessage(), llmCategories(), Options{})
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestLLMStrategy_UnknownIndexDroppedWhenRestComplete(t *testing.T) {
	content := `{"results": [
		{"category_index": 0, "is_in_category": true, "confidence": 0.9, "explanation": "a"},
		{"category_index": 1, "is_in_category": false, "confidence": 0.1, "explanation": "b"},
		{"category_index": 5, "is_in_category": true, "confidence": 0.7, "explanation": "ghost"}
	]}`
	client := &mockChatClient{responses: []string{content}}
	strategy := NewLLMStrategy(client, "gpt-test")

	judgments, err := strategy.Classify(context.Background(), testMessage(), llmCategories(), Options{})
	require.NoError(t, err)
	assert.Len(t, judgments, 2)
}

func TestLLMStrategy_StripsCodeFences(t *testing.T) {
	fenced := "```json\n" + `{"results": [
		{"category_index": 0, "is_in_category": true, "confidence": 0.9, "explanation": "a"},
		{"category_index": 1, "is_in_category": false, "confidence": 0.1, "explanation": "b"}
	]}` + "\n```"
	client := &mockChatClient{responses: []string{fenced}}
	strategy := NewLLMStrategy(client, "gpt-test")

	judgments, err := strategy.Classify(context.Background(), testMessage(), llmCategories(), Options{})
	require.NoError(t, err)
	assert.Len(t, judgments, 2)
}

func TestLLMStrategy_GarbageOutputFailsValidation(t *testing.T) {
	client := &mockChatClient{responses: []string{"not json at all", "still not json"}}
	strategy := NewLLMStrategy(client, "gpt-test")

	_, err := strategy.Classify(context.Background(), testMessage(), llmCategories(), Options{})
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestLLMStrategy_EmptyCategoriesMakesNoCall(t *testing.T) {
	client := &mockChatClient{}
	strategy := NewLLMStrategy(client, "gpt-test")

	judgments, err := strategy.Classify(context.Background(), testMessage(), nil, Options{})
	require.NoError(t, err)
	assert.Empty(t, judgments)
	assert.Zero(t, client.calls)
}

func TestLLMStrategy_NilClient(t *testing.T) {
	strategy := NewLLMStrategy(nil, "gpt-test")

	_, err := strategy.Classify(context.Background(), testMessage(), llmCategories(), Options{})
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrProvider)
}
