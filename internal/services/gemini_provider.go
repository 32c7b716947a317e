package services

import (
	"context"
	"fmt"
	"os"

	"github.com/google/generative-ai-go/genai"
	"github.com/pgvector/pgvector-go"
	log "github.com/sirupsen/logrus"
	"google.golang.org/api/option"

	"mailsift/internal/models"
)

// GeminiProvider implements EmbeddingProvider using the Google Gemini API.
type GeminiProvider struct {
	client *genai.Client
	model  string
	dim    int
}

// NewGeminiProvider creates a new Gemini embedding provider. An empty
// apiKey falls back to the GEMINI_API_KEY environment variable.
func NewGeminiProvider(ctx context.Context, apiKey, modelName string) (*GeminiProvider, error) {
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}

	var dim int
	switch modelName {
	case "models/embedding-001", "models/text-embedding-004":
		dim = 768
	default:
		log.Warnf("unknown Gemini embedding model %q, assuming dimension 768", modelName)
		dim = 768
	}

	p := &GeminiProvider{model: modelName, dim: dim}
	if apiKey == "" {
		log.Warn("Gemini API key not provided; Gemini embedding provider is disabled")
		return p, nil
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create Gemini client: %w", err)
	}
	p.client = client
	log.Infof("Gemini embedding provider initialized with model %s (dimension %d)", modelName, dim)
	return p, nil
}

func (p *GeminiProvider) Name() string      { return "gemini" }
func (p *GeminiProvider) ModelName() string { return p.model }
func (p *GeminiProvider) Dimension() int    { return p.dim }

func (p *GeminiProvider) GenerateEmbedding(ctx context.Context, text string) (pgvector.Vector, error) {
	if p.client == nil {
		return pgvector.Vector{}, fmt.Errorf("Gemini provider is not initialized (missing API key): %w", models.ErrProvider)
	}

	em := p.client.EmbeddingModel(p.model)
	res, err := em.EmbedContent(ctx, genai.Text(text))
	if err != nil {
		return pgvector.Vector{}, fmt.Errorf("Gemini embeddings call failed: %v: %w", err, models.ErrProvider)
	}
	if res == nil || res.Embedding == nil || len(res.Embedding.Values) == 0 {
		return pgvector.Vector{}, fmt.Errorf("Gemini returned no embedding data: %w", models.ErrProvider)
	}
	if len(res.Embedding.Values) != p.dim {
		return pgvector.Vector{}, fmt.Errorf("Gemini returned dimension %d, want %d for model %s: %w",
			len(res.Embedding.Values), p.dim, p.model, models.ErrDataIntegrity)
	}
	return pgvector.NewVector(res.Embedding.Values), nil
}

var _ EmbeddingProvider = (*GeminiProvider)(nil)
