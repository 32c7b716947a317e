package services

import (
	"context"
	"fmt"
	"os"

	"github.com/pgvector/pgvector-go"
	"github.com/sashabaranov/go-openai"
	log "github.com/sirupsen/logrus"

	"mailsift/internal/models"
)

// OpenAIProvider implements EmbeddingProvider using the OpenAI API.
type OpenAIProvider struct {
	client *openai.Client
	model  openai.EmbeddingModel
	dim    int
}

// NewOpenAIProvider creates a new OpenAI embedding provider. An empty
// apiKey falls back to the OPENAI_API_KEY environment variable; with no
// key at all the provider is constructed disabled and fails on first use.
func NewOpenAIProvider(apiKey, modelID string) *OpenAIProvider {
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}

	var dim int
	switch modelID {
	case string(openai.AdaEmbeddingV2), "text-embedding-3-small":
		dim = 1536
	case "text-embedding-3-large":
		dim = 3072
	default:
		log.Warnf("unknown OpenAI embedding model %q, assuming dimension 1536", modelID)
		dim = 1536
	}

	p := &OpenAIProvider{model: openai.EmbeddingModel(modelID), dim: dim}
	if apiKey == "" {
		log.Warn("OpenAI API key not provided; OpenAI embedding provider is disabled")
		return p
	}
	p.client = openai.NewClient(apiKey)
	log.Infof("OpenAI embedding provider initialized with model %s (dimension %d)", modelID, dim)
	return p
}

func (p *OpenAIProvider) Name() string      { return "openai" }
func (p *OpenAIProvider) ModelName() string { return string(p.model) }
func (p *OpenAIProvider) Dimension() int    { return p.dim }

func (p *OpenAIProvider) GenerateEmbedding(ctx context.Context, text string) (pgvector.Vector, error) {
	if p.client == nil {
		return pgvector.Vector{}, fmt.Errorf("OpenAI provider is not initialized (missing API key): %w", models.ErrProvider)
	}

	resp, err := p.client.CreateEmbeddings(ctx, openai.EmbeddingRequestStrings{
		Input: []string{text},
		Model: p.model,
	})
	if err != nil {
		return pgvector.Vector{}, fmt.Errorf("OpenAI embeddings call failed: %v: %w", err, models.ErrProvider)
	}
	if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
		return pgvector.Vector{}, fmt.Errorf("OpenAI returned no embedding data: %w", models.ErrProvider)
	}
	if len(resp.Data[0].Embedding) != p.dim {
		return pgvector.Vector{}, fmt.Errorf("OpenAI returned dimension %d, want %d for model %s: %w",
			len(resp.Data[0].Embedding), p.dim, p.model, models.ErrDataIntegrity)
	}
	return pgvector.NewVector(resp.Data[0].Embedding), nil
}

var _ EmbeddingProvider = (*OpenAIProvider)(nil)
