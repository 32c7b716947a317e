// Package app wires configuration, stores, providers and services into
// one application instance shared by the CLI, the API server and the
// worker.
package app

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/sashabaranov/go-openai"
	log "github.com/sirupsen/logrus"

	"mailsift/internal/config"
	"mailsift/internal/services"
	"mailsift/internal/store"
	"mailsift/internal/store/primary"
	"mailsift/pkg/classifier"
)

type App struct {
	Config *config.Config

	MessageStore        store.MessageStore
	CategoryStore       store.CategoryStore
	ClassificationStore store.ClassificationStore
	SchemaStore         store.SchemaStore

	Provider         services.EmbeddingProvider
	EmbeddingService *services.EmbeddingService

	MessagesService       *services.MessagesService
	CategoriesService     *services.CategoriesService
	ClassificationService *services.ClassificationService
	BootstrapService      *services.BootstrapService

	primaryStore *primary.StoreImpl
	jobClient    *asynq.Client
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{Config: cfg}

	ps, err := primary.NewStore(ctx, cfg.Database.DSN, cfg.Embedding.Dimension)
	if err != nil {
		return nil, fmt.Errorf("init primary store: %w", err)
	}
	a.primaryStore = ps
	a.MessageStore = ps
	a.CategoryStore = ps
	a.ClassificationStore = ps
	a.SchemaStore = ps

	provider, err := newEmbeddingProvider(ctx, cfg)
	if err != nil {
		ps.Close()
		return nil, err
	}
	a.Provider = provider
	a.EmbeddingService = services.NewEmbeddingService(provider, a.MessageStore, a.CategoryStore)

	var chatClient classifier.ChatCompleter
	if key := cfg.Embedding.OpenAIAPIKey; key != "" {
		chatClient = openai.NewClient(key)
	} else {
		log.Warn("OpenAI API key not provided; the llm strategy will fail until one is configured")
	}

	strategies := map[string]classifier.Strategy{
		classifier.StrategyEmbedding: classifier.NewEmbeddingStrategy(a.EmbeddingService),
		classifier.StrategyLLM:       classifier.NewLLMStrategy(chatClient, cfg.Classification.Model),
	}

	a.ClassificationService = services.NewClassificationService(
		a.MessageStore, a.CategoryStore, a.ClassificationStore, strategies,
		services.StrategyOptions{
			Strategy:  cfg.Classification.Strategy,
			TopN:      cfg.Classification.TopN,
			Threshold: cfg.Classification.Threshold,
		})
	a.MessagesService = services.NewMessagesService(a.MessageStore, a.EmbeddingService)
	a.CategoriesService = services.NewCategoriesService(a.CategoryStore, a.ClassificationStore, a.EmbeddingService)
	a.BootstrapService = services.NewBootstrapService(a.SchemaStore, a.MessagesService, a.CategoriesService, a.ClassificationService)

	log.Debug("application initialization complete")
	return a, nil
}

// JobClient lazily opens the asynq client used to enqueue background
// classification tasks.
func (a *App) JobClient() *asynq.Client {
	if a.jobClient == nil {
		a.jobClient = asynq.NewClient(a.RedisOpt())
	}
	return a.jobClient
}

// RedisOpt builds the asynq Redis connection options from config.
func (a *App) RedisOpt() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     a.Config.Redis.Address,
		Password: a.Config.Redis.Password,
		DB:       a.Config.Redis.DB,
	}
}

// Ping checks connectivity of the primary store.
func (a *App) Ping(ctx context.Context) error {
	return a.primaryStore.Ping(ctx)
}

func (a *App) Close() {
	if a.jobClient != nil {
		if err := a.jobClient.Close(); err != nil {
			log.Warnf("close job client: %v", err)
		}
	}
	a.primaryStore.Close()
}

func newEmbeddingProvider(ctx context.Context, cfg *config.Config) (services.EmbeddingProvider, error) {
	switch cfg.Embedding.Provider {
	case "openai", "":
		return services.NewOpenAIProvider(cfg.Embedding.OpenAIAPIKey, cfg.Embedding.Model), nil
	case "gemini":
		return services.NewGeminiProvider(ctx, cfg.Embedding.GoogleAPIKey, cfg.Embedding.GeminiModel)
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.Embedding.Provider)
	}
}
