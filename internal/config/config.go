package config

import (
	"fmt"

	"github.com/spf13/viper"
)

type Config struct {
	Database struct {
		DSN string `mapstructure:"dsn"`
	} `mapstructure:"database"`

	Embedding struct {
		Provider     string `mapstructure:"provider"` // "openai" or "gemini"
		Model        string `mapstructure:"model"`
		OpenAIAPIKey string `mapstructure:"openai_api_key"`
		GoogleAPIKey string `mapstructure:"google_api_key"`
		GeminiModel  string `mapstructure:"gemini_model"`
		Dimension    int    `mapstructure:"dimension"`
	} `mapstructure:"embedding"`

	Classification struct {
		Strategy  string  `mapstructure:"strategy"` // "embedding" or "llm"
		Model     string  `mapstructure:"model"`    // chat model for the llm strategy
		TopN      int     `mapstructure:"top_n"`
		Threshold float64 `mapstructure:"threshold"`
	} `mapstructure:"classification"`

	Redis struct {
		Address  string `mapstructure:"address"`
		Password string `mapstructure:"password"`
		DB       int    `mapstructure:"db"`
	} `mapstructure:"redis"`

	Worker struct {
		Concurrency int            `mapstructure:"concurrency"`
		Queues      map[string]int `mapstructure:"queues"`
	} `mapstructure:"worker"`
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")

	viper.SetDefault("database.dsn", "postgres://localhost:5432/mailsift?sslmode=disable")
	viper.SetDefault("embedding.provider", "openai")
	viper.SetDefault("embedding.model", "text-embedding-ada-002")
	viper.SetDefault("embedding.gemini_model", "models/embedding-001")
	viper.SetDefault("embedding.dimension", 1536)
	viper.SetDefault("classification.strategy", "embedding")
	viper.SetDefault("classification.model", "gpt-4o-mini")
	viper.SetDefault("classification.top_n", 3)
	viper.SetDefault("classification.threshold", 0.5)
	viper.SetDefault("redis.address", "localhost:6379")
	viper.SetDefault("worker.concurrency", 4)

	viper.AutomaticEnv()
	viper.BindEnv("embedding.openai_api_key", "OPENAI_API_KEY")
	viper.BindEnv("embedding.google_api_key", "GEMINI_API_KEY")
	viper.BindEnv("database.dsn", "DATABASE_URL")

	if err := viper.ReadInConfig(); err != nil {
		// A missing config file is fine; defaults and env vars carry it.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
