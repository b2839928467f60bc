package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Config carries every tunable knob, populated from environment variables
// with optional config.yaml overrides.
type Config struct {
	Port                    int           `mapstructure:"PORT"`
	LogLevel                string        `mapstructure:"LOG_LEVEL"`
	ChatLLMHost             string        `mapstructure:"CHAT_LLM_HOST"`
	EmbeddingLLMHost        string        `mapstructure:"EMBEDDING_LLM_HOST"`
	ChatModel               string        `mapstructure:"CHAT_MODEL"`
	EmbeddingModel          string        `mapstructure:"EMBEDDING_MODEL"`
	LLMAPIKey               string        `mapstructure:"LLM_API_KEY"`
	LLMTemperature          float64       `mapstructure:"LLM_TEMPERATURE"`
	LLMMaxTokens            int           `mapstructure:"LLM_MAX_TOKENS"`
	LLMRequestTimeout       time.Duration `mapstructure:"LLM_REQUEST_TIMEOUT"`
	MaxRetries              int           `mapstructure:"MAX_RETRIES"`
	RetryDelaySeconds       time.Duration `mapstructure:"RETRY_DELAY_SECONDS"`
	RAGTopK                 int           `mapstructure:"RAG_TOP_K"`
	RAGMinSimilarity        float64       `mapstructure:"RAG_MIN_SIMILARITY"`
	HistoryWindow           int           `mapstructure:"HISTORY_WINDOW"`
	HistoryMaxTurns         int           `mapstructure:"HISTORY_MAX_TURNS"`
	EmbedCacheSize          int           `mapstructure:"EMBED_CACHE_SIZE"`
	ChunkSizeRunes          int           `mapstructure:"CHUNK_SIZE_RUNES"`
	StoreBackend            string        `mapstructure:"STORE_BACKEND"`
	DatabaseURL             string        `mapstructure:"DATABASE_URL"`
	RateLimitMessagesPerMin int           `mapstructure:"RATE_LIMIT_MESSAGES_PER_MIN"`
	RateLimitBurstSize      int           `mapstructure:"RATE_LIMIT_BURST_SIZE"`
	DailyTipSeed            int           `mapstructure:"DAILY_TIP_SEED"`
}

func Load(logger *zap.Logger) *Config {
	var config Config
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AutomaticEnv()

	viper.SetDefault("PORT", 8080)
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("CHAT_LLM_HOST", "http://localhost:8081")
	viper.SetDefault("EMBEDDING_LLM_HOST", "http://localhost:8082")
	viper.SetDefault("CHAT_MODEL", "coach-chat")
	viper.SetDefault("EMBEDDING_MODEL", "coach-embed")
	viper.SetDefault("LLM_API_KEY", "")
	viper.SetDefault("LLM_TEMPERATURE", 0.7)
	viper.SetDefault("LLM_MAX_TOKENS", 300)
	viper.SetDefault("LLM_REQUEST_TIMEOUT", 60)
	viper.SetDefault("MAX_RETRIES", 3)
	viper.SetDefault("RETRY_DELAY_SECONDS", 2)
	viper.SetDefault("RAG_TOP_K", 3)
	viper.SetDefault("RAG_MIN_SIMILARITY", 0.3)
	viper.SetDefault("HISTORY_WINDOW", 4)
	viper.SetDefault("HISTORY_MAX_TURNS", 20)
	viper.SetDefault("EMBED_CACHE_SIZE", 256)
	viper.SetDefault("CHUNK_SIZE_RUNES", 500)
	viper.SetDefault("STORE_BACKEND", "memory")
	viper.SetDefault("DATABASE_URL", "")
	viper.SetDefault("RATE_LIMIT_MESSAGES_PER_MIN", 20)
	viper.SetDefault("RATE_LIMIT_BURST_SIZE", 5)
	viper.SetDefault("DAILY_TIP_SEED", 0)

	if err := viper.ReadInConfig(); err != nil {
		if logger != nil {
			logger.Warn("Could not read config file, using defaults/env vars", zap.Error(err))
		}
	}

	// A config that cannot be decoded is not recoverable; stop the boot.
	if err := viper.Unmarshal(&config); err != nil {
		if logger != nil {
			logger.Fatal("Unable to decode config into struct", zap.Error(err))
		} else {
			fmt.Fprintf(os.Stderr, "FATAL: Unable to decode config into struct: %v\n", err)
			os.Exit(1)
		}
	}

	config.StoreBackend = strings.ToLower(strings.TrimSpace(config.StoreBackend))
	if config.StoreBackend == "" {
		config.StoreBackend = "memory"
	}

	// The history window read into the prompt can never exceed what is retained.
	if config.HistoryWindow > config.HistoryMaxTurns {
		config.HistoryWindow = config.HistoryMaxTurns
	}

	// Duration knobs are plain second counts in the environment.
	config.RetryDelaySeconds = config.RetryDelaySeconds * time.Second
	config.LLMRequestTimeout = config.LLMRequestTimeout * time.Second

	return &config
}
