package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"bodybae/config"
	"bodybae/knowledge"
	"bodybae/llmclient"
	"bodybae/rag"
	"bodybae/store"
	"bodybae/web"
)

func main() {
	ctx := context.Background()

	// .env is optional; deployments usually set environment variables directly
	_ = godotenv.Load()

	// The config loader wants a logger, so bootstrap one at info and
	// rebuild once the configured level is known.
	tempLogger, err := config.InitLogger("info")
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	cfg := config.Load(tempLogger)

	logger, err := config.InitLogger(cfg.LogLevel)
	if err != nil {
		fmt.Printf("Failed to re-initialize logger with configured level: %v\n", err)
		os.Exit(1)
	}
	defer config.Cleanup()

	var st store.Store
	var pgStore *store.PostgresStore
	switch cfg.StoreBackend {
	case "postgres":
		pgStore, err = store.NewPostgresStore(cfg.DatabaseURL, cfg.HistoryMaxTurns, logger)
		if err != nil {
			logger.Fatal("Failed to connect to database", zap.Error(err))
		}
		if err := pgStore.EnsureSchema(ctx); err != nil {
			logger.Fatal("Failed to ensure database schema", zap.Error(err))
		}
		st = pgStore
	default:
		st = store.NewMemoryStore(cfg.HistoryMaxTurns)
		logger.Info("Using in-memory store; profiles are lost on restart")
	}
	defer st.Close()

	kb, err := knowledge.Load()
	if err != nil {
		logger.Fatal("Failed to load knowledge base", zap.Error(err))
	}

	client := llmclient.New(cfg, logger)
	embedder, err := rag.NewCachedEmbedder(rag.NewClientEmbedder(client, cfg.EmbeddingLLMHost), cfg.EmbedCacheSize, logger)
	if err != nil {
		logger.Fatal("Failed to create embedding cache", zap.Error(err))
	}

	// Prefer pgvector when the profile store is already Postgres; otherwise
	// keep the index in process.
	var index rag.Index
	if pgStore != nil {
		pgIndex, err := rag.NewPgvectorIndex(ctx, pgStore, logger)
		if err != nil {
			logger.Warn("pgvector index unavailable, using in-memory index", zap.Error(err))
		} else {
			index = pgIndex
		}
	}
	if index == nil {
		chromemIndex, err := rag.NewChromemIndex(embedder, logger)
		if err != nil {
			logger.Fatal("Failed to create knowledge index", zap.Error(err))
		}
		index = chromemIndex
	}

	engine := rag.NewEngine(cfg, kb, knowledge.NewProseSentenceSplitter(), embedder, index, client, logger)

	webServer := web.NewServer(st, engine, kb, logger, cfg)

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Warm the index in the background; until it finishes (or if the
	// embedding server is down) chat answers from the fallback pool.
	go func() {
		if err := engine.Warm(ctx); err != nil {
			logger.Warn("RAG warmup failed; chat will use fallback responses", zap.Error(err))
		}
	}()

	addr := fmt.Sprintf(":%d", cfg.Port)
	logger.Info("Starting BodyBae server", zap.String("addr", addr))
	if err := webServer.Start(ctx, addr); err != nil {
		logger.Error("Web server error", zap.Error(err))
		os.Exit(1)
	}
}
