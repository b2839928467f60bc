// Package rag answers coaching questions by retrieving knowledge base
// chunks and prompting a chat model with them. Every failure inside the
// pipeline degrades to a canned fallback reply; callers never see an error.
package rag

import (
	"context"
	"fmt"
	"sync/atomic"
	"unicode/utf8"

	"go.uber.org/zap"

	"bodybae/config"
	apperrors "bodybae/errors"
	"bodybae/knowledge"
	"bodybae/store"
	"bodybae/web/format"
	"bodybae/web/types"
)

// minReplyRunes guards against degenerate generations; anything shorter is
// replaced by a fallback reply.
const minReplyRunes = 10

// Generator produces a chat completion. *llmclient.Client satisfies it.
type Generator interface {
	Chat(ctx context.Context, host string, messages []types.ChatMessage, temperature *float64) (string, error)
}

// Engine wires retrieval and generation behind one Respond call.
type Engine struct {
	cfg        *config.Config
	kb         *knowledge.Base
	splitter   knowledge.SentenceSplitter
	embedder   Embedder
	index      Index
	generator  Generator
	logger     *zap.Logger
	ready      atomic.Bool
	chunkCount atomic.Int64
}

func NewEngine(cfg *config.Config, kb *knowledge.Base, splitter knowledge.SentenceSplitter, embedder Embedder, index Index, generator Generator, logger *zap.Logger) *Engine {
	return &Engine{
		cfg:       cfg,
		kb:        kb,
		splitter:  splitter,
		embedder:  embedder,
		index:     index,
		generator: generator,
		logger:    logger,
	}
}

// Warm embeds the knowledge base and builds the index. Until it succeeds
// the engine serves fallback responses only, so a failed warm-up degrades
// the service instead of taking it down.
func (e *Engine) Warm(ctx context.Context) error {
	chunks := e.kb.Chunks(e.splitter, e.cfg.ChunkSizeRunes)
	indexed := make([]IndexedChunk, 0, len(chunks))
	for _, chunk := range chunks {
		embedding, err := e.embedder.Embed(ctx, chunk.Text)
		if err != nil {
			return apperrors.WrapErrorf(err, "embed knowledge chunk %s", chunk.ID)
		}
		indexed = append(indexed, IndexedChunk{
			ID:        chunk.ID,
			Topic:     chunk.Topic,
			Text:      chunk.Text,
			Embedding: embedding,
		})
	}

	if err := e.index.Rebuild(ctx, indexed); err != nil {
		return err
	}

	e.chunkCount.Store(int64(len(indexed)))
	e.ready.Store(true)
	e.logger.Info("RAG engine warmed", zap.Int("chunks", len(indexed)))
	return nil
}

// Ready reports whether retrieval-augmented generation is available.
func (e *Engine) Ready() bool {
	return e.ready.Load()
}

// ChunkCount reports how many knowledge chunks the last warm-up indexed.
func (e *Engine) ChunkCount() int {
	return int(e.chunkCount.Load())
}

// Respond produces the coach's reply to a message. The profile may be nil
// for anonymous users; history should already be limited to stored turns.
func (e *Engine) Respond(ctx context.Context, profile *store.Profile, history []store.Turn, message string) string {
	var name, goal string
	if profile != nil {
		name = profile.Name
		goal = profile.Goal
	}

	if !e.ready.Load() {
		return FallbackResponse(message, name, goal)
	}

	embedding, err := e.embedder.Embed(ctx, message)
	if err != nil {
		e.logger.Warn("Query embedding failed, using fallback", zap.Error(err))
		return FallbackResponse(message, name, goal)
	}

	results, err := e.index.Search(ctx, embedding, e.cfg.RAGTopK)
	if err != nil {
		e.logger.Warn("Knowledge search failed, using fallback", zap.Error(err))
		return FallbackResponse(message, name, goal)
	}

	relevant := make([]Result, 0, len(results))
	for _, result := range results {
		if result.Similarity >= e.cfg.RAGMinSimilarity {
			relevant = append(relevant, result)
		}
	}
	if len(relevant) == 0 {
		e.logger.Debug("No knowledge above similarity threshold, using fallback",
			zap.Float64("threshold", e.cfg.RAGMinSimilarity))
		return FallbackResponse(message, name, goal)
	}

	topics := make([]string, 0, len(relevant))
	for _, result := range relevant {
		topics = append(topics, result.Topic)
	}
	e.logger.Debug("Knowledge matched", zap.Strings("topics", topics))

	if window := e.cfg.HistoryWindow; window > 0 && len(history) > window {
		history = history[len(history)-window:]
	}

	messages := BuildMessages(profile, history, relevant, message)
	temperature := e.cfg.LLMTemperature
	reply, err := e.generator.Chat(ctx, e.cfg.ChatLLMHost, messages, &temperature)
	if err != nil {
		e.logger.Warn("Generation failed, using fallback", zap.Error(err))
		return FallbackResponse(message, name, goal)
	}

	reply = format.StripPromptEcho(reply, "")
	if utf8.RuneCountInString(reply) < minReplyRunes {
		e.logger.Warn("Generated reply too short, using fallback",
			zap.Int("runes", utf8.RuneCountInString(reply)))
		return FallbackResponse(message, name, goal)
	}

	if name != "" {
		reply = fmt.Sprintf("%s\n\nRemember %s, consistency is key to reaching your goals!", reply, name)
	}
	return reply
}
