package rag

import (
	"context"
	"strings"

	lru "github.com/hashicorp/golang-lru"
	"go.uber.org/zap"

	apperrors "bodybae/errors"
	"bodybae/llmclient"
)

// Embedder produces vector embeddings for text.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// ClientEmbedder calls the embedding server through the shared LLM client.
type ClientEmbedder struct {
	client *llmclient.Client
	host   string
}

func NewClientEmbedder(client *llmclient.Client, host string) *ClientEmbedder {
	return &ClientEmbedder{client: client, host: host}
}

func (e *ClientEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return e.client.Embed(ctx, e.host, text)
}

// CachedEmbedder memoizes embeddings in an LRU cache so repeated questions
// skip the embedding round trip. Only successful lookups are cached.
type CachedEmbedder struct {
	inner  Embedder
	cache  *lru.Cache
	logger *zap.Logger
}

func NewCachedEmbedder(inner Embedder, size int, logger *zap.Logger) (*CachedEmbedder, error) {
	if size <= 0 {
		size = 256
	}
	cache, err := lru.New(size)
	if err != nil {
		return nil, apperrors.WrapError(err, "create embedding cache")
	}
	return &CachedEmbedder{inner: inner, cache: cache, logger: logger}, nil
}

func (e *CachedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	key := strings.TrimSpace(text)
	if cached, ok := e.cache.Get(key); ok {
		if embedding, ok := cached.([]float32); ok {
			return embedding, nil
		}
	}

	embedding, err := e.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	e.cache.Add(key, embedding)
	return embedding, nil
}
