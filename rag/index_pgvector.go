package rag

import (
	"context"

	"go.uber.org/zap"

	apperrors "bodybae/errors"
	"bodybae/store"
)

// PgvectorIndex keeps the knowledge base in PostgreSQL with pgvector, so
// replicas of the service share one index. Used when the store backend is
// postgres and the vector extension is available.
type PgvectorIndex struct {
	store  *store.PostgresStore
	logger *zap.Logger
}

func NewPgvectorIndex(ctx context.Context, pg *store.PostgresStore, logger *zap.Logger) (*PgvectorIndex, error) {
	if err := pg.EnsureKBSchema(ctx); err != nil {
		return nil, apperrors.WrapError(err, "ensure kb schema")
	}
	return &PgvectorIndex{store: pg, logger: logger}, nil
}

func (idx *PgvectorIndex) Rebuild(ctx context.Context, chunks []IndexedChunk) error {
	records := make([]store.KBChunkRecord, 0, len(chunks))
	for _, chunk := range chunks {
		records = append(records, store.KBChunkRecord{
			ID:        chunk.ID,
			Topic:     chunk.Topic,
			Content:   chunk.Text,
			Embedding: chunk.Embedding,
		})
	}
	if err := idx.store.ReplaceKBChunks(ctx, records); err != nil {
		return err
	}
	idx.logger.Info("Knowledge index rebuilt in postgres", zap.Int("chunks", len(records)))
	return nil
}

func (idx *PgvectorIndex) Search(ctx context.Context, embedding []float32, k int) ([]Result, error) {
	chunks, err := idx.store.SearchKBChunks(ctx, embedding, k)
	if err != nil {
		return nil, err
	}
	results := make([]Result, 0, len(chunks))
	for _, chunk := range chunks {
		results = append(results, Result{
			Topic:      chunk.Topic,
			Content:    chunk.Content,
			Similarity: chunk.Similarity,
		})
	}
	return results, nil
}
