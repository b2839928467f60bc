package rag

import (
	"context"

	"github.com/philippgille/chromem-go"
	"go.uber.org/zap"

	apperrors "bodybae/errors"
)

const knowledgeCollection = "fitness-knowledge"

// ChromemIndex keeps the knowledge base in an in-process chromem collection.
// It is the default index and needs no external services beyond the
// embedding server.
type ChromemIndex struct {
	db         *chromem.DB
	collection *chromem.Collection
	embedder   Embedder
	logger     *zap.Logger
}

func NewChromemIndex(embedder Embedder, logger *zap.Logger) (*ChromemIndex, error) {
	db := chromem.NewDB()
	idx := &ChromemIndex{db: db, embedder: embedder, logger: logger}
	collection, err := db.GetOrCreateCollection(knowledgeCollection, nil, idx.embeddingFunc())
	if err != nil {
		return nil, apperrors.WrapError(err, "create knowledge collection")
	}
	idx.collection = collection
	return idx, nil
}

func (idx *ChromemIndex) embeddingFunc() chromem.EmbeddingFunc {
	return func(ctx context.Context, text string) ([]float32, error) {
		return idx.embedder.Embed(ctx, text)
	}
}

// Rebuild replaces the collection contents with the given chunks. Chunks
// arrive with embeddings already computed, so no embedding calls happen here.
func (idx *ChromemIndex) Rebuild(ctx context.Context, chunks []IndexedChunk) error {
	if err := idx.db.DeleteCollection(knowledgeCollection); err != nil {
		return apperrors.WrapError(err, "reset knowledge collection")
	}
	collection, err := idx.db.GetOrCreateCollection(knowledgeCollection, nil, idx.embeddingFunc())
	if err != nil {
		return apperrors.WrapError(err, "recreate knowledge collection")
	}

	docs := make([]chromem.Document, 0, len(chunks))
	for _, chunk := range chunks {
		docs = append(docs, chromem.Document{
			ID:        chunk.ID,
			Content:   chunk.Text,
			Metadata:  map[string]string{"topic": chunk.Topic},
			Embedding: chunk.Embedding,
		})
	}
	if len(docs) == 0 {
		idx.collection = collection
		return nil
	}
	if err := collection.AddDocuments(ctx, docs, 4); err != nil {
		return apperrors.WrapError(err, "add knowledge documents")
	}

	idx.collection = collection
	idx.logger.Info("Knowledge index rebuilt", zap.Int("chunks", len(docs)))
	return nil
}

func (idx *ChromemIndex) Search(ctx context.Context, embedding []float32, k int) ([]Result, error) {
	count := idx.collection.Count()
	if count == 0 {
		return nil, nil
	}
	if k > count {
		k = count
	}

	queryResults, err := idx.collection.QueryEmbedding(ctx, embedding, k, nil, nil)
	if err != nil {
		return nil, apperrors.WrapError(err, "query knowledge collection")
	}

	results := make([]Result, 0, len(queryResults))
	for _, qr := range queryResults {
		results = append(results, Result{
			Topic:      qr.Metadata["topic"],
			Content:    qr.Content,
			Similarity: float64(qr.Similarity),
		})
	}
	return results, nil
}
