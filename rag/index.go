package rag

import "context"

// IndexedChunk is a knowledge chunk with its precomputed embedding, ready
// for insertion into an index.
type IndexedChunk struct {
	ID        string
	Topic     string
	Text      string
	Embedding []float32
}

// Result is a retrieved knowledge chunk with its cosine similarity to the
// query.
type Result struct {
	Topic      string
	Content    string
	Similarity float64
}

// Index answers nearest-neighbor queries over the indexed knowledge base.
type Index interface {
	Rebuild(ctx context.Context, chunks []IndexedChunk) error
	Search(ctx context.Context, embedding []float32, k int) ([]Result, error)
}
