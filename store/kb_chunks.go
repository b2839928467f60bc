package store

import (
	"context"

	"github.com/pgvector/pgvector-go"

	apperrors "bodybae/errors"
)

// KBChunkRecord is a knowledge chunk ready for indexing.
type KBChunkRecord struct {
	ID        string
	Topic     string
	Content   string
	Embedding []float32
}

// KBChunk is a retrieved knowledge chunk with its cosine similarity to the
// query embedding.
type KBChunk struct {
	ID         string
	Topic      string
	Content    string
	Similarity float64
}

// EnsureKBSchema creates the pgvector extension and the knowledge chunk
// table. It fails when the extension cannot be installed; callers treat that
// as "no database-backed retrieval" rather than a fatal error.
func (s *PostgresStore) EnsureKBSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		`CREATE TABLE IF NOT EXISTS kb_chunks (
            id TEXT PRIMARY KEY,
            topic TEXT NOT NULL,
            content TEXT NOT NULL,
            embedding vector NOT NULL
        )`,
	}
	for _, stmt := range stmts {
		if _, err := s.DB.ExecContext(ctx, stmt); err != nil {
			return apperrors.WrapError(err, "execute kb schema statement")
		}
	}
	return nil
}

// ReplaceKBChunks atomically swaps the indexed knowledge base for a new one.
func (s *PostgresStore) ReplaceKBChunks(ctx context.Context, chunks []KBChunkRecord) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return apperrors.WrapError(apperrors.ErrDatabaseOperation, err.Error())
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `TRUNCATE kb_chunks`); err != nil {
		return apperrors.WrapError(apperrors.ErrDatabaseOperation, err.Error())
	}

	insert := `INSERT INTO kb_chunks (id, topic, content, embedding) VALUES ($1, $2, $3, $4)`
	for _, chunk := range chunks {
		if _, err := tx.ExecContext(ctx, insert, chunk.ID, chunk.Topic, chunk.Content,
			pgvector.NewVector(chunk.Embedding)); err != nil {
			return apperrors.WrapErrorf(apperrors.ErrDatabaseOperation, "insert kb chunk %s: %v", chunk.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return apperrors.WrapError(apperrors.ErrDatabaseOperation, err.Error())
	}
	return nil
}

// SearchKBChunks returns the k chunks nearest to the query embedding by
// cosine distance, with similarity = 1 - distance.
func (s *PostgresStore) SearchKBChunks(ctx context.Context, embedding []float32, k int) ([]KBChunk, error) {
	query := `
        SELECT id, topic, content, 1 - (embedding <=> $1) AS similarity
        FROM kb_chunks
        ORDER BY embedding <=> $1
        LIMIT $2
    `
	rows, err := s.DB.QueryContext(ctx, query, pgvector.NewVector(embedding), k)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrDatabaseOperation, err.Error())
	}
	defer rows.Close()

	var chunks []KBChunk
	for rows.Next() {
		var chunk KBChunk
		if err := rows.Scan(&chunk.ID, &chunk.Topic, &chunk.Content, &chunk.Similarity); err != nil {
			return nil, apperrors.WrapError(apperrors.ErrDatabaseOperation, err.Error())
		}
		chunks = append(chunks, chunk)
	}
	return chunks, rows.Err()
}
