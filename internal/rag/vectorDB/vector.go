package vectorDB

import (
	"context"
	"time"

	"github.com/Jsrodrigue/sidekickAI/internal/domain/commonModels"
)

// DataProcessor is the vector store behind a folder's knowledge base. Each
// folder owns one collection, retrieval never crosses collections.
type DataProcessor interface {
	EnsureCollection(ctx context.Context, collectionName string) error
	DropCollection(ctx context.Context, collectionName string) error

	UpsertBatch(ctx context.Context, collectionName string, chunks []commonModels.DocChunk, vectors [][]float32) error

	// DeleteStaleChunks removes every chunk of the document written before
	// the given time. Combined with deterministic chunk ids this makes a
	// re-ingest an atomic replace.
	DeleteStaleChunks(ctx context.Context, collectionName string, docId string, before time.Time) error

	// Search returns up to limit hits ordered by descending similarity.
	// A missing collection yields an empty result, not an error.
	Search(ctx context.Context, collectionName string, queryVector []float32, limit int) ([]commonModels.ScoredChunk, error)
}
