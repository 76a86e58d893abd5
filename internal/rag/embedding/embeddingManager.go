package embedding

import "context"

// Embedder turns text into vectors. BatchEmbedding is all or nothing: either
// every chunk gets a vector or the call fails, so a partially embedded
// document never reaches the vector store.
type Embedder interface {
	GetEmbedding(ctx context.Context, query string) ([]float32, error)
	BatchEmbedding(ctx context.Context, chunks []string) ([][]float32, error)
	Dimension() int32
}
