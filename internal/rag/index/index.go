package index

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/Jsrodrigue/sidekickAI/internal/config"
	"github.com/Jsrodrigue/sidekickAI/internal/domain/commonModels"
	"github.com/Jsrodrigue/sidekickAI/internal/rag/chunker"
	"github.com/Jsrodrigue/sidekickAI/internal/rag/embedding"
	"github.com/Jsrodrigue/sidekickAI/internal/rag/vectorDB"
	"github.com/Jsrodrigue/sidekickAI/pkg/logger_i"
	"github.com/google/uuid"
)

// Service maintains the per-folder knowledge base: chunk, embed, upsert,
// retrieve. Each folder gets its own collection so retrieval never leaks
// across folders.
type Service interface {
	IndexDocument(ctx context.Context, doc commonModels.Document, text string, settings commonModels.FolderSettings) (int, error)
	Search(ctx context.Context, folderId string, query string, limit int) ([]commonModels.ScoredChunk, error)
	DropFolder(ctx context.Context, folderId string) error
}

type service struct {
	embedder embedding.Embedder
	vectorDB vectorDB.DataProcessor
	logger   *logger_i.Logger
}

func NewService(embedder embedding.Embedder, db vectorDB.DataProcessor) Service {
	return &service{
		embedder: embedder,
		vectorDB: db,
		logger:   logger_i.NewLogger("Folder Index"),
	}
}

func CollectionName(folderId string) string {
	return config.FolderCollectionPrefix + folderId
}

// chunkPointId derives a stable id from the document and chunk position so
// re-ingesting a document overwrites its old points instead of duplicating
// them.
func chunkPointId(docId string, seq int) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(docId+":"+strconv.Itoa(seq))).String()
}

// IndexDocument replaces the document's chunks in the folder collection.
// All batches are embedded before anything is written, so an embedding
// failure leaves the previous version of the document fully intact.
func (s *service) IndexDocument(ctx context.Context, doc commonModels.Document, text string, settings commonModels.FolderSettings) (int, error) {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "folder Id", doc.FolderId, "doc", doc.Name)

	if err := settings.Validate(); err != nil {
		return 0, err
	}

	textChunks, err := chunker.Chunk(text, settings.ChunkSize, settings.ChunkOverlap)
	if err != nil {
		return 0, err
	}
	if len(textChunks) == 0 {
		log.Debug("Document is empty, nothing to index")
		return 0, nil
	}

	batchTime := time.Now().UTC()
	doc.LastIngestTimestamp = batchTime

	chunks := make([]commonModels.DocChunk, len(textChunks))
	for i, tc := range textChunks {
		chunks[i] = commonModels.DocChunk{
			Doc:         doc,
			ChunkId:     chunkPointId(doc.Id, tc.Seq),
			Chunk:       tc.Text,
			Seq:         tc.Seq,
			StartOffset: tc.Start,
			EndOffset:   tc.End,
		}
	}

	log.Debug("Embedding document", "chunks", len(chunks))
	vectors, err := s.embedAll(ctx, chunks)
	if err != nil {
		return 0, err
	}

	collection := CollectionName(doc.FolderId)
	if err := s.vectorDB.EnsureCollection(ctx, collection); err != nil {
		return 0, fmt.Errorf("ensuring collection: %w", err)
	}

	for i := 0; i < len(chunks); i += config.EmbeddingBatchSize {
		end := i + config.EmbeddingBatchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		if err := s.vectorDB.UpsertBatch(ctx, collection, chunks[i:end], vectors[i:end]); err != nil {
			return 0, fmt.Errorf("upserting batch: %w", err)
		}
	}

	//a shrunk document leaves trailing points behind, sweep them out
	if err := s.vectorDB.DeleteStaleChunks(ctx, collection, doc.Id, batchTime); err != nil {
		return 0, fmt.Errorf("removing stale chunks: %w", err)
	}

	log.Info("Indexed document", "chunks", len(chunks))
	return len(chunks), nil
}

// embedAll runs every embedding batch up front. Nothing touches the vector
// store until the whole document embedded cleanly.
func (s *service) embedAll(ctx context.Context, chunks []commonModels.DocChunk) ([][]float32, error) {
	vectors := make([][]float32, 0, len(chunks))
	for i := 0; i < len(chunks); i += config.EmbeddingBatchSize {
		end := i + config.EmbeddingBatchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		texts := make([]string, 0, end-i)
		for _, c := range chunks[i:end] {
			texts = append(texts, c.Chunk)
		}
		batchVectors, err := s.embedder.BatchEmbedding(ctx, texts)
		if err != nil {
			return nil, fmt.Errorf("embedding batch starting at %d: %w", i, err)
		}
		vectors = append(vectors, batchVectors...)
	}
	return vectors, nil
}

func (s *service) Search(ctx context.Context, folderId string, query string, limit int) ([]commonModels.ScoredChunk, error) {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "folder Id", folderId)

	queryVector, err := s.embedder.GetEmbedding(ctx, query)
	if err != nil {
		return nil, err
	}

	hits, err := s.vectorDB.Search(ctx, CollectionName(folderId), queryVector, limit)
	if err != nil {
		return nil, err
	}
	log.Debug("Search complete", "hits", len(hits))
	return hits, nil
}

func (s *service) DropFolder(ctx context.Context, folderId string) error {
	return s.vectorDB.DropCollection(ctx, CollectionName(folderId))
}
