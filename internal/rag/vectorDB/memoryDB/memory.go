package memoryDB

import (
	"context"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/Jsrodrigue/sidekickAI/internal/domain/commonModels"
)

type storedPoint struct {
	chunk  commonModels.DocChunk
	vector []float32
	order  int
}

// Store is an in-process vector store used when Qdrant is unreachable.
// Collections map to folders the same way the Qdrant backend does it.
type Store struct {
	mu          sync.RWMutex
	collections map[string]map[string]storedPoint
	nextOrder   int
}

func NewStore() *Store {
	return &Store{
		collections: make(map[string]map[string]storedPoint),
	}
}

func (s *Store) EnsureCollection(ctx context.Context, collectionName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.collections[collectionName]; !ok {
		s.collections[collectionName] = make(map[string]storedPoint)
	}
	return nil
}

func (s *Store) DropCollection(ctx context.Context, collectionName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.collections, collectionName)
	return nil
}

func (s *Store) UpsertBatch(ctx context.Context, collectionName string, chunks []commonModels.DocChunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return commonModels.ErrInvalidConfiguration
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	collection, ok := s.collections[collectionName]
	if !ok {
		collection = make(map[string]storedPoint)
		s.collections[collectionName] = collection
	}
	for i, chunk := range chunks {
		vec := make([]float32, len(vectors[i]))
		copy(vec, vectors[i])
		order := s.nextOrder
		if existing, ok := collection[chunk.ChunkId]; ok {
			order = existing.order //an upsert keeps the original insertion slot
		} else {
			s.nextOrder++
		}
		collection[chunk.ChunkId] = storedPoint{chunk: chunk, vector: vec, order: order}
	}
	return nil
}

func (s *Store) DeleteStaleChunks(ctx context.Context, collectionName string, docId string, before time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	collection, ok := s.collections[collectionName]
	if !ok {
		return nil
	}
	for id, point := range collection {
		if point.chunk.Doc.Id == docId && point.chunk.Doc.LastIngestTimestamp.Before(before) {
			delete(collection, id)
		}
	}
	return nil
}

func (s *Store) Search(ctx context.Context, collectionName string, queryVector []float32, limit int) ([]commonModels.ScoredChunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	collection, ok := s.collections[collectionName]
	if !ok || limit <= 0 {
		return []commonModels.ScoredChunk{}, nil
	}

	type scored struct {
		hit   commonModels.ScoredChunk
		order int
	}
	results := make([]scored, 0, len(collection))
	for _, point := range collection {
		results = append(results, scored{
			hit:   commonModels.ScoredChunk{Chunk: point.chunk, Score: cosineSimilarity(queryVector, point.vector)},
			order: point.order,
		})
	}

	//stable sort on insertion order first so equal scores resolve deterministically
	sort.Slice(results, func(i, j int) bool { return results[i].order < results[j].order })
	sort.SliceStable(results, func(i, j int) bool { return results[i].hit.Score > results[j].hit.Score })

	if limit > len(results) {
		limit = len(results)
	}
	hits := make([]commonModels.ScoredChunk, 0, limit)
	for _, r := range results[:limit] {
		hits = append(hits, r.hit)
	}
	return hits, nil
}

func cosineSimilarity(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}
