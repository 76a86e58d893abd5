package qdrantDB

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/Jsrodrigue/sidekickAI/internal/config"
	"github.com/Jsrodrigue/sidekickAI/internal/domain/commonModels"
	"github.com/Jsrodrigue/sidekickAI/pkg/logger_i"
	"github.com/qdrant/go-client/qdrant"
)

var logger *logger_i.Logger
var quadrantInstance *qdrant.Client
var once sync.Once
var dimension = uint64(config.EmbeddingOutputDimensionality)

type ClientHolder struct {
	QObj *qdrant.Client
}

func GetQuadrantClient(ctx context.Context) *ClientHolder {

	once.Do(func() {
		logger = logger_i.NewLogger("Qdrant")
		res := newClient()
		if res != nil {
			quadrantInstance = res
			go closeQdrant(ctx, quadrantInstance)
		}
	})

	if quadrantInstance == nil {
		return nil
	}
	return &ClientHolder{
		QObj: quadrantInstance,
	}
}

func newClient() *qdrant.Client {

	host := os.Getenv("QDRANT_HOST")
	port, er := strconv.Atoi(os.Getenv("QDRANT_PORT"))

	if host == "" || er != nil {
		host = config.QdrantHost
		port = config.QdrantGrpcPort
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:     host,
		Port:     port,
		UseTLS:   config.QdrantUseTLS,
		PoolSize: uint(config.QdrantPoolSize),
	})
	if err != nil {
		logger.Error("could not instantiate: ", "error:", err)
		return nil
	}

	//collections are created per folder on first ingest, a ping is enough here
	if _, err := client.HealthCheck(context.Background()); err != nil {
		logger.Error("Qdrant is offline: ", "error:", err)
		return nil
	}

	return client
}

func closeQdrant(ctx context.Context, qi *qdrant.Client) {
	<-ctx.Done()
	logger.Info("Shutting down Qdrant")
	err := qi.Close()
	if err != nil {
		logger.Error("could not close Qdrant: ", "error:", err)
	}
	logger.Info("Closed Qdrant")
}

func (db *ClientHolder) EnsureCollection(ctx context.Context, collectionName string) error {
	if collectionName == "" {
		return errors.New("empty collection name")
	}

	exists, err := db.QObj.CollectionExists(ctx, collectionName)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	return db.QObj.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: collectionName,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     dimension,
			Distance: qdrant.Distance_Cosine,
		}),
	})
}

func (db *ClientHolder) DropCollection(ctx context.Context, collectionName string) error {
	exists, err := db.QObj.CollectionExists(ctx, collectionName)
	if err != nil || !exists {
		return err
	}
	return db.QObj.DeleteCollection(ctx, collectionName)
}

func (db *ClientHolder) Search(ctx context.Context, collectionName string, queryVector []float32, limit int) ([]commonModels.ScoredChunk, error) {
	loggr := logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "collection", collectionName)

	exists, err := db.QObj.CollectionExists(ctx, collectionName)
	if err != nil {
		return nil, err
	}
	if !exists {
		loggr.Debug("Collection does not exist, returning no hits")
		return []commonModels.ScoredChunk{}, nil
	}

	result, err := db.QObj.Query(ctx, &qdrant.QueryPoints{
		CollectionName: collectionName,
		Query:          qdrant.NewQuery(queryVector...),
		Limit:          qdrant.PtrOf(uint64(limit)),
		WithPayload:    qdrant.NewWithPayload(true),
	})

	if err != nil {
		loggr.Error("Error querying Qdrant: ", "error:", err)
		return nil, err
	}

	hits := make([]commonModels.ScoredChunk, 0, len(result))
	for _, hit := range result {
		payload := hit.Payload
		hits = append(hits, commonModels.ScoredChunk{
			Score: hit.Score,
			Chunk: commonModels.DocChunk{
				ChunkId:     payload["chunk_id"].GetStringValue(),
				Chunk:       payload["content"].GetStringValue(),
				Seq:         int(payload["chunk_order"].GetIntegerValue()),
				StartOffset: int(payload["start_offset"].GetIntegerValue()),
				EndOffset:   int(payload["end_offset"].GetIntegerValue()),
				Doc: commonModels.Document{
					Id:                  payload["source_doc_id"].GetStringValue(),
					Name:                payload["doc_name"].GetStringValue(),
					SourcePath:          payload["source_path"].GetStringValue(),
					ContentType:         commonModels.DocType(payload["content_type"].GetStringValue()),
					LastIngestTimestamp: time.Unix(0, payload["ingested_at"].GetIntegerValue()).UTC(),
				},
			},
		})
	}

	loggr.Debug("Query returned hits", "count", len(hits))
	return hits, nil
}

func (db *ClientHolder) UpsertBatch(ctx context.Context, collectionName string, chunks []commonModels.DocChunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("mismatch: got %d chunks but %d vectors", len(chunks), len(vectors))
	}

	qdrantPoints := make([]*qdrant.PointStruct, len(chunks))

	for i, chunk := range chunks {
		qdrantPoints[i] = &qdrant.PointStruct{
			Id:      qdrant.NewID(chunk.ChunkId),
			Vectors: qdrant.NewVectors(vectors[i]...),

			Payload: qdrant.NewValueMap(map[string]any{
				"content":       chunk.Chunk,
				"source_doc_id": chunk.Doc.Id,
				"doc_name":      chunk.Doc.Name,
				"source_path":   chunk.Doc.SourcePath,
				"content_type":  string(chunk.Doc.ContentType),
				"chunk_order":   chunk.Seq,
				"chunk_id":      chunk.ChunkId,
				"start_offset":  chunk.StartOffset,
				"end_offset":    chunk.EndOffset,
				"ingested_at":   chunk.Doc.LastIngestTimestamp.UnixNano(),
			}),
		}
	}

	_, err := db.QObj.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: collectionName,
		Points:         qdrantPoints,
		Wait:           qdrant.PtrOf(true),
	})

	if err != nil {
		return fmt.Errorf("qdrant upsert failed: %w", err)
	}

	return nil
}

func (db *ClientHolder) DeleteStaleChunks(ctx context.Context, collectionName string, docId string, before time.Time) error {
	_, err := db.QObj.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: collectionName,
		Points: qdrant.NewPointsSelectorFilter(&qdrant.Filter{
			Must: []*qdrant.Condition{
				qdrant.NewMatch("source_doc_id", docId),
				qdrant.NewRange("ingested_at", &qdrant.Range{
					Lt: qdrant.PtrOf(float64(before.UnixNano())),
				}),
			},
		}),
		Wait: qdrant.PtrOf(true),
	})
	if err != nil {
		return fmt.Errorf("qdrant stale chunk delete failed: %w", err)
	}
	return nil
}
