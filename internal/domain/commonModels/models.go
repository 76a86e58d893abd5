package commonModels

import (
	"errors"
	"fmt"
	"time"
)

// Error taxonomy shared across the rag and agent layers. Callers wrap these
// with %w so handlers can map them to HTTP status codes.
var (
	ErrInvalidConfiguration = errors.New("invalid folder configuration")
	ErrEmbeddingService     = errors.New("embedding service error")
	ErrUnsupportedFormat    = errors.New("unsupported document format")
	ErrUnknownTool          = errors.New("unknown tool")
	ErrToolDisabled         = errors.New("tool disabled")
	ErrToolExecution        = errors.New("tool execution error")
	ErrToolLoopBound        = errors.New("tool loop bound exceeded")
	ErrModelService         = errors.New("model service error")
)

type DocType string

var (
	PDF        DocType = "PDF"
	DOCX       DocType = "DOCX"
	Markdown   DocType = "MARKDOWN"
	Text       DocType = "TEXT"
	SourceCode DocType = "SOURCE"
	ERR        DocType = "ERROR"
)

type Document struct {
	FolderId            string    `json:"folder_id"`
	Id                  string    `json:"source_doc_id"`
	Name                string    `json:"doc_name"`
	SourcePath          string    `json:"source_path,omitempty"`
	ContentType         DocType   `json:"contentType"`
	LastIngestTimestamp time.Time `json:"ingested_at"`
}

type DocChunk struct {
	Doc         Document
	ChunkId     string `json:"chunk_id"`
	Chunk       string `json:"content"`
	Seq         int    `json:"chunk_order"`
	StartOffset int    `json:"start_offset"`
	EndOffset   int    `json:"end_offset"`
}

// ScoredChunk is a retrieval hit. Higher score means more similar.
type ScoredChunk struct {
	Chunk DocChunk
	Score float32
}

// FolderSettings holds the per-folder knobs. A zero value is not usable,
// start from DefaultFolderSettings and override.
type FolderSettings struct {
	FolderId       string   `json:"folder_id"`
	RootPath       string   `json:"root_path,omitempty"`
	ChunkSize      int      `json:"chunk_size"`
	ChunkOverlap   int      `json:"chunk_overlap"`
	RetrievalCount int      `json:"retrieval_count"`
	ToolCallBound  int      `json:"tool_call_bound"`
	EnabledTools   []string `json:"enabled_tools"`
}

func (s FolderSettings) Validate() error {
	if s.ChunkSize <= 0 {
		return fmt.Errorf("%w: chunk_size must be positive, got %d", ErrInvalidConfiguration, s.ChunkSize)
	}
	if s.ChunkOverlap < 0 || s.ChunkOverlap >= s.ChunkSize {
		return fmt.Errorf("%w: chunk_overlap must be in [0, chunk_size), got %d", ErrInvalidConfiguration, s.ChunkOverlap)
	}
	if s.RetrievalCount <= 0 {
		return fmt.Errorf("%w: retrieval_count must be positive, got %d", ErrInvalidConfiguration, s.RetrievalCount)
	}
	if s.ToolCallBound <= 0 {
		return fmt.Errorf("%w: tool_call_bound must be positive, got %d", ErrInvalidConfiguration, s.ToolCallBound)
	}
	return nil
}

func (s FolderSettings) ToolEnabled(name string) bool {
	for _, t := range s.EnabledTools {
		if t == name {
			return true
		}
	}
	return false
}
