package tools

import (
	"context"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/Jsrodrigue/sidekickAI/internal/agent"
	"github.com/Jsrodrigue/sidekickAI/internal/domain/commonModels"
)

type mockIndexService struct {
	searchFunc func(ctx context.Context, folderId string, query string, limit int) ([]commonModels.ScoredChunk, error)
}

func (m *mockIndexService) IndexDocument(ctx context.Context, doc commonModels.Document, text string, settings commonModels.FolderSettings) (int, error) {
	return 0, nil
}

func (m *mockIndexService) Search(ctx context.Context, folderId string, query string, limit int) ([]commonModels.ScoredChunk, error) {
	return m.searchFunc(ctx, folderId, query, limit)
}

func (m *mockIndexService) DropFolder(ctx context.Context, folderId string) error { return nil }

func hit(docName, content string) commonModels.ScoredChunk {
	return commonModels.ScoredChunk{
		Chunk: commonModels.DocChunk{
			Chunk: content,
			Doc:   commonModels.Document{Name: docName},
		},
	}
}

func invocation(query string) agent.Invocation {
	return agent.Invocation{
		FolderId: "docs",
		Args:     map[string]any{"query": query},
		Settings: commonModels.DefaultFolderSettings("docs"),
	}
}

func TestSearchDocuments_Formatting(t *testing.T) {
	indexSvc := &mockIndexService{
		searchFunc: func(ctx context.Context, folderId string, query string, limit int) ([]commonModels.ScoredChunk, error) {
			return []commonModels.ScoredChunk{
				hit("README.md", "first passage"),
				hit("guide.txt", "second passage"),
			}, nil
		},
	}
	tool := NewSearchDocumentsTool(indexSvc)

	out, err := tool.Handler(context.Background(), invocation("passages"))
	if err != nil {
		t.Fatalf("handler failed: %v", err)
	}

	want := "Doc 1 (README.md):\nfirst passage\n---\nDoc 2 (guide.txt):\nsecond passage"
	if out != want {
		t.Errorf("got:\n%s\nwant:\n%s", out, want)
	}
}

func TestSearchDocuments_EmptyIndex(t *testing.T) {
	indexSvc := &mockIndexService{
		searchFunc: func(ctx context.Context, folderId string, query string, limit int) ([]commonModels.ScoredChunk, error) {
			return []commonModels.ScoredChunk{}, nil
		},
	}
	tool := NewSearchDocumentsTool(indexSvc)

	out, err := tool.Handler(context.Background(), invocation("anything"))
	if err != nil {
		t.Fatalf("handler failed: %v", err)
	}
	if out != "" {
		t.Errorf("empty index should yield an empty result, got %q", out)
	}
}

func TestSearchDocuments_TruncatesLongSnippets(t *testing.T) {
	long := strings.Repeat("x", snippetLimit+100)
	indexSvc := &mockIndexService{
		searchFunc: func(ctx context.Context, folderId string, query string, limit int) ([]commonModels.ScoredChunk, error) {
			return []commonModels.ScoredChunk{hit("big.txt", long)}, nil
		},
	}
	tool := NewSearchDocumentsTool(indexSvc)

	out, _ := tool.Handler(context.Background(), invocation("big"))
	if !strings.HasSuffix(out, "...") {
		t.Error("long snippet should be truncated with an ellipsis")
	}
	if len(out) > snippetLimit+len("Doc 1 (big.txt):\n")+3 {
		t.Errorf("snippet not truncated, length %d", len(out))
	}
}

func TestSearchDocuments_TruncationKeepsRunesIntact(t *testing.T) {
	//multi-byte content longer than the limit, a byte cut would leave the
	//result invalid UTF-8
	long := strings.Repeat("\u00fc", snippetLimit+50)
	indexSvc := &mockIndexService{
		searchFunc: func(ctx context.Context, folderId string, query string, limit int) ([]commonModels.ScoredChunk, error) {
			return []commonModels.ScoredChunk{hit("notes.txt", long)}, nil
		},
	}
	tool := NewSearchDocumentsTool(indexSvc)

	out, _ := tool.Handler(context.Background(), invocation("umlauts"))
	if !utf8.ValidString(out) {
		t.Error("truncated snippet is not valid UTF-8")
	}
	if got := strings.Count(out, "\u00fc"); got != snippetLimit {
		t.Errorf("expected %d runes in the snippet, got %d", snippetLimit, got)
	}
}

func TestSearchDocuments_MissingQuery(t *testing.T) {
	tool := NewSearchDocumentsTool(&mockIndexService{})
	inv := invocation("")
	if _, err := tool.Handler(context.Background(), inv); err == nil {
		t.Error("expected error for empty query")
	}
}

func TestSearchDocuments_UsesRetrievalCount(t *testing.T) {
	gotLimit := 0
	indexSvc := &mockIndexService{
		searchFunc: func(ctx context.Context, folderId string, query string, limit int) ([]commonModels.ScoredChunk, error) {
			gotLimit = limit
			return nil, nil
		},
	}
	tool := NewSearchDocumentsTool(indexSvc)

	inv := invocation("q")
	inv.Settings.RetrievalCount = 7
	if _, err := tool.Handler(context.Background(), inv); err != nil {
		t.Fatalf("handler failed: %v", err)
	}
	if gotLimit != 7 {
		t.Errorf("expected retrieval count 7 to reach the index, got %d", gotLimit)
	}
}
