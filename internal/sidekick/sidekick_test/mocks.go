package sidekick_test

import (
	"context"

	"github.com/Jsrodrigue/sidekickAI/internal/agent/llm"
	"github.com/Jsrodrigue/sidekickAI/internal/domain/commonModels"
)

// scriptedProvider replays canned model responses in order.
type scriptedProvider struct {
	script []llm.Response
	err    error
}

func (p *scriptedProvider) Generate(ctx context.Context, req llm.Request) (llm.Response, error) {
	if p.err != nil {
		return llm.Response{}, p.err
	}
	if len(p.script) == 0 {
		return llm.Response{Content: "fallback answer"}, nil
	}
	next := p.script[0]
	p.script = p.script[1:]
	return next, nil
}

type mockIndexService struct {
	searchFunc func(ctx context.Context, folderId string, query string, limit int) ([]commonModels.ScoredChunk, error)
	dropped    []string
}

func (m *mockIndexService) IndexDocument(ctx context.Context, doc commonModels.Document, text string, settings commonModels.FolderSettings) (int, error) {
	return 1, nil
}

func (m *mockIndexService) Search(ctx context.Context, folderId string, query string, limit int) ([]commonModels.ScoredChunk, error) {
	if m.searchFunc == nil {
		return nil, nil
	}
	return m.searchFunc(ctx, folderId, query, limit)
}

func (m *mockIndexService) DropFolder(ctx context.Context, folderId string) error {
	m.dropped = append(m.dropped, folderId)
	return nil
}
