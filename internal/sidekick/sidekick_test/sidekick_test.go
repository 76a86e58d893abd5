package sidekick_test

import (
	"context"
	"sync"
	"testing"

	"github.com/Jsrodrigue/sidekickAI/internal/agent"
	"github.com/Jsrodrigue/sidekickAI/internal/agent/llm"
	"github.com/Jsrodrigue/sidekickAI/internal/agent/tools"
	"github.com/Jsrodrigue/sidekickAI/internal/config"
	"github.com/Jsrodrigue/sidekickAI/internal/data/store"
	"github.com/Jsrodrigue/sidekickAI/internal/domain/chatModel"
	"github.com/Jsrodrigue/sidekickAI/internal/domain/commonModels"
	"github.com/Jsrodrigue/sidekickAI/internal/domain/jobModel"
	"github.com/Jsrodrigue/sidekickAI/internal/sidekick"
)

type fixture struct {
	svc           sidekick.Service
	conversations *store.InMemoryConversationStore
	settings      *store.InMemorySettingsStore
	index         *mockIndexService
}

func newFixture(provider llm.Provider, indexSvc *mockIndexService) fixture {
	registry := agent.NewRegistry()
	_ = registry.Register(tools.NewSearchDocumentsTool(indexSvc))

	conversations := store.InitInMemoryConversationStore()
	settings := store.InitInMemorySettingsStore()
	svc := sidekick.NewService(agent.NewLoop(provider, registry), indexSvc, conversations, settings)
	return fixture{svc: svc, conversations: conversations, settings: settings, index: indexSvc}
}

func chatJob(folderId, message string) jobModel.Job {
	return jobModel.Job{
		Id:         "job-1",
		FolderId:   folderId,
		TraceId:    "trace-1",
		JobType:    jobModel.JobTypeChat,
		Status:     jobModel.JobStatusRunning,
		JobPayload: jobModel.JobPayload{Message: message},
	}
}

func testCtx() context.Context {
	return context.WithValue(context.Background(), config.TRACE_ID_KEY, "test-trace")
}

func TestProcessTurn_AnswerAndTranscript(t *testing.T) {
	provider := &scriptedProvider{script: []llm.Response{
		{ToolCalls: []chatModel.ToolCall{{Id: "c1", Name: "search_documents", Args: map[string]any{"query": "readme"}}}},
		{Content: "the readme says hello"},
	}}
	index := &mockIndexService{
		searchFunc: func(ctx context.Context, folderId string, query string, limit int) ([]commonModels.ScoredChunk, error) {
			return []commonModels.ScoredChunk{{Chunk: commonModels.DocChunk{
				Chunk: "hello world",
				Doc:   commonModels.Document{Name: "README.md"},
			}}}, nil
		},
	}
	f := newFixture(provider, index)

	result := f.svc.ProcessTurn(testCtx(), chatJob("docs", "what does the readme say?"))

	if result.Status != jobModel.JobStatusComplete {
		t.Fatalf("expected complete, got %s (%s)", result.Status, result.Error.Message)
	}
	if result.JobPayload.Answer != "the readme says hello" {
		t.Errorf("got answer %q", result.JobPayload.Answer)
	}
	if len(result.JobPayload.ToolTrace) != 1 || !result.JobPayload.ToolTrace[0].Ok {
		t.Errorf("expected one successful trace entry: %+v", result.JobPayload.ToolTrace)
	}

	history, _ := f.conversations.GetHistory(context.Background(), "docs")
	if len(history) != 4 {
		t.Fatalf("expected a 4 message turn in the transcript, got %d", len(history))
	}
	if history[0].Role != chatModel.RoleUser || history[3].Content != "the readme says hello" {
		t.Errorf("transcript order wrong: %+v", history)
	}
}

func TestProcessTurn_HistoryFeedsNextTurn(t *testing.T) {
	provider := &scriptedProvider{script: []llm.Response{
		{Content: "first answer"},
		{Content: "second answer"},
	}}
	f := newFixture(provider, &mockIndexService{})

	_ = f.svc.ProcessTurn(testCtx(), chatJob("docs", "first question"))
	second := f.svc.ProcessTurn(testCtx(), chatJob("docs", "second question"))

	if second.JobPayload.Answer != "second answer" {
		t.Errorf("got %q", second.JobPayload.Answer)
	}
	history, _ := f.conversations.GetHistory(context.Background(), "docs")
	if len(history) != 4 {
		t.Errorf("expected 4 messages across two turns, got %d", len(history))
	}
}

func TestProcessTurn_ModelFailureAppendsErrorMessage(t *testing.T) {
	provider := &scriptedProvider{err: commonModels.ErrModelService}
	f := newFixture(provider, &mockIndexService{})

	result := f.svc.ProcessTurn(testCtx(), chatJob("docs", "hello"))

	if result.Status != jobModel.JobStatusError {
		t.Fatalf("expected error status, got %s", result.Status)
	}
	if result.Error.Code != 502 {
		t.Errorf("model outage should map to 502, got %d", result.Error.Code)
	}
	if !result.Error.Retry {
		t.Error("model outage should be retryable")
	}

	//the turn still lands in the transcript: the user message plus one
	//explicit error message from the assistant
	history, _ := f.conversations.GetHistory(context.Background(), "docs")
	if len(history) != 2 {
		t.Fatalf("expected user message and error message, found %d messages", len(history))
	}
	if history[0].Role != chatModel.RoleUser || history[0].Content != "hello" {
		t.Errorf("first message should be the user's, got %+v", history[0])
	}
	if history[1].Role != chatModel.RoleAssistant || history[1].Content == "" {
		t.Errorf("second message should be the assistant error notice, got %+v", history[1])
	}
}

func TestProcessTurn_SameFolderTurnsSerialize(t *testing.T) {
	inFlight := 0
	maxInFlight := 0
	var mu sync.Mutex

	provider := &scriptedProvider{}
	index := &mockIndexService{}
	registry := agent.NewRegistry()
	_ = registry.Register(agent.Descriptor{
		Name:        "count_turns",
		Description: "records concurrent executions",
		Handler: func(ctx context.Context, inv agent.Invocation) (string, error) {
			mu.Lock()
			inFlight++
			if inFlight > maxInFlight {
				maxInFlight = inFlight
			}
			mu.Unlock()
			defer func() { mu.Lock(); inFlight--; mu.Unlock() }()
			return "ok", nil
		},
	})

	conversations := store.InitInMemoryConversationStore()
	settings := store.InitInMemorySettingsStore()
	svc := sidekick.NewService(agent.NewLoop(provider, registry), index, conversations, settings)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = svc.ProcessTurn(testCtx(), chatJob("docs", "hi"))
		}()
	}
	wg.Wait()

	history, _ := conversations.GetHistory(context.Background(), "docs")
	//8 serialized turns of 2 messages each
	if len(history) != 16 {
		t.Errorf("expected 16 messages, got %d", len(history))
	}
}

func TestDeleteFolder_PurgesEverything(t *testing.T) {
	f := newFixture(&scriptedProvider{script: []llm.Response{{Content: "hi"}}}, &mockIndexService{})
	ctx := testCtx()

	_ = f.svc.ProcessTurn(ctx, chatJob("docs", "hello"))
	custom := commonModels.DefaultFolderSettings("docs")
	custom.RetrievalCount = 9
	_ = f.settings.SaveSettings(ctx, custom)

	if err := f.svc.DeleteFolder(ctx, "docs"); err != nil {
		t.Fatalf("DeleteFolder failed: %v", err)
	}

	if len(f.index.dropped) != 1 || f.index.dropped[0] != "docs" {
		t.Errorf("vector collection not dropped: %+v", f.index.dropped)
	}
	history, _ := f.conversations.GetHistory(ctx, "docs")
	if len(history) != 0 {
		t.Error("transcript survived folder delete")
	}
	reloaded, _ := f.settings.GetSettings(ctx, "docs")
	if reloaded.RetrievalCount != config.DefaultRetrievalCount {
		t.Error("settings survived folder delete")
	}
}
