package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/Jsrodrigue/sidekickAI/internal/agent/llm"
	"github.com/Jsrodrigue/sidekickAI/internal/domain/chatModel"
	"github.com/Jsrodrigue/sidekickAI/internal/domain/commonModels"
)

// scriptedProvider replays a fixed sequence of model responses.
type scriptedProvider struct {
	script   []llm.Response
	requests []llm.Request
	err      error
}

func (p *scriptedProvider) Generate(ctx context.Context, req llm.Request) (llm.Response, error) {
	p.requests = append(p.requests, req)
	if p.err != nil {
		return llm.Response{}, p.err
	}
	if len(p.script) == 0 {
		return llm.Response{Content: "done"}, nil
	}
	next := p.script[0]
	p.script = p.script[1:]
	return next, nil
}

func searchCall(id string) chatModel.ToolCall {
	return chatModel.ToolCall{Id: id, Name: "search", Args: map[string]any{"query": "q"}}
}

func newTestLoop(p llm.Provider, handler Handler) *Loop {
	r := NewRegistry()
	if handler == nil {
		handler = func(ctx context.Context, inv Invocation) (string, error) { return "search result", nil }
	}
	_ = r.Register(Descriptor{Name: "search", Description: "search the folder", Handler: handler})
	return NewLoop(p, r)
}

func turnRequest() TurnRequest {
	return TurnRequest{
		FolderId:    "docs",
		UserMessage: "what is in the readme?",
		Settings:    settingsWith("search"),
	}
}

func TestRunTurn_DirectAnswer(t *testing.T) {
	provider := &scriptedProvider{script: []llm.Response{{Content: "just an answer"}}}
	loop := newTestLoop(provider, nil)

	result, err := loop.RunTurn(context.Background(), turnRequest())
	if err != nil {
		t.Fatalf("RunTurn failed: %v", err)
	}
	if result.Answer != "just an answer" {
		t.Errorf("got answer %q", result.Answer)
	}
	if result.FinalState != StateTerminated {
		t.Errorf("turn should end terminated, got %s", result.FinalState)
	}
	if result.DispatchedCalls != 0 {
		t.Errorf("no tools should run, got %d", result.DispatchedCalls)
	}
	//user message + assistant answer
	if len(result.Appended) != 2 {
		t.Errorf("expected 2 appended messages, got %d", len(result.Appended))
	}
}

func TestRunTurn_ToolRoundTrip(t *testing.T) {
	provider := &scriptedProvider{script: []llm.Response{
		{ToolCalls: []chatModel.ToolCall{searchCall("c1")}},
		{Content: "answer from tool output"},
	}}
	loop := newTestLoop(provider, nil)

	result, err := loop.RunTurn(context.Background(), turnRequest())
	if err != nil {
		t.Fatalf("RunTurn failed: %v", err)
	}
	if result.Answer != "answer from tool output" {
		t.Errorf("got answer %q", result.Answer)
	}
	if result.DispatchedCalls != 1 {
		t.Errorf("expected 1 dispatched call, got %d", result.DispatchedCalls)
	}

	//user, assistant(tool call), tool result, assistant(answer)
	roles := []chatModel.Role{chatModel.RoleUser, chatModel.RoleAssistant, chatModel.RoleTool, chatModel.RoleAssistant}
	if len(result.Appended) != len(roles) {
		t.Fatalf("expected %d messages, got %d", len(roles), len(result.Appended))
	}
	for i, want := range roles {
		if result.Appended[i].Role != want {
			t.Errorf("message %d: got role %s, want %s", i, result.Appended[i].Role, want)
		}
	}
	if result.Appended[2].ToolCallId != "c1" {
		t.Errorf("tool result not linked to call: %q", result.Appended[2].ToolCallId)
	}

	//second model request must include the tool result
	second := provider.requests[1]
	last := second.Messages[len(second.Messages)-1]
	if last.Role != chatModel.RoleTool || last.Content != "search result" {
		t.Errorf("tool output not fed back to the model: %+v", last)
	}
}

func TestRunTurn_ToolErrorContinues(t *testing.T) {
	provider := &scriptedProvider{script: []llm.Response{
		{ToolCalls: []chatModel.ToolCall{searchCall("c1")}},
		{Content: "recovered"},
	}}
	loop := newTestLoop(provider, func(ctx context.Context, inv Invocation) (string, error) {
		return "", errors.New("backend down")
	})

	result, err := loop.RunTurn(context.Background(), turnRequest())
	if err != nil {
		t.Fatalf("a failing tool must not fail the turn: %v", err)
	}
	if result.Answer != "recovered" {
		t.Errorf("got answer %q", result.Answer)
	}
	if len(result.ToolTrace) != 1 || result.ToolTrace[0].Ok {
		t.Errorf("tool trace should record the failure: %+v", result.ToolTrace)
	}

	toolMsg := result.Appended[2]
	if !strings.HasPrefix(toolMsg.Content, "error:") {
		t.Errorf("tool message should carry the recorded error, got %q", toolMsg.Content)
	}
}

func TestRunTurn_BoundStopsExactlyAtLimit(t *testing.T) {
	//each model step asks for two calls, the turn allows five total
	manyCalls := func(ids ...string) llm.Response {
		var calls []chatModel.ToolCall
		for _, id := range ids {
			calls = append(calls, searchCall(id))
		}
		return llm.Response{ToolCalls: calls}
	}
	provider := &scriptedProvider{script: []llm.Response{
		manyCalls("a1", "a2"),
		manyCalls("b1", "b2"),
		manyCalls("c1", "c2", "c3", "c4", "c5", "c6"),
		{Content: "should never be reached"},
	}}

	executed := 0
	loop := newTestLoop(provider, func(ctx context.Context, inv Invocation) (string, error) {
		executed++
		return "ok", nil
	})

	req := turnRequest()
	req.Settings.ToolCallBound = 5

	result, err := loop.RunTurn(context.Background(), req)
	if err != nil {
		t.Fatalf("RunTurn failed: %v", err)
	}
	if !result.BoundExceeded {
		t.Error("bound should be reported as exceeded")
	}
	if executed != 5 {
		t.Errorf("exactly 5 calls should execute, got %d", executed)
	}
	if result.DispatchedCalls != 5 {
		t.Errorf("dispatched counter must cap at the bound, got %d", result.DispatchedCalls)
	}
	if result.FinalState != StateTerminated {
		t.Errorf("turn must terminate, got %s", result.FinalState)
	}
	if result.Answer == "" || result.Answer == "should never be reached" {
		t.Errorf("expected the bound notice as answer, got %q", result.Answer)
	}

	//every requested call still gets a tool response in the transcript
	toolResponses := 0
	for _, msg := range result.Appended {
		if msg.Role == chatModel.RoleTool {
			toolResponses++
		}
	}
	if toolResponses != 10 {
		t.Errorf("expected 10 tool responses (5 real + 5 notices), got %d", toolResponses)
	}
}

func TestRunTurn_DisabledMidSession(t *testing.T) {
	provider := &scriptedProvider{script: []llm.Response{
		{ToolCalls: []chatModel.ToolCall{searchCall("c1")}},
		{Content: "done without the tool"},
	}}
	loop := newTestLoop(provider, nil)

	//the model asked for "search" but the folder no longer enables it
	req := turnRequest()
	req.Settings.EnabledTools = nil

	result, err := loop.RunTurn(context.Background(), req)
	if err != nil {
		t.Fatalf("RunTurn failed: %v", err)
	}
	if len(result.ToolTrace) != 1 || result.ToolTrace[0].Ok {
		t.Fatalf("expected a failed trace entry, got %+v", result.ToolTrace)
	}
	if !strings.Contains(result.ToolTrace[0].Detail, commonModels.ErrToolDisabled.Error()) {
		t.Errorf("expected disabled error in trace, got %q", result.ToolTrace[0].Detail)
	}
}

func TestRunTurn_ModelErrorPropagates(t *testing.T) {
	provider := &scriptedProvider{err: commonModels.ErrModelService}
	loop := newTestLoop(provider, nil)

	_, err := loop.RunTurn(context.Background(), turnRequest())
	if !errors.Is(err, commonModels.ErrModelService) {
		t.Errorf("expected ErrModelService, got %v", err)
	}
}

func TestRunTurn_InvalidSettings(t *testing.T) {
	loop := newTestLoop(&scriptedProvider{}, nil)
	req := turnRequest()
	req.Settings.ToolCallBound = 0

	_, err := loop.RunTurn(context.Background(), req)
	if !errors.Is(err, commonModels.ErrInvalidConfiguration) {
		t.Errorf("expected ErrInvalidConfiguration, got %v", err)
	}
}

func TestRunTurn_SystemPromptCarriesCriteria(t *testing.T) {
	provider := &scriptedProvider{script: []llm.Response{{Content: "ok"}}}
	loop := newTestLoop(provider, nil)

	req := turnRequest()
	req.SuccessCriteria = "cite the exact file"
	if _, err := loop.RunTurn(context.Background(), req); err != nil {
		t.Fatalf("RunTurn failed: %v", err)
	}
	if !strings.Contains(provider.requests[0].System, "cite the exact file") {
		t.Error("success criteria missing from system prompt")
	}
	if !strings.Contains(provider.requests[0].System, "search") {
		t.Error("enabled tool list missing from system prompt")
	}
	if !strings.Contains(provider.requests[0].System, fmt.Sprintf("at most %d tool calls", req.Settings.ToolCallBound)) {
		t.Error("tool call bound missing from system prompt")
	}
}
