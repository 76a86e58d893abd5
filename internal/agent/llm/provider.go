package llm

import (
	"context"

	"github.com/Jsrodrigue/sidekickAI/internal/domain/chatModel"
)

// Param describes one argument of a tool as exposed to the model.
type Param struct {
	Name        string
	Type        string // "string", "integer", "number" or "boolean"
	Description string
	Required    bool
}

// ToolDecl is a tool definition in provider-neutral form. Each provider
// translates it to its own function calling schema.
type ToolDecl struct {
	Name        string
	Description string
	Params      []Param
}

type Request struct {
	System      string
	Messages    []chatModel.Message
	Tools       []ToolDecl
	Temperature float32
}

// Response is a single model step: either final text, or one or more tool
// calls, or both.
type Response struct {
	Content   string
	ToolCalls []chatModel.ToolCall
}

func (r Response) HasToolCalls() bool {
	return len(r.ToolCalls) > 0
}

type Provider interface {
	Generate(ctx context.Context, req Request) (Response, error)
}
