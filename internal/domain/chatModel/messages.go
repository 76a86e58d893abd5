package chatModel

import (
	"context"
	"time"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// ToolCall is a model-requested tool invocation as recorded in the transcript.
type ToolCall struct {
	Id   string         `json:"id"`
	Name string         `json:"name"`
	Args map[string]any `json:"args,omitempty"`
}

type Message struct {
	Role       Role       `json:"role"`
	Content    string     `json:"content,omitempty"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallId string     `json:"tool_call_id,omitempty"`
	ToolName   string     `json:"tool_name,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

func NewUserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content, CreatedAt: time.Now().UTC()}
}

func NewAssistantMessage(content string, calls []ToolCall) Message {
	return Message{Role: RoleAssistant, Content: content, ToolCalls: calls, CreatedAt: time.Now().UTC()}
}

func NewToolMessage(callId, toolName, content string) Message {
	return Message{Role: RoleTool, ToolCallId: callId, ToolName: toolName, Content: content, CreatedAt: time.Now().UTC()}
}

// ConversationStore keeps one append-only transcript per folder. Append writes
// all messages of a turn in one shot so a crashed turn never leaves a partial
// suffix behind.
type ConversationStore interface {
	GetHistory(ctx context.Context, folderId string) ([]Message, error)
	AppendMessages(ctx context.Context, folderId string, messages []Message) error
	PurgeHistory(ctx context.Context, folderId string) error
}
