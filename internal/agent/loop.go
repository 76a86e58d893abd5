package agent

import (
	"context"
	"fmt"

	"github.com/Jsrodrigue/sidekickAI/internal/agent/llm"
	"github.com/Jsrodrigue/sidekickAI/internal/config"
	"github.com/Jsrodrigue/sidekickAI/internal/domain/chatModel"
	"github.com/Jsrodrigue/sidekickAI/internal/domain/commonModels"
	"github.com/Jsrodrigue/sidekickAI/internal/domain/jobModel"
	"github.com/Jsrodrigue/sidekickAI/pkg/logger_i"
)

type LoopState string

const (
	StateAwaitingModel    LoopState = "AWAITING_MODEL"
	StateDispatchingTools LoopState = "DISPATCHING_TOOLS"
	StateTerminated       LoopState = "TERMINATED"
)

const boundNotice = "Tool call limit reached for this turn, the call was not executed."

type TurnRequest struct {
	FolderId        string
	History         []chatModel.Message
	UserMessage     string
	SuccessCriteria string
	Settings        commonModels.FolderSettings
}

// TurnResult is everything one turn produced. Appended holds the new
// transcript suffix (user message included) so the caller can persist the
// whole turn in one write.
type TurnResult struct {
	Appended        []chatModel.Message
	Answer          string
	ToolTrace       []jobModel.ToolTraceEntry
	DispatchedCalls int
	BoundExceeded   bool
	FinalState      LoopState
}

// Loop drives one conversational turn: model call, conditional tool
// dispatch, repeat until the model answers without requesting tools or the
// per-turn tool call bound runs out.
type Loop struct {
	provider llm.Provider
	registry *Registry
	logger   *logger_i.Logger
}

func NewLoop(provider llm.Provider, registry *Registry) *Loop {
	return &Loop{
		provider: provider,
		registry: registry,
		logger:   logger_i.NewLogger("Agent Loop"),
	}
}

func (l *Loop) RunTurn(ctx context.Context, req TurnRequest) (TurnResult, error) {
	log := l.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "folder Id", req.FolderId)

	if err := req.Settings.Validate(); err != nil {
		return TurnResult{}, err
	}

	tools := l.registry.Descriptors(req.Settings)
	system := buildSystemPrompt(req.FolderId, req.SuccessCriteria, tools, req.Settings.ToolCallBound)

	result := TurnResult{FinalState: StateAwaitingModel}
	result.Appended = append(result.Appended, chatModel.NewUserMessage(req.UserMessage))

	messages := make([]chatModel.Message, 0, len(req.History)+4)
	messages = append(messages, req.History...)
	messages = append(messages, result.Appended...)

	for result.FinalState != StateTerminated {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		response, err := l.provider.Generate(ctx, llm.Request{
			System:      system,
			Messages:    messages,
			Tools:       tools,
			Temperature: config.ModelTemperature,
		})
		if err != nil {
			return result, err
		}

		assistantMsg := chatModel.NewAssistantMessage(response.Content, response.ToolCalls)
		result.Appended = append(result.Appended, assistantMsg)
		messages = append(messages, assistantMsg)

		if !response.HasToolCalls() {
			result.Answer = response.Content
			result.FinalState = StateTerminated
			break
		}

		result.FinalState = StateDispatchingTools
		log.Debug("Dispatching tool calls", "count", len(response.ToolCalls))

		var toolMessages []chatModel.Message
		for _, call := range response.ToolCalls {
			if err := ctx.Err(); err != nil {
				return result, err
			}

			//the counter caps at the bound, skipped calls are not dispatched
			if result.DispatchedCalls >= req.Settings.ToolCallBound {
				result.BoundExceeded = true
				toolMessages = append(toolMessages, chatModel.NewToolMessage(call.Id, call.Name, boundNotice))
				result.ToolTrace = append(result.ToolTrace, jobModel.ToolTraceEntry{
					Tool: call.Name, Ok: false, Detail: commonModels.ErrToolLoopBound.Error(),
				})
				continue
			}
			result.DispatchedCalls++

			output, err := l.registry.Dispatch(ctx, call.Name, Invocation{
				FolderId: req.FolderId,
				Args:     call.Args,
				Settings: req.Settings,
			})
			if err != nil {
				//a failed tool is a conversational fact, not a turn failure
				log.Error("Tool call failed", "tool", call.Name, "error", err)
				toolMessages = append(toolMessages, chatModel.NewToolMessage(call.Id, call.Name, "error: "+err.Error()))
				result.ToolTrace = append(result.ToolTrace, jobModel.ToolTraceEntry{
					Tool: call.Name, Ok: false, Detail: err.Error(),
				})
				continue
			}

			toolMessages = append(toolMessages, chatModel.NewToolMessage(call.Id, call.Name, output))
			result.ToolTrace = append(result.ToolTrace, jobModel.ToolTraceEntry{Tool: call.Name, Ok: true})
		}

		result.Appended = append(result.Appended, toolMessages...)
		messages = append(messages, toolMessages...)

		if result.BoundExceeded {
			finalMsg := chatModel.NewAssistantMessage(boundAnswer(req.Settings.ToolCallBound), nil)
			result.Appended = append(result.Appended, finalMsg)
			result.Answer = finalMsg.Content
			result.FinalState = StateTerminated
			break
		}

		result.FinalState = StateAwaitingModel
	}

	log.Debug("Turn finished", "dispatched", result.DispatchedCalls, "bound exceeded", result.BoundExceeded)
	return result, nil
}

func boundAnswer(bound int) string {
	return fmt.Sprintf("I stopped after reaching the limit of %d tool calls for this turn."+
		" Raise the folder's tool call bound or ask a narrower question to continue.", bound)
}
