package openaiLLM

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/Jsrodrigue/sidekickAI/internal/agent/llm"
	"github.com/Jsrodrigue/sidekickAI/internal/config"
	"github.com/Jsrodrigue/sidekickAI/internal/domain/chatModel"
	"github.com/Jsrodrigue/sidekickAI/internal/domain/commonModels"
	"github.com/Jsrodrigue/sidekickAI/pkg/logger_i"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

type llmClient struct {
	api       openai.Client
	modelName string
}

var logger *logger_i.Logger
var openaiClient *llmClient
var once sync.Once

func GetOpenAIClient(ctx context.Context, modelName string, apikey string) llm.Provider {
	once.Do(func() {
		logger = logger_i.NewLogger("llm_openai")
		if apikey == "" {
			logger.Error("OpenAI api key missing")
			return
		}
		openaiClient = &llmClient{
			api:       openai.NewClient(option.WithAPIKey(apikey)),
			modelName: modelName,
		}
		logger.Info("OpenAI client created", "model", modelName)
	})

	if openaiClient == nil {
		return nil
	}
	return &llmClient{api: openaiClient.api, modelName: openaiClient.modelName}
}

func (c *llmClient) Generate(ctx context.Context, req llm.Request) (llm.Response, error) {
	log := logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	params := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(c.modelName),
		Messages:    toMessages(req.System, req.Messages),
		Temperature: openai.Float(float64(req.Temperature)),
	}
	if len(req.Tools) > 0 {
		params.Tools = toTools(req.Tools)
	}

	var completion *openai.ChatCompletion
	var err error
	for attempt := 1; attempt <= config.ModelRetryAttempts; attempt++ {
		completion, err = c.api.Chat.Completions.New(ctx, params)
		if err == nil {
			break
		}
		log.Error("OpenAI call failed", "attempt", attempt, "error", err)
		if attempt == config.ModelRetryAttempts {
			return llm.Response{}, fmt.Errorf("%w: %v", commonModels.ErrModelService, err)
		}
		select {
		case <-ctx.Done():
			return llm.Response{}, fmt.Errorf("%w: %v", commonModels.ErrModelService, ctx.Err())
		case <-time.After(config.ModelRetryBackoff):
		}
	}

	if len(completion.Choices) == 0 {
		return llm.Response{}, fmt.Errorf("%w: empty completion", commonModels.ErrModelService)
	}

	choice := completion.Choices[0].Message
	response := llm.Response{Content: choice.Content}
	for _, call := range choice.ToolCalls {
		args := map[string]any{}
		if call.Function.Arguments != "" {
			if err := json.Unmarshal([]byte(call.Function.Arguments), &args); err != nil {
				log.Error("Malformed tool arguments from model", "tool", call.Function.Name, "error", err)
			}
		}
		response.ToolCalls = append(response.ToolCalls, chatModel.ToolCall{
			Id:   call.ID,
			Name: call.Function.Name,
			Args: args,
		})
	}
	return response, nil
}

func toMessages(system string, messages []chatModel.Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages)+1)
	out = append(out, openai.SystemMessage(system))
	for _, msg := range messages {
		switch msg.Role {
		case chatModel.RoleUser:
			out = append(out, openai.UserMessage(msg.Content))
		case chatModel.RoleAssistant:
			assistant := openai.ChatCompletionAssistantMessageParam{}
			if msg.Content != "" {
				assistant.Content.OfString = openai.String(msg.Content)
			}
			for _, call := range msg.ToolCalls {
				args, err := json.Marshal(call.Args)
				if err != nil {
					args = []byte("{}")
				}
				assistant.ToolCalls = append(assistant.ToolCalls, openai.ChatCompletionMessageToolCallParam{
					ID: call.Id,
					Function: openai.ChatCompletionMessageToolCallFunctionParam{
						Name:      call.Name,
						Arguments: string(args),
					},
				})
			}
			out = append(out, openai.ChatCompletionMessageParamUnion{OfAssistant: &assistant})
		case chatModel.RoleTool:
			out = append(out, openai.ToolMessage(msg.Content, msg.ToolCallId))
		}
	}
	return out
}

func toTools(tools []llm.ToolDecl) []openai.ChatCompletionToolParam {
	out := make([]openai.ChatCompletionToolParam, 0, len(tools))
	for _, tool := range tools {
		properties := make(map[string]any, len(tool.Params))
		required := []string{}
		for _, p := range tool.Params {
			properties[p.Name] = map[string]any{
				"type":        p.Type,
				"description": p.Description,
			}
			if p.Required {
				required = append(required, p.Name)
			}
		}
		out = append(out, openai.ChatCompletionToolParam{
			Function: openai.FunctionDefinitionParam{
				Name:        tool.Name,
				Description: openai.String(tool.Description),
				Parameters: openai.FunctionParameters{
					"type":       "object",
					"properties": properties,
					"required":   required,
				},
			},
		})
	}
	return out
}
