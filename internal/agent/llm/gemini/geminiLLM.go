package gemini

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Jsrodrigue/sidekickAI/internal/agent/llm"
	"github.com/Jsrodrigue/sidekickAI/internal/config"
	"github.com/Jsrodrigue/sidekickAI/internal/domain/chatModel"
	"github.com/Jsrodrigue/sidekickAI/internal/domain/commonModels"
	"github.com/Jsrodrigue/sidekickAI/pkg/logger_i"
	"github.com/google/uuid"
	"google.golang.org/genai"
)

type llmClient struct {
	client    *genai.Client
	modelName string
}

var logger *logger_i.Logger
var geminiClient *llmClient
var once sync.Once

func GetGeminiClient(ctx context.Context, modelName string, apikey string) llm.Provider {
	once.Do(func() {
		logger = logger_i.NewLogger("llm_gemini")
		newGeminiClient(ctx, modelName, apikey)
	})

	if geminiClient == nil {
		return nil
	}
	return &llmClient{client: geminiClient.client, modelName: geminiClient.modelName}
}

func newGeminiClient(ctx context.Context, modelName string, apikey string) {

	c, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apikey})
	if err != nil {
		logger.Error("Error creating Gemini client:", "error", err)
	}
	if c != nil {
		geminiClient = &llmClient{client: c, modelName: modelName}
		logger.Info("Gemini client created", "model", modelName)
		go closeClient(ctx, geminiClient)
	}

}

func closeClient(ctx context.Context, llm *llmClient) {
	<-ctx.Done()
	logger.Info("Closing Gemini client")
	llm.client = nil
	llm.modelName = ""
}

func (c *llmClient) Generate(ctx context.Context, req llm.Request) (llm.Response, error) {
	log := logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	contents := toContents(req.Messages)
	contentConfig := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: req.System}}},
		Temperature:       genai.Ptr[float32](req.Temperature),
	}
	if len(req.Tools) > 0 {
		contentConfig.Tools = []*genai.Tool{{FunctionDeclarations: toDeclarations(req.Tools)}}
	}

	var result *genai.GenerateContentResponse
	var err error
	for attempt := 1; attempt <= config.ModelRetryAttempts; attempt++ {
		result, err = c.client.Models.GenerateContent(ctx, c.modelName, contents, contentConfig)
		if err == nil {
			break
		}
		log.Error("Gemini call failed", "attempt", attempt, "error", err)
		if attempt == config.ModelRetryAttempts {
			return llm.Response{}, fmt.Errorf("%w: %v", commonModels.ErrModelService, err)
		}
		select {
		case <-ctx.Done():
			return llm.Response{}, fmt.Errorf("%w: %v", commonModels.ErrModelService, ctx.Err())
		case <-time.After(config.ModelRetryBackoff):
		}
	}

	response := llm.Response{Content: result.Text()}
	for _, fc := range result.FunctionCalls() {
		id := fc.ID
		if id == "" {
			id = uuid.NewString()
		}
		response.ToolCalls = append(response.ToolCalls, chatModel.ToolCall{
			Id:   id,
			Name: fc.Name,
			Args: fc.Args,
		})
	}
	return response, nil
}

func toContents(messages []chatModel.Message) []*genai.Content {
	contents := make([]*genai.Content, 0, len(messages))
	for _, msg := range messages {
		switch msg.Role {
		case chatModel.RoleUser:
			contents = append(contents, &genai.Content{
				Role:  genai.RoleUser,
				Parts: []*genai.Part{{Text: msg.Content}},
			})
		case chatModel.RoleAssistant:
			parts := make([]*genai.Part, 0, 1+len(msg.ToolCalls))
			if msg.Content != "" {
				parts = append(parts, &genai.Part{Text: msg.Content})
			}
			for _, call := range msg.ToolCalls {
				parts = append(parts, &genai.Part{FunctionCall: &genai.FunctionCall{
					ID:   call.Id,
					Name: call.Name,
					Args: call.Args,
				}})
			}
			contents = append(contents, &genai.Content{Role: genai.RoleModel, Parts: parts})
		case chatModel.RoleTool:
			contents = append(contents, &genai.Content{
				Role: genai.RoleUser,
				Parts: []*genai.Part{{FunctionResponse: &genai.FunctionResponse{
					ID:       msg.ToolCallId,
					Name:     msg.ToolName,
					Response: map[string]any{"output": msg.Content},
				}}},
			})
		}
	}
	return contents
}

func toDeclarations(tools []llm.ToolDecl) []*genai.FunctionDeclaration {
	declarations := make([]*genai.FunctionDeclaration, 0, len(tools))
	for _, tool := range tools {
		properties := make(map[string]*genai.Schema, len(tool.Params))
		var required []string
		for _, p := range tool.Params {
			properties[p.Name] = &genai.Schema{
				Type:        toSchemaType(p.Type),
				Description: p.Description,
			}
			if p.Required {
				required = append(required, p.Name)
			}
		}
		declarations = append(declarations, &genai.FunctionDeclaration{
			Name:        tool.Name,
			Description: tool.Description,
			Parameters: &genai.Schema{
				Type:       genai.TypeObject,
				Properties: properties,
				Required:   required,
			},
		})
	}
	return declarations
}

func toSchemaType(t string) genai.Type {
	switch t {
	case "integer":
		return genai.TypeInteger
	case "number":
		return genai.TypeNumber
	case "boolean":
		return genai.TypeBoolean
	default:
		return genai.TypeString
	}
}
