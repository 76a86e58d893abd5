package adapter

import (
	"fmt"
	"time"

	"github.com/Jsrodrigue/sidekickAI/internal/api"
	"github.com/Jsrodrigue/sidekickAI/internal/domain/chatModel"
	"github.com/Jsrodrigue/sidekickAI/internal/domain/commonModels"
	"github.com/Jsrodrigue/sidekickAI/internal/domain/jobModel"
)

func ToInitJobResponse(id string) api.InitJobResponse {
	return api.InitJobResponse{
		Id:        id,
		StatusURL: fmt.Sprintf("status/%s", id), //pass "status/job.Id"
	}
}

func ToAPIResponse(job jobModel.Job) api.JobResponse {

	var errorPtr *api.JobOutgoingError
	if job.Error.Message != "" || job.Error.Code != 0 {
		errorPtr = &api.JobOutgoingError{
			Code:    job.Error.Code,
			Message: job.Error.Message,
			Retry:   job.Error.Retry,
		}
	}

	result := api.Result{
		Status:        string(job.Status),
		TurnResponse:  toTurnResponse(job),
		IndexResponse: toIndexResponse(job),
	}

	return api.JobResponse{
		Id:        job.Id,
		FolderId:  job.FolderId,
		StartTime: job.CreatedTime,
		EndTime:   job.EndTime,
		Error:     errorPtr,
		Result:    result,
	}
}

func toTurnResponse(job jobModel.Job) *api.TurnResponse {
	if job.JobType != jobModel.JobTypeChat {
		return nil
	}
	payload := job.JobPayload
	if payload.Answer == "" && len(payload.ToolTrace) == 0 {
		return nil
	}

	tools := make([]api.ToolTrace, 0, len(payload.ToolTrace))
	for _, entry := range payload.ToolTrace {
		tools = append(tools, api.ToolTrace{Tool: entry.Tool, Ok: entry.Ok, Detail: entry.Detail})
	}

	return &api.TurnResponse{
		Message:  payload.Message,
		Answer:   payload.Answer,
		Tools:    tools,
		Warnings: payload.Warnings,
	}
}

func toIndexResponse(job jobModel.Job) *api.IndexResponse {
	if job.JobType != jobModel.JobTypeIngest && job.JobType != jobModel.JobTypeIndexFolder {
		return nil
	}
	if job.Status != jobModel.JobStatusComplete {
		return nil
	}

	return &api.IndexResponse{
		ChunksIndexed:    job.JobPayload.ChunksIndexed,
		DocumentsIndexed: job.JobPayload.DocumentsIndexed,
		DocumentsSkipped: job.JobPayload.DocumentsSkipped,
		Warnings:         job.JobPayload.Warnings,
	}
}

func ToSettingsResponse(settings commonModels.FolderSettings) api.SettingsResponse {
	return api.SettingsResponse{
		FolderId:       settings.FolderId,
		RootPath:       settings.RootPath,
		ChunkSize:      settings.ChunkSize,
		ChunkOverlap:   settings.ChunkOverlap,
		RetrievalCount: settings.RetrievalCount,
		ToolCallBound:  settings.ToolCallBound,
		EnabledTools:   settings.EnabledTools,
	}
}

// ApplySettingsRequest overlays the request fields a caller actually sent
// onto the folder's current settings.
func ApplySettingsRequest(settings commonModels.FolderSettings, req api.SettingsRequest) commonModels.FolderSettings {
	if req.RootPath != nil {
		settings.RootPath = *req.RootPath
	}
	if req.ChunkSize != nil {
		settings.ChunkSize = *req.ChunkSize
	}
	if req.ChunkOverlap != nil {
		settings.ChunkOverlap = *req.ChunkOverlap
	}
	if req.RetrievalCount != nil {
		settings.RetrievalCount = *req.RetrievalCount
	}
	if req.ToolCallBound != nil {
		settings.ToolCallBound = *req.ToolCallBound
	}
	if req.EnabledTools != nil {
		settings.EnabledTools = append([]string(nil), (*req.EnabledTools)...)
	}
	return settings
}

func ToHistoryResponse(folderId string, messages []chatModel.Message) api.HistoryResponse {
	out := make([]api.HistoryMessage, 0, len(messages))
	for _, msg := range messages {
		out = append(out, api.HistoryMessage{
			Role:      string(msg.Role),
			Content:   msg.Content,
			ToolName:  msg.ToolName,
			CreatedAt: msg.CreatedAt,
		})
	}
	return api.HistoryResponse{FolderId: folderId, Messages: out}
}

func BadRequest(id string, error string, code int) api.JobResponse {
	return api.JobResponse{
		Id:        id,
		FolderId:  "",
		StartTime: time.Time{},
		EndTime:   time.Time{},
		Result: api.Result{
			Status: string(api.JobStatusError),
		},
		Error: &api.JobOutgoingError{
			Code:    code,
			Message: error,
			Retry:   false,
		},
	}
}
