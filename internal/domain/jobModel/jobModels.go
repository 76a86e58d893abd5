package jobModel

import (
	"context"
	"time"
)

type JobStatus string
type InternalStatus string

type JobType string

const (
	JobStatusQueued   JobStatus = "QUEUED"
	JobStatusRunning  JobStatus = "RUNNING"
	JobStatusComplete JobStatus = "COMPLETE"
	JobStatusError    JobStatus = "Error"

	TurnInit         InternalStatus = "Init"
	HistoryCall      InternalStatus = "History"
	ModelCall        InternalStatus = "Model"
	ToolDispatch     InternalStatus = "ToolDispatch"
	VectorDBCall     InternalStatus = "VectorDB"
	EmbeddingAPICall InternalStatus = "EmbeddingAPI"
	RedisCall        InternalStatus = "Redis"

	IngestInit       InternalStatus = "IngestInit"
	IngestProcessing InternalStatus = "IngestProcessing"
	IndexWalk        InternalStatus = "IndexWalk"
	Error            InternalStatus = "Error"

	Complete InternalStatus = "Complete"

	JobTypeChat        JobType = "Chat"
	JobTypeIngest      JobType = "Ingest"
	JobTypeIndexFolder JobType = "IndexFolder"
)

type Job struct {
	Id          string         `json:"id"`
	FolderId    string         `json:"folder_id"`
	TraceId     string         `json:"trace_id"`
	JobType     JobType        `json:"job_type"`
	JobPayload  JobPayload     `json:"job_payload"`
	Error       JobError       `json:"error,omitempty"`
	CreatedTime time.Time      `json:"created_time"`
	EndTime     time.Time      `json:"end_time,omitempty"`
	Status      JobStatus      `json:"status"`
	CurrentStep InternalStatus `json:"current_step"`
}

type JobError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Retry   bool   `json:"retry"`
}

// ToolTraceEntry records one dispatched tool call of a chat turn.
type ToolTraceEntry struct {
	Tool   string `json:"tool"`
	Ok     bool   `json:"ok"`
	Detail string `json:"detail,omitempty"`
}

type JobPayload struct {
	Message         string           `json:"message,omitempty"`
	SuccessCriteria string           `json:"success_criteria,omitempty"`
	Answer          string           `json:"answer,omitempty"`
	ToolTrace       []ToolTraceEntry `json:"tool_trace,omitempty"`
	Warnings        []string         `json:"warnings,omitempty"`

	IngestFileName string `json:"ingest_file_name,omitempty"`
	IngestURL      string `json:"ingest_url,omitempty"`

	IndexPath        string `json:"index_path,omitempty"`
	ChunksIndexed    int    `json:"chunks_indexed,omitempty"`
	DocumentsIndexed int    `json:"documents_indexed,omitempty"`
	DocumentsSkipped int    `json:"documents_skipped,omitempty"`
}

type JobStore interface {
	GetJob(ctx context.Context, jobId string) (Job, bool)
	SaveJob(ctx context.Context, job Job) error
	DeleteJob(ctx context.Context, jobID string)
}
