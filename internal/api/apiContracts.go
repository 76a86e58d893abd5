package api

import "time"

type JobExternalStatus string

const (
	JobStatusError JobExternalStatus = "Error"
)

type JobResponse struct {
	Id        string            `json:"id" example:"job_cz109"`
	FolderId  string            `json:"folder_id" example:"folder_550"`
	Result    Result            `json:"result"`
	Error     *JobOutgoingError `json:"error,omitempty"`
	StartTime time.Time         `json:"start_time"`
	EndTime   time.Time         `json:"end_time,omitempty"`
}

type JobOutgoingError struct {
	Code    int    `json:"code" example:"400"`
	Message string `json:"message" example:"Job not found"`
	Retry   bool   `json:"can_retry" example:"false"`
}

type ToolTrace struct {
	Tool   string `json:"tool"`
	Ok     bool   `json:"ok"`
	Detail string `json:"detail,omitempty"`
}

type TurnResponse struct {
	Message  string      `json:"message"`
	Answer   string      `json:"answer"`
	Tools    []ToolTrace `json:"tools,omitempty"`
	Warnings []string    `json:"warnings,omitempty"`
}

type IndexResponse struct {
	ChunksIndexed    int      `json:"chunks_indexed"`
	DocumentsIndexed int      `json:"documents_indexed"`
	DocumentsSkipped int      `json:"documents_skipped"`
	Warnings         []string `json:"warnings,omitempty"`
}

type Result struct {
	Status        string         `json:"status"`
	TurnResponse  *TurnResponse  `json:"turn_response,omitempty"`
	IndexResponse *IndexResponse `json:"index_response,omitempty"`
}

type InitJobResponse struct {
	Id        string `json:"id"`
	StatusURL string `json:"status_url"`
}

type SettingsResponse struct {
	FolderId       string   `json:"folder_id"`
	RootPath       string   `json:"root_path,omitempty"`
	ChunkSize      int      `json:"chunk_size"`
	ChunkOverlap   int      `json:"chunk_overlap"`
	RetrievalCount int      `json:"retrieval_count"`
	ToolCallBound  int      `json:"tool_call_bound"`
	EnabledTools   []string `json:"enabled_tools"`
}

type HistoryMessage struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	ToolName  string    `json:"tool_name,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type HistoryResponse struct {
	FolderId string           `json:"folder_id"`
	Messages []HistoryMessage `json:"messages"`
}

// requests---------------------

type ChatRequest struct {
	Message         string `json:"message" validate:"required"`
	SuccessCriteria string `json:"success_criteria,omitempty"`
}

type IndexRequest struct {
	Path string `json:"path" validate:"required"`
}

type SettingsRequest struct {
	RootPath       *string   `json:"root_path,omitempty"`
	ChunkSize      *int      `json:"chunk_size,omitempty"`
	ChunkOverlap   *int      `json:"chunk_overlap,omitempty"`
	RetrievalCount *int      `json:"retrieval_count,omitempty"`
	ToolCallBound  *int      `json:"tool_call_bound,omitempty"`
	EnabledTools   *[]string `json:"enabled_tools,omitempty"`
}

type JobStatusRequest struct {
	JobId string `json:"job_id" validate:"required"`
}
