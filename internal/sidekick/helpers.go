package sidekick

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/Jsrodrigue/sidekickAI/internal/agent"
	"github.com/Jsrodrigue/sidekickAI/internal/domain/chatModel"
	"github.com/Jsrodrigue/sidekickAI/internal/domain/commonModels"
	"github.com/Jsrodrigue/sidekickAI/internal/domain/jobModel"
	"github.com/Jsrodrigue/sidekickAI/internal/metrics"
	"github.com/Jsrodrigue/sidekickAI/pkg/logger_i"
)

type folderLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newFolderLocks() *folderLocks {
	return &folderLocks{locks: make(map[string]*sync.Mutex)}
}

func (f *folderLocks) lock(folderId string) func() {
	f.mu.Lock()
	m, ok := f.locks[folderId]
	if !ok {
		m = new(sync.Mutex)
		f.locks[folderId] = m
	}
	f.mu.Unlock()

	m.Lock()
	return m.Unlock
}

func returnOutput(job jobModel.Job, ans string) jobModel.Job {
	job.JobPayload.Answer = ans
	job.CurrentStep = jobModel.Complete
	job.Status = jobModel.JobStatusComplete
	return job
}

func logOutput(job jobModel.Job, status jobModel.InternalStatus, log *logger_i.Logger) jobModel.Job {
	job.CurrentStep = status
	log.Debug("ProcessTurn", "Current Status", job.CurrentStep)
	return job
}

func (s *service) jobError(job jobModel.Job, err error, message string) jobModel.Job {
	s.logger.Error(message, "error", err)

	code := http.StatusInternalServerError
	retry := true
	switch {
	case errors.Is(err, commonModels.ErrInvalidConfiguration):
		code = http.StatusBadRequest
		retry = false
	case errors.Is(err, commonModels.ErrModelService), errors.Is(err, commonModels.ErrEmbeddingService):
		code = http.StatusBadGateway
	case errors.Is(err, commonModels.ErrUnsupportedFormat):
		code = http.StatusUnsupportedMediaType
		retry = false
	}

	job.Error = jobModel.JobError{
		Code:    code,
		Message: err.Error(),
		Retry:   retry,
	}
	job.Status = jobModel.JobStatusError
	job.CurrentStep = jobModel.Error
	return job
}

func (s *service) executeSettingsStep(ctx context.Context, log *logger_i.Logger, job *jobModel.Job) (commonModels.FolderSettings, error) {
	*job = logOutput(*job, jobModel.RedisCall, log)

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("settings_load", time.Since(start)) }()

	return s.settings.GetSettings(ctx, job.FolderId)
}

func (s *service) executeHistoryStep(ctx context.Context, log *logger_i.Logger, job *jobModel.Job) ([]chatModel.Message, error) {
	*job = logOutput(*job, jobModel.HistoryCall, log)

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("history_load", time.Since(start)) }()

	return s.conversations.GetHistory(ctx, job.FolderId)
}

func (s *service) executeTurnStep(ctx context.Context, log *logger_i.Logger, job *jobModel.Job, history []chatModel.Message, settings commonModels.FolderSettings) (agent.TurnResult, error) {
	*job = logOutput(*job, jobModel.ModelCall, log)

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("agent_turn", time.Since(start)) }()

	return s.loop.RunTurn(ctx, agent.TurnRequest{
		FolderId:        job.FolderId,
		History:         history,
		UserMessage:     job.JobPayload.Message,
		SuccessCriteria: job.JobPayload.SuccessCriteria,
		Settings:        settings,
	})
}
