package sidekick

import (
	"context"
	"errors"
	"time"

	"github.com/Jsrodrigue/sidekickAI/internal/agent"
	"github.com/Jsrodrigue/sidekickAI/internal/config"
	"github.com/Jsrodrigue/sidekickAI/internal/domain/chatModel"
	"github.com/Jsrodrigue/sidekickAI/internal/domain/commonModels"
	"github.com/Jsrodrigue/sidekickAI/internal/domain/jobModel"
	"github.com/Jsrodrigue/sidekickAI/internal/metrics"
	"github.com/Jsrodrigue/sidekickAI/internal/rag/index"
	"github.com/Jsrodrigue/sidekickAI/internal/rag/ingest"
	"github.com/Jsrodrigue/sidekickAI/pkg/logger_i"
)

const modelFailureNotice = "The model service could not complete this turn. The request was not processed, try again."

// Service is the only thing the worker calls - it doesn't need to know the
// agent loop, the index or the stores behind it.
type Service interface {
	ProcessTurn(ctx context.Context, job jobModel.Job) jobModel.Job
	IngestDocument(ctx context.Context, job jobModel.Job) jobModel.Job
	IndexFolder(ctx context.Context, job jobModel.Job) jobModel.Job
	DeleteFolder(ctx context.Context, folderId string) error
}

type service struct {
	loop          *agent.Loop
	indexSvc      index.Service
	conversations chatModel.ConversationStore
	settings      commonModels.SettingsStore
	locks         *folderLocks
	logger        *logger_i.Logger
}

// NewService constructor
func NewService(loop *agent.Loop, indexSvc index.Service, conversations chatModel.ConversationStore, settings commonModels.SettingsStore) Service {
	return &service{
		loop:          loop,
		indexSvc:      indexSvc,
		conversations: conversations,
		settings:      settings,
		locks:         newFolderLocks(),
		logger:        logger_i.NewLogger("Sidekick Service :"),
	}
}

// ProcessTurn runs one conversational turn against a folder. Turns on the
// same folder are serialized, turns on different folders run concurrently.
func (s *service) ProcessTurn(ctx context.Context, jobt jobModel.Job) jobModel.Job {
	inMethodLogger := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "JobId", jobt.Id, "folder Id", jobt.FolderId)

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("chat_turn", time.Since(start)) }()

	unlock := s.locks.lock(jobt.FolderId)
	defer unlock()

	processContext, cancel := context.WithTimeout(ctx, config.TurnTimeout)
	defer cancel()

	settings, err := s.executeSettingsStep(processContext, inMethodLogger, &jobt)
	if err != nil {
		return s.jobError(jobt, err, "SETTINGS_LOAD_FAILURE")
	}

	history, err := s.executeHistoryStep(processContext, inMethodLogger, &jobt)
	if err != nil {
		return s.jobError(jobt, err, "HISTORY_LOAD_FAILURE")
	}

	result, err := s.executeTurnStep(processContext, inMethodLogger, &jobt, history, settings)
	if err != nil {
		//a failed turn still leaves a trace: the user message plus one
		//explicit error message, so the transcript never swallows a turn
		if errors.Is(err, commonModels.ErrModelService) {
			failedTurn := []chatModel.Message{
				chatModel.NewUserMessage(jobt.JobPayload.Message),
				chatModel.NewAssistantMessage(modelFailureNotice, nil),
			}
			if appendErr := s.conversations.AppendMessages(processContext, jobt.FolderId, failedTurn); appendErr != nil {
				inMethodLogger.Error("Could not record the failed turn", "error", appendErr)
			}
		}
		return s.jobError(jobt, err, "AGENT_TURN_FAILURE")
	}

	//the whole turn is appended in one write, a crash cannot leave half a turn
	jobt.CurrentStep = jobModel.RedisCall
	if err := s.conversations.AppendMessages(processContext, jobt.FolderId, result.Appended); err != nil {
		return s.jobError(jobt, err, "HISTORY_APPEND_FAILURE")
	}

	for _, entry := range result.ToolTrace {
		metrics.CaptureToolCall(entry.Tool, entry.Ok)
	}

	jobt.JobPayload.ToolTrace = result.ToolTrace
	if result.BoundExceeded {
		jobt.JobPayload.Warnings = append(jobt.JobPayload.Warnings, commonModels.ErrToolLoopBound.Error())
	}
	return returnOutput(jobt, result.Answer)
}

func (s *service) IngestDocument(ctx context.Context, job jobModel.Job) jobModel.Job {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("document_ingestion", time.Since(start)) }()

	unlock := s.locks.lock(job.FolderId)
	defer unlock()

	j := ingest.ProcessDocumentIngestion(ctx, job, s.indexSvc, s.settings)
	if j.Status == jobModel.JobStatusComplete {
		metrics.AddChunksIndexed(j.JobPayload.ChunksIndexed)
	}
	return j
}

func (s *service) IndexFolder(ctx context.Context, job jobModel.Job) jobModel.Job {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("folder_indexing", time.Since(start)) }()

	unlock := s.locks.lock(job.FolderId)
	defer unlock()

	indexContext, cancel := context.WithTimeout(ctx, config.IngestTimeout)
	defer cancel()

	j := ingest.ProcessFolderIndexing(indexContext, job, s.indexSvc, s.settings)
	if j.Status == jobModel.JobStatusComplete {
		metrics.AddChunksIndexed(j.JobPayload.ChunksIndexed)
	}
	return j
}

// DeleteFolder removes everything known about a folder: vectors, transcript
// and settings.
func (s *service) DeleteFolder(ctx context.Context, folderId string) error {
	unlock := s.locks.lock(folderId)
	defer unlock()

	if err := s.indexSvc.DropFolder(ctx, folderId); err != nil {
		return err
	}
	if err := s.conversations.PurgeHistory(ctx, folderId); err != nil {
		return err
	}
	return s.settings.DeleteSettings(ctx, folderId)
}
