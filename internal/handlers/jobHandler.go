package handlers

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Jsrodrigue/sidekickAI/internal/config"
	"github.com/Jsrodrigue/sidekickAI/internal/domain/chatModel"
	"github.com/Jsrodrigue/sidekickAI/internal/domain/commonModels"
	"github.com/Jsrodrigue/sidekickAI/internal/domain/jobModel"
	"github.com/Jsrodrigue/sidekickAI/internal/job"
	"github.com/Jsrodrigue/sidekickAI/internal/metrics"
	"github.com/Jsrodrigue/sidekickAI/internal/sidekick"
	"github.com/Jsrodrigue/sidekickAI/pkg/logger_i"
)

var (
	handlerInstance *JobHandler //private singleton
	once            sync.Once
	logJH           *logger_i.Logger
)

type JobHandler struct {
	service       *job.Service
	sidekick      sidekick.Service
	conversations chatModel.ConversationStore
	settings      commonModels.SettingsStore
}

type HandlerConfig struct {
	JobService    *job.Service
	Sidekick      sidekick.Service
	Conversations chatModel.ConversationStore
	Settings      commonModels.SettingsStore
}

func InitJobHandler(cfg HandlerConfig) {
	once.Do(func() {
		handlerInstance = &JobHandler{
			service:       cfg.JobService,
			sidekick:      cfg.Sidekick,
			conversations: cfg.Conversations,
			settings:      cfg.Settings,
		}

		logJH = logger_i.NewLogger("JobHandler")
		logRH = logger_i.NewLogger("RequestHandler")
		logJH.Info("Starting job handler")
	})

}

func CreateNewJob(newJob newJobData) {
	logJH.With("traceId", newJob.traceId, "job id", newJob.id)
	logJH.Info("To create new job")
	handlerInstance.pushToJobChannel(newJob)
}

func GetJobStatus(id string, traceId string) (result jobModel.Job, isFound bool) {
	ctxC := context.WithValue(context.Background(), config.TRACE_ID_KEY, traceId)
	if handlerInstance != nil {
		return handlerInstance.service.JobStore.GetJob(ctxC, id)
	}
	return result, false
}

func ValidateChatRequest(message string, folderId string) bool {
	if handlerInstance == nil {
		return false
	}
	logJH.Debug(" Validating chat request ", "folderId :", folderId)
	return message != "" && folderId != ""
}

// private methods
func (h *JobHandler) pushToJobChannel(newJob newJobData) {

	_job := jobModel.Job{}
	_job.Id = newJob.id
	_job.FolderId = newJob.folderId
	_job.CreatedTime = time.Now()
	_job.TraceId = newJob.traceId
	_job.Status = jobModel.JobStatusQueued
	_job.JobType = newJob.jobType

	switch newJob.jobType {
	case jobModel.JobTypeIngest:
		_job.CurrentStep = jobModel.IngestInit
		_job.JobPayload.IngestFileName = newJob.documentName
		_job.JobPayload.IngestURL = newJob.documentSource

	case jobModel.JobTypeIndexFolder:
		_job.CurrentStep = jobModel.IngestInit
		_job.JobPayload.IndexPath = newJob.indexPath

	default:
		_job.CurrentStep = jobModel.TurnInit
		_job.JobPayload.Message = newJob.message
		_job.JobPayload.SuccessCriteria = newJob.successCriteria
	}

	//metrics
	metrics.IncrementJobsInQueue()

	h.service.JobChannel <- _job //this is a blocking send to prevent the system from being overwhelmed
	logJH.Info("Created new job")

	//we will start a new worker every 10 requests - can also be configured
	// or
	//for performance - a new worker is added for an ingestion or indexing type job
	//indexing involves batch processing which might take time - external system call
	//worker will be removed if it has idle time - so it should be ok
	//this also allows us to only keep 1 worker running at most times therefore cutting resource spend

	accurateCount := atomic.AddInt64(&h.service.RequestCount, 1) //after sending a request increment counter
	if accurateCount%config.RequestsPerNewWorkerCount == 0 || _job.JobType != jobModel.JobTypeChat {
		metrics.StartDispatcherSignalCount() //metrics
		logJH.Debug("Worker count ", accurateCount)
		h.service.DispatcherChannel <- true
	}
}
