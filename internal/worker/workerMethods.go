package worker

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/Jsrodrigue/sidekickAI/internal/config"
	jobmodel "github.com/Jsrodrigue/sidekickAI/internal/domain/jobModel"
	"github.com/Jsrodrigue/sidekickAI/internal/metrics"
)

func executeJob(job jobmodel.Job) {
	start := time.Now()
	defer func() {
		// Record total time at the end
		metrics.CaptureJobMetrics(string(job.Status), time.Since(start))
	}()
	ctxTrace := context.WithValue(context.Background(), config.TRACE_ID_KEY, job.TraceId)
	ctx, cancel := context.WithTimeout(ctxTrace, jobTimeout(job.JobType))
	defer cancel()
	logger.With("trace Id ", job.TraceId)
	logger.Debug("Processing job:", "job Id:", job.Id)

	saveJobState(ctx, job, jobmodel.JobStatusRunning)

	switch job.JobType {
	case jobmodel.JobTypeIngest:
		job.CurrentStep = jobmodel.IngestProcessing
		job = _sidekickService.IngestDocument(ctx, job)

	case jobmodel.JobTypeIndexFolder:
		job.CurrentStep = jobmodel.IndexWalk
		job = _sidekickService.IndexFolder(ctx, job)

	default:
		job.CurrentStep = jobmodel.TurnInit
		job = _sidekickService.ProcessTurn(ctx, job)
	}

	job.EndTime = time.Now()
	saveJobState(ctx, job, job.Status)
}

// folder indexing walks whole trees, it gets a longer timeout
func jobTimeout(jobType jobmodel.JobType) time.Duration {
	if jobType == jobmodel.JobTypeIndexFolder {
		return config.IngestTimeout
	}
	return config.TurnTimeout
}

func removeWorker(reason string) {

	workerWaitGroup.Done()
	atomic.AddInt64(&currentWorkerCount, -1)
	logger.Info("Removed worker ", "reason", reason, "workerCount", currentWorkerCount)
	metrics.DecrementActiveWorkerCount()

}

func saveJobState(ctx context.Context, job jobmodel.Job, jobStatus jobmodel.JobStatus) {
	job.Status = jobStatus
	if err := _jobService.JobStore.SaveJob(ctx, job); err != nil {
		logger.Error("Failed to update status in Redis", "err", err)
	}
}
