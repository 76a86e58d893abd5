package ingest

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/Jsrodrigue/sidekickAI/internal/config"
	"github.com/Jsrodrigue/sidekickAI/internal/domain/commonModels"
	"github.com/Jsrodrigue/sidekickAI/internal/domain/jobModel"
	"github.com/Jsrodrigue/sidekickAI/internal/rag/index"
	"github.com/Jsrodrigue/sidekickAI/pkg/logger_i"
)

var logger *logger_i.Logger

func init() {
	logger = logger_i.NewLogger("Ingestion")
}

func isExcludedDir(name string) bool {
	for _, excluded := range config.ExcludedDirs {
		if name == excluded {
			return true
		}
	}
	return false
}

// ProcessDocumentIngestion handles an uploaded file: extract text, index it
// into the folder collection, then discard the upload.
func ProcessDocumentIngestion(ctx context.Context, job jobModel.Job, indexSvc index.Service, settingsStore commonModels.SettingsStore) jobModel.Job {
	log := logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "folder Id", job.FolderId)

	docName := job.JobPayload.IngestFileName
	docPath := job.JobPayload.IngestURL

	log.Debug("Processing document", "filename", docName, "path", docPath)
	job.CurrentStep = jobModel.IngestProcessing

	settings, err := settingsStore.GetSettings(ctx, job.FolderId)
	if err != nil {
		return failJob(job, "Error loading folder settings", err, log)
	}

	docType := getDocType(docName)
	if docType == commonModels.ERR {
		return failJob(job, "Unsupported document format", commonModels.ErrUnsupportedFormat, log)
	}

	text, err := extractText(docPath, docType)
	if err != nil {
		return failJob(job, "Error extracting document content", err, log)
	}

	doc := commonModels.Document{
		FolderId:            job.FolderId,
		Id:                  docName,
		Name:                docName,
		SourcePath:          docName,
		ContentType:         docType,
		LastIngestTimestamp: time.Now().UTC(),
	}

	job.CurrentStep = jobModel.EmbeddingAPICall
	chunkCount, err := indexSvc.IndexDocument(ctx, doc, text, settings)
	if err != nil {
		return failJob(job, "Error indexing document", err, log)
	}

	if err := os.Remove(docPath); err != nil {
		log.Error("Error removing uploaded file", "error", err)
	}

	job.JobPayload.ChunksIndexed = chunkCount
	job.JobPayload.DocumentsIndexed = 1
	job.Status = jobModel.JobStatusComplete
	job.CurrentStep = jobModel.Complete
	return job
}

// ProcessFolderIndexing walks a directory tree and indexes every supported
// file into the folder collection. Unsupported or unreadable files are
// skipped and reported as warnings, a bad file never sinks the whole walk.
func ProcessFolderIndexing(ctx context.Context, job jobModel.Job, indexSvc index.Service, settingsStore commonModels.SettingsStore) jobModel.Job {
	log := logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "folder Id", job.FolderId)

	root := job.JobPayload.IndexPath
	log.Debug("Indexing folder", "path", root)
	job.CurrentStep = jobModel.IndexWalk

	settings, err := settingsStore.GetSettings(ctx, job.FolderId)
	if err != nil {
		return failJob(job, "Error loading folder settings", err, log)
	}

	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return failJob(job, "Index path is not a readable directory", err, log)
	}

	var chunksTotal, docsIndexed, docsSkipped int
	var warnings []string

	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("%s: %v", path, err))
			return nil
		}
		if d.IsDir() {
			if isExcludedDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		docType := getDocType(path)
		if docType == commonModels.ERR {
			docsSkipped++
			return nil
		}

		relPath, relErr := filepath.Rel(root, path)
		if relErr != nil {
			relPath = path
		}

		text, err := extractText(path, docType)
		if err != nil {
			docsSkipped++
			warnings = append(warnings, fmt.Sprintf("%s: %v", relPath, err))
			return nil
		}

		doc := commonModels.Document{
			FolderId:            job.FolderId,
			Id:                  relPath,
			Name:                d.Name(),
			SourcePath:          relPath,
			ContentType:         docType,
			LastIngestTimestamp: time.Now().UTC(),
		}

		chunkCount, err := indexSvc.IndexDocument(ctx, doc, text, settings)
		if err != nil {
			if errors.Is(err, commonModels.ErrEmbeddingService) {
				//the embedding backend is down, no point walking further
				return err
			}
			docsSkipped++
			warnings = append(warnings, fmt.Sprintf("%s: %v", relPath, err))
			return nil
		}

		chunksTotal += chunkCount
		docsIndexed++
		return nil
	})

	job.JobPayload.ChunksIndexed = chunksTotal
	job.JobPayload.DocumentsIndexed = docsIndexed
	job.JobPayload.DocumentsSkipped = docsSkipped
	job.JobPayload.Warnings = warnings

	if walkErr != nil {
		return failJob(job, "Folder indexing aborted", walkErr, log)
	}

	log.Info("Folder indexed", "documents", docsIndexed, "chunks", chunksTotal, "skipped", docsSkipped)
	job.Status = jobModel.JobStatusComplete
	job.CurrentStep = jobModel.Complete
	return job
}

func failJob(job jobModel.Job, message string, err error, log *logger_i.Logger) jobModel.Job {
	log.Error(message, "error", err)
	job.Status = jobModel.JobStatusError
	job.CurrentStep = jobModel.Error
	job.Error.Message = message
	return job
}
