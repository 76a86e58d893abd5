package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/Jsrodrigue/sidekickAI/internal/adapter"
	"github.com/Jsrodrigue/sidekickAI/internal/adapter/utils"
	"github.com/Jsrodrigue/sidekickAI/internal/api"
	"github.com/Jsrodrigue/sidekickAI/internal/config"
	"github.com/Jsrodrigue/sidekickAI/internal/domain/commonModels"
	"github.com/Jsrodrigue/sidekickAI/internal/domain/jobModel"
	"github.com/Jsrodrigue/sidekickAI/pkg/logger_i"
)

var logRH *logger_i.Logger

// technically i dont need this
// but i want to eventually remove jobHandler from handlers and set it in another package
// so in anticipation for that this struct exists
type newJobData struct {
	id              string
	folderId        string
	message         string
	successCriteria string
	traceId         string
	jobType         jobModel.JobType
	documentName    string
	documentSource  string
	indexPath       string
}

func GetHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	return
}

// ChatHandler accepts a message for a folder, queues a background turn job
// and returns a job ID to track status.
func ChatHandler(w http.ResponseWriter, request *http.Request) {

	if validateContext(request.Context()) {

		folderId := utils.GetChiURLParam(request, "folderId")
		var requestData api.ChatRequest
		defer func(Body io.ReadCloser) {
			err := Body.Close()
			if err != nil {
				logRH.Error("Couldn't close the Chat handler reader :", err)
			}
		}(request.Body)
		if err := json.NewDecoder(request.Body).Decode(&requestData); err != nil || !ValidateChatRequest(requestData.Message, folderId) {

			logRH.Warn("Bad Chat Request: ", "error:", err, "folderId:", folderId)
			WriteErrorResponse(w, http.StatusBadRequest, folderId, "Bad Request")
			return
		}

		newJob := newJobData{
			id:              utils.GetNewUUID(),
			folderId:        folderId,
			message:         requestData.Message,
			successCriteria: requestData.SuccessCriteria,
			traceId:         request.Context().Value(config.TRACE_ID_KEY).(string),
			jobType:         jobModel.JobTypeChat,
		}
		acceptJob(w, newJob)
		return
	}
	logRH.Warn("Invalid Context by request ", request.RemoteAddr)
}

// GetStatusHandler retrieves the current status of a specific job using its ID.
func GetStatusHandler(w http.ResponseWriter, r *http.Request) {
	if validateContext(r.Context()) {
		//use chi get the url id
		idString := utils.GetChiURLParam(r, "id")
		result, isFound := validateId(idString, r.Context().Value(config.TRACE_ID_KEY).(string))

		logRH.Debug("Get Status Request:", "URL path", r.URL.Path)
		if !isFound {
			WriteErrorResponse(w, http.StatusNotFound, idString, "Job not found")
			return
		}

		writeJsonResponse(w, http.StatusOK, adapter.ToAPIResponse(result))
	}
}

// PostIngestHandler receives a file via multipart/form-data, saves it to a
// temporary directory and queues an ingestion job for the folder.
func PostIngestHandler(w http.ResponseWriter, r *http.Request) {
	if validateContext(r.Context()) {

		folderId := utils.GetChiURLParam(r, "folderId")
		targetDir, errString := getTargetDirectory()

		if errString != "" {
			logRH.Error("Couldn't get target directory :", "err", errString)
			WriteErrorResponse(w, http.StatusInternalServerError, folderId, errString)
			return
		}

		const maxUploadSize = 32 << 20 //32mb
		err := r.ParseMultipartForm(maxUploadSize)
		if err != nil {
			WriteErrorResponse(w, http.StatusBadRequest, folderId, "File too large or bad request")
			return
		}

		//process request
		docName := r.FormValue("document_name")
		if docName == "" {
			WriteErrorResponse(w, http.StatusBadRequest, folderId, "document_name is required")
			return
		}

		//get the document name the user uploads
		fileReader, fileMetadata, err := r.FormFile("document")
		if err != nil {
			WriteErrorResponse(w, http.StatusBadRequest, docName, "Could not retrieve file")
			return
		}
		defer fileReader.Close()

		filename := fmt.Sprintf("%d-%s", time.Now().UnixNano(), fileMetadata.Filename)
		tempFilePath := filepath.Join(targetDir, filename)
		destinationFileWriter, err := os.Create(tempFilePath)
		if err != nil {
			WriteErrorResponse(w, http.StatusInternalServerError, docName, "Storage error")
			return
		}
		defer destinationFileWriter.Close()

		if _, err := io.Copy(destinationFileWriter, fileReader); err != nil {
			WriteErrorResponse(w, http.StatusInternalServerError, docName, "Write error")
			return
		}

		newJob := newJobData{
			id:             utils.GetNewUUID(),
			folderId:       folderId,
			traceId:        r.Context().Value(config.TRACE_ID_KEY).(string),
			jobType:        jobModel.JobTypeIngest,
			documentName:   docName,
			documentSource: tempFilePath,
		}
		acceptJob(w, newJob)
		return
	}
	logRH.Warn("Invalid Context by request ", r.RemoteAddr)
}

// PostIndexHandler queues a walk of a directory tree so every supported file
// in it lands in the folder's knowledge base.
func PostIndexHandler(w http.ResponseWriter, r *http.Request) {
	if validateContext(r.Context()) {

		folderId := utils.GetChiURLParam(r, "folderId")
		var requestData api.IndexRequest
		if err := json.NewDecoder(r.Body).Decode(&requestData); err != nil || requestData.Path == "" {
			logRH.Warn("Bad Index Request: ", "error:", err, "folderId:", folderId)
			WriteErrorResponse(w, http.StatusBadRequest, folderId, "path is required")
			return
		}

		newJob := newJobData{
			id:        utils.GetNewUUID(),
			folderId:  folderId,
			traceId:   r.Context().Value(config.TRACE_ID_KEY).(string),
			jobType:   jobModel.JobTypeIndexFolder,
			indexPath: requestData.Path,
		}
		acceptJob(w, newJob)
		return
	}
	logRH.Warn("Invalid Context by request ", r.RemoteAddr)
}

// GetSettingsHandler returns the folder's settings, falling back to defaults
// when nothing was stored yet.
func GetSettingsHandler(w http.ResponseWriter, r *http.Request) {
	if validateContext(r.Context()) {
		folderId := utils.GetChiURLParam(r, "folderId")

		settings, err := handlerInstance.settings.GetSettings(r.Context(), folderId)
		if err != nil {
			logRH.Error("Could not load settings", "folderId:", folderId, "error:", err)
			WriteErrorResponse(w, http.StatusInternalServerError, folderId, "Settings store error")
			return
		}
		writeJsonResponse(w, http.StatusOK, adapter.ToSettingsResponse(settings))
	}
}

// PutSettingsHandler overlays the submitted fields on the folder's current
// settings and persists the result. Invalid combinations are rejected.
func PutSettingsHandler(w http.ResponseWriter, r *http.Request) {
	if validateContext(r.Context()) {
		folderId := utils.GetChiURLParam(r, "folderId")

		var requestData api.SettingsRequest
		if err := json.NewDecoder(r.Body).Decode(&requestData); err != nil {
			WriteErrorResponse(w, http.StatusBadRequest, folderId, "Bad Request")
			return
		}

		current, err := handlerInstance.settings.GetSettings(r.Context(), folderId)
		if err != nil {
			WriteErrorResponse(w, http.StatusInternalServerError, folderId, "Settings store error")
			return
		}

		updated := adapter.ApplySettingsRequest(current, requestData)
		if err := handlerInstance.settings.SaveSettings(r.Context(), updated); err != nil {
			if errors.Is(err, commonModels.ErrInvalidConfiguration) {
				WriteErrorResponse(w, http.StatusBadRequest, folderId, err.Error())
				return
			}
			WriteErrorResponse(w, http.StatusInternalServerError, folderId, "Settings store error")
			return
		}
		writeJsonResponse(w, http.StatusOK, adapter.ToSettingsResponse(updated))
	}
}

// GetHistoryHandler returns the folder's conversation transcript.
func GetHistoryHandler(w http.ResponseWriter, r *http.Request) {
	if validateContext(r.Context()) {
		folderId := utils.GetChiURLParam(r, "folderId")

		messages, err := handlerInstance.conversations.GetHistory(r.Context(), folderId)
		if err != nil {
			logRH.Error("Could not load history", "folderId:", folderId, "error:", err)
			WriteErrorResponse(w, http.StatusInternalServerError, folderId, "Conversation store error")
			return
		}
		writeJsonResponse(w, http.StatusOK, adapter.ToHistoryResponse(folderId, messages))
	}
}

// DeleteFolderHandler drops the folder's index, transcript and settings.
// This is synchronous, a deleted folder should be gone when the call returns.
func DeleteFolderHandler(w http.ResponseWriter, r *http.Request) {
	if validateContext(r.Context()) {
		folderId := utils.GetChiURLParam(r, "folderId")

		if err := handlerInstance.sidekick.DeleteFolder(r.Context(), folderId); err != nil {
			logRH.Error("Could not delete folder", "folderId:", folderId, "error:", err)
			WriteErrorResponse(w, http.StatusInternalServerError, folderId, "Delete failed")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
