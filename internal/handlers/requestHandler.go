package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/akolanti/DocQueryAPI/internal/adapter"
	"github.com/akolanti/DocQueryAPI/internal/adapter/utils"
	"github.com/akolanti/DocQueryAPI/internal/api"
	"github.com/akolanti/DocQueryAPI/internal/domain/commonModels"
	"github.com/akolanti/DocQueryAPI/internal/rag"
)

// GetStatusHandler godoc
// @Summary      Get job status
// @Description  Retrieves the current status of an async query job using its ID.
// @Tags         Job Status
// @Accept       json
// @Produce      json
// @Param        id   path      string  true  "Job ID"
// @Success      200  {object}  api.JobResponse   "Successful retrieval of job status"
// @Failure      404  {object}  api.JobResponse   "Job not found (returns Error object within JobResponse)"
// @Router       /status/{id} [get]
func GetStatusHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}
	idString := utils.GetChiURLParam(r, "id")
	logRH.Debug("Get Status Request", "URL path", r.URL.Path)

	result, isFound := validateId(idString, traceIdFrom(r.Context()))
	if !isFound {
		WriteErrorResponse(w, http.StatusNotFound, idString, "Job not found")
		return
	}
	writeJsonResponse(w, http.StatusOK, adapter.ToAPIResponse(result))
}

// PostAsyncQueryHandler godoc
// @Summary      Queue a query job
// @Description  Accepts a file id and up to 15 queries, queues a background job and returns its ID.
// @Tags         Query
// @Accept       json
// @Produce      json
// @Param        request  body      api.AsyncQueryRequest  true  "File ID, queries and rephrase flag"
// @Success      202      {object}  api.InitJobResponse    "Job successfully created"
// @Failure      400      {object}  api.JobResponse        "Invalid request data"
// @Failure      503      {object}  api.JobResponse        "Async jobs are not enabled"
// @Router       /query/async [post]
func PostAsyncQueryHandler(w http.ResponseWriter, request *http.Request) {
	if !validateContext(request.Context()) {
		logRH.Warn("Invalid Context by request", "remote", request.RemoteAddr)
		return
	}
	if !jobsEnabled() {
		WriteErrorResponse(w, http.StatusServiceUnavailable, "", "Async jobs are not enabled")
		return
	}

	var requestData api.AsyncQueryRequest
	defer func(Body io.ReadCloser) {
		if err := Body.Close(); err != nil {
			logRH.Error("Couldn't close the async query reader", "error", err)
		}
	}(request.Body)

	if err := json.NewDecoder(request.Body).Decode(&requestData); err != nil {
		logRH.Warn("Bad async query request", "error", err)
		WriteErrorResponse(w, http.StatusBadRequest, "", "Bad Request")
		return
	}
	if requestData.FileId == "" {
		writeDomainError(w, request.Context(), "", commonModels.NewValidationError("file_id is required"))
		return
	}
	if err := rag.ValidateQueries(requestData.Queries); err != nil {
		writeDomainError(w, request.Context(), requestData.FileId, err)
		return
	}

	newData := newJobData{
		id:       utils.GetNewUUID(),
		traceId:  traceIdFrom(request.Context()),
		fileId:   requestData.FileId,
		queries:  requestData.Queries,
		rephrase: requestData.Rephrase,
	}
	CreateNewJob(newData)
	writeJsonResponse(w, http.StatusAccepted, adapter.ToInitJobResponse(newData.id))
}
