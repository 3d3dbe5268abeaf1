package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/akolanti/DocQueryAPI/internal/adapter"
	"github.com/akolanti/DocQueryAPI/internal/config"
	"github.com/akolanti/DocQueryAPI/internal/domain/commonModels"
	"github.com/akolanti/DocQueryAPI/internal/domain/jobModel"
	"github.com/akolanti/DocQueryAPI/pkg/logger_i"
)

var logRH = logger_i.NewLogger("RequestHandler")

func writeJsonResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		// headers are already sent
		logRH.Error("Error encoding response", "error", err)
	}
}

func validateId(id string, traceId string) (result jobModel.Job, isFound bool) {
	if id == "" {
		logRH.Warn("Empty Job ID")
		return jobModel.Job{}, false
	}
	return GetJobStatus(id, traceId)
}

func traceIdFrom(ctx context.Context) string {
	trace, _ := ctx.Value(config.TRACE_ID_KEY).(string)
	return trace
}

func validateContext(ctx context.Context) bool {
	if err := ctx.Err(); err != nil {
		logRH.With("traceId", traceIdFrom(ctx)).Warn("context error", "error", err)
		return false
	}
	return true
}

func WriteErrorResponse(w http.ResponseWriter, httpCode int, id string, error string) {
	writeJsonResponse(w, httpCode, adapter.BadRequest(id, error, httpCode))
}

// writeDomainError maps the error taxonomy onto status codes. Upstream causes
// are logged but only the failing service is named to the caller.
func writeDomainError(w http.ResponseWriter, ctx context.Context, id string, err error) {
	log := logRH.With("traceId", traceIdFrom(ctx), "id", id)

	var validation *commonModels.ValidationError
	var upstream *commonModels.UpstreamServiceError
	switch {
	case errors.Is(err, commonModels.ErrNotFound):
		WriteErrorResponse(w, http.StatusNotFound, id, "File not found")
	case errors.As(err, &validation):
		WriteErrorResponse(w, http.StatusBadRequest, id, validation.Message)
	case errors.As(err, &upstream):
		log.Error("upstream failure", "service", upstream.Service, "error", upstream.Err)
		WriteErrorResponse(w, http.StatusInternalServerError, id, fmt.Sprintf("%s service error", upstream.Service))
	default:
		log.Error("unexpected failure", "error", err)
		WriteErrorResponse(w, http.StatusInternalServerError, id, "Internal Server Error")
	}
}
