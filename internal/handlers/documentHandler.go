package handlers

import (
	"encoding/base64"
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/akolanti/DocQueryAPI/internal/adapter"
	"github.com/akolanti/DocQueryAPI/internal/adapter/utils"
	"github.com/akolanti/DocQueryAPI/internal/api"
	"github.com/akolanti/DocQueryAPI/internal/config"
	"github.com/akolanti/DocQueryAPI/internal/data/store"
	"github.com/akolanti/DocQueryAPI/internal/domain/commonModels"
	"github.com/akolanti/DocQueryAPI/internal/domain/queryModel"
	"github.com/akolanti/DocQueryAPI/internal/imaging"
	"github.com/akolanti/DocQueryAPI/internal/rag"
)

const multipartMemory = 32 << 20

// SweeperStatus is the part of the retention sweeper the health check reads.
type SweeperStatus interface {
	IsRunning() bool
}

// DocumentHandler serves the synchronous document endpoints.
type DocumentHandler struct {
	documents   store.DocumentStore
	queries     rag.Service
	maxFileSize int64
	sweeper     SweeperStatus
}

// NewDocumentHandler builds the handler. sweeper may be nil when retention is
// disabled in this process.
func NewDocumentHandler(documents store.DocumentStore, queries rag.Service, maxFileSize int64, sweeper SweeperStatus) *DocumentHandler {
	if maxFileSize <= 0 {
		maxFileSize = config.MaxFileSize
	}
	return &DocumentHandler{
		documents:   documents,
		queries:     queries,
		maxFileSize: maxFileSize,
		sweeper:     sweeper,
	}
}

// UploadHandler godoc
// @Summary      Upload a document
// @Description  Stores a PDF or image under a new file id. Files are kept for the retention window.
// @Tags         Documents
// @Accept       multipart/form-data
// @Produce      json
// @Param        file  formData  file  true  "The PDF, PNG or JPEG to upload"
// @Success      200  {object}  api.UploadResponse
// @Failure      400  {object}  api.JobResponse "File too large, wrong type or missing"
// @Failure      500  {object}  api.JobResponse "Storage error"
// @Router       /upload [post]
func (h *DocumentHandler) UploadHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}

	//the multipart envelope gets a little room on top of the file limit
	r.Body = http.MaxBytesReader(w, r.Body, h.maxFileSize+1<<20)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			WriteErrorResponse(w, http.StatusBadRequest, "", "File too large")
			return
		}
		WriteErrorResponse(w, http.StatusBadRequest, "", "Bad Request")
		return
	}

	fileReader, fileMetadata, err := r.FormFile("file")
	if err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, "", "Could not retrieve file")
		return
	}
	defer fileReader.Close()

	data, err := io.ReadAll(io.LimitReader(fileReader, h.maxFileSize+1))
	if err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, fileMetadata.Filename, "Could not read file")
		return
	}
	if int64(len(data)) > h.maxFileSize {
		WriteErrorResponse(w, http.StatusBadRequest, fileMetadata.Filename, "File too large")
		return
	}
	if !allowedFileType(fileMetadata.Filename) {
		WriteErrorResponse(w, http.StatusBadRequest, fileMetadata.Filename, "File type not allowed")
		return
	}

	ref, err := store.SaveDocument(r.Context(), h.documents, fileMetadata.Filename, data)
	if err != nil {
		writeDomainError(w, r.Context(), fileMetadata.Filename, err)
		return
	}
	logRH.With("traceId", traceIdFrom(r.Context())).Info("Document uploaded", "fileId", ref.FileId, "bytes", len(data))
	writeJsonResponse(w, http.StatusOK, adapter.ToUploadResponse(ref))
}

// QueryHandler godoc
// @Summary      Query a document
// @Description  Answers one or more natural language queries against an uploaded document. A single query returns the legacy singular shape; several queries return a results list. Images are annotated PNGs and are omitted for PDFs.
// @Tags         Query
// @Accept       multipart/form-data
// @Produce      json
// @Param        file_id     formData  string  true   "File ID returned by /upload"
// @Param        user_query  formData  string  true   "Query text, repeat for several queries"
// @Param        rephrase    formData  bool    false  "Rephrase queries with the configured LLM"
// @Param        annotate    formData  bool    false  "Return annotated images (default true)"
// @Success      200  {object}  api.QueryResponse       "Single query"
// @Success      200  {object}  api.BatchQueryResponse  "Several queries"
// @Failure      400  {object}  api.JobResponse "Missing or invalid fields"
// @Failure      404  {object}  api.JobResponse "File not found"
// @Failure      500  {object}  api.JobResponse "Upstream service error"
// @Router       /query [post]
func (h *DocumentHandler) QueryHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}
	if err := r.ParseMultipartForm(multipartMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		WriteErrorResponse(w, http.StatusBadRequest, "", "Bad Request")
		return
	}

	fileId := strings.TrimSpace(r.FormValue("file_id"))
	if fileId == "" {
		writeDomainError(w, r.Context(), "", commonModels.NewValidationError("file_id is required"))
		return
	}
	queries := r.Form["user_query"]
	rephrase := formBool(r, "rephrase", false)
	annotate := formBool(r, "annotate", true)

	_, document, err := store.FindDocument(r.Context(), h.documents, fileId)
	if err != nil {
		writeDomainError(w, r.Context(), fileId, err)
		return
	}

	results, err := h.queries.Resolve(r.Context(), document, queries, rephrase)
	if err != nil {
		writeDomainError(w, r.Context(), fileId, err)
		return
	}

	if len(results) == 1 {
		var image *api.ImagePayload
		if annotate {
			image = h.annotate(r, fileId, document, results[0])
		}
		writeJsonResponse(w, http.StatusOK, adapter.ToQueryResponse(results[0], image))
		return
	}

	response := api.BatchQueryResponse{FileId: fileId, Results: make([]api.QueryResult, len(results))}
	for i, result := range results {
		response.Results[i] = adapter.ToAPIResult(result)
		if annotate {
			response.Results[i].Image = h.annotate(r, fileId, document, result)
		}
	}
	writeJsonResponse(w, http.StatusOK, response)
}

// DeleteHandler godoc
// @Summary      Delete a document
// @Description  Removes every stored object for the file id ahead of the retention window.
// @Tags         Documents
// @Produce      json
// @Param        id   path      string  true  "File ID"
// @Success      200  {object}  api.DeleteResponse
// @Failure      404  {object}  api.JobResponse "File not found"
// @Failure      500  {object}  api.JobResponse "Storage error"
// @Router       /documents/{id} [delete]
func (h *DocumentHandler) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}
	fileId := utils.GetChiURLParam(r, "id")
	deleted, err := store.DeleteDocument(r.Context(), h.documents, fileId)
	if err != nil {
		writeDomainError(w, r.Context(), fileId, err)
		return
	}
	logRH.With("traceId", traceIdFrom(r.Context())).Info("Document deleted", "fileId", fileId, "objects", deleted)
	writeJsonResponse(w, http.StatusOK, api.DeleteResponse{
		Message: "Document deleted",
		FileId:  fileId,
		Deleted: deleted,
	})
}

// HealthHandler godoc
// @Summary      Health check
// @Tags         Health
// @Produce      json
// @Success      200  {object}  api.HealthResponse
// @Router       /health [get]
func (h *DocumentHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	sweeper := "disabled"
	if h.sweeper != nil {
		sweeper = "stopped"
		if h.sweeper.IsRunning() {
			sweeper = "running"
		}
	}
	writeJsonResponse(w, http.StatusOK, api.HealthResponse{Status: "ok", Sweeper: sweeper})
}

func (h *DocumentHandler) annotate(r *http.Request, fileId string, document []byte, result queryModel.QueryResult) *api.ImagePayload {
	marked, err := imaging.Annotate(document, result.Geometry)
	if err != nil {
		if !errors.Is(err, imaging.ErrUnsupportedImage) {
			logRH.With("traceId", traceIdFrom(r.Context())).Warn("Annotation failed, omitting image", "fileId", fileId, "error", err)
		}
		return nil
	}
	return &api.ImagePayload{
		Content:     base64.StdEncoding.EncodeToString(marked),
		ContentType: imaging.ContentType,
	}
}

func allowedFileType(filename string) bool {
	return slices.Contains(config.AllowedFileTypes, strings.ToLower(filepath.Ext(filename)))
}

func formBool(r *http.Request, key string, fallback bool) bool {
	val := r.FormValue(key)
	if val == "" {
		return fallback
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return b
}
