package rag

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/akolanti/DocQueryAPI/internal/config"
	"github.com/akolanti/DocQueryAPI/internal/data/store"
	"github.com/akolanti/DocQueryAPI/internal/domain/commonModels"
	"github.com/akolanti/DocQueryAPI/internal/domain/jobModel"
	"github.com/akolanti/DocQueryAPI/internal/domain/queryModel"
	"github.com/akolanti/DocQueryAPI/internal/metrics"
	"github.com/akolanti/DocQueryAPI/internal/rag/extraction"
	"github.com/akolanti/DocQueryAPI/internal/rag/llm"
	"github.com/akolanti/DocQueryAPI/pkg/logger_i"
)

// Service resolves natural language queries against one document. The HTTP
// handlers, the worker pool and the MCP tool all go through it.
type Service interface {
	Resolve(ctx context.Context, document []byte, queries []string, rephrase bool) ([]queryModel.QueryResult, error)
	ResolveOne(ctx context.Context, document []byte, query string, rephrase bool) (queryModel.QueryResult, error)
	ProcessRequest(ctx context.Context, job jobModel.Job) jobModel.Job
}

// service holds the collaborators. rephraser may be nil, in which case every
// query keeps its original text.
type service struct {
	extractor extraction.Extractor
	rephraser llm.Provider
	documents store.DocumentStore
	logger    *logger_i.Logger
}

func NewService(extractor extraction.Extractor, rephraser llm.Provider, documents store.DocumentStore) Service {
	return &service{
		extractor: extractor,
		rephraser: rephraser,
		documents: documents,
		logger:    logger_i.NewLogger("Query Engine"),
	}
}

func (s *service) Resolve(ctx context.Context, document []byte, queries []string, rephrase bool) ([]queryModel.QueryResult, error) {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	if err := ValidateQueries(queries); err != nil {
		return nil, err
	}

	texts := queries
	if rephrase {
		texts = s.executeRephraseStep(ctx, log, queries)
	}
	batch := queryModel.NewQueryBatch(texts)

	graph, err := s.executeExtractionStep(ctx, log, document, batch)
	if err != nil {
		return nil, commonModels.NewUpstreamError("extraction", err)
	}

	results := assembleResults(queries, batch, resolveAnswerGraph(graph))
	for _, r := range results {
		metrics.CaptureQueryOutcome(r.Geometry != nil || r.Answer != config.NoAnswerText)
	}
	log.Debug("resolved query batch", "queries", len(queries), "blocks", len(graph.Blocks))
	return results, nil
}

// ResolveOne is Resolve on a single query.
func (s *service) ResolveOne(ctx context.Context, document []byte, query string, rephrase bool) (queryModel.QueryResult, error) {
	results, err := s.Resolve(ctx, document, []string{query}, rephrase)
	if err != nil {
		return queryModel.QueryResult{}, err
	}
	return results[0], nil
}

// ProcessRequest runs an async query job: load the document, resolve, and
// record the outcome on the job.
func (s *service) ProcessRequest(ctx context.Context, job jobModel.Job) jobModel.Job {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "jobId", job.Id)

	processContext, cancel := context.WithTimeout(ctx, config.JobTimeout)
	defer cancel()

	job = logOutput(job, jobModel.StorageCall, log)
	_, document, err := store.FindDocument(processContext, s.documents, job.JobPayload.FileId)
	if err != nil {
		return s.jobError(job, err, "DOCUMENT_LOOKUP_FAILURE")
	}

	job = logOutput(job, jobModel.ExtractionCall, log)
	results, err := s.Resolve(processContext, document, job.JobPayload.Queries, job.JobPayload.Rephrase)
	if err != nil {
		return s.jobError(job, err, "QUERY_RESOLUTION_FAILURE")
	}
	return returnOutput(job, results)
}

// ValidateQueries accepts 1..MaxQueriesPerRequest non-blank queries.
func ValidateQueries(queries []string) error {
	if len(queries) == 0 {
		return commonModels.NewValidationError("at least one query is required")
	}
	if len(queries) > config.MaxQueriesPerRequest {
		return commonModels.NewValidationError("at most %d queries are allowed, got %d", config.MaxQueriesPerRequest, len(queries))
	}
	for i, q := range queries {
		if strings.TrimSpace(q) == "" {
			return commonModels.NewValidationError("query %d is empty", i)
		}
	}
	return nil
}

// errorCode maps the domain error taxonomy onto job error codes.
func errorCode(err error) (int, bool) {
	switch {
	case errors.Is(err, commonModels.ErrNotFound):
		return 404, false
	case commonModels.IsValidationError(err):
		return 400, false
	default:
		return 500, true
	}
}

func (s *service) jobError(job jobModel.Job, err error, message string) jobModel.Job {
	s.logger.Error(message, "jobId", job.Id, "error", err)

	code, retry := errorCode(err)
	job.Error = jobModel.JobError{
		Code:    code,
		Message: publicMessage(code, err),
		Retry:   retry,
	}
	job.Status = jobModel.JobStatusError
	job.CurrentStep = jobModel.Error
	job.EndTime = time.Now()
	return job
}

func publicMessage(code int, err error) string {
	if code == 500 {
		return "Internal Server Error"
	}
	return fmt.Sprint(err)
}
