package rag

import (
	"context"
	"time"

	"github.com/akolanti/DocQueryAPI/internal/domain/jobModel"
	"github.com/akolanti/DocQueryAPI/internal/domain/queryModel"
	"github.com/akolanti/DocQueryAPI/internal/metrics"
	"github.com/akolanti/DocQueryAPI/pkg/logger_i"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("query-engine")

func returnOutput(job jobModel.Job, results []queryModel.QueryResult) jobModel.Job {
	job.JobPayload.Results = results
	job.CurrentStep = jobModel.Complete
	return job
}

func logOutput(job jobModel.Job, status jobModel.InternalStatus, log *logger_i.Logger) jobModel.Job {
	job.CurrentStep = status
	log.Debug("ProcessRequest", "Current Status", job.CurrentStep)
	return job
}

// executeRephraseStep rephrases each query in order. A failed or empty reply
// keeps the original text for that slot only.
func (s *service) executeRephraseStep(ctx context.Context, log *logger_i.Logger, queries []string) []string {
	texts := make([]string, len(queries))
	copy(texts, queries)
	if s.rephraser == nil {
		log.Warn("rephrasing requested but no rephraser is configured")
		return texts
	}

	ctx, span := tracer.Start(ctx, "rephrase")
	defer span.End()

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("rephrase", time.Since(start)) }()

	fallbacks := 0
	for i, q := range queries {
		rephrased, err := s.rephraser.Rephrase(ctx, q)
		if err != nil || rephrased == "" {
			log.Warn("rephrase failed, keeping original query", "index", i, "error", err)
			metrics.IncrementRephraseFallback()
			fallbacks++
			continue
		}
		texts[i] = rephrased
	}
	span.SetAttributes(
		attribute.Int("rephrase.queries", len(queries)),
		attribute.Int("rephrase.fallbacks", fallbacks),
	)
	return texts
}

func (s *service) executeExtractionStep(ctx context.Context, log *logger_i.Logger, document []byte, batch queryModel.QueryBatch) (queryModel.RawAnswerGraph, error) {
	ctx, span := tracer.Start(ctx, "extraction")
	defer span.End()

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("extraction", time.Since(start)) }()

	graph, err := s.extractor.Analyze(ctx, document, batch)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "extraction failed")
		log.Error("extraction failed", "error", err)
		return queryModel.RawAnswerGraph{}, err
	}
	span.SetAttributes(attribute.Int("extraction.blocks", len(graph.Blocks)))
	return graph, nil
}
