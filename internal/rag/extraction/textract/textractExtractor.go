package textract

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/akolanti/DocQueryAPI/internal/config"
	"github.com/akolanti/DocQueryAPI/internal/domain/queryModel"
	"github.com/akolanti/DocQueryAPI/pkg/logger_i"
	"github.com/aws/aws-sdk-go-v2/aws"
	awstextract "github.com/aws/aws-sdk-go-v2/service/textract"
	"github.com/aws/aws-sdk-go-v2/service/textract/types"
	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// ErrCircuitOpen is returned while the breaker rejects calls.
var ErrCircuitOpen = errors.New("extraction circuit breaker is open")

// AnalyzeAPI is the subset of the Textract client used here.
type AnalyzeAPI interface {
	AnalyzeDocument(ctx context.Context, params *awstextract.AnalyzeDocumentInput, optFns ...func(*awstextract.Options)) (*awstextract.AnalyzeDocumentOutput, error)
}

type Extractor struct {
	client  AnalyzeAPI
	timeout time.Duration
	breaker *gobreaker.CircuitBreaker
	logger  *logger_i.Logger
}

func NewExtractor(client AnalyzeAPI, timeout time.Duration) *Extractor {
	logger := logger_i.NewLogger("Textract")
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "Textract",
		MaxRequests: config.BreakerMaxRequests,
		Interval:    config.BreakerInterval,
		Timeout:     config.BreakerOpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= config.BreakerMinRequests && failureRatio >= config.BreakerFailureRatio
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("circuit breaker state change", "name", name, "from", from.String(), "to", to.String())
		},
	})
	return &Extractor{
		client:  client,
		timeout: timeout,
		breaker: breaker,
		logger:  logger,
	}
}

func (e *Extractor) Analyze(ctx context.Context, document []byte, batch queryModel.QueryBatch) (queryModel.RawAnswerGraph, error) {
	ctx, span := otel.Tracer("textract-extractor").Start(ctx, "textract.analyze_document")
	defer span.End()
	span.SetAttributes(
		attribute.Int("textract.queries", len(batch)),
		attribute.Int("textract.document_bytes", len(document)),
	)

	queries := make([]types.Query, len(batch))
	for i, item := range batch {
		queries[i] = types.Query{
			Text:  aws.String(item.Text),
			Alias: aws.String(item.Alias),
		}
	}
	input := &awstextract.AnalyzeDocumentInput{
		Document:      &types.Document{Bytes: document},
		FeatureTypes:  []types.FeatureType{types.FeatureTypeQueries},
		QueriesConfig: &types.QueriesConfig{Queries: queries},
	}

	result, err := e.breaker.Execute(func() (interface{}, error) {
		callCtx, cancel := context.WithTimeout(ctx, e.timeout)
		defer cancel()
		return e.client.AnalyzeDocument(callCtx, input)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			err = fmt.Errorf("%w: %v", ErrCircuitOpen, err)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "analyze document failed")
		e.logger.Error("analyze document failed", "error", err)
		return queryModel.RawAnswerGraph{}, err
	}

	out := result.(*awstextract.AnalyzeDocumentOutput)
	graph := toAnswerGraph(out.Blocks)
	span.SetAttributes(attribute.Int("textract.blocks", len(graph.Blocks)))
	return graph, nil
}

// toAnswerGraph keeps only the block types the resolver reads.
func toAnswerGraph(blocks []types.Block) queryModel.RawAnswerGraph {
	graph := queryModel.RawAnswerGraph{Blocks: make([]queryModel.Block, 0, len(blocks))}
	for _, b := range blocks {
		blockType := queryModel.BlockType(b.BlockType)
		if blockType != queryModel.BlockTypeQuery && blockType != queryModel.BlockTypeQueryResult {
			continue
		}
		block := queryModel.Block{
			Id:        aws.ToString(b.Id),
			BlockType: blockType,
			Text:      aws.ToString(b.Text),
		}
		if b.Confidence != nil {
			c := float64(*b.Confidence)
			block.Confidence = &c
		}
		if b.Geometry != nil && b.Geometry.BoundingBox != nil {
			box := b.Geometry.BoundingBox
			block.Geometry = &queryModel.BoundingBox{
				Left:   float64(box.Left),
				Top:    float64(box.Top),
				Width:  float64(box.Width),
				Height: float64(box.Height),
			}
		}
		if b.Query != nil {
			block.QueryAlias = aws.ToString(b.Query.Alias)
			block.QueryText = aws.ToString(b.Query.Text)
		}
		for _, rel := range b.Relationships {
			block.Relationships = append(block.Relationships, queryModel.Relationship{
				Type: queryModel.RelationshipType(rel.Type),
				Ids:  rel.Ids,
			})
		}
		graph.Blocks = append(graph.Blocks, block)
	}
	return graph
}
