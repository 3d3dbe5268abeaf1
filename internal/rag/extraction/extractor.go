package extraction

import (
	"context"

	"github.com/akolanti/DocQueryAPI/internal/domain/queryModel"
)

// Extractor runs one query batch against a document and returns the raw block
// graph. Implementations make exactly one upstream call per Analyze.
type Extractor interface {
	Analyze(ctx context.Context, document []byte, batch queryModel.QueryBatch) (queryModel.RawAnswerGraph, error)
}
