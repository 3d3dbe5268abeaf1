package queryModel

import (
	"fmt"

	"github.com/akolanti/DocQueryAPI/internal/config"
)

type BlockType string
type RelationshipType string

const (
	BlockTypeQuery       BlockType = "QUERY"
	BlockTypeQueryResult BlockType = "QUERY_RESULT"

	RelationshipAnswer RelationshipType = "ANSWER"
)

// QueryItem is one question sent to the extraction service.
type QueryItem struct {
	Alias string `json:"alias"`
	Text  string `json:"text"`
}

type QueryBatch []QueryItem

// NewQueryBatch assigns aliases query_0..query_{n-1} in input order.
func NewQueryBatch(texts []string) QueryBatch {
	batch := make(QueryBatch, len(texts))
	for i, text := range texts {
		batch[i] = QueryItem{Alias: Alias(i), Text: text}
	}
	return batch
}

func Alias(i int) string {
	return fmt.Sprintf("query_%d", i)
}

// BoundingBox uses page relative coordinates in [0,1].
type BoundingBox struct {
	Left   float64 `json:"Left"`
	Top    float64 `json:"Top"`
	Width  float64 `json:"Width"`
	Height float64 `json:"Height"`
}

type Relationship struct {
	Type RelationshipType `json:"type"`
	Ids  []string         `json:"ids"`
}

// Block is one node of the extraction response. Confidence and Geometry are
// optional; QueryAlias and QueryText are set on QUERY blocks only.
type Block struct {
	Id            string         `json:"id"`
	BlockType     BlockType      `json:"block_type"`
	Text          string         `json:"text,omitempty"`
	Confidence    *float64       `json:"confidence,omitempty"`
	Geometry      *BoundingBox   `json:"geometry,omitempty"`
	QueryAlias    string         `json:"query_alias,omitempty"`
	QueryText     string         `json:"query_text,omitempty"`
	Relationships []Relationship `json:"relationships,omitempty"`
}

// RawAnswerGraph is the unordered block list returned by one analysis.
type RawAnswerGraph struct {
	Blocks []Block `json:"blocks"`
}

type QueryResult struct {
	Query      string       `json:"query"`
	Answer     string       `json:"answer"`
	Confidence float64      `json:"confidence"`
	Geometry   *BoundingBox `json:"geometry"`
	QueryId    string       `json:"query_id"`
}

// NoAnswer is the fallback record for a query the service did not answer.
func NoAnswer(query, queryId string) QueryResult {
	return QueryResult{
		Query:      query,
		Answer:     config.NoAnswerText,
		Confidence: 0,
		Geometry:   nil,
		QueryId:    queryId,
	}
}
