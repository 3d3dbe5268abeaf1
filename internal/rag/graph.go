package rag

import (
	"github.com/akolanti/DocQueryAPI/internal/domain/queryModel"
)

// resolveAnswerGraph maps each query alias to its result. Aliases whose QUERY
// block has no linked QUERY_RESULT still appear, as the fallback record with
// the QUERY block id. Aliases absent from the graph are left out. When an
// alias repeats, the first answered QUERY block wins.
func resolveAnswerGraph(graph queryModel.RawAnswerGraph) map[string]queryModel.QueryResult {
	byId := make(map[string]queryModel.Block, len(graph.Blocks))
	for _, b := range graph.Blocks {
		byId[b.Id] = b
	}

	resolved := make(map[string]queryModel.QueryResult)
	answered := make(map[string]bool)
	for _, b := range graph.Blocks {
		if b.BlockType != queryModel.BlockTypeQuery || b.QueryAlias == "" || answered[b.QueryAlias] {
			continue
		}

		answer, ok := findAnswer(b, byId)
		if !ok {
			if _, seen := resolved[b.QueryAlias]; !seen {
				resolved[b.QueryAlias] = queryModel.NoAnswer(b.QueryText, b.Id)
			}
			continue
		}
		answered[b.QueryAlias] = true
		resolved[b.QueryAlias] = queryModel.QueryResult{
			Query:      b.QueryText,
			Answer:     answer.Text,
			Confidence: confidenceOrZero(answer.Confidence),
			Geometry:   answer.Geometry,
			QueryId:    b.Id,
		}
	}
	return resolved
}

func findAnswer(query queryModel.Block, byId map[string]queryModel.Block) (queryModel.Block, bool) {
	for _, rel := range query.Relationships {
		if rel.Type != queryModel.RelationshipAnswer {
			continue
		}
		for _, id := range rel.Ids {
			if target, ok := byId[id]; ok && target.BlockType == queryModel.BlockTypeQueryResult {
				return target, true
			}
		}
	}
	return queryModel.Block{}, false
}

func confidenceOrZero(c *float64) float64 {
	if c == nil {
		return 0
	}
	return *c
}

// assembleResults emits one result per original query in input order.
func assembleResults(originals []string, batch queryModel.QueryBatch, resolved map[string]queryModel.QueryResult) []queryModel.QueryResult {
	results := make([]queryModel.QueryResult, len(batch))
	for i, item := range batch {
		r, ok := resolved[item.Alias]
		if !ok {
			results[i] = queryModel.NoAnswer(originals[i], "")
			continue
		}
		r.Query = originals[i]
		results[i] = r
	}
	return results
}
