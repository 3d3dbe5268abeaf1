package rag_test

import (
	"context"
	"sync"

	"github.com/akolanti/DocQueryAPI/internal/domain/queryModel"
)

// MockExtractor implements extraction.Extractor
type MockExtractor struct {
	OnAnalyze func(ctx context.Context, document []byte, batch queryModel.QueryBatch) (queryModel.RawAnswerGraph, error)

	mu      sync.Mutex
	Batches []queryModel.QueryBatch
}

func (m *MockExtractor) Analyze(ctx context.Context, document []byte, batch queryModel.QueryBatch) (queryModel.RawAnswerGraph, error) {
	m.mu.Lock()
	m.Batches = append(m.Batches, batch)
	m.mu.Unlock()
	if m.OnAnalyze != nil {
		return m.OnAnalyze(ctx, document, batch)
	}
	return queryModel.RawAnswerGraph{}, nil
}

func (m *MockExtractor) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Batches)
}

// MockLLM implements llm.Provider
type MockLLM struct {
	OnRephrase func(ctx context.Context, text string) (string, error)
}

func (m *MockLLM) Rephrase(ctx context.Context, text string) (string, error) {
	if m.OnRephrase != nil {
		return m.OnRephrase(ctx, text)
	}
	return "rephrased " + text, nil
}

// answerAll answers every query in the batch with "answer to <text>".
func answerAll(batch queryModel.QueryBatch) queryModel.RawAnswerGraph {
	var graph queryModel.RawAnswerGraph
	for i, item := range batch {
		qid := "q-" + item.Alias
		rid := "r-" + item.Alias
		conf := float64(90 + i)
		graph.Blocks = append(graph.Blocks,
			queryModel.Block{
				Id: qid, BlockType: queryModel.BlockTypeQuery, QueryAlias: item.Alias, QueryText: item.Text,
				Relationships: []queryModel.Relationship{{Type: queryModel.RelationshipAnswer, Ids: []string{rid}}},
			},
			queryModel.Block{
				Id: rid, BlockType: queryModel.BlockTypeQueryResult, Text: "answer to " + item.Text, Confidence: &conf,
				Geometry: &queryModel.BoundingBox{Left: 0.1, Top: 0.2, Width: 0.3, Height: 0.05},
			},
		)
	}
	return graph
}
