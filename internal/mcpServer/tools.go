package mcpServer

import (
	"context"
	"time"

	"github.com/akolanti/DocQueryAPI/internal/config"
	"github.com/akolanti/DocQueryAPI/internal/data/store"
	"github.com/akolanti/DocQueryAPI/internal/domain/commonModels"
	"github.com/akolanti/DocQueryAPI/internal/domain/queryModel"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type QueryInput struct {
	FileId   string   `json:"file_id" jsonschema:"the file id returned by the upload endpoint"`
	Queries  []string `json:"queries" jsonschema:"natural language questions about the document, at most 15"`
	Rephrase bool     `json:"rephrase,omitempty" jsonschema:"rephrase the questions with the configured LLM first"`
}

type QueryOutput struct {
	FileId  string                   `json:"file_id"`
	Results []queryModel.QueryResult `json:"results"`
}

type ListInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"maximum number of documents to return (default 50)"`
}

type ListOutput struct {
	Documents []DocumentOutput `json:"documents"`
	Count     int              `json:"count"`
}

type DocumentOutput struct {
	FileId       string `json:"file_id"`
	StorageKey   string `json:"storage_key"`
	LastModified string `json:"last_modified"`
}

func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "query_document",
		Description: "Answer questions about an uploaded document, with confidence and answer location",
	}, s.handleQuery)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_documents",
		Description: "List documents still inside the retention window",
	}, s.handleList)
}

func (s *Server) handleQuery(ctx context.Context, _ *mcp.CallToolRequest, input QueryInput) (*mcp.CallToolResult, QueryOutput, error) {
	_, document, err := store.FindDocument(ctx, s.documents, input.FileId)
	if err != nil {
		return nil, QueryOutput{}, err
	}
	results, err := s.queries.Resolve(ctx, document, input.Queries, input.Rephrase)
	if err != nil {
		return nil, QueryOutput{}, err
	}
	return nil, QueryOutput{FileId: input.FileId, Results: results}, nil
}

func (s *Server) handleList(ctx context.Context, _ *mcp.CallToolRequest, input ListInput) (*mcp.CallToolResult, ListOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = 50
	}
	now := s.now()
	output := ListOutput{Documents: []DocumentOutput{}}
	for meta, err := range s.documents.ListByPrefix(ctx, config.DocumentKeyPrefix) {
		if err != nil {
			return nil, ListOutput{}, commonModels.NewUpstreamError("storage", err)
		}
		if now.Sub(meta.LastModified) > s.window {
			continue
		}
		output.Documents = append(output.Documents, DocumentOutput{
			FileId:       commonModels.FileIdFromKey(meta.StorageKey),
			StorageKey:   meta.StorageKey,
			LastModified: meta.LastModified.UTC().Format(time.RFC3339),
		})
		if len(output.Documents) == limit {
			break
		}
	}
	output.Count = len(output.Documents)
	return nil, output, nil
}
