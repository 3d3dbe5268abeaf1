package mcpServer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/akolanti/DocQueryAPI/internal/data/store"
	"github.com/akolanti/DocQueryAPI/internal/domain/commonModels"
	"github.com/akolanti/DocQueryAPI/internal/domain/jobModel"
	"github.com/akolanti/DocQueryAPI/internal/domain/queryModel"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockQueries struct {
	OnResolve func(ctx context.Context, document []byte, queries []string, rephrase bool) ([]queryModel.QueryResult, error)
}

func (m *mockQueries) Resolve(ctx context.Context, document []byte, queries []string, rephrase bool) ([]queryModel.QueryResult, error) {
	if m.OnResolve != nil {
		return m.OnResolve(ctx, document, queries, rephrase)
	}
	out := make([]queryModel.QueryResult, len(queries))
	for i, q := range queries {
		out[i] = queryModel.QueryResult{Query: q, Answer: "answer " + q, Confidence: 88, QueryId: "b" + q}
	}
	return out, nil
}

func (m *mockQueries) ResolveOne(ctx context.Context, document []byte, query string, rephrase bool) (queryModel.QueryResult, error) {
	return queryModel.QueryResult{}, nil
}

func (m *mockQueries) ProcessRequest(ctx context.Context, j jobModel.Job) jobModel.Job { return j }

func newTestServer(t *testing.T, queries *mockQueries) (*Server, commonModels.DocumentRef) {
	t.Helper()
	docs := store.InitInMemoryDocumentStore()
	ref, err := store.SaveDocument(context.Background(), docs, "ticket.png", []byte("png bytes"))
	require.NoError(t, err)
	s, err := NewServer(queries, docs)
	require.NoError(t, err)
	return s, ref
}

func TestNewServer_RequiresCollaborators(t *testing.T) {
	_, err := NewServer(nil, store.InitInMemoryDocumentStore())
	assert.Error(t, err)
}

func TestHandleQuery(t *testing.T) {
	var gotDocument []byte
	var gotRephrase bool
	queries := &mockQueries{}
	queries.OnResolve = func(ctx context.Context, document []byte, qs []string, rephrase bool) ([]queryModel.QueryResult, error) {
		gotDocument, gotRephrase = document, rephrase
		return (&mockQueries{}).Resolve(ctx, document, qs, rephrase)
	}
	s, ref := newTestServer(t, queries)

	_, out, err := s.handleQuery(context.Background(), nil, QueryInput{FileId: ref.FileId, Queries: []string{"creator", "date"}, Rephrase: true})
	require.NoError(t, err)

	assert.Equal(t, ref.FileId, out.FileId)
	require.Len(t, out.Results, 2)
	assert.Equal(t, "answer date", out.Results[1].Answer)
	assert.Equal(t, []byte("png bytes"), gotDocument)
	assert.True(t, gotRephrase)
}

func TestHandleQuery_Errors(t *testing.T) {
	tests := []struct {
		name    string
		fileId  string
		resolve error
		check   func(t *testing.T, err error)
	}{
		{
			name:   "unknown file",
			fileId: "missing",
			check:  func(t *testing.T, err error) { assert.ErrorIs(t, err, commonModels.ErrNotFound) },
		},
		{
			name:    "resolver failure",
			resolve: commonModels.NewUpstreamError("extraction", errors.New("boom")),
			check:   func(t *testing.T, err error) { assert.True(t, commonModels.IsUpstreamError(err)) },
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			queries := &mockQueries{}
			if tt.resolve != nil {
				queries.OnResolve = func(context.Context, []byte, []string, bool) ([]queryModel.QueryResult, error) {
					return nil, tt.resolve
				}
			}
			s, ref := newTestServer(t, queries)
			fileId := tt.fileId
			if fileId == "" {
				fileId = ref.FileId
			}
			_, _, err := s.handleQuery(context.Background(), nil, QueryInput{FileId: fileId, Queries: []string{"x"}})
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestHandleList(t *testing.T) {
	docs := store.InitInMemoryDocumentStore().WithClock(func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) })
	var refs []commonModels.DocumentRef
	for _, name := range []string{"a.png", "b.pdf", "c.jpg"} {
		ref, err := store.SaveDocument(context.Background(), docs, name, []byte(name))
		require.NoError(t, err)
		refs = append(refs, ref)
	}
	s, err := NewServer(&mockQueries{}, docs)
	require.NoError(t, err)
	s.WithRetention(24*time.Hour, func() time.Time { return time.Date(2026, 1, 2, 4, 0, 0, 0, time.UTC) })

	_, out, err := s.handleList(context.Background(), nil, ListInput{})
	require.NoError(t, err)
	assert.Equal(t, 3, out.Count)
	for _, d := range out.Documents {
		assert.NotEmpty(t, d.FileId)
		assert.Equal(t, "2026-01-02T03:04:05Z", d.LastModified)
	}

	_, out, err = s.handleList(context.Background(), nil, ListInput{Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 2, out.Count)
}

func TestHandleList_HidesExpiredDocuments(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	docs := store.InitInMemoryDocumentStore()
	fresh, err := store.SaveDocument(context.Background(), docs, "fresh.png", []byte("fresh"))
	require.NoError(t, err)
	edge, err := store.SaveDocument(context.Background(), docs, "edge.png", []byte("edge"))
	require.NoError(t, err)
	expired, err := store.SaveDocument(context.Background(), docs, "expired.pdf", []byte("expired"))
	require.NoError(t, err)
	docs.SetLastModified(fresh.StorageKey, now.Add(-time.Hour))
	docs.SetLastModified(edge.StorageKey, now.Add(-24*time.Hour))
	docs.SetLastModified(expired.StorageKey, now.Add(-25*time.Hour))

	s, err := NewServer(&mockQueries{}, docs)
	require.NoError(t, err)
	s.WithRetention(24*time.Hour, func() time.Time { return now })

	_, out, err := s.handleList(context.Background(), nil, ListInput{})
	require.NoError(t, err)
	var ids []string
	for _, d := range out.Documents {
		ids = append(ids, d.FileId)
	}
	assert.ElementsMatch(t, []string{fresh.FileId, edge.FileId}, ids)
	assert.Equal(t, 2, out.Count)
}

func TestQueryDocumentOverTransport(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	s, ref := newTestServer(t, &mockQueries{})
	serverTransport, clientTransport := mcp.NewInMemoryTransports()
	serverSession, err := s.server.Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	defer serverSession.Close()

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "0.0.1"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	defer session.Close()

	tools, err := session.ListTools(ctx, nil)
	require.NoError(t, err)
	var names []string
	for _, tool := range tools.Tools {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, []string{"query_document", "list_documents"}, names)

	res, err := session.CallTool(ctx, &mcp.CallToolParams{
		Name:      "query_document",
		Arguments: map[string]any{"file_id": ref.FileId, "queries": []string{"creator"}},
	})
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.NotNil(t, res.StructuredContent)
}
