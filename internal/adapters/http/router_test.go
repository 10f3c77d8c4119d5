package httpadapter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dell/dpais-chat-reference-app-sub000/internal/core/domain"
	"github.com/dell/dpais-chat-reference-app-sub000/internal/core/ports"
)

type retrieverStub struct {
	chunks []domain.RetrievedChunk
	err    error

	lastQuery string
	lastTags  []string
	lastK     int
}

func (s *retrieverStub) Retrieve(_ context.Context, query string, tags []string, k int) ([]domain.RetrievedChunk, error) {
	s.lastQuery = query
	s.lastTags = tags
	s.lastK = k
	return s.chunks, s.err
}

type chatStub struct {
	tokens []string
	result *ports.ChatResult
	err    error
}

func (s *chatStub) Respond(_ context.Context, _ ports.ChatRequest, onToken func(string) error) (*ports.ChatResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	for _, token := range s.tokens {
		if err := onToken(token); err != nil {
			return nil, err
		}
	}
	return s.result, nil
}

type ingestorStub struct {
	doc       *domain.Document
	ingestErr error
	deleteErr error
	deleted   []string
}

func (s *ingestorStub) Ingest(context.Context, ports.DocumentSubmission) (*domain.Document, error) {
	return s.doc, s.ingestErr
}

func (s *ingestorStub) Delete(_ context.Context, id string) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	s.deleted = append(s.deleted, id)
	return nil
}

type docsStub struct {
	doc *domain.Document
	err error
}

func (s *docsStub) Create(context.Context, *domain.Document) error { return nil }

func (s *docsStub) GetByID(context.Context, string) (*domain.Document, error) {
	return s.doc, s.err
}

func (s *docsStub) UpdateStatus(context.Context, string, domain.DocumentStatus, string) error {
	return nil
}

func (s *docsStub) Delete(context.Context, string) error { return nil }

type remoteStub struct {
	backends    []domain.RemoteBackend
	collections []domain.RemoteCollection
	status      *domain.ConnectionStatus
	err         error
}

func (s *remoteStub) Search(context.Context, string, domain.RemoteFilter, int) ([]domain.RetrievedChunk, error) {
	return nil, nil
}

func (s *remoteStub) TestConnection(context.Context) (*domain.ConnectionStatus, error) {
	return s.status, s.err
}

func (s *remoteStub) ListBackends(context.Context) ([]domain.RemoteBackend, error) {
	return s.backends, s.err
}

func (s *remoteStub) ListCollections(context.Context) ([]domain.RemoteCollection, error) {
	return s.collections, s.err
}

func testHandler(retriever ports.Retriever, chat ports.ChatService, ingestor ports.DocumentIngestor, docs ports.DocumentRepository, remote ports.RemoteSearcher) http.Handler {
	if retriever == nil {
		retriever = &retrieverStub{}
	}
	if chat == nil {
		chat = &chatStub{result: &ports.ChatResult{}}
	}
	if ingestor == nil {
		ingestor = &ingestorStub{doc: &domain.Document{ID: "d1"}}
	}
	if docs == nil {
		docs = &docsStub{doc: &domain.Document{ID: "d1"}}
	}
	if remote == nil {
		remote = &remoteStub{status: &domain.ConnectionStatus{Success: true}}
	}
	return NewRouter(retriever, chat, ingestor, docs, remote, nil).Handler()
}

func postJSON(t *testing.T, handler http.Handler, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	return res
}

func TestRetrieveReturnsChunks(t *testing.T) {
	retriever := &retrieverStub{chunks: []domain.RetrievedChunk{
		{
			Chunk:      domain.Chunk{ID: "c1", DocumentID: "d1", Content: "text"},
			Similarity: 0.9,
			SourceType: domain.SourceBackend,
			SourceName: "Store",
		},
	}}
	handler := testHandler(retriever, nil, nil, nil, nil)

	res := postJSON(t, handler, "/v1/retrieve", map[string]any{
		"query":        "vacation",
		"session_tags": []string{"backend:b1"},
		"k":            3,
	})
	if res.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", res.Code, res.Body.String())
	}
	if retriever.lastQuery != "vacation" || retriever.lastK != 3 {
		t.Fatalf("retriever saw %q/%d", retriever.lastQuery, retriever.lastK)
	}

	var payload struct {
		Chunks []domain.RetrievedChunk `json:"chunks"`
	}
	if err := json.Unmarshal(res.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(payload.Chunks) != 1 || payload.Chunks[0].ID != "c1" {
		t.Fatalf("chunks = %v", payload.Chunks)
	}
}

func TestRetrieveRejectsEmptyQuery(t *testing.T) {
	handler := testHandler(nil, nil, nil, nil, nil)
	res := postJSON(t, handler, "/v1/retrieve", map[string]any{"query": "  "})
	if res.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", res.Code)
	}
}

func TestRetrieveMapsDimensionMismatchTo500(t *testing.T) {
	retriever := &retrieverStub{err: &domain.DimensionMismatchError{LenA: 2, LenB: 3}}
	handler := testHandler(retriever, nil, nil, nil, nil)

	res := postJSON(t, handler, "/v1/retrieve", map[string]any{"query": "q"})
	if res.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", res.Code)
	}
}

func TestSubmitDocumentAccepted(t *testing.T) {
	handler := testHandler(nil, nil, &ingestorStub{doc: &domain.Document{ID: "d1", Status: domain.StatusPending}}, nil, nil)

	res := postJSON(t, handler, "/v1/documents", map[string]any{
		"name": "Handbook.pdf",
		"text": "content",
	})
	if res.Code != http.StatusAccepted {
		t.Fatalf("status = %d, body = %s", res.Code, res.Body.String())
	}
}

func TestSubmitDocumentMapsInvalidInputTo400(t *testing.T) {
	ingestor := &ingestorStub{ingestErr: domain.WrapError(domain.ErrInvalidInput, "ingest document", errors.New("empty text"))}
	handler := testHandler(nil, nil, ingestor, nil, nil)

	res := postJSON(t, handler, "/v1/documents", map[string]any{"name": "a"})
	if res.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", res.Code)
	}
}

func TestGetDocumentMapsNotFoundTo404(t *testing.T) {
	docs := &docsStub{err: domain.WrapError(domain.ErrDocumentNotFound, "get document", errors.New("id missing"))}
	handler := testHandler(nil, nil, nil, docs, nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/documents/missing", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	if res.Code != http.StatusNotFound {
		t.Fatalf("status = %d", res.Code)
	}
}

func TestDeleteDocument(t *testing.T) {
	ingestor := &ingestorStub{}
	handler := testHandler(nil, nil, ingestor, nil, nil)

	req := httptest.NewRequest(http.MethodDelete, "/v1/documents/d1", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	if res.Code != http.StatusOK {
		t.Fatalf("status = %d", res.Code)
	}
	if len(ingestor.deleted) != 1 || ingestor.deleted[0] != "d1" {
		t.Fatalf("deleted = %v", ingestor.deleted)
	}
}

func TestEmbeddingUnavailableMapsTo503(t *testing.T) {
	retriever := &retrieverStub{err: domain.WrapError(domain.ErrEmbeddingUnavailable, "embed", errors.New("down"))}
	handler := testHandler(retriever, nil, nil, nil, nil)

	res := postJSON(t, handler, "/v1/retrieve", map[string]any{"query": "q"})
	if res.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d", res.Code)
	}
}

func TestRemoteCatalogEndpoints(t *testing.T) {
	remote := &remoteStub{
		backends:    []domain.RemoteBackend{{ID: "b1", Name: "Main"}},
		collections: []domain.RemoteCollection{{ID: "c1", Name: "FAQ"}},
		status:      &domain.ConnectionStatus{Success: true, Message: "backend status: ok"},
	}
	handler := testHandler(nil, nil, nil, nil, remote)

	for path, want := range map[string]string{
		"/v1/remote/backends":    "Main",
		"/v1/remote/collections": "FAQ",
		"/v1/remote/status":      "backend status: ok",
	} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		res := httptest.NewRecorder()
		handler.ServeHTTP(res, req)
		if res.Code != http.StatusOK {
			t.Fatalf("%s status = %d", path, res.Code)
		}
		if !bytes.Contains(res.Body.Bytes(), []byte(want)) {
			t.Fatalf("%s body = %s", path, res.Body.String())
		}
	}
}

func TestHealthz(t *testing.T) {
	handler := testHandler(nil, nil, nil, nil, nil)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	if res.Code != http.StatusOK {
		t.Fatalf("status = %d", res.Code)
	}
}

func TestRequestIDHeaderIsSet(t *testing.T) {
	handler := testHandler(nil, nil, nil, nil, nil)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	if res.Header().Get(requestIDHeader) == "" {
		t.Fatalf("request id header missing")
	}

	req = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(requestIDHeader, "fixed-id")
	res = httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	if res.Header().Get(requestIDHeader) != "fixed-id" {
		t.Fatalf("request id not propagated: %q", res.Header().Get(requestIDHeader))
	}
}
