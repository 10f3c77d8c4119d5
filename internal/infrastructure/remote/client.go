// Package remote searches the company document backend over HTTP.
package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dell/dpais-chat-reference-app-sub000/internal/core/domain"
	"github.com/dell/dpais-chat-reference-app-sub000/internal/infrastructure/resilience"
)

type Client struct {
	baseURL    string
	httpClient *http.Client
	executor   *resilience.Executor
}

type Option func(*Client)

// WithResilience runs search requests through a shared retry/breaker
// executor.
func WithResilience(executor *resilience.Executor) Option {
	return func(c *Client) { c.executor = executor }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// searchResult is the backend's wire format for one hit.
type searchResult struct {
	Content  string `json:"content"`
	Metadata struct {
		DocumentID   string   `json:"documentId"`
		DocumentName string   `json:"documentName"`
		ChunkID      string   `json:"chunkId"`
		ChunkIndex   *int     `json:"chunkIndex"`
		Tags         []string `json:"tags"`
		PageNumber   int      `json:"pageNumber"`
		Section      string   `json:"section"`
	} `json:"metadata"`
	SourceID   string  `json:"source_id"`
	SourceName string  `json:"source_name"`
	SourceType string  `json:"source_type"`
	Similarity float64 `json:"similarity"`
}

// Search issues one GET /search batching every backend ID, collection ID and
// tag into the query string. Results arrive ranked by the server; scores are
// taken verbatim, never re-ranked locally.
func (c *Client) Search(
	ctx context.Context,
	query string,
	filter domain.RemoteFilter,
	k int,
) ([]domain.RetrievedChunk, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("k", strconv.Itoa(k))
	for _, id := range filter.BackendIDs {
		params.Add("backend_id", id)
	}
	for _, id := range filter.CollectionIDs {
		params.Add("collection_id", id)
	}
	for _, tag := range filter.Tags {
		params.Add("tag", tag)
	}

	var results []searchResult
	call := func(ctx context.Context) error {
		return c.getJSON(ctx, "/search?"+params.Encode(), &results, "search")
	}

	var err error
	if c.executor != nil {
		err = c.executor.Execute(ctx, "remote.search", call, classifyRemoteError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return nil, err
	}

	chunks := make([]domain.RetrievedChunk, 0, len(results))
	for _, result := range results {
		chunks = append(chunks, normalizeResult(result))
	}
	return chunks, nil
}

func normalizeResult(result searchResult) domain.RetrievedChunk {
	chunkIndex := -1
	if result.Metadata.ChunkIndex != nil {
		chunkIndex = *result.Metadata.ChunkIndex
	}
	return domain.RetrievedChunk{
		Chunk: domain.Chunk{
			ID:         result.Metadata.ChunkID,
			DocumentID: result.Metadata.DocumentID,
			Content:    result.Content,
			ChunkIndex: chunkIndex,
			Metadata: domain.ChunkMetadata{
				DocumentName: result.Metadata.DocumentName,
				Tags:         result.Metadata.Tags,
				PageNumber:   result.Metadata.PageNumber,
				Section:      result.Metadata.Section,
			},
		},
		Similarity: result.Similarity,
		SourceType: normalizeSourceType(result.SourceType),
		SourceName: result.SourceName,
	}
}

// The backend declares concrete store types (pgvector, pinecone, ...) or
// "collection"; everything that is not a collection is a backend store.
func normalizeSourceType(declared string) domain.SourceType {
	if strings.EqualFold(declared, string(domain.SourceCollection)) {
		return domain.SourceCollection
	}
	return domain.SourceBackend
}

// ListBackends returns the backend's configured vector stores.
func (c *Client) ListBackends(ctx context.Context) ([]domain.RemoteBackend, error) {
	var backends []domain.RemoteBackend
	if err := c.getJSON(ctx, "/vector-stores", &backends, "list backends"); err != nil {
		return nil, err
	}
	return backends, nil
}

// ListCollections returns the backend's named document collections.
func (c *Client) ListCollections(ctx context.Context) ([]domain.RemoteCollection, error) {
	var collections []domain.RemoteCollection
	if err := c.getJSON(ctx, "/collections", &collections, "list collections"); err != nil {
		return nil, err
	}
	return collections, nil
}

// TestConnection probes the backend's store status. Diagnostics for the UI
// only; the retrieval path never calls it.
func (c *Client) TestConnection(ctx context.Context) (*domain.ConnectionStatus, error) {
	var probe struct {
		Status       string `json:"status"`
		VectorStores map[string]struct {
			Name          string `json:"name"`
			Status        string `json:"status"`
			Details       string `json:"details"`
			DocumentCount int    `json:"document_count"`
		} `json:"vector_stores"`
	}
	if err := c.getJSON(ctx, "/vector-stores/status", &probe, "status probe"); err != nil {
		return &domain.ConnectionStatus{
			Success: false,
			Message: fmt.Sprintf("backend unreachable: %v", err),
		}, nil
	}

	status := &domain.ConnectionStatus{
		Success: probe.Status == "ok",
		Message: fmt.Sprintf("backend status: %s", probe.Status),
	}
	for _, store := range probe.VectorStores {
		status.Stores = append(status.Stores, domain.StoreStatus{
			Name:          store.Name,
			Status:        store.Status,
			Details:       store.Details,
			DocumentCount: store.DocumentCount,
		})
	}
	return status, nil
}

func (c *Client) getJSON(ctx context.Context, pathAndQuery string, out any, operation string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+pathAndQuery, nil)
	if err != nil {
		return fmt.Errorf("create %s request: %w", operation, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("remote %s request: %w", operation, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return &SearchError{
			Operation:  operation,
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       string(raw),
		}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", operation, err)
	}
	return nil
}
