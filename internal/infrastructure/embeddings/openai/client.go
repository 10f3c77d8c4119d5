// Package openai embeds text through an OpenAI-compatible /embeddings
// endpoint.
package openai

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/dell/dpais-chat-reference-app-sub000/internal/core/domain"
	"github.com/dell/dpais-chat-reference-app-sub000/internal/core/ports"
	"github.com/dell/dpais-chat-reference-app-sub000/internal/infrastructure/resilience"
)

// Asymmetric models (nomic-style) need queries and indexed content marked
// differently; unmarked text would rank queries against queries.
const (
	queryPrefix    = "search_query: "
	documentPrefix = "search_document: "
)

type Client struct {
	baseURL    string
	model      string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
	executor   *resilience.Executor
}

type Option func(*Client)

// WithAPIKey sets the bearer token sent with every request.
func WithAPIKey(key string) Option {
	return func(c *Client) { c.apiKey = key }
}

// WithRateLimit caps outgoing embedding requests per second.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(c *Client) {
		if perSecond > 0 && burst > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
		}
	}
}

// WithResilience runs requests through a shared retry/breaker executor.
func WithResilience(executor *resilience.Executor) Option {
	return func(c *Client) { c.executor = executor }
}

func New(baseURL, model string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Embed vectorizes texts with the given retrieval-mode marking. Every
// failure is reported as ErrEmbeddingUnavailable; the provider never falls
// back to an approximation on its own.
func (c *Client) Embed(ctx context.Context, texts []string, mode ports.EmbedMode) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	prefix, err := modePrefix(mode)
	if err != nil {
		return nil, err
	}
	input := make([]string, len(texts))
	for i, text := range texts {
		input[i] = prefix + text
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	request := map[string]any{
		"input":           input,
		"model":           c.model,
		"encoding_format": "float",
	}
	var response struct {
		Data []struct {
			Embedding []float32 `json:"embedding"`
			Index     int       `json:"index"`
		} `json:"data"`
	}

	call := func(ctx context.Context) error {
		return c.postJSON(ctx, "/embeddings", request, &response, "embed")
	}
	if c.executor != nil {
		err = c.executor.Execute(ctx, "embeddings.embed", call, classifyEmbeddingError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return nil, domain.WrapError(domain.ErrEmbeddingUnavailable, "embed", err)
	}

	if len(response.Data) != len(input) {
		return nil, domain.WrapError(
			domain.ErrEmbeddingUnavailable,
			"embed",
			fmt.Errorf("embedding count mismatch: got %d, want %d", len(response.Data), len(input)),
		)
	}

	vectors := make([][]float32, len(response.Data))
	for _, item := range response.Data {
		if item.Index < 0 || item.Index >= len(vectors) {
			return nil, domain.WrapError(
				domain.ErrEmbeddingUnavailable,
				"embed",
				fmt.Errorf("embedding index out of range: %d", item.Index),
			)
		}
		vectors[item.Index] = item.Embedding
	}
	return vectors, nil
}

// EmbedQuery embeds one query-mode text.
func (c *Client) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vectors, err := c.Embed(ctx, []string{text}, ports.EmbedQuery)
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 {
		return nil, domain.WrapError(domain.ErrEmbeddingUnavailable, "embed query", fmt.Errorf("empty embedding result"))
	}
	return vectors[0], nil
}

func modePrefix(mode ports.EmbedMode) (string, error) {
	switch mode {
	case ports.EmbedQuery:
		return queryPrefix, nil
	case ports.EmbedDocument:
		return documentPrefix, nil
	default:
		return "", domain.WrapError(domain.ErrInvalidInput, "embed", fmt.Errorf("unknown embed mode %q", mode))
	}
}
