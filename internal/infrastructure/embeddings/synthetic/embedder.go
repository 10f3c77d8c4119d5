// Package synthetic generates deterministic stand-in embeddings for tests
// and degraded environments where no embeddings endpoint is reachable.
// Vectors are stable per input text but carry no semantic signal, so ranking
// against them is meaningless; wiring this into a production path must be an
// explicit, logged decision, never a silent fallback.
package synthetic

import (
	"context"
	"hash/fnv"
	"log/slog"
	"math"
	"sync"

	"github.com/dell/dpais-chat-reference-app-sub000/internal/core/ports"
)

type Embedder struct {
	dimension int
	logger    *slog.Logger
	warnOnce  sync.Once
}

func New(dimension int, logger *slog.Logger) *Embedder {
	if dimension <= 0 {
		dimension = 768
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Embedder{dimension: dimension, logger: logger}
}

func (e *Embedder) Embed(_ context.Context, texts []string, mode ports.EmbedMode) ([][]float32, error) {
	e.warnOnce.Do(func() {
		e.logger.Warn("synthetic embeddings in use, similarity scores carry no semantic meaning")
	})

	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = e.vector(string(mode) + ":" + text)
	}
	return vectors, nil
}

func (e *Embedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.Embed(ctx, []string{text}, ports.EmbedQuery)
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// vector hashes the text into a unit-length pseudo-vector. Identical input
// always yields the identical vector.
func (e *Embedder) vector(text string) []float32 {
	out := make([]float32, e.dimension)
	var norm float64
	for i := range out {
		h := fnv.New64a()
		_, _ = h.Write([]byte(text))
		_, _ = h.Write([]byte{byte(i), byte(i >> 8)})
		// Map the hash onto [-1, 1).
		v := float64(int64(h.Sum64())) / math.MaxInt64
		out[i] = float32(v)
		norm += v * v
	}
	if norm == 0 {
		return out
	}
	scale := float32(1 / math.Sqrt(norm))
	for i := range out {
		out[i] *= scale
	}
	return out
}
