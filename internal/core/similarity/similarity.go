// Package similarity ranks embedding vectors by cosine similarity.
package similarity

import (
	"math"
	"sort"

	"github.com/dell/dpais-chat-reference-app-sub000/internal/core/domain"
)

// Cosine returns the cosine similarity of two vectors of equal length.
// A zero-magnitude vector yields 0 rather than dividing by zero. Unequal
// lengths mean the vectors came from different embedding models and return
// a DimensionMismatchError.
func Cosine(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, &domain.DimensionMismatchError{LenA: len(a), LenB: len(b)}
	}

	var dot, normA, normB float64
	for i := range a {
		x := float64(a[i])
		y := float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}
	if normA == 0 || normB == 0 {
		return 0, nil
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB)), nil
}

// Scored pairs a chunk with its similarity to the query vector.
type Scored struct {
	Chunk      domain.Chunk
	Similarity float64
}

// Rank scores every candidate against the query vector, drops candidates
// below minSimilarity, sorts descending and truncates to limit. Ties keep
// input order. A limit <= 0 means no cap.
func Rank(candidates []domain.Chunk, query []float32, minSimilarity float64, limit int) ([]Scored, error) {
	scored := make([]Scored, 0, len(candidates))
	for _, candidate := range candidates {
		sim, err := Cosine(candidate.Embedding, query)
		if err != nil {
			return nil, err
		}
		if sim < minSimilarity {
			continue
		}
		scored = append(scored, Scored{Chunk: candidate, Similarity: sim})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Similarity > scored[j].Similarity
	})

	if limit > 0 && len(scored) > limit {
		scored = scored[:limit]
	}
	return scored, nil
}
