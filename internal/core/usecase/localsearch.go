package usecase

import (
	"context"
	"log/slog"

	"github.com/dell/dpais-chat-reference-app-sub000/internal/core/domain"
	"github.com/dell/dpais-chat-reference-app-sub000/internal/core/ports"
	"github.com/dell/dpais-chat-reference-app-sub000/internal/core/similarity"
)

const (
	// DefaultMinSimilarity is the local ranking threshold; configurable,
	// never hardcoded at call sites.
	DefaultMinSimilarity = 0.7
	// DefaultTopK caps retrieval results when the caller passes no limit.
	DefaultTopK = 5

	localSourceName = "Local Documents"
)

// LocalSearchUseCase adapts the local chunk repository to similarity search.
type LocalSearchUseCase struct {
	repo          ports.ChunkRepository
	embedder      ports.Embedder
	minSimilarity float64
	logger        *slog.Logger
}

func NewLocalSearchUseCase(
	repo ports.ChunkRepository,
	embedder ports.Embedder,
	minSimilarity float64,
	logger *slog.Logger,
) *LocalSearchUseCase {
	if minSimilarity <= 0 {
		minSimilarity = DefaultMinSimilarity
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &LocalSearchUseCase{
		repo:          repo,
		embedder:      embedder,
		minSimilarity: minSimilarity,
		logger:        logger,
	}
}

// Search loads candidate chunks through the filter, embeds the query and
// ranks by cosine similarity. An explicit document-ID filter wins over tags
// and bypasses the similarity threshold for membership; the returned scores
// are still computed honestly. Store and embedding failures degrade to zero
// results so the chat turn proceeds without context. The only surfaced error
// is a dimension mismatch, which indicates mixed embedding models.
func (uc *LocalSearchUseCase) Search(
	ctx context.Context,
	query string,
	filter domain.ChunkFilter,
	k int,
) ([]domain.RetrievedChunk, error) {
	if k <= 0 {
		k = DefaultTopK
	}
	if len(filter.DocumentIDs) > 0 {
		// Document references always win over tag matches.
		filter.Tags = nil
	}

	candidates, err := uc.repo.FindByFilter(ctx, filter)
	if err != nil {
		uc.logger.Warn("local chunk lookup failed, answering without context", "error", err)
		return nil, nil
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	queryVector, err := uc.embedder.EmbedQuery(ctx, query)
	if err != nil {
		uc.logger.Warn("query embedding failed, answering without context", "error", err)
		return nil, nil
	}

	minSimilarity := uc.minSimilarity
	if len(filter.DocumentIDs) > 0 {
		minSimilarity = -1
	}

	ranked, err := similarity.Rank(candidates, queryVector, minSimilarity, k)
	if err != nil {
		return nil, err
	}

	results := make([]domain.RetrievedChunk, 0, len(ranked))
	for _, entry := range ranked {
		results = append(results, domain.RetrievedChunk{
			Chunk:      entry.Chunk,
			Similarity: entry.Similarity,
			SourceType: domain.SourceLocal,
			SourceName: localSourceName,
		})
	}
	return results, nil
}
