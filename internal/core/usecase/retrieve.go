package usecase

import (
	"context"
	"log/slog"

	"github.com/dell/dpais-chat-reference-app-sub000/internal/core/domain"
	"github.com/dell/dpais-chat-reference-app-sub000/internal/core/ports"
)

// RetrievalUseCase dispatches one query to the remote or local flow based on
// the session's resolved tags. Stateless across calls.
type RetrievalUseCase struct {
	remote ports.RemoteSearcher
	local  *LocalSearchUseCase
	topK   int
	logger *slog.Logger
}

func NewRetrievalUseCase(
	remote ports.RemoteSearcher,
	local *LocalSearchUseCase,
	topK int,
	logger *slog.Logger,
) *RetrievalUseCase {
	if topK <= 0 {
		topK = DefaultTopK
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RetrievalUseCase{
		remote: remote,
		local:  local,
		topK:   topK,
		logger: logger,
	}
}

// Retrieve resolves sessionTags and runs exactly one of the two flows.
//
// Any backend/collection selector routes the query to the remote flow
// exclusively. Empty remote results stay empty: substituting local documents
// for a company-document query would leak the wrong corpus into the answer.
// Remote errors also degrade to zero results; the caller then answers from
// the base model alone.
func (uc *RetrievalUseCase) Retrieve(
	ctx context.Context,
	query string,
	sessionTags []string,
	k int,
) ([]domain.RetrievedChunk, error) {
	if k <= 0 {
		k = uc.topK
	}

	resolution := domain.ResolveTags(sessionTags)

	if resolution.HasRemoteSource {
		results, err := uc.remote.Search(ctx, query, resolution.RemoteFilter(), k)
		if err != nil {
			uc.logger.Error("remote search failed, answering without context", "error", err)
			return nil, nil
		}
		if len(results) > k {
			results = results[:k]
		}
		return results, nil
	}

	if len(resolution.DocumentIDs) > 0 || len(resolution.PlainTags) > 0 {
		return uc.local.Search(ctx, query, domain.ChunkFilter{
			DocumentIDs: resolution.DocumentIDs,
			Tags:        resolution.PlainTags,
		}, k)
	}

	return nil, nil
}
