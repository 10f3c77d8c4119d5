package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/dell/dpais-chat-reference-app-sub000/internal/core/domain"
	"github.com/dell/dpais-chat-reference-app-sub000/internal/core/ports"
)

// ProcessDocumentUseCase turns a submitted document into stored chunks:
// split, embed in document mode, upsert. Runs on the worker.
type ProcessDocumentUseCase struct {
	docs     ports.DocumentRepository
	chunker  ports.Chunker
	embedder ports.Embedder
	chunks   ports.ChunkRepository
}

func NewProcessDocumentUseCase(
	docs ports.DocumentRepository,
	chunker ports.Chunker,
	embedder ports.Embedder,
	chunks ports.ChunkRepository,
) *ProcessDocumentUseCase {
	return &ProcessDocumentUseCase{
		docs:     docs,
		chunker:  chunker,
		embedder: embedder,
		chunks:   chunks,
	}
}

func (uc *ProcessDocumentUseCase) ProcessByID(ctx context.Context, documentID string) error {
	if err := uc.docs.UpdateStatus(ctx, documentID, domain.StatusChunking, ""); err != nil {
		return fmt.Errorf("set status=chunking: %w", err)
	}

	if err := uc.process(ctx, documentID); err != nil {
		if failErr := uc.docs.UpdateStatus(ctx, documentID, domain.StatusFailed, err.Error()); failErr != nil {
			return fmt.Errorf("%w; mark failed status: %v", err, failErr)
		}
		return err
	}

	if err := uc.docs.UpdateStatus(ctx, documentID, domain.StatusReady, ""); err != nil {
		return fmt.Errorf("set status=ready: %w", err)
	}
	return nil
}

func (uc *ProcessDocumentUseCase) process(ctx context.Context, documentID string) error {
	doc, err := uc.docs.GetByID(ctx, documentID)
	if err != nil {
		return fmt.Errorf("fetch document by id: %w", err)
	}

	pieces := uc.chunker.Split(doc.Text)
	if len(pieces) == 0 {
		return domain.WrapError(domain.ErrInvalidInput, "chunk document", errors.New("chunking produced zero chunks"))
	}

	vectors, err := uc.embedder.Embed(ctx, pieces, ports.EmbedDocument)
	if err != nil {
		return fmt.Errorf("embed chunks: %w", err)
	}
	if len(vectors) != len(pieces) {
		return domain.WrapError(
			domain.ErrInvalidInput,
			"embed chunks",
			fmt.Errorf("vectors/chunks mismatch: %d/%d", len(vectors), len(pieces)),
		)
	}

	records := make([]domain.Chunk, 0, len(pieces))
	for i, piece := range pieces {
		records = append(records, domain.Chunk{
			ID:         uuid.NewString(),
			DocumentID: doc.ID,
			Content:    piece,
			Embedding:  vectors[i],
			ChunkIndex: i,
			Metadata: domain.ChunkMetadata{
				DocumentName: doc.Name,
				DocumentType: doc.Type,
				Tags:         doc.Tags,
			},
		})
	}

	if err := uc.chunks.UpsertChunks(ctx, records); err != nil {
		return fmt.Errorf("store chunks: %w", err)
	}
	return nil
}
