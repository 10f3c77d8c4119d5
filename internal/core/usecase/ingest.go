package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dell/dpais-chat-reference-app-sub000/internal/core/domain"
	"github.com/dell/dpais-chat-reference-app-sub000/internal/core/ports"
)

// IngestUseCase accepts pre-extracted document text, records it and hands
// chunking off to the worker through the queue.
type IngestUseCase struct {
	docs   ports.DocumentRepository
	chunks ports.ChunkRepository
	queue  ports.MessageQueue
}

func NewIngestUseCase(
	docs ports.DocumentRepository,
	chunks ports.ChunkRepository,
	queue ports.MessageQueue,
) *IngestUseCase {
	return &IngestUseCase{
		docs:   docs,
		chunks: chunks,
		queue:  queue,
	}
}

func (uc *IngestUseCase) Ingest(ctx context.Context, sub ports.DocumentSubmission) (*domain.Document, error) {
	if strings.TrimSpace(sub.Text) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "ingest document", fmt.Errorf("empty document text"))
	}
	name := strings.TrimSpace(sub.Name)
	if name == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "ingest document", fmt.Errorf("document name is required"))
	}

	now := time.Now().UTC()
	doc := &domain.Document{
		ID:        uuid.NewString(),
		Name:      name,
		Type:      sub.Type,
		Tags:      normalizeTags(sub.Tags),
		Text:      sub.Text,
		Status:    domain.StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := uc.docs.Create(ctx, doc); err != nil {
		return nil, fmt.Errorf("create document record: %w", err)
	}
	if err := uc.queue.PublishDocumentSubmitted(ctx, doc.ID); err != nil {
		return nil, fmt.Errorf("publish chunking event: %w", err)
	}
	return doc, nil
}

// Delete removes a document and cascades to its chunks, keeping the local
// store free of orphaned embeddings.
func (uc *IngestUseCase) Delete(ctx context.Context, documentID string) error {
	if strings.TrimSpace(documentID) == "" {
		return domain.WrapError(domain.ErrInvalidInput, "delete document", fmt.Errorf("document id is required"))
	}
	if err := uc.chunks.DeleteByDocument(ctx, documentID); err != nil {
		return fmt.Errorf("delete chunks: %w", err)
	}
	if err := uc.docs.Delete(ctx, documentID); err != nil {
		return fmt.Errorf("delete document record: %w", err)
	}
	return nil
}

func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag != "" {
			out = append(out, tag)
		}
	}
	return out
}
