package usecase

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/dell/dpais-chat-reference-app-sub000/internal/core/domain"
	"github.com/dell/dpais-chat-reference-app-sub000/internal/core/ports"
)

type docRepoFake struct {
	created  []*domain.Document
	statuses []domain.DocumentStatus
	deleted  []string
	byID     map[string]*domain.Document

	createErr error
	statusErr error
}

func (f *docRepoFake) Create(_ context.Context, doc *domain.Document) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, doc)
	return nil
}

func (f *docRepoFake) GetByID(_ context.Context, id string) (*domain.Document, error) {
	doc, ok := f.byID[id]
	if !ok {
		return nil, domain.WrapError(domain.ErrDocumentNotFound, "get document", errors.New(id))
	}
	return doc, nil
}

func (f *docRepoFake) UpdateStatus(_ context.Context, _ string, status domain.DocumentStatus, _ string) error {
	if f.statusErr != nil {
		return f.statusErr
	}
	f.statuses = append(f.statuses, status)
	return nil
}

func (f *docRepoFake) Delete(_ context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	return nil
}

type queueFake struct {
	published []string
	err       error
}

func (f *queueFake) PublishDocumentSubmitted(_ context.Context, documentID string) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, documentID)
	return nil
}

func (f *queueFake) SubscribeDocumentSubmitted(context.Context, func(context.Context, string) error) error {
	return nil
}

type upsertRecorder struct {
	chunkRepoFake
	upserted  []domain.Chunk
	upsertErr error
	deleted   []string
}

func (f *upsertRecorder) UpsertChunks(_ context.Context, chunks []domain.Chunk) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.upserted = append(f.upserted, chunks...)
	return nil
}

func (f *upsertRecorder) DeleteByDocument(_ context.Context, documentID string) error {
	f.deleted = append(f.deleted, documentID)
	return nil
}

func TestIngestCreatesPendingAndPublishes(t *testing.T) {
	docs := &docRepoFake{}
	queue := &queueFake{}
	uc := NewIngestUseCase(docs, &upsertRecorder{}, queue)

	doc, err := uc.Ingest(context.Background(), ports.DocumentSubmission{
		Name: "  Handbook.pdf  ",
		Type: "pdf",
		Tags: []string{" hr ", "", "policy"},
		Text: "full text",
	})
	if err != nil {
		t.Fatalf("Ingest error = %v", err)
	}
	if doc.ID == "" || doc.Status != domain.StatusPending {
		t.Fatalf("doc = %+v", doc)
	}
	if doc.Name != "Handbook.pdf" {
		t.Fatalf("name = %q", doc.Name)
	}
	if want := []string{"hr", "policy"}; !reflect.DeepEqual(doc.Tags, want) {
		t.Fatalf("tags = %v, want %v", doc.Tags, want)
	}
	if len(queue.published) != 1 || queue.published[0] != doc.ID {
		t.Fatalf("published = %v", queue.published)
	}
}

func TestIngestRejectsEmptyTextAndName(t *testing.T) {
	uc := NewIngestUseCase(&docRepoFake{}, &upsertRecorder{}, &queueFake{})

	_, err := uc.Ingest(context.Background(), ports.DocumentSubmission{Name: "a", Text: "  "})
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("empty text error = %v", err)
	}
	_, err = uc.Ingest(context.Background(), ports.DocumentSubmission{Name: " ", Text: "text"})
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("empty name error = %v", err)
	}
}

func TestDeleteRemovesChunksBeforeDocument(t *testing.T) {
	docs := &docRepoFake{}
	chunks := &upsertRecorder{}
	uc := NewIngestUseCase(docs, chunks, &queueFake{})

	if err := uc.Delete(context.Background(), "d1"); err != nil {
		t.Fatalf("Delete error = %v", err)
	}
	if want := []string{"d1"}; !reflect.DeepEqual(chunks.deleted, want) {
		t.Fatalf("chunk deletes = %v", chunks.deleted)
	}
	if want := []string{"d1"}; !reflect.DeepEqual(docs.deleted, want) {
		t.Fatalf("doc deletes = %v", docs.deleted)
	}
}

type splitterFake struct {
	pieces []string
}

func (f splitterFake) Split(string) []string { return f.pieces }

func TestProcessByIDStoresChunksAndMarksReady(t *testing.T) {
	docs := &docRepoFake{byID: map[string]*domain.Document{
		"d1": {ID: "d1", Name: "Handbook.pdf", Type: "pdf", Tags: []string{"hr"}, Text: "long text"},
	}}
	chunks := &upsertRecorder{}
	uc := NewProcessDocumentUseCase(docs, splitterFake{pieces: []string{"part one", "part two"}}, &staticEmbedder{vector: []float32{1, 0}}, chunks)

	if err := uc.ProcessByID(context.Background(), "d1"); err != nil {
		t.Fatalf("ProcessByID error = %v", err)
	}

	if want := []domain.DocumentStatus{domain.StatusChunking, domain.StatusReady}; !reflect.DeepEqual(docs.statuses, want) {
		t.Fatalf("statuses = %v, want %v", docs.statuses, want)
	}
	if len(chunks.upserted) != 2 {
		t.Fatalf("upserted = %d chunks", len(chunks.upserted))
	}
	for i, chunk := range chunks.upserted {
		if chunk.ChunkIndex != i || chunk.DocumentID != "d1" {
			t.Fatalf("chunk[%d] = %+v", i, chunk)
		}
		if chunk.Metadata.DocumentName != "Handbook.pdf" || len(chunk.Metadata.Tags) != 1 {
			t.Fatalf("chunk metadata = %+v", chunk.Metadata)
		}
	}
}

func TestProcessByIDMarksFailedOnEmbeddingError(t *testing.T) {
	docs := &docRepoFake{byID: map[string]*domain.Document{
		"d1": {ID: "d1", Name: "a", Text: "text"},
	}}
	uc := NewProcessDocumentUseCase(
		docs,
		splitterFake{pieces: []string{"piece"}},
		&staticEmbedder{err: errors.New("embedder down")},
		&upsertRecorder{},
	)

	err := uc.ProcessByID(context.Background(), "d1")
	if err == nil || !strings.Contains(err.Error(), "embedder down") {
		t.Fatalf("error = %v", err)
	}
	if want := []domain.DocumentStatus{domain.StatusChunking, domain.StatusFailed}; !reflect.DeepEqual(docs.statuses, want) {
		t.Fatalf("statuses = %v, want %v", docs.statuses, want)
	}
}

func TestProcessByIDRejectsZeroChunks(t *testing.T) {
	docs := &docRepoFake{byID: map[string]*domain.Document{
		"d1": {ID: "d1", Name: "a", Text: "   "},
	}}
	uc := NewProcessDocumentUseCase(docs, splitterFake{}, &staticEmbedder{}, &upsertRecorder{})

	err := uc.ProcessByID(context.Background(), "d1")
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("error = %v, want ErrInvalidInput kind", err)
	}
}
