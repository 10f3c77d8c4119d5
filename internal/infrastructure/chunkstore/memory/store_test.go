package memory

import (
	"context"
	"testing"

	"github.com/dell/dpais-chat-reference-app-sub000/internal/core/domain"
)

func seedStore(t *testing.T) *Store {
	t.Helper()
	store := NewStore()
	err := store.UpsertChunks(context.Background(), []domain.Chunk{
		{ID: "c1", DocumentID: "d1", Metadata: domain.ChunkMetadata{Tags: []string{"hr"}}},
		{ID: "c2", DocumentID: "d1", Metadata: domain.ChunkMetadata{Tags: []string{"legal"}}},
		{ID: "c3", DocumentID: "d2", Metadata: domain.ChunkMetadata{Tags: []string{"hr", "policy"}}},
	})
	if err != nil {
		t.Fatalf("UpsertChunks error = %v", err)
	}
	return store
}

func chunkIDs(chunks []domain.Chunk) []string {
	ids := make([]string, len(chunks))
	for i, c := range chunks {
		ids[i] = c.ID
	}
	return ids
}

func TestFindByFilterEmptyReturnsAllInInsertionOrder(t *testing.T) {
	store := seedStore(t)
	chunks, err := store.FindByFilter(context.Background(), domain.ChunkFilter{})
	if err != nil {
		t.Fatalf("FindByFilter error = %v", err)
	}
	got := chunkIDs(chunks)
	want := []string{"c1", "c2", "c3"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}

func TestFindByFilterDocumentIDsWinOverTags(t *testing.T) {
	store := seedStore(t)
	chunks, err := store.FindByFilter(context.Background(), domain.ChunkFilter{
		DocumentIDs: []string{"d2"},
		Tags:        []string{"legal"},
	})
	if err != nil {
		t.Fatalf("FindByFilter error = %v", err)
	}
	if len(chunks) != 1 || chunks[0].ID != "c3" {
		t.Fatalf("chunks = %v", chunkIDs(chunks))
	}
}

func TestFindByFilterTagsMatchAny(t *testing.T) {
	store := seedStore(t)
	chunks, err := store.FindByFilter(context.Background(), domain.ChunkFilter{
		Tags: []string{"legal", "policy"},
	})
	if err != nil {
		t.Fatalf("FindByFilter error = %v", err)
	}
	got := chunkIDs(chunks)
	if len(got) != 2 || got[0] != "c2" || got[1] != "c3" {
		t.Fatalf("chunks = %v", got)
	}
}

func TestUpsertChunksReplacesWithoutDuplicating(t *testing.T) {
	store := seedStore(t)
	err := store.UpsertChunks(context.Background(), []domain.Chunk{
		{ID: "c1", DocumentID: "d1", Content: "updated"},
	})
	if err != nil {
		t.Fatalf("UpsertChunks error = %v", err)
	}

	chunks, err := store.FindByFilter(context.Background(), domain.ChunkFilter{})
	if err != nil {
		t.Fatalf("FindByFilter error = %v", err)
	}
	if len(chunks) != 3 {
		t.Fatalf("len = %d, want 3", len(chunks))
	}
	if chunks[0].Content != "updated" {
		t.Fatalf("chunk not replaced: %+v", chunks[0])
	}
}

func TestDeleteByDocumentRemovesOnlyThatDocument(t *testing.T) {
	store := seedStore(t)
	if err := store.DeleteByDocument(context.Background(), "d1"); err != nil {
		t.Fatalf("DeleteByDocument error = %v", err)
	}

	chunks, err := store.FindByFilter(context.Background(), domain.ChunkFilter{})
	if err != nil {
		t.Fatalf("FindByFilter error = %v", err)
	}
	if len(chunks) != 1 || chunks[0].ID != "c3" {
		t.Fatalf("chunks = %v", chunkIDs(chunks))
	}
}

func TestDocumentStoreLifecycle(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()

	doc := &domain.Document{ID: "d1", Name: "Handbook.pdf", Status: domain.StatusPending}
	if err := store.Create(ctx, doc); err != nil {
		t.Fatalf("Create error = %v", err)
	}
	if err := store.Create(ctx, doc); !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("duplicate create error = %v", err)
	}

	if err := store.UpdateStatus(ctx, "d1", domain.StatusReady, ""); err != nil {
		t.Fatalf("UpdateStatus error = %v", err)
	}
	got, err := store.GetByID(ctx, "d1")
	if err != nil {
		t.Fatalf("GetByID error = %v", err)
	}
	if got.Status != domain.StatusReady {
		t.Fatalf("status = %s", got.Status)
	}

	if err := store.Delete(ctx, "d1"); err != nil {
		t.Fatalf("Delete error = %v", err)
	}
	if _, err := store.GetByID(ctx, "d1"); !domain.IsKind(err, domain.ErrDocumentNotFound) {
		t.Fatalf("error = %v, want ErrDocumentNotFound kind", err)
	}
	if err := store.UpdateStatus(ctx, "missing", domain.StatusReady, ""); !domain.IsKind(err, domain.ErrDocumentNotFound) {
		t.Fatalf("error = %v, want ErrDocumentNotFound kind", err)
	}
}
