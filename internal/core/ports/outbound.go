package ports

import (
	"context"

	"github.com/dell/dpais-chat-reference-app-sub000/internal/core/domain"
)

// EmbedMode selects the asymmetric-model marking added to text before
// embedding. Queries and indexed content must not share a mode.
type EmbedMode string

const (
	EmbedQuery    EmbedMode = "query"
	EmbedDocument EmbedMode = "document"
)

// Embedder turns text into fixed-length vectors.
type Embedder interface {
	Embed(ctx context.Context, texts []string, mode EmbedMode) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// ChunkRepository is the local tag-indexed chunk store.
type ChunkRepository interface {
	UpsertChunks(ctx context.Context, chunks []domain.Chunk) error
	FindByFilter(ctx context.Context, filter domain.ChunkFilter) ([]domain.Chunk, error)
	DeleteByDocument(ctx context.Context, documentID string) error
}

// DocumentRepository persists ingested document records.
type DocumentRepository interface {
	Create(ctx context.Context, doc *domain.Document) error
	GetByID(ctx context.Context, id string) (*domain.Document, error)
	UpdateStatus(ctx context.Context, id string, status domain.DocumentStatus, errMessage string) error
	Delete(ctx context.Context, id string) error
}

// RemoteSearcher performs searches against the remote backend stores and
// exposes the backend's catalog for UI use.
type RemoteSearcher interface {
	Search(ctx context.Context, query string, filter domain.RemoteFilter, k int) ([]domain.RetrievedChunk, error)
	TestConnection(ctx context.Context) (*domain.ConnectionStatus, error)
	ListBackends(ctx context.Context) ([]domain.RemoteBackend, error)
	ListCollections(ctx context.Context) ([]domain.RemoteCollection, error)
}

// MessageQueue publishes/consumes document chunking events.
type MessageQueue interface {
	PublishDocumentSubmitted(ctx context.Context, documentID string) error
	SubscribeDocumentSubmitted(ctx context.Context, handler func(context.Context, string) error) error
}

// Chunker splits text into indexable pieces.
type Chunker interface {
	Split(text string) []string
}

// CompletionClient streams a chat completion. onToken is invoked once per
// streamed token; returning an error from it aborts the stream. The client
// checks ctx between tokens.
type CompletionClient interface {
	Complete(ctx context.Context, messages []domain.ChatMessage, onToken func(token string) error) error
}
