package ports

import (
	"context"

	"github.com/dell/dpais-chat-reference-app-sub000/internal/core/domain"
)

// Retriever resolves a session's tags into ranked chunks for one query.
type Retriever interface {
	Retrieve(ctx context.Context, query string, sessionTags []string, k int) ([]domain.RetrievedChunk, error)
}

// ChatRequest is one user turn.
type ChatRequest struct {
	Query       string
	SessionTags []string
	History     []domain.ChatMessage
	K           int
}

// ChatResult is the completed turn: the full answer text, the citations for
// the UI, and whether document context was injected.
type ChatResult struct {
	Answer     string
	References []domain.DocumentReference
	UsedRAG    bool
}

// ChatService runs a full chat turn, streaming tokens through onToken.
type ChatService interface {
	Respond(ctx context.Context, req ChatRequest, onToken func(token string) error) (*ChatResult, error)
}

// DocumentSubmission is pre-extracted document text handed in for indexing.
type DocumentSubmission struct {
	Name string
	Type string
	Tags []string
	Text string
}

// DocumentIngestor accepts documents into the local store and removes them.
type DocumentIngestor interface {
	Ingest(ctx context.Context, sub DocumentSubmission) (*domain.Document, error)
	Delete(ctx context.Context, documentID string) error
}

// DocumentProcessor chunks, embeds and indexes a submitted document.
type DocumentProcessor interface {
	ProcessByID(ctx context.Context, documentID string) error
}
