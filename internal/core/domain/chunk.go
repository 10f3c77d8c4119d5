package domain

import "time"

// SourceType identifies where a retrieved chunk came from.
type SourceType string

const (
	SourceLocal      SourceType = "local"
	SourceBackend    SourceType = "backend"
	SourceCollection SourceType = "collection"
)

// ChunkMetadata carries document-level context alongside each chunk.
// PageNumber zero means unknown.
type ChunkMetadata struct {
	DocumentName string   `json:"document_name"`
	DocumentType string   `json:"document_type"`
	Tags         []string `json:"tags"`
	PageNumber   int      `json:"page_number,omitempty"`
	Section      string   `json:"section,omitempty"`
}

// Chunk is one retrievable unit of document text. Chunks are written once
// during ingestion and never mutated; they disappear when the parent
// document is deleted.
type Chunk struct {
	ID         string        `json:"id"`
	DocumentID string        `json:"document_id"`
	Content    string        `json:"content"`
	Embedding  []float32     `json:"-"`
	ChunkIndex int           `json:"chunk_index"`
	Metadata   ChunkMetadata `json:"metadata"`
}

// HasTag reports whether the chunk carries the given tag.
func (c Chunk) HasTag(tag string) bool {
	for _, t := range c.Metadata.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// RetrievedChunk is a chunk annotated with a per-query similarity score and
// its source. It exists only for the duration of one retrieval.
type RetrievedChunk struct {
	Chunk
	Similarity float64    `json:"similarity"`
	SourceType SourceType `json:"source_type"`
	SourceName string     `json:"source_name"`
}

// ChunkFilter narrows a local chunk search. A non-empty DocumentIDs list
// takes priority over Tags; tags match with OR semantics.
type ChunkFilter struct {
	DocumentIDs []string
	Tags        []string
}

// Empty reports whether the filter imposes no criteria at all.
func (f ChunkFilter) Empty() bool {
	return len(f.DocumentIDs) == 0 && len(f.Tags) == 0
}

// RemoteFilter narrows a remote source search.
type RemoteFilter struct {
	BackendIDs    []string
	CollectionIDs []string
	Tags          []string
}

// DocumentReference is the citation surfaced to the UI for one source
// document of an answer.
type DocumentReference struct {
	DocumentID   string  `json:"document_id"`
	DocumentName string  `json:"document_name"`
	PageNumber   int     `json:"page_number,omitempty"`
	Section      string  `json:"section,omitempty"`
	Similarity   float64 `json:"similarity"`
}

// ChatMessage is one entry of a completion conversation.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// DocumentStatus tracks a document through the ingest pipeline.
type DocumentStatus string

const (
	StatusPending  DocumentStatus = "pending"
	StatusChunking DocumentStatus = "chunking"
	StatusReady    DocumentStatus = "ready"
	StatusFailed   DocumentStatus = "failed"
)

// Document is an ingested source text. Extraction from binary formats
// happens upstream; the record always holds plain text.
type Document struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Type      string         `json:"type"`
	Tags      []string       `json:"tags"`
	Text      string         `json:"-"`
	Status    DocumentStatus `json:"status"`
	Error     string         `json:"error,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// RemoteBackend describes one remote vector store exposed by the search
// backend.
type RemoteBackend struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
}

// RemoteCollection describes one named document collection on the search
// backend.
type RemoteCollection struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Tags        []string `json:"tags"`
}

// StoreStatus is one store's entry in a connection probe result.
type StoreStatus struct {
	Name          string `json:"name"`
	Status        string `json:"status"`
	Details       string `json:"details,omitempty"`
	DocumentCount int    `json:"document_count"`
}

// ConnectionStatus is the result of probing the remote search backend.
// UI diagnostics only; never consulted on the retrieval hot path.
type ConnectionStatus struct {
	Success bool          `json:"success"`
	Message string        `json:"message"`
	Stores  []StoreStatus `json:"stores,omitempty"`
}
