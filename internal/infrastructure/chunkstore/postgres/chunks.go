package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/pgvector/pgvector-go"

	"github.com/dell/dpais-chat-reference-app-sub000/internal/core/domain"
)

type ChunkRepository struct {
	db *sql.DB
}

func NewChunkRepository(db *sql.DB) *ChunkRepository {
	return &ChunkRepository{db: db}
}

func (r *ChunkRepository) UpsertChunks(ctx context.Context, chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin upsert tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	const query = `
INSERT INTO chunks (
	id, document_id, chunk_index, content, embedding, document_name, document_type, tags, page_number, section
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
ON CONFLICT (id) DO UPDATE SET
	content = EXCLUDED.content,
	embedding = EXCLUDED.embedding,
	tags = EXCLUDED.tags
`
	for _, chunk := range chunks {
		tagsJSON, err := json.Marshal(chunk.Metadata.Tags)
		if err != nil {
			return fmt.Errorf("marshal chunk tags: %w", err)
		}
		_, err = tx.ExecContext(ctx, query,
			chunk.ID, chunk.DocumentID, chunk.ChunkIndex, chunk.Content,
			pgvector.NewVector(chunk.Embedding),
			chunk.Metadata.DocumentName, chunk.Metadata.DocumentType, tagsJSON,
			chunk.Metadata.PageNumber, chunk.Metadata.Section,
		)
		if err != nil {
			return fmt.Errorf("insert chunk %s: %w", chunk.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert tx: %w", err)
	}
	return nil
}

// FindByFilter performs the indexed lookup behind local search. Document IDs
// take priority over tags; tags use the JSONB existence-any operator for OR
// semantics; no filter scans the whole table.
func (r *ChunkRepository) FindByFilter(ctx context.Context, filter domain.ChunkFilter) ([]domain.Chunk, error) {
	const base = `
SELECT id, document_id, chunk_index, content, embedding, document_name, document_type, tags, page_number, section
FROM chunks
`
	var rows *sql.Rows
	var err error
	switch {
	case len(filter.DocumentIDs) > 0:
		rows, err = r.db.QueryContext(ctx, base+`WHERE document_id = ANY($1) ORDER BY document_id, chunk_index`, filter.DocumentIDs)
	case len(filter.Tags) > 0:
		rows, err = r.db.QueryContext(ctx, base+`WHERE tags ?| $1 ORDER BY document_id, chunk_index`, filter.Tags)
	default:
		rows, err = r.db.QueryContext(ctx, base+`ORDER BY document_id, chunk_index`)
	}
	if err != nil {
		return nil, fmt.Errorf("query chunks: %w", err)
	}
	defer rows.Close()

	var out []domain.Chunk
	for rows.Next() {
		var chunk domain.Chunk
		var embedding pgvector.Vector
		var tagsRaw []byte
		err := rows.Scan(
			&chunk.ID, &chunk.DocumentID, &chunk.ChunkIndex, &chunk.Content, &embedding,
			&chunk.Metadata.DocumentName, &chunk.Metadata.DocumentType, &tagsRaw,
			&chunk.Metadata.PageNumber, &chunk.Metadata.Section,
		)
		if err != nil {
			return nil, fmt.Errorf("scan chunk: %w", err)
		}
		if err := json.Unmarshal(tagsRaw, &chunk.Metadata.Tags); err != nil {
			return nil, fmt.Errorf("unmarshal chunk tags: %w", err)
		}
		chunk.Embedding = embedding.Slice()
		out = append(out, chunk)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate chunks: %w", err)
	}
	return out, nil
}

func (r *ChunkRepository) DeleteByDocument(ctx context.Context, documentID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM chunks WHERE document_id = $1`, documentID); err != nil {
		return fmt.Errorf("delete chunks: %w", err)
	}
	return nil
}
