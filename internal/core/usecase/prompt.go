package usecase

import (
	"fmt"
	"strings"

	"github.com/dell/dpais-chat-reference-app-sub000/internal/core/domain"
)

const (
	documentBlockPreamble = "Use the following documents to answer the user's question:"

	strictRefusalPhrase = "I can only answer questions about the provided documents."

	strictInstruction = "Answer ONLY from the documents above. If the question cannot be " +
		"answered from them, reply exactly: \"" + strictRefusalPhrase + "\""

	fallbackExampleDocument = "the source document"
)

// FormatChunksForPrompt renders retrieved chunks as labeled, 1-indexed
// document blocks joined by blank lines. Empty input renders nothing.
func FormatChunksForPrompt(chunks []domain.RetrievedChunk) string {
	if len(chunks) == 0 {
		return ""
	}

	blocks := make([]string, 0, len(chunks))
	for i, chunk := range chunks {
		var header strings.Builder
		fmt.Fprintf(&header, "=== DOCUMENT %d: %s", i+1, documentDisplayName(chunk))
		if chunk.Metadata.PageNumber > 0 {
			fmt.Fprintf(&header, " [Page %d]", chunk.Metadata.PageNumber)
		}
		if chunk.Metadata.Section != "" {
			fmt.Fprintf(&header, " [Section: %s]", chunk.Metadata.Section)
		}
		header.WriteString(" ===")
		blocks = append(blocks, header.String()+"\n"+chunk.Content)
	}
	return strings.Join(blocks, "\n\n")
}

// BuildSystemMessage composes the augmented system message handed to the
// completion client. strict restricts the model to the supplied documents;
// showSources appends a citation instruction quoting the first document's
// name as an example.
func BuildSystemMessage(base, documentBlock string, strict, showSources bool) domain.ChatMessage {
	var content strings.Builder
	content.WriteString(base)

	if documentBlock != "" {
		content.WriteString("\n\n")
		content.WriteString(documentBlockPreamble)
		content.WriteString("\n\n")
		content.WriteString(documentBlock)

		if strict {
			content.WriteString("\n\n")
			content.WriteString(strictInstruction)
		}
		if showSources {
			example := firstDocumentName(documentBlock)
			fmt.Fprintf(&content,
				"\n\nWhen you use information from a document, cite it by name, for example (Source: %s).",
				example)
		}
	}

	// Round-trip guard against encoding artifacts picked up from document text.
	normalized := strings.ToValidUTF8(content.String(), "")

	return domain.ChatMessage{Role: "system", Content: normalized}
}

// CreateDocumentReferences builds the UI citation list for one answer,
// deduplicated per document. The first (highest ranked) chunk of each
// document supplies the page/section detail.
func CreateDocumentReferences(chunks []domain.RetrievedChunk) []domain.DocumentReference {
	seen := make(map[string]bool, len(chunks))
	references := make([]domain.DocumentReference, 0, len(chunks))
	for _, chunk := range chunks {
		if seen[chunk.DocumentID] {
			continue
		}
		seen[chunk.DocumentID] = true
		references = append(references, domain.DocumentReference{
			DocumentID:   chunk.DocumentID,
			DocumentName: documentDisplayName(chunk),
			PageNumber:   chunk.Metadata.PageNumber,
			Section:      chunk.Metadata.Section,
			Similarity:   chunk.Similarity,
		})
	}
	return references
}

func documentDisplayName(chunk domain.RetrievedChunk) string {
	if chunk.Metadata.DocumentName != "" {
		return chunk.Metadata.DocumentName
	}
	return "Unknown Document"
}

// firstDocumentName pulls the document name out of the first block header,
// falling back to a generic placeholder when the block is malformed.
func firstDocumentName(documentBlock string) string {
	const marker = "=== DOCUMENT 1: "
	start := strings.Index(documentBlock, marker)
	if start < 0 {
		return fallbackExampleDocument
	}
	rest := documentBlock[start+len(marker):]
	end := strings.Index(rest, " ===")
	if end < 0 {
		return fallbackExampleDocument
	}
	name := rest[:end]
	if bracket := strings.Index(name, " ["); bracket >= 0 {
		name = name[:bracket]
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return fallbackExampleDocument
	}
	return name
}
