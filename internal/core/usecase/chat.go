package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/dell/dpais-chat-reference-app-sub000/internal/core/domain"
	"github.com/dell/dpais-chat-reference-app-sub000/internal/core/ports"
)

// ChatOptions control prompt assembly for every turn.
type ChatOptions struct {
	BasePrompt  string
	StrictMode  bool
	ShowSources bool
}

// DefaultBasePrompt is used when no base prompt is configured.
const DefaultBasePrompt = "You are a helpful assistant."

// ChatUseCase runs one chat turn: retrieval, prompt assembly and streamed
// completion. The turn's citations are returned in the result value rather
// than kept in any shared state, so concurrent turns cannot leak references
// into each other.
type ChatUseCase struct {
	retriever  ports.Retriever
	completion ports.CompletionClient
	opts       ChatOptions
}

func NewChatUseCase(
	retriever ports.Retriever,
	completion ports.CompletionClient,
	opts ChatOptions,
) *ChatUseCase {
	if opts.BasePrompt == "" {
		opts.BasePrompt = DefaultBasePrompt
	}
	return &ChatUseCase{
		retriever:  retriever,
		completion: completion,
		opts:       opts,
	}
}

// Respond streams the answer for one turn through onToken and returns the
// accumulated text with its document references. Retrieval that yields no
// chunks downgrades the turn to plain completion. A context that is already
// cancelled short-circuits before any work.
func (uc *ChatUseCase) Respond(
	ctx context.Context,
	req ports.ChatRequest,
	onToken func(token string) error,
) (*ports.ChatResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Query) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "chat", fmt.Errorf("empty query"))
	}
	if onToken == nil {
		onToken = func(string) error { return nil }
	}

	chunks, err := uc.retriever.Retrieve(ctx, req.Query, req.SessionTags, req.K)
	if err != nil {
		// Only invariant violations (mixed embedding models) surface here;
		// ordinary retrieval failures already degraded to zero chunks.
		return nil, fmt.Errorf("retrieve context: %w", err)
	}

	documentBlock := FormatChunksForPrompt(chunks)
	usedRAG := documentBlock != ""

	system := BuildSystemMessage(uc.opts.BasePrompt, documentBlock, uc.opts.StrictMode, uc.opts.ShowSources)

	messages := make([]domain.ChatMessage, 0, len(req.History)+2)
	messages = append(messages, system)
	messages = append(messages, req.History...)
	messages = append(messages, domain.ChatMessage{Role: "user", Content: req.Query})

	var answer strings.Builder
	err = uc.completion.Complete(ctx, messages, func(token string) error {
		answer.WriteString(token)
		return onToken(token)
	})
	if err != nil {
		return nil, fmt.Errorf("stream completion: %w", err)
	}

	return &ports.ChatResult{
		Answer:     answer.String(),
		References: CreateDocumentReferences(chunks),
		UsedRAG:    usedRAG,
	}, nil
}
