package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/dell/dpais-chat-reference-app-sub000/internal/core/domain"
	"github.com/dell/dpais-chat-reference-app-sub000/internal/core/ports"
)

type retrieverFake struct {
	chunks []domain.RetrievedChunk
	err    error
}

func (f *retrieverFake) Retrieve(context.Context, string, []string, int) ([]domain.RetrievedChunk, error) {
	return f.chunks, f.err
}

type completionFake struct {
	tokens []string
	err    error

	lastMessages []domain.ChatMessage
}

func (f *completionFake) Complete(_ context.Context, messages []domain.ChatMessage, onToken func(string) error) error {
	f.lastMessages = messages
	if f.err != nil {
		return f.err
	}
	for _, token := range f.tokens {
		if err := onToken(token); err != nil {
			return err
		}
	}
	return nil
}

func TestRespondRejectsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	uc := NewChatUseCase(&retrieverFake{}, &completionFake{}, ChatOptions{})
	_, err := uc.Respond(ctx, ports.ChatRequest{Query: "q"}, nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
}

func TestRespondRejectsEmptyQuery(t *testing.T) {
	uc := NewChatUseCase(&retrieverFake{}, &completionFake{}, ChatOptions{})
	_, err := uc.Respond(context.Background(), ports.ChatRequest{Query: "   "}, nil)
	if err == nil {
		t.Fatalf("expected error")
	}
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("error = %v, want ErrInvalidInput kind", err)
	}
}

func TestRespondPlainCompletionWithoutChunks(t *testing.T) {
	completion := &completionFake{tokens: []string{"hello", " there"}}
	uc := NewChatUseCase(&retrieverFake{}, completion, ChatOptions{BasePrompt: "base"})

	var streamed strings.Builder
	result, err := uc.Respond(context.Background(), ports.ChatRequest{Query: "hi"}, func(token string) error {
		streamed.WriteString(token)
		return nil
	})
	if err != nil {
		t.Fatalf("Respond error = %v", err)
	}
	if result.Answer != "hello there" || streamed.String() != "hello there" {
		t.Fatalf("answer = %q, streamed = %q", result.Answer, streamed.String())
	}
	if result.UsedRAG {
		t.Fatalf("UsedRAG = true without chunks")
	}
	if len(result.References) != 0 {
		t.Fatalf("references = %v, want empty", result.References)
	}
	if completion.lastMessages[0].Content != "base" {
		t.Fatalf("system message = %q, want bare base prompt", completion.lastMessages[0].Content)
	}
}

func TestRespondInjectsContextAndReturnsReferences(t *testing.T) {
	chunks := []domain.RetrievedChunk{
		retrievedChunk("d1", "Handbook.pdf", "vacation text", 0.9),
	}
	completion := &completionFake{tokens: []string{"answer"}}
	uc := NewChatUseCase(&retrieverFake{chunks: chunks}, completion, ChatOptions{BasePrompt: "base"})

	result, err := uc.Respond(context.Background(), ports.ChatRequest{
		Query:   "vacation?",
		History: []domain.ChatMessage{{Role: "user", Content: "earlier"}, {Role: "assistant", Content: "reply"}},
	}, nil)
	if err != nil {
		t.Fatalf("Respond error = %v", err)
	}
	if !result.UsedRAG {
		t.Fatalf("UsedRAG = false with chunks")
	}
	if len(result.References) != 1 || result.References[0].DocumentName != "Handbook.pdf" {
		t.Fatalf("references = %v", result.References)
	}

	messages := completion.lastMessages
	if len(messages) != 4 {
		t.Fatalf("len(messages) = %d, want 4", len(messages))
	}
	if messages[0].Role != "system" || !strings.Contains(messages[0].Content, "vacation text") {
		t.Fatalf("system message missing document context: %q", messages[0].Content)
	}
	if messages[3].Role != "user" || messages[3].Content != "vacation?" {
		t.Fatalf("final message = %+v", messages[3])
	}
}

func TestRespondSurfacesRetrieverError(t *testing.T) {
	uc := NewChatUseCase(
		&retrieverFake{err: &domain.DimensionMismatchError{LenA: 2, LenB: 3}},
		&completionFake{},
		ChatOptions{},
	)
	_, err := uc.Respond(context.Background(), ports.ChatRequest{Query: "q"}, nil)
	if err == nil {
		t.Fatalf("expected error")
	}
	if !domain.IsDimensionMismatch(err) {
		t.Fatalf("error = %v, want DimensionMismatchError", err)
	}
}

func TestRespondSurfacesCompletionError(t *testing.T) {
	uc := NewChatUseCase(&retrieverFake{}, &completionFake{err: errors.New("stream broken")}, ChatOptions{})
	_, err := uc.Respond(context.Background(), ports.ChatRequest{Query: "q"}, nil)
	if err == nil || !strings.Contains(err.Error(), "stream broken") {
		t.Fatalf("error = %v", err)
	}
}
