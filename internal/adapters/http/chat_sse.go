package httpadapter

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/dell/dpais-chat-reference-app-sub000/internal/core/domain"
	"github.com/dell/dpais-chat-reference-app-sub000/internal/core/ports"
)

type chatStreamEvent struct {
	Token      string                     `json:"token,omitempty"`
	References []domain.DocumentReference `json:"references,omitempty"`
	UsedRAG    *bool                      `json:"used_rag,omitempty"`
	Error      string                     `json:"error,omitempty"`
}

func (rt *Router) chatTurn(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req struct {
		Query       string               `json:"query"`
		SessionTags []string             `json:"session_tags"`
		History     []domain.ChatMessage `json:"history"`
		K           int                  `json:"k"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "query is required"})
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "streaming is not supported"})
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	onToken := func(token string) error {
		return writeStreamEvent(w, flusher, chatStreamEvent{Token: token})
	}

	result, err := rt.chat.Respond(r.Context(), ports.ChatRequest{
		Query:       req.Query,
		SessionTags: req.SessionTags,
		History:     req.History,
		K:           req.K,
	}, onToken)
	if err != nil {
		_ = writeStreamEvent(w, flusher, chatStreamEvent{Error: err.Error()})
		writeStreamDone(w, flusher)
		return
	}

	final := chatStreamEvent{
		References: result.References,
		UsedRAG:    &result.UsedRAG,
	}
	_ = writeStreamEvent(w, flusher, final)
	writeStreamDone(w, flusher)
}

func writeStreamEvent(w http.ResponseWriter, flusher http.Flusher, event chatStreamEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "data: %s\n\n", payload); err != nil {
		return err
	}
	flusher.Flush()
	return nil
}

func writeStreamDone(w http.ResponseWriter, flusher http.Flusher) {
	_, _ = io.WriteString(w, "data: [DONE]\n\n")
	flusher.Flush()
}
