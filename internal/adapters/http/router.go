// Package httpadapter exposes the retrieval pipeline over HTTP.
package httpadapter

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/dell/dpais-chat-reference-app-sub000/internal/core/domain"
	"github.com/dell/dpais-chat-reference-app-sub000/internal/core/ports"
	"github.com/dell/dpais-chat-reference-app-sub000/internal/observability/metrics"
)

type Router struct {
	retriever ports.Retriever
	chat      ports.ChatService
	ingestor  ports.DocumentIngestor
	docs      ports.DocumentRepository
	remote    ports.RemoteSearcher
	metrics   *metrics.ServerMetrics
}

func NewRouter(
	retriever ports.Retriever,
	chat ports.ChatService,
	ingestor ports.DocumentIngestor,
	docs ports.DocumentRepository,
	remote ports.RemoteSearcher,
	m *metrics.ServerMetrics,
) *Router {
	return &Router{
		retriever: retriever,
		chat:      chat,
		ingestor:  ingestor,
		docs:      docs,
		remote:    remote,
		metrics:   m,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/v1/retrieve", rt.retrieve)
	mux.HandleFunc("/v1/chat", rt.chatTurn)
	mux.HandleFunc("/v1/documents", rt.submitDocument)
	mux.HandleFunc("/v1/documents/", rt.documentByID)
	mux.HandleFunc("/v1/remote/backends", rt.remoteBackends)
	mux.HandleFunc("/v1/remote/collections", rt.remoteCollections)
	mux.HandleFunc("/v1/remote/status", rt.remoteStatus)
	if rt.metrics != nil {
		mux.Handle("/metrics", rt.metrics.Handler())
	}

	handler := accessLogMiddleware(mux)
	handler = metricsMiddleware(rt.metrics, handler)
	return requestIDMiddleware(handler)
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) retrieve(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req struct {
		Query       string   `json:"query"`
		SessionTags []string `json:"session_tags"`
		K           int      `json:"k"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "query is required"})
		return
	}

	start := time.Now()
	chunks, err := rt.retriever.Retrieve(r.Context(), req.Query, req.SessionTags, req.K)
	if err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}
	rt.observeRetrieval(chunks, time.Since(start))

	if chunks == nil {
		chunks = []domain.RetrievedChunk{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"chunks": chunks})
}

func (rt *Router) observeRetrieval(chunks []domain.RetrievedChunk, elapsed time.Duration) {
	if rt.metrics == nil {
		return
	}
	flow := "none"
	if len(chunks) > 0 {
		if chunks[0].SourceType == domain.SourceLocal {
			flow = "local"
		} else {
			flow = "remote"
		}
	}
	rt.metrics.ObserveRetrieval(flow, len(chunks), elapsed.Seconds())
}

func (rt *Router) submitDocument(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req struct {
		Name string   `json:"name"`
		Type string   `json:"type"`
		Tags []string `json:"tags"`
		Text string   `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	doc, err := rt.ingestor.Ingest(r.Context(), ports.DocumentSubmission{
		Name: req.Name,
		Type: req.Type,
		Tags: req.Tags,
		Text: req.Text,
	})
	if err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusAccepted, doc)
}

func (rt *Router) documentByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/v1/documents/")
	if id == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "document id is required"})
		return
	}

	switch r.Method {
	case http.MethodGet:
		doc, err := rt.docs.GetByID(r.Context(), id)
		if err != nil {
			writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, doc)
	case http.MethodDelete:
		if err := rt.ingestor.Delete(r.Context(), id); err != nil {
			writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	default:
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
	}
}

func (rt *Router) remoteBackends(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	backends, err := rt.remote.ListBackends(r.Context())
	if err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}
	if backends == nil {
		backends = []domain.RemoteBackend{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"backends": backends})
}

func (rt *Router) remoteCollections(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	collections, err := rt.remote.ListCollections(r.Context())
	if err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}
	if collections == nil {
		collections = []domain.RemoteCollection{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"collections": collections})
}

func (rt *Router) remoteStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	status, err := rt.remote.TestConnection(r.Context())
	if err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
