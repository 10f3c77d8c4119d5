// Package bootstrap wires configuration, adapters and use cases into a
// runnable application.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dell/dpais-chat-reference-app-sub000/internal/config"
	"github.com/dell/dpais-chat-reference-app-sub000/internal/core/ports"
	"github.com/dell/dpais-chat-reference-app-sub000/internal/core/usecase"
	"github.com/dell/dpais-chat-reference-app-sub000/internal/infrastructure/chunking"
	"github.com/dell/dpais-chat-reference-app-sub000/internal/infrastructure/chunkstore/memory"
	"github.com/dell/dpais-chat-reference-app-sub000/internal/infrastructure/chunkstore/postgres"
	embeddings "github.com/dell/dpais-chat-reference-app-sub000/internal/infrastructure/embeddings/openai"
	"github.com/dell/dpais-chat-reference-app-sub000/internal/infrastructure/embeddings/synthetic"
	llm "github.com/dell/dpais-chat-reference-app-sub000/internal/infrastructure/llm/openai"
	"github.com/dell/dpais-chat-reference-app-sub000/internal/infrastructure/queue/nats"
	"github.com/dell/dpais-chat-reference-app-sub000/internal/infrastructure/remote"
	"github.com/dell/dpais-chat-reference-app-sub000/internal/infrastructure/resilience"
)

type App struct {
	Config config.Config
	Logger *slog.Logger

	Queue  ports.MessageQueue
	Docs   ports.DocumentRepository
	Remote ports.RemoteSearcher

	Retriever ports.Retriever
	ChatUC    ports.ChatService
	IngestUC  ports.DocumentIngestor
	ProcessUC ports.DocumentProcessor

	closeFn func()
}

func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}

	executor := resilience.NewExecutor(resilience.DefaultConfig())

	chunkRepo, docRepo, closeStore, err := openChunkStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
		ResilienceExecutor: executor,
		Logger:             logger,
	})
	if err != nil {
		closeStore()
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	embedder := buildEmbedder(cfg, executor, logger)
	remoteClient := remote.New(cfg.RemoteSearchURL, remote.WithResilience(executor))
	completion := llm.New(cfg.CompletionURL, cfg.CompletionModel, cfg.CompletionAPIKey)
	chunker := chunking.NewSplitter(cfg.ChunkSize, cfg.ChunkOverlap)

	localUC := usecase.NewLocalSearchUseCase(chunkRepo, embedder, cfg.RAGMinSimilarity, logger)
	retrieveUC := usecase.NewRetrievalUseCase(remoteClient, localUC, cfg.RAGTopK, logger)
	chatUC := usecase.NewChatUseCase(retrieveUC, completion, usecase.ChatOptions{
		BasePrompt:  cfg.BasePrompt,
		StrictMode:  cfg.StrictMode,
		ShowSources: cfg.ShowSources,
	})
	ingestUC := usecase.NewIngestUseCase(docRepo, chunkRepo, queue)
	processUC := usecase.NewProcessDocumentUseCase(docRepo, chunker, embedder, chunkRepo)

	return &App{
		Config: cfg,
		Logger: logger,

		Queue:  queue,
		Docs:   docRepo,
		Remote: remoteClient,

		Retriever: retrieveUC,
		ChatUC:    chatUC,
		IngestUC:  ingestUC,
		ProcessUC: processUC,

		closeFn: func() {
			queue.Close()
			closeStore()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}

func openChunkStore(ctx context.Context, cfg config.Config) (ports.ChunkRepository, ports.DocumentRepository, func(), error) {
	switch cfg.ChunkStoreKind {
	case "postgres":
		db, err := postgres.OpenDB(cfg.PostgresDSN)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("open postgres: %w", err)
		}
		if err := postgres.EnsureSchema(ctx, db); err != nil {
			_ = db.Close()
			return nil, nil, nil, fmt.Errorf("ensure schema: %w", err)
		}
		return postgres.NewChunkRepository(db), postgres.NewDocumentRepository(db), func() { _ = db.Close() }, nil
	case "memory", "":
		return memory.NewStore(), memory.NewDocumentStore(), func() {}, nil
	default:
		return nil, nil, nil, fmt.Errorf("unknown chunk store kind %q", cfg.ChunkStoreKind)
	}
}

func buildEmbedder(cfg config.Config, executor *resilience.Executor, logger *slog.Logger) ports.Embedder {
	if cfg.SyntheticFallback {
		return synthetic.New(cfg.EmbeddingsDim, logger)
	}
	return embeddings.New(
		cfg.EmbeddingsURL,
		cfg.EmbeddingsModel,
		embeddings.WithAPIKey(cfg.EmbeddingsAPIKey),
		embeddings.WithRateLimit(cfg.EmbeddingsRPS, cfg.EmbeddingsBurst),
		embeddings.WithResilience(executor),
	)
}
