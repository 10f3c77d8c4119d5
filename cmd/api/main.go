package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpadapter "github.com/dell/dpais-chat-reference-app-sub000/internal/adapters/http"
	"github.com/dell/dpais-chat-reference-app-sub000/internal/bootstrap"
	"github.com/dell/dpais-chat-reference-app-sub000/internal/config"
	"github.com/dell/dpais-chat-reference-app-sub000/internal/observability/logging"
	"github.com/dell/dpais-chat-reference-app-sub000/internal/observability/metrics"
)

func main() {
	cfg := config.Load()
	logger := logging.NewJSONLogger("docchat-api", cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	serverMetrics := metrics.NewServerMetrics("docchat-api")
	router := httpadapter.NewRouter(
		app.Retriever,
		app.ChatUC,
		app.IngestUC,
		app.Docs,
		app.Remote,
		serverMetrics,
	).Handler()

	server := &http.Server{
		Addr:        ":" + cfg.APIPort,
		Handler:     router,
		ReadTimeout: 30 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		logger.Info("api_listening", "port", cfg.APIPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("api server error: %v", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("api_shutdown_error", "error", err)
	}
}
