package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/booksage/booksage/internal/api"
	"github.com/booksage/booksage/internal/config"
	"github.com/booksage/booksage/internal/pipeline"
	"github.com/booksage/booksage/internal/store"
	"github.com/booksage/booksage/internal/summarize"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize clients.
	kv := store.NewClient(cfg.StoreURL, cfg.StoreAPIKey)
	books := store.NewBooks(kv)
	llm := summarize.NewClient(cfg.AnthropicAPIKey, cfg.AnthropicModel)
	summarizer := summarize.New(llm, summarize.Options{ChunkChars: cfg.ChunkChars})

	// Initialize pipeline.
	orch := pipeline.NewOrchestrator(cfg, books, log)
	orch.Start(ctx)

	// Initialize HTTP server.
	srv := api.NewServer(orch, summarizer, cfg.AnthropicModel, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		orch.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		llm.Close()
		kv.Close()
	}()

	log.Info("starting booksage", "port", cfg.Port)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
