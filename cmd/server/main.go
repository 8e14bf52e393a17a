package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/depeele/summarization/internal/api"
	"github.com/depeele/summarization/internal/config"
	"github.com/depeele/summarization/internal/fetch"
	"github.com/depeele/summarization/internal/highlight"
	"github.com/depeele/summarization/internal/library"
	"github.com/depeele/summarization/internal/logger"
	"github.com/depeele/summarization/internal/metrics"
	"github.com/depeele/summarization/internal/notes"
	"github.com/depeele/summarization/internal/parser"
	"github.com/depeele/summarization/internal/pipeline"
	"github.com/depeele/summarization/internal/summarizer"
)

func main() {
	cfg, err := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := metrics.New(nil)

	// Fetching, with a shared cache in front of the HTTP client.
	client := fetch.NewClient(cfg.FetchTimeout, cfg.MaxDocumentBytes, cfg.FetchAPIKey, log)
	var store fetch.Store = fetch.NewMemoryStore(cfg.FetchCacheTTL)
	var redisStore *fetch.RedisStore
	if cfg.RedisAddr != "" {
		redisStore, err = fetch.NewRedisStore(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.FetchCacheTTL)
		if err != nil {
			log.Warn("redis unavailable, using in-memory fetch cache", "addr", cfg.RedisAddr, "error", err)
		} else {
			store = redisStore
		}
	}
	cache := fetch.NewCache(client, store, log, m.ObserveCache)

	// Optional external sentence ranking.
	var ranker library.Ranker
	var summ *summarizer.Client
	if cfg.SummarizerURL != "" {
		summ = summarizer.NewClient(cfg.SummarizerURL, cfg.SummarizerAPIKey, log)
		ranker = summ
	}

	lib := library.New(cfg.DocumentTTL)
	if cfg.DocumentTTL > 0 {
		lib.Start(ctx, cfg.DocumentTTL/4)
	}
	loader := library.NewLoader(lib, cache, ranker, parser.Options{PDFFallbackPdftotext: cfg.PDFFallbackPdftotext}, log)

	// Background prefetch pool.
	orch := pipeline.NewOrchestrator(pipeline.Config{
		Workers:            cfg.WorkerCount,
		QueueSize:          cfg.MaxQueueSize,
		MaxConcurrentLoads: cfg.MaxConcurrentLoads,
		JobTTL:             cfg.JobTTL,
	}, loader, log)
	orch.Start(ctx)

	deps := api.Deps{
		Loader:     loader,
		Notes:      notes.NewStore(),
		Highlights: highlight.NewRegistry(),
		Cache:      cache,
		FetchStats: client.Stats(),
		Prefetch:   orch,
		Metrics:    m,
	}

	srv := api.NewServer(deps, log, cfg)

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

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		orch.Stop()
		lib.Stop()

		client.Close()
		if summ != nil {
			summ.Close()
		}
		if redisStore != nil {
			redisStore.Close()
		}
	}()

	log.Info("starting summarization server", "port", cfg.Port, "show_sentences", cfg.ShowSentences)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
