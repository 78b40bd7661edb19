package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"docsbot/internal/answer"
	"docsbot/internal/backend/openai"
	"docsbot/internal/config"
	"docsbot/internal/coordinator"
	"docsbot/internal/corpus"
	"docsbot/internal/fetch"
	"docsbot/internal/server"
	"docsbot/internal/vectorindex/qdrant"
)

func main() {
	_ = godotenv.Load()

	var cfgPath string
	flag.StringVar(&cfgPath, "config", "config.yaml", "Path to YAML config file")
	flag.Parse()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if cfg.Github.Owner == "" || cfg.Github.Repo == "" {
		log.Fatalf("github owner and repo must be configured")
	}
	if cfg.Qdrant.URL == "" {
		log.Fatalf("qdrant url must be configured")
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	token, err := cfg.GithubToken()
	if err != nil {
		log.Fatalf("github fetcher init failed: %v", err)
	}

	backend, err := openai.New(openai.Config{
		BaseURL:    cfg.Backend.BaseURL,
		APIKeyEnv:  cfg.Backend.APIKeyEnv,
		EmbedModel: cfg.Backend.EmbedModel,
		ChatModel:  cfg.Backend.ChatModel,
	})
	if err != nil {
		log.Fatalf("backend init failed: %v", err)
	}

	index := qdrant.New(qdrant.Config{
		URL:        cfg.Qdrant.URL,
		APIKeyEnv:  cfg.Qdrant.APIKeyEnv,
		Collection: cfg.Qdrant.Collection,
		Dimension:  cfg.Backend.Dimension,
		Timeout:    time.Duration(cfg.Qdrant.TimeoutSecs) * time.Second,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cor := corpus.New()
	fetcher := fetch.NewGithubFetcher(ctx, token, cfg.Github.Owner, cfg.Github.Repo)
	coord := coordinator.New(coordinator.Config{
		Corpus:        cor,
		Index:         index,
		Backend:       backend,
		Fetcher:       fetcher,
		EmbedRatePerS: cfg.EmbedRatePerS,
		Logger:        logger.With("component", "coordinator"),
	})
	go coord.Run(ctx)
	coord.Trigger()

	svc := answer.New(cor, index, backend)
	srv := server.New(svc, coord, cfg.Server.StaticDir, logger.With("component", "server"))

	httpSrv := &http.Server{Addr: cfg.Server.Addr, Handler: srv.Handler()}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = httpSrv.Shutdown(shutdownCtx)
	}()

	logger.Info("starting up server", "addr", cfg.Server.Addr)
	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("server failed: %v", err)
	}
}
