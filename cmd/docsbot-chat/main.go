package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"docsbot/internal/answer"
	"docsbot/internal/backend/openai"
	"docsbot/internal/config"
	"docsbot/internal/coordinator"
	"docsbot/internal/corpus"
	"docsbot/internal/domain"
	"docsbot/internal/fetch"
	"docsbot/internal/tui"
	"docsbot/internal/vectorindex/memory"
	"docsbot/internal/vectorindex/qdrant"
)

// Local chat session: one rebuild up front, then an interactive prompt
// loop. Uses the in-memory index unless a Qdrant endpoint is
// configured.
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

	var index domain.VectorIndex
	if cfg.Qdrant.URL != "" {
		index = qdrant.New(qdrant.Config{
			URL:        cfg.Qdrant.URL,
			APIKeyEnv:  cfg.Qdrant.APIKeyEnv,
			Collection: cfg.Qdrant.Collection,
			Dimension:  cfg.Backend.Dimension,
			Timeout:    time.Duration(cfg.Qdrant.TimeoutSecs) * time.Second,
		})
	} else {
		index = memory.New(cfg.Backend.Dimension)
	}

	ctx := context.Background()
	cor := corpus.New()
	coord := coordinator.New(coordinator.Config{
		Corpus:        cor,
		Index:         index,
		Backend:       backend,
		Fetcher:       fetch.NewGithubFetcher(ctx, token, cfg.Github.Owner, cfg.Github.Repo),
		EmbedRatePerS: cfg.EmbedRatePerS,
		Logger:        slog.New(slog.NewTextHandler(os.Stderr, nil)),
	})

	log.Printf("indexing %s/%s ...", cfg.Github.Owner, cfg.Github.Repo)
	if err := coord.Rebuild(ctx); err != nil {
		log.Fatalf("initial index build failed: %v", err)
	}

	m := tui.New(answer.New(cor, index, backend), cor.Len())
	if _, err := tea.NewProgram(m).Run(); err != nil {
		log.Fatal(err)
	}
}
