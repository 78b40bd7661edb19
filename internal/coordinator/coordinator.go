// Package coordinator owns the authoritative corpus and drives the
// fetch → segment → embed → index → publish cycle.
package coordinator

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/time/rate"

	"docsbot/internal/corpus"
	"docsbot/internal/domain"
	"docsbot/internal/segment"
)

// reservedDir is the path prefix of repository templates that must
// never be indexed, compared case-insensitively.
const reservedDir = "templates"

// Coordinator rebuilds the vector index and corpus on demand. At most
// one rebuild runs at a time; redundant triggers collapse into a
// single pending one.
type Coordinator struct {
	corpus  *corpus.Corpus
	index   domain.VectorIndex
	backend domain.Backend
	fetcher domain.Fetcher
	limiter *rate.Limiter
	logger  *slog.Logger
	pending chan struct{}
}

// Config bundles the coordinator's collaborators.
type Config struct {
	Corpus  *corpus.Corpus
	Index   domain.VectorIndex
	Backend domain.Backend
	Fetcher domain.Fetcher
	// EmbedRatePerS caps embedding batches per second during a
	// rebuild. Zero disables the limit.
	EmbedRatePerS float64
	Logger        *slog.Logger
}

func New(cfg Config) *Coordinator {
	limit := rate.Inf
	if cfg.EmbedRatePerS > 0 {
		limit = rate.Limit(cfg.EmbedRatePerS)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Coordinator{
		corpus:  cfg.Corpus,
		index:   cfg.Index,
		backend: cfg.Backend,
		fetcher: cfg.Fetcher,
		limiter: rate.NewLimiter(limit, 1),
		logger:  logger,
		pending: make(chan struct{}, 1),
	}
}

// Trigger requests a rebuild. It never blocks: while a rebuild is in
// flight or already pending, additional triggers are dropped.
func (c *Coordinator) Trigger() {
	select {
	case c.pending <- struct{}{}:
	default:
	}
}

// Run is the single rebuild loop. A failed rebuild is logged and the
// loop keeps waiting for the next trigger; the previously published
// corpus keeps serving. Run returns when ctx is cancelled.
func (c *Coordinator) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-c.pending:
		}
		if err := c.Rebuild(ctx); err != nil {
			c.logger.Error("rebuild failed, keeping previous corpus", "error", err)
			continue
		}
	}
}

// Rebuild runs one full fetch → segment → embed → index cycle and, on
// success, atomically publishes the new corpus. On failure nothing
// previously published is touched.
func (c *Coordinator) Rebuild(ctx context.Context) error {
	root, cleanup, err := c.fetcher.Fetch(ctx)
	if err != nil {
		return fmt.Errorf("fetch documentation: %w", err)
	}
	defer cleanup()

	docs, err := LoadDocuments(root)
	if err != nil {
		return fmt.Errorf("load documents: %w", err)
	}
	c.logger.Info("loaded documentation tree", "documents", len(docs))

	// Embed everything before touching the index, so an embedding
	// failure leaves the previous generation fully serving.
	type entry struct {
		vector     []float32
		documentID string
	}
	var entries []entry
	for _, doc := range docs {
		if len(doc.Chunks) == 0 {
			continue
		}
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
		vectors, err := c.backend.EmbedBatch(ctx, doc.Chunks)
		if err != nil {
			return fmt.Errorf("embed %s: %w", doc.ID, err)
		}
		for _, vec := range vectors {
			entries = append(entries, entry{vector: vec, documentID: doc.ID})
		}
		c.logger.Debug("embedded document", "id", doc.ID, "chunks", len(doc.Chunks))
	}

	if err := c.index.Reset(ctx); err != nil {
		return fmt.Errorf("reset index: %w", err)
	}
	for i, e := range entries {
		if err := c.index.Upsert(ctx, uint64(i), e.vector, e.documentID); err != nil {
			return fmt.Errorf("upsert %s: %w", e.documentID, err)
		}
	}

	c.corpus.ReplaceAll(docs)
	c.logger.Info("published new corpus", "documents", len(docs), "points", len(entries))
	return nil
}

// LoadDocuments walks the documentation tree and segments every
// markdown file outside the reserved templates directory.
func LoadDocuments(root string) ([]domain.Document, error) {
	var docs []domain.Document
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".md") {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if strings.HasPrefix(strings.ToLower(rel), reservedDir) {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		content := string(data)
		docs = append(docs, domain.Document{
			ID:      rel,
			Content: content,
			Chunks:  segment.Split(content),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return docs, nil
}
