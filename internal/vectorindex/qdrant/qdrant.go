// Package qdrant is a minimal REST client for a Qdrant collection used
// as the document vector index.
package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"docsbot/internal/domain"
)

// Index is a thin client over one Qdrant collection with cosine
// distance and fixed dimensionality.
type Index struct {
	url        string
	apiKey     string
	collection string
	dimension  int
	client     *http.Client
}

// Config configures the Qdrant client. The API key is read from the
// environment variable named by APIKeyEnv; an empty value means the
// store is unauthenticated.
type Config struct {
	URL        string
	APIKeyEnv  string
	Collection string
	Dimension  int
	Timeout    time.Duration
}

func New(cfg Config) *Index {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &Index{
		url:        cfg.URL,
		apiKey:     os.Getenv(cfg.APIKeyEnv),
		collection: cfg.Collection,
		dimension:  cfg.Dimension,
		client:     &http.Client{Timeout: timeout},
	}
}

// Reset drops the collection and recreates it empty. Every rebuild
// starts from a fresh collection, so point ids never collide across
// generations.
func (x *Index) Reset(ctx context.Context) error {
	if err := x.do(ctx, http.MethodDelete, x.collectionURL(), nil, nil); err != nil {
		return fmt.Errorf("drop collection: %w", err)
	}
	body := map[string]any{
		"vectors": map[string]any{
			"size":     x.dimension,
			"distance": "Cosine",
		},
	}
	if err := x.do(ctx, http.MethodPut, x.collectionURL(), body, nil); err != nil {
		return fmt.Errorf("create collection: %w", err)
	}
	return nil
}

// Upsert writes one point whose payload references the owning document.
func (x *Index) Upsert(ctx context.Context, id uint64, vector []float32, documentID string) error {
	body := map[string]any{
		"points": []map[string]any{
			{
				"id":      id,
				"vector":  vector,
				"payload": map[string]any{"document_id": documentID},
			},
		},
	}
	url := fmt.Sprintf("%s/points?wait=true", x.collectionURL())
	if err := x.do(ctx, http.MethodPut, url, body, nil); err != nil {
		return fmt.Errorf("upsert point %d: %w", id, err)
	}
	return nil
}

// Search runs a k=1 nearest-neighbor query and returns the top match.
func (x *Index) Search(ctx context.Context, vector []float32) (domain.SearchMatch, error) {
	body := map[string]any{
		"vector":       vector,
		"limit":        1,
		"with_payload": true,
	}
	var resp struct {
		Result []struct {
			Score   float32 `json:"score"`
			Payload struct {
				DocumentID string `json:"document_id"`
			} `json:"payload"`
		} `json:"result"`
	}
	url := fmt.Sprintf("%s/points/search", x.collectionURL())
	if err := x.do(ctx, http.MethodPost, url, body, &resp); err != nil {
		return domain.SearchMatch{}, fmt.Errorf("search points: %w", err)
	}
	if len(resp.Result) == 0 {
		return domain.SearchMatch{}, domain.ErrNoMatch
	}
	top := resp.Result[0]
	return domain.SearchMatch{DocumentID: top.Payload.DocumentID, Score: top.Score}, nil
}

func (x *Index) collectionURL() string {
	return fmt.Sprintf("%s/collections/%s", x.url, x.collection)
}

func (x *Index) do(ctx context.Context, method, url string, body, out any) error {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if x.apiKey != "" {
		req.Header.Set("api-key", x.apiKey)
	}
	resp, err := x.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	// Dropping a collection that does not exist yet returns 404; that
	// is fine for Reset.
	if method == http.MethodDelete && resp.StatusCode == http.StatusNotFound {
		return nil
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("qdrant %s %s failed: %s", method, url, resp.Status)
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}
