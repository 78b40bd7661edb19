package qdrant

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docsbot/internal/domain"
)

func TestResetDropsAndRecreates(t *testing.T) {
	var calls []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, r.Method+" "+r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("api-key"))
		if r.Method == http.MethodPut {
			var body struct {
				Vectors struct {
					Size     int    `json:"size"`
					Distance string `json:"distance"`
				} `json:"vectors"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, 4, body.Vectors.Size)
			assert.Equal(t, "Cosine", body.Vectors.Distance)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	t.Setenv("TEST_QDRANT_KEY", "secret")
	x := New(Config{URL: srv.URL, APIKeyEnv: "TEST_QDRANT_KEY", Collection: "docs", Dimension: 4})
	require.NoError(t, x.Reset(context.Background()))
	assert.Equal(t, []string{
		"DELETE /collections/docs",
		"PUT /collections/docs",
	}, calls)
}

func TestResetToleratesMissingCollection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodDelete {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	x := New(Config{URL: srv.URL, Collection: "docs", Dimension: 4})
	assert.NoError(t, x.Reset(context.Background()))
}

func TestUpsertSendsPointWithPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		require.Equal(t, "/collections/docs/points", r.URL.Path)
		assert.Equal(t, "true", r.URL.Query().Get("wait"))
		var body struct {
			Points []struct {
				ID      uint64    `json:"id"`
				Vector  []float32 `json:"vector"`
				Payload struct {
					DocumentID string `json:"document_id"`
				} `json:"payload"`
			} `json:"points"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Len(t, body.Points, 1)
		assert.Equal(t, uint64(7), body.Points[0].ID)
		assert.Equal(t, "guide/install.md", body.Points[0].Payload.DocumentID)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	x := New(Config{URL: srv.URL, Collection: "docs", Dimension: 2})
	err := x.Upsert(context.Background(), 7, []float32{0.1, 0.2}, "guide/install.md")
	assert.NoError(t, err)
}

func TestSearchReturnsTopMatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/collections/docs/points/search", r.URL.Path)
		var body struct {
			Limit       int  `json:"limit"`
			WithPayload bool `json:"with_payload"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, 1, body.Limit)
		assert.True(t, body.WithPayload)
		resp := map[string]any{
			"result": []map[string]any{
				{"score": 0.93, "payload": map[string]any{"document_id": "guide/install.md"}},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	defer srv.Close()

	x := New(Config{URL: srv.URL, Collection: "docs", Dimension: 2})
	match, err := x.Search(context.Background(), []float32{0.5, 0.5})
	require.NoError(t, err)
	assert.Equal(t, "guide/install.md", match.DocumentID)
	assert.InDelta(t, 0.93, float64(match.Score), 1e-6)
}

func TestSearchEmptyCollection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"result": []}`))
	}))
	defer srv.Close()

	x := New(Config{URL: srv.URL, Collection: "docs", Dimension: 2})
	_, err := x.Search(context.Background(), []float32{1, 0})
	assert.ErrorIs(t, err, domain.ErrNoMatch)
}

func TestStoreUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close()

	x := New(Config{URL: srv.URL, Collection: "docs", Dimension: 2})
	assert.Error(t, x.Reset(context.Background()))
	assert.Error(t, x.Upsert(context.Background(), 0, []float32{1, 0}, "a.md"))
	_, err := x.Search(context.Background(), []float32{1, 0})
	assert.Error(t, err)
}
