// Package memory is an in-process vector index using brute-force
// cosine similarity. It backs tests and local chat sessions where no
// Qdrant endpoint is configured.
package memory

import (
	"context"
	"fmt"
	"math"
	"sync"

	"docsbot/internal/domain"
)

type point struct {
	vector     []float32
	documentID string
}

// Index satisfies the same contract as the Qdrant client.
type Index struct {
	mu        sync.RWMutex
	dimension int
	points    map[uint64]point
}

func New(dimension int) *Index {
	return &Index{
		dimension: dimension,
		points:    make(map[uint64]point),
	}
}

func (x *Index) Reset(context.Context) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.points = make(map[uint64]point)
	return nil
}

func (x *Index) Upsert(_ context.Context, id uint64, vector []float32, documentID string) error {
	if len(vector) != x.dimension {
		return fmt.Errorf("vector dimension %d, want %d", len(vector), x.dimension)
	}
	x.mu.Lock()
	defer x.mu.Unlock()
	x.points[id] = point{vector: vector, documentID: documentID}
	return nil
}

func (x *Index) Search(_ context.Context, vector []float32) (domain.SearchMatch, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	if len(x.points) == 0 {
		return domain.SearchMatch{}, domain.ErrNoMatch
	}
	var best domain.SearchMatch
	first := true
	for _, p := range x.points {
		score := cosine(vector, p.vector)
		if first || score > best.Score {
			best = domain.SearchMatch{DocumentID: p.documentID, Score: score}
			first = false
		}
	}
	return best, nil
}

func cosine(a, b []float32) float32 {
	n := min(len(a), len(b))
	var dot, na, nb float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(na) * math.Sqrt(nb)))
}
