// Package corpus holds the published set of documents served to
// answer requests.
package corpus

import (
	"sync"

	"docsbot/internal/domain"
)

// Corpus is the read-optimized mapping from document ID to document.
// A rebuild replaces the whole set at once under the write lock, which
// is held only for the swap; readers see either the previous complete
// set or the next one, never a mix.
type Corpus struct {
	mu   sync.RWMutex
	docs map[string]domain.Document
}

func New() *Corpus {
	return &Corpus{docs: make(map[string]domain.Document)}
}

// Get returns the document with the given ID from the currently
// published set.
func (c *Corpus) Get(id string) (domain.Document, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	doc, ok := c.docs[id]
	return doc, ok
}

// Len reports how many documents are currently published.
func (c *Corpus) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.docs)
}

// ReplaceAll atomically publishes docs as the new corpus.
func (c *Corpus) ReplaceAll(docs []domain.Document) {
	next := make(map[string]domain.Document, len(docs))
	for _, d := range docs {
		next[d.ID] = d
	}
	c.mu.Lock()
	c.docs = next
	c.mu.Unlock()
}

// Snapshot returns the IDs of the currently published documents. A
// single call observes exactly one generation.
func (c *Corpus) Snapshot() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ids := make([]string, 0, len(c.docs))
	for id := range c.docs {
		ids = append(ids, id)
	}
	return ids
}
