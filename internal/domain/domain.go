package domain

import (
	"context"
	"errors"
)

// Document is a single documentation file loaded into the system.
// ID is the file's path relative to the repository root and is the key
// retrieval resolves to; Chunks are derived from Content and never
// persisted on their own.
type Document struct {
	ID      string
	Content string
	Chunks  []string
}

// SearchMatch is the best single result of a nearest-neighbor query.
type SearchMatch struct {
	DocumentID string
	Score      float32
}

// ErrNoMatch is returned by VectorIndex.Search when the collection holds
// no points to match against.
var ErrNoMatch = errors.New("no match in vector index")

// ErrDocumentNotFound is returned when a search result's document ID is
// absent from the published corpus, e.g. because a rebuild finished
// between the search and the lookup.
var ErrDocumentNotFound = errors.New("document not found in corpus")

// Stream is a live, ordered sequence of answer tokens. Recv returns
// io.EOF when the provider signals completion and any other error when
// the connection drops mid-stream. Close releases the underlying
// provider connection and must be safe to call at any point.
type Stream interface {
	Recv() (string, error)
	Close() error
}

// Backend turns text into vectors and (prompt, context) pairs into
// streamed answers. Implementations are selected at construction time
// and must be safe for concurrent use.
type Backend interface {
	// EmbedBatch returns one vector per input text, order-preserving.
	// A failure yields no partial results.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	EmbedOne(ctx context.Context, text string) ([]float32, error)
	AnswerStream(ctx context.Context, prompt, context string) (Stream, error)
}

// VectorIndex wraps a similarity-search store. Ids are assigned by the
// caller, densely from zero within one rebuild; Reset drops whatever
// the previous rebuild stored.
type VectorIndex interface {
	Reset(ctx context.Context) error
	Upsert(ctx context.Context, id uint64, vector []float32, documentID string) error
	// Search runs a k=1 nearest-neighbor query and returns the top
	// match, or ErrNoMatch when the collection is empty.
	Search(ctx context.Context, vector []float32) (SearchMatch, error)
}

// Fetcher produces a local directory tree of documentation for the
// configured repository. cleanup removes the scratch tree and is
// non-nil whenever err is nil.
type Fetcher interface {
	Fetch(ctx context.Context) (root string, cleanup func(), err error)
}
