// Package answer implements the retrieval-to-answer path: embed the
// prompt, find the closest document, stream a grounded completion.
package answer

import (
	"context"
	"fmt"

	"docsbot/internal/corpus"
	"docsbot/internal/domain"
)

// Service answers prompts against whichever corpus generation is
// currently published.
type Service struct {
	corpus  *corpus.Corpus
	index   domain.VectorIndex
	backend domain.Backend
}

func New(cor *corpus.Corpus, index domain.VectorIndex, backend domain.Backend) *Service {
	return &Service{corpus: cor, index: index, backend: backend}
}

// Answer returns a live token stream for the prompt. The caller owns
// the stream and must Close it; abandoning it releases the provider
// connection.
func (s *Service) Answer(ctx context.Context, prompt string) (domain.Stream, error) {
	vec, err := s.backend.EmbedOne(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("embed prompt: %w", err)
	}
	match, err := s.index.Search(ctx, vec)
	if err != nil {
		return nil, fmt.Errorf("search index: %w", err)
	}
	// The document may have been evicted by a rebuild finishing between
	// the search and this lookup; that window is accepted.
	doc, ok := s.corpus.Get(match.DocumentID)
	if !ok {
		return nil, fmt.Errorf("resolve %q: %w", match.DocumentID, domain.ErrDocumentNotFound)
	}
	stream, err := s.backend.AnswerStream(ctx, prompt, doc.Content)
	if err != nil {
		return nil, fmt.Errorf("start answer stream: %w", err)
	}
	return stream, nil
}
