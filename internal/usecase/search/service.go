package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/Shuvo1998/ThesisManagementSystem/internal/domain"
)

// DefaultThreshold is the relevance cutoff: results scoring at or below
// it are discarded regardless of rank.
const DefaultThreshold = 0.5

// Service runs the semantic search pipeline: load corpus, score
// against the query, rank and filter.
type Service struct {
	corpus    CorpusLoader
	scorer    Scorer
	threshold float64
}

// New creates a search service with the default threshold.
func New(corpus CorpusLoader, scorer Scorer) *Service {
	return &Service{corpus: corpus, scorer: scorer, threshold: DefaultThreshold}
}

// WithThreshold overrides the relevance cutoff.
func (s *Service) WithThreshold(t float64) *Service {
	s.threshold = t
	return s
}

// Search returns approved theses ranked by similarity to the query,
// descending, keeping only scores strictly above the threshold.
//
// An empty corpus short-circuits to an empty result without calling
// the scorer. A scorer failure fails the whole request; there is no
// partial ranking.
func (s *Service) Search(ctx context.Context, query string) ([]domain.RankedThesis, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: search query is required", domain.ErrValidation)
	}

	corpus, err := s.corpus.ListSearchable(ctx)
	if err != nil {
		return nil, fmt.Errorf("load corpus: %w", err)
	}
	if len(corpus) == 0 {
		return []domain.RankedThesis{}, nil
	}

	embeddings := make([][]float32, len(corpus))
	for i := range corpus {
		embeddings[i] = corpus[i].Embedding
	}

	scores, err := s.scorer.Similarities(ctx, query, embeddings)
	if err != nil {
		return nil, fmt.Errorf("score corpus: %w", err)
	}
	if len(scores) != len(corpus) {
		return nil, fmt.Errorf("%w: got %d scores for %d theses",
			domain.ErrScoreCountMismatch, len(scores), len(corpus))
	}

	return rank(corpus, scores, s.threshold), nil
}
