package search

import (
	"context"

	"github.com/Shuvo1998/ThesisManagementSystem/internal/domain"
)

// CorpusLoader returns the theses eligible for semantic search:
// approved status with a non-nil embedding.
type CorpusLoader interface {
	ListSearchable(ctx context.Context) ([]domain.Thesis, error)
}

// Scorer computes positionally-matched similarity scores for a query
// against a list of embeddings.
type Scorer interface {
	Similarities(ctx context.Context, query string, embeddings [][]float32) ([]float64, error)
}
