package openai

import (
	"context"
	"fmt"

	"github.com/Shuvo1998/ThesisManagementSystem/internal/domain"
)

// LocalScorer implements domain.Scorer for the OpenAI provider: it embeds
// the query once and computes cosine similarity against each corpus
// embedding locally. The positional contract matches the remote scorer.
type LocalScorer struct {
	embedder domain.Embedder
}

// NewLocalScorer creates a cosine-based scorer over the given embedder.
// The embedder may be wrapped (cached, instrumented); only Embed is used.
func NewLocalScorer(embedder domain.Embedder) *LocalScorer {
	return &LocalScorer{embedder: embedder}
}

// Similarities embeds the query and scores it against each embedding.
func (s *LocalScorer) Similarities(ctx context.Context, query string, embeddings [][]float32) ([]float64, error) {
	result, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: embed query: %w", domain.ErrSimilarityUnavailable, err)
	}

	scores := make([]float64, len(embeddings))
	for i, emb := range embeddings {
		scores[i] = domain.CosineSimilarity(result.Embedding, emb)
	}
	return scores, nil
}
