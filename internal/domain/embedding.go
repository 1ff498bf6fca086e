package domain

import "context"

// EmbeddingResult holds a computed embedding and provider usage counters.
type EmbeddingResult struct {
	Embedding    []float32
	PromptTokens int
	TotalTokens  int
}

// Embedder vectorizes text into an embedding.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
}

// Scorer computes similarity scores between a query and a list of
// precomputed embeddings. The returned slice has the same length and
// index correspondence as the input embeddings.
type Scorer interface {
	Similarities(ctx context.Context, query string, embeddings [][]float32) ([]float64, error)
}

// HealthChecker is implemented by components that can verify their
// upstream dependency.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}
