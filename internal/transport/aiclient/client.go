// Package aiclient talks to the companion AI microservice over JSON/HTTP.
// The service owns the embedding model and the similarity math; this
// client only shuttles text and vectors.
package aiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/Shuvo1998/ThesisManagementSystem/internal/domain"
	"github.com/Shuvo1998/ThesisManagementSystem/internal/metrics"
)

const providerName = "service"

// Client implements domain.Embedder and domain.Scorer against the AI service.
type Client struct {
	baseURL string
	http    *http.Client
	retries int
	logger  *zap.Logger
}

// Config holds AI service client settings.
type Config struct {
	BaseURL string
	Timeout time.Duration // per-attempt deadline
	Retries int           // additional attempts on transient failure
	Logger  *zap.Logger
}

// New creates an AI service client.
func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: cfg.BaseURL,
		http:    &http.Client{Timeout: timeout},
		retries: cfg.Retries,
		logger:  logger,
	}
}

type embedRequest struct {
	Text string `json:"text"`
}

type embedResponse struct {
	Embedding []float32 `json:"embedding"`
}

type similarityRequest struct {
	QueryText        string      `json:"query_text"`
	ThesisEmbeddings [][]float32 `json:"thesis_embeddings"`
}

type similarityResponse struct {
	Similarities []float64 `json:"similarities"`
}

// Embed requests an embedding for the given text.
// Failures and malformed payloads wrap domain.ErrEmbeddingUnavailable.
func (c *Client) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	start := time.Now()

	var resp embedResponse
	err := c.post(ctx, "/embed", embedRequest{Text: text}, &resp)
	if err != nil {
		metrics.EmbeddingRequestsTotal.WithLabelValues(providerName, "error").Inc()
		metrics.EmbeddingErrorsTotal.WithLabelValues(providerName, "api_error").Inc()
		return domain.EmbeddingResult{}, fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, err)
	}
	if len(resp.Embedding) == 0 {
		metrics.EmbeddingRequestsTotal.WithLabelValues(providerName, "error").Inc()
		metrics.EmbeddingErrorsTotal.WithLabelValues(providerName, "empty_response").Inc()
		return domain.EmbeddingResult{}, fmt.Errorf("%w: response has no embedding field", domain.ErrEmbeddingUnavailable)
	}

	metrics.EmbeddingRequestsTotal.WithLabelValues(providerName, "success").Inc()
	metrics.EmbeddingRequestDuration.WithLabelValues(providerName).Observe(time.Since(start).Seconds())

	return domain.EmbeddingResult{Embedding: resp.Embedding}, nil
}

// Similarities scores the query against the given embeddings. The result
// is positionally matched to the input; a length mismatch is reported as
// domain.ErrScoreCountMismatch.
func (c *Client) Similarities(ctx context.Context, query string, embeddings [][]float32) ([]float64, error) {
	start := time.Now()

	var resp similarityResponse
	err := c.post(ctx, "/semantic-search", similarityRequest{
		QueryText:        query,
		ThesisEmbeddings: embeddings,
	}, &resp)
	if err != nil {
		metrics.SimilarityRequestsTotal.WithLabelValues(providerName, "error").Inc()
		return nil, fmt.Errorf("%w: %w", domain.ErrSimilarityUnavailable, err)
	}
	if resp.Similarities == nil {
		metrics.SimilarityRequestsTotal.WithLabelValues(providerName, "error").Inc()
		return nil, fmt.Errorf("%w: response has no similarities field", domain.ErrSimilarityUnavailable)
	}
	if len(resp.Similarities) != len(embeddings) {
		metrics.SimilarityRequestsTotal.WithLabelValues(providerName, "error").Inc()
		return nil, fmt.Errorf("%w: got %d scores for %d embeddings",
			domain.ErrScoreCountMismatch, len(resp.Similarities), len(embeddings))
	}

	metrics.SimilarityRequestsTotal.WithLabelValues(providerName, "success").Inc()
	metrics.SimilarityRequestDuration.WithLabelValues(providerName).Observe(time.Since(start).Seconds())

	return resp.Similarities, nil
}

// HealthCheck probes GET /health.
func (c *Client) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("build health request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("ai service health: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ai service health: status %d", resp.StatusCode)
	}
	return nil
}

// post issues a JSON POST with bounded retries. Network errors and 5xx
// responses are retried with backoff; 4xx responses are not.
func (c *Client) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(attempt) * 500 * time.Millisecond
			c.logger.Warn("Retrying AI service call",
				zap.String("path", path),
				zap.Int("attempt", attempt),
				zap.Duration("backoff", backoff),
				zap.Error(lastErr),
			)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
		}

		retryable, err := c.doOnce(ctx, path, payload, out)
		if err == nil {
			return nil
		}
		lastErr = err
		if !retryable {
			return err
		}
	}
	return lastErr
}

// doOnce performs a single attempt. The bool result reports whether the
// failure is transient.
func (c *Client) doOnce(ctx context.Context, path string, payload []byte, out any) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return false, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return true, fmt.Errorf("post %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 32<<20))
	if err != nil {
		return true, fmt.Errorf("read response %s: %w", path, err)
	}

	if resp.StatusCode != http.StatusOK {
		detail := extractError(raw)
		err := fmt.Errorf("post %s: status %d: %s", path, resp.StatusCode, detail)
		return resp.StatusCode >= http.StatusInternalServerError, err
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return false, fmt.Errorf("decode response %s: %w", path, err)
	}
	return false, nil
}

// extractError pulls the "error" field from an error body (AI service format).
func extractError(body []byte) string {
	var parsed struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &parsed) == nil && parsed.Error != "" {
		return parsed.Error
	}
	if len(body) > 200 {
		body = body[:200]
	}
	return string(body)
}
