package chi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/Shuvo1998/ThesisManagementSystem/internal/domain"
	searchuc "github.com/Shuvo1998/ThesisManagementSystem/internal/usecase/search"
)

type fakeFiles struct{}

func (fakeFiles) Save(_ context.Context, name string, _ []byte, _ string) (string, error) {
	return name, nil
}
func (fakeFiles) Remove(context.Context, string) error { return nil }
func (fakeFiles) URL(_ context.Context, ref string) (string, error) {
	return "/uploads/" + ref, nil
}

type fakeCorpus struct {
	theses []domain.Thesis
}

func (f *fakeCorpus) ListSearchable(context.Context) ([]domain.Thesis, error) {
	return f.theses, nil
}

type fakeScorer struct {
	scores []float64
	err    error
}

func (f *fakeScorer) Similarities(context.Context, string, [][]float32) ([]float64, error) {
	return f.scores, f.err
}

func searchServer(corpus *fakeCorpus, scorer *fakeScorer) *Server {
	svc := searchuc.New(corpus, scorer)
	return NewServer(nil, nil, svc, nil, nil, fakeFiles{}, zap.NewNop())
}

func TestSemanticSearch_RankedResponse(t *testing.T) {
	corpus := &fakeCorpus{theses: []domain.Thesis{
		{ID: "a", Title: "A", Status: domain.StatusApproved, Embedding: []float32{1}, FileRef: "a.pdf"},
		{ID: "b", Title: "B", Status: domain.StatusApproved, Embedding: []float32{1}, FileRef: "b.pdf"},
	}}
	srv := searchServer(corpus, &fakeScorer{scores: []float64{0.6, 0.8}})

	req := httptest.NewRequest(http.MethodGet, "/api/theses/search?query=fish", nil)
	rec := httptest.NewRecorder()
	srv.handleSemanticSearch(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp searchResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Total != 2 {
		t.Fatalf("expected 2 results, got %d", resp.Total)
	}
	if resp.Items[0].ID != "b" || resp.Items[0].Score != 0.8 {
		t.Errorf("expected b first with 0.8, got %+v", resp.Items[0])
	}
	if resp.Items[0].FileURL != "/uploads/b.pdf" {
		t.Errorf("expected file url resolved, got %q", resp.Items[0].FileURL)
	}
}

func TestSemanticSearch_EmptyCorpus(t *testing.T) {
	srv := searchServer(&fakeCorpus{}, &fakeScorer{err: errors.New("must not be called")})

	req := httptest.NewRequest(http.MethodGet, "/api/theses/search?query=fish", nil)
	rec := httptest.NewRecorder()
	srv.handleSemanticSearch(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp searchResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Total != 0 || resp.Items == nil {
		t.Errorf("expected empty items array, got %+v", resp)
	}
}

func TestSemanticSearch_MissingQuery(t *testing.T) {
	srv := searchServer(&fakeCorpus{}, &fakeScorer{})

	req := httptest.NewRequest(http.MethodGet, "/api/theses/search", nil)
	rec := httptest.NewRecorder()
	srv.handleSemanticSearch(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestSemanticSearch_QueryFromJSONBody(t *testing.T) {
	corpus := &fakeCorpus{theses: []domain.Thesis{
		{ID: "a", Status: domain.StatusApproved, Embedding: []float32{1}},
	}}
	srv := searchServer(corpus, &fakeScorer{scores: []float64{0.9}})

	body := `{"query":"underwater robotics"}`
	req := httptest.NewRequest(http.MethodPost, "/api/theses/search", strings.NewReader(body))
	rec := httptest.NewRecorder()
	srv.handleSemanticSearch(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestSemanticSearch_ScorerDown(t *testing.T) {
	corpus := &fakeCorpus{theses: []domain.Thesis{
		{ID: "a", Status: domain.StatusApproved, Embedding: []float32{1}},
	}}
	srv := searchServer(corpus, &fakeScorer{err: domain.ErrSimilarityUnavailable})

	req := httptest.NewRequest(http.MethodGet, "/api/theses/search?query=x", nil)
	rec := httptest.NewRecorder()
	srv.handleSemanticSearch(rec, req)

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rec.Code)
	}
}

func TestHandleDomainError_Mapping(t *testing.T) {
	srv := searchServer(&fakeCorpus{}, &fakeScorer{})

	tests := []struct {
		err    error
		status int
		code   string
	}{
		{domain.ErrValidation, http.StatusBadRequest, codeValidationFailed},
		{domain.ErrNotPDF, http.StatusBadRequest, codeValidationFailed},
		{domain.ErrSelfDemotion, http.StatusBadRequest, codeValidationFailed},
		{domain.ErrFileTooLarge, http.StatusRequestEntityTooLarge, codeFileTooLarge},
		{domain.ErrInvalidCredentials, http.StatusUnauthorized, codeUnauthorized},
		{domain.ErrForbidden, http.StatusForbidden, codeForbidden},
		{domain.ErrThesisNotFound, http.StatusNotFound, codeNotFound},
		{domain.ErrUserNotFound, http.StatusNotFound, codeNotFound},
		{domain.ErrEmailTaken, http.StatusConflict, codeConflict},
		{domain.ErrUsernameTaken, http.StatusConflict, codeConflict},
		{domain.ErrEmbeddingUnavailable, http.StatusBadGateway, codeAIServiceError},
		{domain.ErrScoreCountMismatch, http.StatusBadGateway, codeAIServiceError},
		{errors.New("boom"), http.StatusInternalServerError, codeInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			rec := httptest.NewRecorder()
			srv.handleDomainError(rec, fmt.Errorf("wrapped: %w", tt.err))

			if rec.Code != tt.status {
				t.Errorf("expected %d, got %d", tt.status, rec.Code)
			}
			var resp errorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if resp.Code != tt.code {
				t.Errorf("expected code %s, got %s", tt.code, resp.Code)
			}
		})
	}
}
