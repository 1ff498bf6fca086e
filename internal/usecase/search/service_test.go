package search

import (
	"context"
	"errors"
	"testing"

	"github.com/Shuvo1998/ThesisManagementSystem/internal/domain"
)

// --- Mocks ---

type mockCorpus struct {
	theses []domain.Thesis
	err    error
}

func (m *mockCorpus) ListSearchable(_ context.Context) ([]domain.Thesis, error) {
	return m.theses, m.err
}

type mockScorer struct {
	scores []float64
	err    error
	called bool
	query  string
	embs   [][]float32
}

func (m *mockScorer) Similarities(_ context.Context, query string, embeddings [][]float32) ([]float64, error) {
	m.called = true
	m.query = query
	m.embs = embeddings
	return m.scores, m.err
}

func corpusOf(ids ...string) []domain.Thesis {
	theses := make([]domain.Thesis, len(ids))
	for i, id := range ids {
		theses[i] = domain.Thesis{
			ID:        id,
			Title:     "Title " + id,
			Abstract:  "Abstract " + id,
			Status:    domain.StatusApproved,
			Embedding: []float32{0.1, 0.2, 0.3},
		}
	}
	return theses
}

// --- Tests ---

func TestSearch_RanksDescendingAndFilters(t *testing.T) {
	corpus := &mockCorpus{theses: corpusOf("a", "b", "c", "d")}
	scorer := &mockScorer{scores: []float64{0.51, 0.9, 0.2, 0.7}}
	svc := New(corpus, scorer)

	results, err := svc.Search(context.Background(), "neural networks")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"b", "d", "a"} // 0.2 dropped, rest descending
	if len(results) != len(want) {
		t.Fatalf("expected %d results, got %d", len(want), len(results))
	}
	for i, id := range want {
		if results[i].Thesis.ID != id {
			t.Errorf("result %d: expected %s, got %s", i, id, results[i].Thesis.ID)
		}
	}
	if results[0].Score != 0.9 {
		t.Errorf("expected top score 0.9, got %f", results[0].Score)
	}
	if scorer.query != "neural networks" {
		t.Errorf("scorer got query %q", scorer.query)
	}
}

func TestSearch_ThresholdIsStrict(t *testing.T) {
	corpus := &mockCorpus{theses: corpusOf("a", "b")}
	scorer := &mockScorer{scores: []float64{0.5, 0.5000001}}
	svc := New(corpus, scorer)

	results, err := svc.Search(context.Background(), "query")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected exactly the score above 0.5, got %d results", len(results))
	}
	if results[0].Thesis.ID != "b" {
		t.Errorf("expected b, got %s", results[0].Thesis.ID)
	}
}

func TestSearch_TiesKeepCorpusOrder(t *testing.T) {
	corpus := &mockCorpus{theses: corpusOf("a", "b", "c")}
	scorer := &mockScorer{scores: []float64{0.8, 0.9, 0.8}}
	svc := New(corpus, scorer)

	results, err := svc.Search(context.Background(), "query")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"b", "a", "c"} // a before c: equal scores keep load order
	for i, id := range want {
		if results[i].Thesis.ID != id {
			t.Errorf("result %d: expected %s, got %s", i, id, results[i].Thesis.ID)
		}
	}
}

func TestSearch_EmptyCorpusSkipsScorer(t *testing.T) {
	corpus := &mockCorpus{}
	scorer := &mockScorer{}
	svc := New(corpus, scorer)

	results, err := svc.Search(context.Background(), "anything")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if results == nil {
		t.Fatal("expected empty slice, got nil")
	}
	if len(results) != 0 {
		t.Fatalf("expected no results, got %d", len(results))
	}
	if scorer.called {
		t.Error("scorer should not be called for an empty corpus")
	}
}

func TestSearch_EmptyQuery(t *testing.T) {
	svc := New(&mockCorpus{theses: corpusOf("a")}, &mockScorer{})

	if _, err := svc.Search(context.Background(), "   "); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestSearch_ScoreCountMismatch(t *testing.T) {
	corpus := &mockCorpus{theses: corpusOf("a", "b")}
	scorer := &mockScorer{scores: []float64{0.9}}
	svc := New(corpus, scorer)

	if _, err := svc.Search(context.Background(), "query"); !errors.Is(err, domain.ErrScoreCountMismatch) {
		t.Fatalf("expected ErrScoreCountMismatch, got %v", err)
	}
}

func TestSearch_ScorerError(t *testing.T) {
	corpus := &mockCorpus{theses: corpusOf("a")}
	scorer := &mockScorer{err: domain.ErrSimilarityUnavailable}
	svc := New(corpus, scorer)

	if _, err := svc.Search(context.Background(), "query"); !errors.Is(err, domain.ErrSimilarityUnavailable) {
		t.Fatalf("expected ErrSimilarityUnavailable, got %v", err)
	}
}

func TestSearch_CorpusError(t *testing.T) {
	corpus := &mockCorpus{err: errors.New("db down")}
	scorer := &mockScorer{}
	svc := New(corpus, scorer)

	if _, err := svc.Search(context.Background(), "query"); err == nil {
		t.Fatal("expected error")
	}
	if scorer.called {
		t.Error("scorer should not be called when the corpus load fails")
	}
}

func TestSearch_PassesEmbeddingsInCorpusOrder(t *testing.T) {
	theses := corpusOf("a", "b")
	theses[0].Embedding = []float32{1, 0}
	theses[1].Embedding = []float32{0, 1}
	corpus := &mockCorpus{theses: theses}
	scorer := &mockScorer{scores: []float64{0.6, 0.7}}
	svc := New(corpus, scorer)

	if _, err := svc.Search(context.Background(), "query"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(scorer.embs) != 2 || scorer.embs[0][0] != 1 || scorer.embs[1][1] != 1 {
		t.Errorf("embeddings not passed in corpus order: %v", scorer.embs)
	}
}

func TestSearch_CustomThreshold(t *testing.T) {
	corpus := &mockCorpus{theses: corpusOf("a", "b")}
	scorer := &mockScorer{scores: []float64{0.3, 0.1}}
	svc := New(corpus, scorer).WithThreshold(0.2)

	results, err := svc.Search(context.Background(), "query")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 1 || results[0].Thesis.ID != "a" {
		t.Fatalf("expected only a above threshold 0.2, got %v", results)
	}
}
