package thesis

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/Shuvo1998/ThesisManagementSystem/internal/db"
	"github.com/Shuvo1998/ThesisManagementSystem/internal/domain"
)

// fakeStore emulates JSON document storage with JSONPath "$" array
// responses, like RedisJSON.
type fakeStore struct {
	docs map[string][]byte
}

func newFakeStore() *fakeStore {
	return &fakeStore{docs: make(map[string][]byte)}
}

func (f *fakeStore) JSONSet(_ context.Context, key, _ string, data []byte) error {
	f.docs[key] = data
	return nil
}

func (f *fakeStore) JSONGet(_ context.Context, key string, _ ...string) ([]byte, error) {
	data, ok := f.docs[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	// JSON.GET with "$" wraps the document in an array.
	return append(append([]byte("["), data...), ']'), nil
}

func (f *fakeStore) Del(_ context.Context, key string) error {
	delete(f.docs, key)
	return nil
}

func (f *fakeStore) Exists(_ context.Context, key string) (bool, error) {
	_, ok := f.docs[key]
	return ok, nil
}

func (f *fakeStore) Scan(_ context.Context, pattern string) ([]string, error) {
	prefix := strings.TrimSuffix(pattern, "*")
	var keys []string
	for k := range f.docs {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	return keys, nil
}

func put(t *testing.T, repo *Repo, th domain.Thesis) {
	t.Helper()
	if err := repo.Put(context.Background(), &th); err != nil {
		t.Fatalf("put %s: %v", th.ID, err)
	}
}

func sample(id string, status domain.Status) domain.Thesis {
	return domain.Thesis{
		ID:         id,
		Title:      "Thesis " + id,
		Abstract:   "Abstract for " + id,
		Authors:    []string{"Rahim Uddin"},
		Department: "CSE",
		Keywords:   []string{"ml"},
		Status:     status,
		OwnerID:    "u1",
	}
}

func TestPutGetRoundTrip(t *testing.T) {
	repo := New(newFakeStore())

	want := sample("t1", domain.StatusPending)
	want.Embedding = []float32{0.1, 0.2}
	put(t, repo, want)

	got, err := repo.Get(context.Background(), "t1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Title != want.Title || got.Status != want.Status {
		t.Errorf("round trip mismatch: %+v", got)
	}
	if len(got.Embedding) != 2 {
		t.Errorf("embedding lost in round trip: %v", got.Embedding)
	}
}

func TestGet_NotFound(t *testing.T) {
	repo := New(newFakeStore())
	if _, err := repo.Get(context.Background(), "ghost"); !errors.Is(err, domain.ErrThesisNotFound) {
		t.Fatalf("expected ErrThesisNotFound, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	repo := New(newFakeStore())
	put(t, repo, sample("t1", domain.StatusApproved))

	if err := repo.Delete(context.Background(), "t1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := repo.Get(context.Background(), "t1"); !errors.Is(err, domain.ErrThesisNotFound) {
		t.Fatalf("expected record gone, got %v", err)
	}
	if err := repo.Delete(context.Background(), "t1"); !errors.Is(err, domain.ErrThesisNotFound) {
		t.Fatalf("double delete: expected ErrThesisNotFound, got %v", err)
	}
}

func TestList_Filters(t *testing.T) {
	repo := New(newFakeStore())

	approved := sample("t1", domain.StatusApproved)
	put(t, repo, approved)

	pending := sample("t2", domain.StatusPending)
	pending.Department = "EEE"
	pending.OwnerID = "u2"
	put(t, repo, pending)

	tests := []struct {
		name   string
		filter Filter
		want   int
	}{
		{"all", Filter{}, 2},
		{"by status", Filter{Status: domain.StatusApproved}, 1},
		{"by department case-insensitive", Filter{Department: "cse"}, 1},
		{"by owner", Filter{OwnerID: "u2"}, 1},
		{"by author substring", Filter{Author: "rahim"}, 2},
		{"by keyword query", Filter{Query: "ml"}, 2},
		{"by title query", Filter{Query: "thesis t1"}, 1},
		{"no match", Filter{Query: "quantum"}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.List(context.Background(), tt.filter)
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			if len(got) != tt.want {
				t.Errorf("expected %d results, got %d", tt.want, len(got))
			}
		})
	}
}

func TestListSearchable(t *testing.T) {
	repo := New(newFakeStore())

	withVec := sample("t1", domain.StatusApproved)
	withVec.Embedding = []float32{1}
	put(t, repo, withVec)

	noVec := sample("t2", domain.StatusApproved)
	put(t, repo, noVec)

	pendingVec := sample("t3", domain.StatusPending)
	pendingVec.Embedding = []float32{1}
	put(t, repo, pendingVec)

	corpus, err := repo.ListSearchable(context.Background())
	if err != nil {
		t.Fatalf("list searchable: %v", err)
	}
	if len(corpus) != 1 || corpus[0].ID != "t1" {
		t.Fatalf("expected only approved+embedded thesis, got %+v", corpus)
	}
}

func TestParseThesis_ObjectForm(t *testing.T) {
	raw, _ := json.Marshal(sample("t1", domain.StatusApproved))

	got, err := parseThesis(raw)
	if err != nil {
		t.Fatalf("parse object form: %v", err)
	}
	if got.ID != "t1" {
		t.Errorf("expected t1, got %s", got.ID)
	}
}
