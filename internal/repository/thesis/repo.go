package thesis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/Shuvo1998/ThesisManagementSystem/internal/db"
	"github.com/Shuvo1998/ThesisManagementSystem/internal/domain"
)

const keyPrefix = domain.KeyPrefix + "thesis:"

// store is the consumer interface for thesis records (ISP).
type store interface {
	JSONSet(ctx context.Context, key, path string, data []byte) error
	JSONGet(ctx context.Context, key string, paths ...string) ([]byte, error)
	Del(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	Scan(ctx context.Context, pattern string) ([]string, error)
}

// Filter narrows List results. Zero values match everything.
type Filter struct {
	Status     domain.Status
	Department string
	Author     string
	OwnerID    string
	Query      string // case-insensitive match on title, abstract, keywords
}

// Repo persists theses as JSON documents.
type Repo struct {
	store store
}

// New creates a thesis repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// Put stores a thesis record, overwriting any previous version.
func (r *Repo) Put(ctx context.Context, t *domain.Thesis) error {
	data, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("marshal thesis: %w", err)
	}
	key := thesisKey(t.ID)
	if err := r.store.JSONSet(ctx, key, "$", data); err != nil {
		return fmt.Errorf("json.set %s: %w", key, err)
	}
	return nil
}

// Get returns a thesis by ID.
func (r *Repo) Get(ctx context.Context, id string) (domain.Thesis, error) {
	key := thesisKey(id)
	raw, err := r.store.JSONGet(ctx, key, "$")
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domain.Thesis{}, domain.ErrThesisNotFound
		}
		return domain.Thesis{}, fmt.Errorf("json.get %s: %w", key, err)
	}
	return parseThesis(raw)
}

// Delete removes a thesis record.
func (r *Repo) Delete(ctx context.Context, id string) error {
	key := thesisKey(id)

	exists, err := r.store.Exists(ctx, key)
	if err != nil {
		return fmt.Errorf("check exists %s: %w", key, err)
	}
	if !exists {
		return domain.ErrThesisNotFound
	}

	if err := r.store.Del(ctx, key); err != nil {
		return fmt.Errorf("del %s: %w", key, err)
	}
	return nil
}

// List returns all theses matching the filter, in key-scan order.
func (r *Repo) List(ctx context.Context, f Filter) ([]domain.Thesis, error) {
	keys, err := r.store.Scan(ctx, keyPrefix+"*")
	if err != nil {
		return nil, fmt.Errorf("scan theses: %w", err)
	}

	theses := make([]domain.Thesis, 0, len(keys))
	for _, key := range keys {
		raw, err := r.store.JSONGet(ctx, key, "$")
		if err != nil {
			if errors.Is(err, db.ErrKeyNotFound) {
				continue // deleted between scan and get
			}
			return nil, fmt.Errorf("json.get %s: %w", key, err)
		}
		t, err := parseThesis(raw)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", key, err)
		}
		if matches(&t, f) {
			theses = append(theses, t)
		}
	}
	return theses, nil
}

// ListSearchable returns the semantic search corpus: approved theses
// with a precomputed embedding.
func (r *Repo) ListSearchable(ctx context.Context) ([]domain.Thesis, error) {
	all, err := r.List(ctx, Filter{Status: domain.StatusApproved})
	if err != nil {
		return nil, err
	}
	corpus := all[:0]
	for _, t := range all {
		if len(t.Embedding) > 0 {
			corpus = append(corpus, t)
		}
	}
	return corpus, nil
}

func matches(t *domain.Thesis, f Filter) bool {
	if f.Status != "" && t.Status != f.Status {
		return false
	}
	if f.Department != "" && !strings.EqualFold(t.Department, f.Department) {
		return false
	}
	if f.OwnerID != "" && t.OwnerID != f.OwnerID {
		return false
	}
	if f.Author != "" {
		found := false
		for _, a := range t.Authors {
			if strings.Contains(strings.ToLower(a), strings.ToLower(f.Author)) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.Query != "" {
		q := strings.ToLower(f.Query)
		if !strings.Contains(strings.ToLower(t.Title), q) &&
			!strings.Contains(strings.ToLower(t.Abstract), q) &&
			!containsFold(t.Keywords, q) {
			return false
		}
	}
	return true
}

func containsFold(items []string, lowered string) bool {
	for _, it := range items {
		if strings.Contains(strings.ToLower(it), lowered) {
			return true
		}
	}
	return false
}

// parseThesis unwraps the JSON.GET "$" array form.
func parseThesis(raw []byte) (domain.Thesis, error) {
	var docs []domain.Thesis
	if err := json.Unmarshal(raw, &docs); err != nil {
		// Plain object form (older writes or non-JSONPath backends).
		var t domain.Thesis
		if err2 := json.Unmarshal(raw, &t); err2 == nil {
			return t, nil
		}
		return domain.Thesis{}, fmt.Errorf("unmarshal thesis: %w", err)
	}
	if len(docs) == 0 {
		return domain.Thesis{}, domain.ErrThesisNotFound
	}
	return docs[0], nil
}

func thesisKey(id string) string {
	return keyPrefix + id
}
