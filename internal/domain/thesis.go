package domain

import (
	"fmt"
	"strings"
	"time"
)

// Status is the approval state of a thesis.
type Status string

const (
	// StatusPending is the initial state of every submitted thesis.
	StatusPending Status = "pending"
	// StatusApproved marks a thesis visible to the public and eligible for search.
	StatusApproved Status = "approved"
	// StatusRejected marks a thesis declined by an admin.
	StatusRejected Status = "rejected"
)

// ParseStatus validates a status string.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusPending, StatusApproved, StatusRejected:
		return Status(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}
}

// Thesis is a submitted thesis record with its metadata, file reference,
// approval status, and optional precomputed embedding.
type Thesis struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Abstract   string    `json:"abstract"`
	Authors    []string  `json:"authors"`
	Department string    `json:"department"`
	Keywords   []string  `json:"keywords,omitempty"`
	Year       int       `json:"year,omitempty"`
	FileRef    string    `json:"file_ref"`
	FileSize   int64     `json:"file_size"`
	PageCount  int       `json:"page_count,omitempty"`
	Status     Status    `json:"status"`
	OwnerID    string    `json:"owner_id"`
	Embedding  []float32 `json:"embedding,omitempty"`
	UploadedAt time.Time `json:"uploaded_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// EmbeddingText is the canonical text the embedding is derived from:
// the title and abstract joined with ". ".
func (t *Thesis) EmbeddingText() string {
	return t.Title + ". " + t.Abstract
}

// Searchable reports whether the thesis is eligible for semantic search:
// approved status and a non-nil embedding.
func (t *Thesis) Searchable() bool {
	return t.Status == StatusApproved && len(t.Embedding) > 0
}

// Validate checks the required metadata fields.
func (t *Thesis) Validate() error {
	var missing []string
	if strings.TrimSpace(t.Title) == "" {
		missing = append(missing, "title")
	}
	if strings.TrimSpace(t.Abstract) == "" {
		missing = append(missing, "abstract")
	}
	if len(t.Authors) == 0 {
		missing = append(missing, "authors")
	}
	if strings.TrimSpace(t.Department) == "" {
		missing = append(missing, "department")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing required fields: %s", ErrValidation, strings.Join(missing, ", "))
	}
	return nil
}

// RankedThesis pairs a thesis with its similarity score for one search
// request. Not persisted.
type RankedThesis struct {
	Thesis Thesis  `json:"thesis"`
	Score  float64 `json:"similarity_score"`
}
