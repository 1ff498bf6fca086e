package thesis

import (
	"context"

	"github.com/Shuvo1998/ThesisManagementSystem/internal/domain"
	thesisrepo "github.com/Shuvo1998/ThesisManagementSystem/internal/repository/thesis"
)

// Repository defines the storage contract for thesis records.
type Repository interface {
	Put(ctx context.Context, t *domain.Thesis) error
	Get(ctx context.Context, id string) (domain.Thesis, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, f thesisrepo.Filter) ([]domain.Thesis, error)
}

// FileStore persists uploaded PDFs.
type FileStore interface {
	Save(ctx context.Context, name string, data []byte, contentType string) (string, error)
	Remove(ctx context.Context, ref string) error
}

// Embedder vectorizes thesis text.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
