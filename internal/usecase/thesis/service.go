package thesis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Shuvo1998/ThesisManagementSystem/internal/domain"
	thesisrepo "github.com/Shuvo1998/ThesisManagementSystem/internal/repository/thesis"
	"github.com/Shuvo1998/ThesisManagementSystem/internal/storage"
)

// Submission is the input for a new thesis upload.
type Submission struct {
	Title       string
	Abstract    string
	Authors     []string
	Department  string
	Keywords    []string
	Year        int
	FileName    string
	FileData    []byte
	ContentType string
}

// Update carries a partial metadata edit. Nil fields are untouched.
type Update struct {
	Title      *string
	Abstract   *string
	Authors    []string
	Department *string
	Keywords   []string
	Year       *int
	Status     *string // admin only
}

// Service orchestrates thesis uploads, edits, the approval workflow,
// and embedding recomputation.
type Service struct {
	repo        Repository
	files       FileStore
	embedder    Embedder
	maxFileSize int64
	validatePDF func(data []byte) (int, error)
	logger      *zap.Logger
}

// New creates a thesis service.
func New(repo Repository, files FileStore, embedder Embedder, logger *zap.Logger) *Service {
	return &Service{
		repo:        repo,
		files:       files,
		embedder:    embedder,
		maxFileSize: 20 << 20,
		validatePDF: storage.ValidatePDF,
		logger:      logger,
	}
}

// WithMaxFileSize overrides the upload size limit.
func (s *Service) WithMaxFileSize(n int64) *Service {
	if n > 0 {
		s.maxFileSize = n
	}
	return s
}

// Submit validates the submission, stores the PDF, computes the
// embedding, and persists the record with status pending.
//
// Validation runs before any embedding call. The embedding is computed
// before persistence; if the provider is unavailable the record is
// still written, with a nil embedding, and becomes search-eligible only
// after a later successful recomputation.
func (s *Service) Submit(ctx context.Context, actor domain.Identity, sub Submission) (domain.Thesis, error) {
	if actor.IsZero() {
		return domain.Thesis{}, domain.ErrForbidden
	}

	now := time.Now().UTC()
	t := domain.Thesis{
		ID:         uuid.NewString(),
		Title:      sub.Title,
		Abstract:   sub.Abstract,
		Authors:    sub.Authors,
		Department: sub.Department,
		Keywords:   sub.Keywords,
		Year:       sub.Year,
		FileSize:   int64(len(sub.FileData)),
		Status:     domain.StatusPending,
		OwnerID:    actor.UserID,
		UploadedAt: now,
		UpdatedAt:  now,
	}
	if err := t.Validate(); err != nil {
		return domain.Thesis{}, err
	}

	if len(sub.FileData) == 0 {
		return domain.Thesis{}, fmt.Errorf("%w: thesis file is required", domain.ErrValidation)
	}
	if int64(len(sub.FileData)) > s.maxFileSize {
		return domain.Thesis{}, fmt.Errorf("%w: max %d bytes", domain.ErrFileTooLarge, s.maxFileSize)
	}

	pages, err := s.validatePDF(sub.FileData)
	if err != nil {
		return domain.Thesis{}, err
	}
	t.PageCount = pages

	ref, err := s.files.Save(ctx, t.ID+".pdf", sub.FileData, "application/pdf")
	if err != nil {
		return domain.Thesis{}, fmt.Errorf("store file: %w", err)
	}
	t.FileRef = ref

	t.Embedding = s.computeEmbedding(ctx, &t)

	if err := s.repo.Put(ctx, &t); err != nil {
		if rmErr := s.files.Remove(ctx, ref); rmErr != nil {
			s.logger.Warn("Failed to remove orphaned file", zap.String("ref", ref), zap.Error(rmErr))
		}
		return domain.Thesis{}, fmt.Errorf("persist thesis: %w", err)
	}

	return t, nil
}

// Update applies a partial metadata edit. Only the owner or an admin
// may edit; status changes require admin. A change to title or
// abstract recomputes the embedding before the record is rewritten;
// any other edit leaves the existing embedding untouched.
func (s *Service) Update(ctx context.Context, actor domain.Identity, id string, upd Update) (domain.Thesis, error) {
	t, err := s.repo.Get(ctx, id)
	if err != nil {
		return domain.Thesis{}, err
	}

	if t.OwnerID != actor.UserID && !actor.IsAdmin() {
		return domain.Thesis{}, domain.ErrForbidden
	}

	textChanged := false
	if upd.Title != nil && *upd.Title != t.Title {
		t.Title = *upd.Title
		textChanged = true
	}
	if upd.Abstract != nil && *upd.Abstract != t.Abstract {
		t.Abstract = *upd.Abstract
		textChanged = true
	}
	if upd.Authors != nil {
		t.Authors = upd.Authors
	}
	if upd.Department != nil {
		t.Department = *upd.Department
	}
	if upd.Keywords != nil {
		t.Keywords = upd.Keywords
	}
	if upd.Year != nil {
		t.Year = *upd.Year
	}
	if upd.Status != nil {
		if !actor.IsAdmin() {
			return domain.Thesis{}, domain.ErrForbidden
		}
		status, err := domain.ParseStatus(*upd.Status)
		if err != nil {
			return domain.Thesis{}, err
		}
		t.Status = status
	}

	if err := t.Validate(); err != nil {
		return domain.Thesis{}, err
	}

	if textChanged {
		t.Embedding = s.computeEmbedding(ctx, &t)
	}
	t.UpdatedAt = time.Now().UTC()

	if err := s.repo.Put(ctx, &t); err != nil {
		return domain.Thesis{}, fmt.Errorf("persist thesis: %w", err)
	}
	return t, nil
}

// SetStatus moves a thesis through the approval workflow. Admin only.
func (s *Service) SetStatus(ctx context.Context, actor domain.Identity, id, status string) (domain.Thesis, error) {
	if !actor.IsAdmin() {
		return domain.Thesis{}, domain.ErrForbidden
	}
	return s.Update(ctx, actor, id, Update{Status: &status})
}

// Get returns a thesis. Records that are not approved are visible only
// to their owner and admins.
func (s *Service) Get(ctx context.Context, actor domain.Identity, id string) (domain.Thesis, error) {
	t, err := s.repo.Get(ctx, id)
	if err != nil {
		return domain.Thesis{}, err
	}
	if t.Status != domain.StatusApproved && t.OwnerID != actor.UserID && !actor.IsAdmin() {
		return domain.Thesis{}, domain.ErrThesisNotFound
	}
	return t, nil
}

// ListApproved returns approved theses matching the filter. Public.
func (s *Service) ListApproved(ctx context.Context, f thesisrepo.Filter) ([]domain.Thesis, error) {
	f.Status = domain.StatusApproved
	theses, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list theses: %w", err)
	}
	return theses, nil
}

// ListMine returns all theses submitted by the caller, any status.
func (s *Service) ListMine(ctx context.Context, actor domain.Identity) ([]domain.Thesis, error) {
	if actor.IsZero() {
		return nil, domain.ErrForbidden
	}
	theses, err := s.repo.List(ctx, thesisrepo.Filter{OwnerID: actor.UserID})
	if err != nil {
		return nil, fmt.Errorf("list theses: %w", err)
	}
	return theses, nil
}

// ListAll returns theses of any status matching the filter. Admin only.
func (s *Service) ListAll(ctx context.Context, actor domain.Identity, f thesisrepo.Filter) ([]domain.Thesis, error) {
	if !actor.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	theses, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list theses: %w", err)
	}
	return theses, nil
}

// Delete removes a thesis and its stored file. Owner or admin only.
// File removal is best-effort; the record deletion is authoritative.
func (s *Service) Delete(ctx context.Context, actor domain.Identity, id string) error {
	t, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if t.OwnerID != actor.UserID && !actor.IsAdmin() {
		return domain.ErrForbidden
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete thesis: %w", err)
	}

	if t.FileRef != "" {
		if err := s.files.Remove(ctx, t.FileRef); err != nil {
			s.logger.Warn("Failed to remove thesis file",
				zap.String("thesis_id", id),
				zap.String("ref", t.FileRef),
				zap.Error(err),
			)
		}
	}
	return nil
}

// computeEmbedding derives the embedding from the canonical text.
// Returns nil when the provider is unavailable; the write proceeds and
// the record simply stays out of the semantic search corpus.
func (s *Service) computeEmbedding(ctx context.Context, t *domain.Thesis) []float32 {
	result, err := s.embedder.Embed(ctx, t.EmbeddingText())
	if err != nil {
		s.logger.Warn("Embedding unavailable, persisting without it",
			zap.String("thesis_id", t.ID),
			zap.Error(err),
		)
		return nil
	}
	return result.Embedding
}
