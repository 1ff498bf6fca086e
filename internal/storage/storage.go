// Package storage persists uploaded thesis PDFs. Two drivers exist:
// local disk (served by the API itself under /uploads/) and a
// MinIO/S3 bucket (served through presigned links).
package storage

import (
	"bytes"
	"context"
	"fmt"

	"github.com/ledongthuc/pdf"

	"github.com/Shuvo1998/ThesisManagementSystem/internal/domain"
)

// FileStore stores and serves uploaded files. Save returns an opaque
// reference that Remove and URL accept.
type FileStore interface {
	Save(ctx context.Context, name string, data []byte, contentType string) (string, error)
	Remove(ctx context.Context, ref string) error
	URL(ctx context.Context, ref string) (string, error)
}

// ValidatePDF checks that data parses as a PDF and returns its page count.
func ValidatePDF(data []byte) (int, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return 0, fmt.Errorf("%w: %w", domain.ErrNotPDF, err)
	}
	pages := r.NumPage()
	if pages <= 0 {
		return 0, fmt.Errorf("%w: document has no pages", domain.ErrNotPDF)
	}
	return pages, nil
}
