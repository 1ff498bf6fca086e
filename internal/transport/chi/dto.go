package chi

import (
	"context"
	"strings"
	"time"

	"github.com/Shuvo1998/ThesisManagementSystem/internal/domain"
)

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role,omitempty"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string       `json:"token"`
	User  userResponse `json:"user"`
}

type userResponse struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	Role         string    `json:"role"`
	RegisteredAt time.Time `json:"registered_at"`
}

func userToResponse(u domain.User) userResponse {
	return userResponse{
		ID:           u.ID,
		Username:     u.Username,
		Email:        u.Email,
		Role:         string(u.Role),
		RegisteredAt: u.RegisteredAt,
	}
}

// updateThesisRequest is a partial edit. Absent fields are untouched;
// authors and keywords must be JSON arrays, not comma-joined strings.
type updateThesisRequest struct {
	Title      *string  `json:"title"`
	Abstract   *string  `json:"abstract"`
	Authors    []string `json:"authors"`
	Department *string  `json:"department"`
	Keywords   []string `json:"keywords"`
	Year       *int     `json:"year"`
	Status     *string  `json:"status"`
}

type statusRequest struct {
	Status string `json:"status"`
}

type roleRequest struct {
	Role string `json:"role"`
}

type searchRequest struct {
	Query string `json:"query"`
}

type thesisResponse struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Abstract   string    `json:"abstract"`
	Authors    []string  `json:"authors"`
	Department string    `json:"department"`
	Keywords   []string  `json:"keywords,omitempty"`
	Year       int       `json:"year,omitempty"`
	FileURL    string    `json:"file_url,omitempty"`
	FileSize   int64     `json:"file_size"`
	PageCount  int       `json:"page_count,omitempty"`
	Status     string    `json:"status"`
	OwnerID    string    `json:"owner_id"`
	UploadedAt time.Time `json:"uploaded_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type thesisListResponse struct {
	Items []thesisResponse `json:"items"`
	Total int              `json:"total"`
}

type rankedThesisResponse struct {
	thesisResponse
	Score float64 `json:"similarity_score"`
}

type searchResponse struct {
	Items []rankedThesisResponse `json:"items"`
	Total int                    `json:"total"`
}

// thesisToResponse resolves the stored file reference to a servable
// link. A link failure degrades to an empty file_url rather than
// failing the whole response.
func (s *Server) thesisToResponse(ctx context.Context, t *domain.Thesis) thesisResponse {
	resp := thesisResponse{
		ID:         t.ID,
		Title:      t.Title,
		Abstract:   t.Abstract,
		Authors:    t.Authors,
		Department: t.Department,
		Keywords:   t.Keywords,
		Year:       t.Year,
		FileSize:   t.FileSize,
		PageCount:  t.PageCount,
		Status:     string(t.Status),
		OwnerID:    t.OwnerID,
		UploadedAt: t.UploadedAt,
		UpdatedAt:  t.UpdatedAt,
	}
	if t.FileRef != "" {
		if url, err := s.files.URL(ctx, t.FileRef); err == nil {
			resp.FileURL = url
		}
	}
	return resp
}

func (s *Server) thesesToResponse(ctx context.Context, theses []domain.Thesis) thesisListResponse {
	items := make([]thesisResponse, len(theses))
	for i := range theses {
		items[i] = s.thesisToResponse(ctx, &theses[i])
	}
	return thesisListResponse{Items: items, Total: len(items)}
}

// splitCSV normalizes a comma-separated form value into trimmed,
// non-empty entries.
func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if v := strings.TrimSpace(p); v != "" {
			out = append(out, v)
		}
	}
	return out
}
