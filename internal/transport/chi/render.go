package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/Shuvo1998/ThesisManagementSystem/internal/domain"
)

// Error codes returned in JSON error bodies.
const (
	codeBadRequest       = "bad_request"
	codeValidationFailed = "validation_failed"
	codeUnauthorized     = "unauthorized"
	codeForbidden        = "forbidden"
	codeNotFound         = "not_found"
	codeConflict         = "conflict"
	codeFileTooLarge     = "file_too_large"
	codeAIServiceError   = "ai_service_error"
	codeInternalError    = "internal_error"
)

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}

// sentinelMapping binds a domain sentinel to an HTTP status and code.
type sentinelMapping struct {
	sentinel error
	status   int
	code     string
}

var sentinelMappings = []sentinelMapping{
	{domain.ErrValidation, http.StatusBadRequest, codeValidationFailed},
	{domain.ErrInvalidRole, http.StatusBadRequest, codeValidationFailed},
	{domain.ErrInvalidStatus, http.StatusBadRequest, codeValidationFailed},
	{domain.ErrNotPDF, http.StatusBadRequest, codeValidationFailed},
	{domain.ErrFileTooLarge, http.StatusRequestEntityTooLarge, codeFileTooLarge},
	{domain.ErrInvalidCredentials, http.StatusUnauthorized, codeUnauthorized},
	{domain.ErrForbidden, http.StatusForbidden, codeForbidden},
	{domain.ErrSelfDemotion, http.StatusBadRequest, codeValidationFailed},
	{domain.ErrThesisNotFound, http.StatusNotFound, codeNotFound},
	{domain.ErrUserNotFound, http.StatusNotFound, codeNotFound},
	{domain.ErrEmailTaken, http.StatusConflict, codeConflict},
	{domain.ErrUsernameTaken, http.StatusConflict, codeConflict},
	{domain.ErrSimilarityUnavailable, http.StatusBadGateway, codeAIServiceError},
	{domain.ErrScoreCountMismatch, http.StatusBadGateway, codeAIServiceError},
	{domain.ErrEmbeddingUnavailable, http.StatusBadGateway, codeAIServiceError},
}

// handleDomainError maps a use case error to an HTTP response.
// Unmapped errors become a generic 500 and are logged with detail.
func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	for _, m := range sentinelMappings {
		if errors.Is(err, m.sentinel) {
			writeError(w, m.status, m.code, err.Error())
			return
		}
	}
	s.logger.Error("Unhandled error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}
