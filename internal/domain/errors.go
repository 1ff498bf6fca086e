package domain

import "errors"

var (
	// ErrThesisNotFound signals a missing thesis record.
	ErrThesisNotFound = errors.New("thesis not found")
	// ErrUserNotFound signals a missing user record.
	ErrUserNotFound = errors.New("user not found")
	// ErrEmailTaken signals a registration attempt with an email already in use.
	ErrEmailTaken = errors.New("email already in use")
	// ErrUsernameTaken signals a registration attempt with a username already in use.
	ErrUsernameTaken = errors.New("username already taken")
	// ErrInvalidCredentials signals a failed login.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrForbidden signals an operation the caller's role or ownership does not allow.
	ErrForbidden = errors.New("forbidden")
	// ErrValidation signals missing or malformed input fields.
	ErrValidation = errors.New("validation failed")
	// ErrInvalidRole signals an unknown role value.
	ErrInvalidRole = errors.New("invalid role")
	// ErrInvalidStatus signals an unknown thesis status value.
	ErrInvalidStatus = errors.New("invalid status")
	// ErrSelfDemotion signals an admin trying to remove their own admin role.
	ErrSelfDemotion = errors.New("admin cannot demote themselves")

	// ErrEmbeddingUnavailable signals that the embedding provider failed or
	// returned a malformed payload. Writes recover by persisting a nil embedding.
	ErrEmbeddingUnavailable = errors.New("embedding unavailable")
	// ErrSimilarityUnavailable signals that similarity scoring failed.
	// Surfaced as a request-level failure; there is no partial ranking.
	ErrSimilarityUnavailable = errors.New("similarity search unavailable")
	// ErrScoreCountMismatch signals a score list whose length does not match
	// the submitted embedding list.
	ErrScoreCountMismatch = errors.New("similarity score count mismatch")

	// ErrNotPDF signals an upload that is not a parseable PDF.
	ErrNotPDF = errors.New("only PDF files are allowed")
	// ErrFileTooLarge signals an upload over the configured size limit.
	ErrFileTooLarge = errors.New("file too large")
)
