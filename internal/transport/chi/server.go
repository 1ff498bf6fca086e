// Package chi exposes the thesis repository over HTTP: authentication,
// thesis submission and approval, keyword and semantic search, and user
// administration.
package chi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/Shuvo1998/ThesisManagementSystem/internal/domain"
	logpkg "github.com/Shuvo1998/ThesisManagementSystem/internal/logger"
	"github.com/Shuvo1998/ThesisManagementSystem/internal/metrics"
	"github.com/Shuvo1998/ThesisManagementSystem/internal/storage"
	authuc "github.com/Shuvo1998/ThesisManagementSystem/internal/usecase/auth"
	healthuc "github.com/Shuvo1998/ThesisManagementSystem/internal/usecase/health"
	searchuc "github.com/Shuvo1998/ThesisManagementSystem/internal/usecase/search"
	thesisuc "github.com/Shuvo1998/ThesisManagementSystem/internal/usecase/thesis"
	useruc "github.com/Shuvo1998/ThesisManagementSystem/internal/usecase/user"

	thesisrepo "github.com/Shuvo1998/ThesisManagementSystem/internal/repository/thesis"
)

// Server wires the use cases into HTTP handlers.
type Server struct {
	auth       *authuc.Service
	theses     *thesisuc.Service
	search     *searchuc.Service
	users      *useruc.Service
	health     *healthuc.Service
	files      storage.FileStore
	uploadsDir string // non-empty enables static serving for the local driver
	maxUpload  int64
	logger     *zap.Logger
}

// NewServer creates an HTTP API server.
func NewServer(
	auth *authuc.Service,
	theses *thesisuc.Service,
	search *searchuc.Service,
	users *useruc.Service,
	health *healthuc.Service,
	files storage.FileStore,
	logger *zap.Logger,
) *Server {
	return &Server{
		auth:      auth,
		theses:    theses,
		search:    search,
		users:     users,
		health:    health,
		files:     files,
		maxUpload: 20 << 20,
		logger:    logger,
	}
}

// WithMaxUpload overrides the multipart upload size limit in bytes.
func (s *Server) WithMaxUpload(n int64) *Server {
	if n > 0 {
		s.maxUpload = n
	}
	return s
}

// WithUploadsDir enables serving stored PDFs from local disk under
// /uploads/. Only meaningful with the local storage driver.
func (s *Server) WithUploadsDir(dir string) *Server {
	s.uploadsDir = dir
	return s
}

// Router assembles the full route tree with middleware.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(s.jsonRecoverer)
	r.Use(metrics.Middleware())
	r.Use(Authenticate(s.auth))

	r.Get("/health", s.handleHealth)
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	if s.uploadsDir != "" {
		fs := http.StripPrefix("/uploads/", http.FileServer(http.Dir(s.uploadsDir)))
		r.Get("/uploads/*", fs.ServeHTTP)
	}

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", s.handleRegister)
			r.Post("/login", s.handleLogin)
			r.With(RequireAuth).Get("/user", s.handleCurrentUser)
		})

		r.Route("/theses", func(r chi.Router) {
			r.Get("/", s.handleListApproved)
			r.Get("/search", s.handleSemanticSearch)
			r.Post("/search", s.handleSemanticSearch)
			r.With(RequireAuth).Post("/", s.handleSubmit)
			r.With(RequireAuth).Get("/mine", s.handleListMine)
			r.With(RequireRoles(domain.RoleAdmin)).Get("/all", s.handleListAll)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetThesis)
				r.With(RequireAuth).Put("/", s.handleUpdateThesis)
				r.With(RequireAuth).Delete("/", s.handleDeleteThesis)
				r.With(RequireRoles(domain.RoleAdmin)).Patch("/status", s.handleSetStatus)
			})
		})

		r.Route("/users", func(r chi.Router) {
			r.Use(RequireRoles(domain.RoleAdmin))
			r.Get("/", s.handleListUsers)
			r.Patch("/{id}/role", s.handleUpdateRole)
		})
	})

	return r
}

// handleRegister handles POST /api/auth/register.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid request body: "+err.Error())
		return
	}

	u, token, err := s.auth.Register(r.Context(), req.Username, req.Email, req.Password, req.Role)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, authResponse{Token: token, User: userToResponse(u)})
}

// handleLogin handles POST /api/auth/login.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid request body: "+err.Error())
		return
	}

	u, token, err := s.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, authResponse{Token: token, User: userToResponse(u)})
}

// handleCurrentUser handles GET /api/auth/user.
func (s *Server) handleCurrentUser(w http.ResponseWriter, r *http.Request) {
	u, err := s.auth.CurrentUser(r.Context(), identityFromContext(r.Context()))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, userToResponse(u))
}

// handleSubmit handles POST /api/theses: a multipart form with metadata
// fields and the PDF under "thesisFile". Multi-valued metadata arrives
// comma-separated; repeating a field is rejected as ambiguous.
func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload+1<<20)
	if err := r.ParseMultipartForm(s.maxUpload); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			s.handleDomainError(w, fmt.Errorf("%w: max %d bytes", domain.ErrFileTooLarge, s.maxUpload))
			return
		}
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid multipart form: "+err.Error())
		return
	}

	for _, field := range []string{"authors", "keywords"} {
		if len(r.MultipartForm.Value[field]) > 1 {
			writeError(w, http.StatusBadRequest, codeValidationFailed,
				field+" must be a single comma-separated value")
			return
		}
	}

	sub := thesisuc.Submission{
		Title:      strings.TrimSpace(r.FormValue("title")),
		Abstract:   strings.TrimSpace(r.FormValue("abstract")),
		Authors:    splitCSV(r.FormValue("authors")),
		Department: strings.TrimSpace(r.FormValue("department")),
		Keywords:   splitCSV(r.FormValue("keywords")),
	}
	if y := r.FormValue("year"); y != "" {
		year, err := strconv.Atoi(y)
		if err != nil {
			writeError(w, http.StatusBadRequest, codeValidationFailed, "year must be an integer")
			return
		}
		sub.Year = year
	}

	file, header, err := r.FormFile("thesisFile")
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "thesisFile is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, s.maxUpload+1))
	if err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "read upload: "+err.Error())
		return
	}
	if int64(len(data)) > s.maxUpload {
		s.handleDomainError(w, fmt.Errorf("%w: max %d bytes", domain.ErrFileTooLarge, s.maxUpload))
		return
	}
	sub.FileName = header.Filename
	sub.FileData = data
	sub.ContentType = header.Header.Get("Content-Type")

	t, err := s.theses.Submit(r.Context(), identityFromContext(r.Context()), sub)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, s.thesisToResponse(r.Context(), &t))
}

// handleListApproved handles GET /api/theses. Public; keyword and
// department filters come from query parameters.
func (s *Server) handleListApproved(w http.ResponseWriter, r *http.Request) {
	f := thesisrepo.Filter{
		Department: r.URL.Query().Get("department"),
		Author:     r.URL.Query().Get("author"),
		Query:      r.URL.Query().Get("q"),
	}

	theses, err := s.theses.ListApproved(r.Context(), f)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.thesesToResponse(r.Context(), theses))
}

// handleListMine handles GET /api/theses/mine.
func (s *Server) handleListMine(w http.ResponseWriter, r *http.Request) {
	theses, err := s.theses.ListMine(r.Context(), identityFromContext(r.Context()))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.thesesToResponse(r.Context(), theses))
}

// handleListAll handles GET /api/theses/all. Admin only; an optional
// status filter narrows to one approval state.
func (s *Server) handleListAll(w http.ResponseWriter, r *http.Request) {
	f := thesisrepo.Filter{
		Department: r.URL.Query().Get("department"),
		Author:     r.URL.Query().Get("author"),
		Query:      r.URL.Query().Get("q"),
	}
	if raw := r.URL.Query().Get("status"); raw != "" {
		status, err := domain.ParseStatus(raw)
		if err != nil {
			s.handleDomainError(w, err)
			return
		}
		f.Status = status
	}

	theses, err := s.theses.ListAll(r.Context(), identityFromContext(r.Context()), f)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.thesesToResponse(r.Context(), theses))
}

// handleGetThesis handles GET /api/theses/{id}.
func (s *Server) handleGetThesis(w http.ResponseWriter, r *http.Request) {
	t, err := s.theses.Get(r.Context(), identityFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.thesisToResponse(r.Context(), &t))
}

// handleUpdateThesis handles PUT /api/theses/{id}: a JSON partial edit.
func (s *Server) handleUpdateThesis(w http.ResponseWriter, r *http.Request) {
	var req updateThesisRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid request body: "+err.Error())
		return
	}

	upd := thesisuc.Update{
		Title:      req.Title,
		Abstract:   req.Abstract,
		Authors:    req.Authors,
		Department: req.Department,
		Keywords:   req.Keywords,
		Year:       req.Year,
		Status:     req.Status,
	}

	t, err := s.theses.Update(r.Context(), identityFromContext(r.Context()), chi.URLParam(r, "id"), upd)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.thesisToResponse(r.Context(), &t))
}

// handleSetStatus handles PATCH /api/theses/{id}/status.
func (s *Server) handleSetStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid request body: "+err.Error())
		return
	}

	t, err := s.theses.SetStatus(r.Context(), identityFromContext(r.Context()), chi.URLParam(r, "id"), req.Status)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.thesisToResponse(r.Context(), &t))
}

// handleDeleteThesis handles DELETE /api/theses/{id}.
func (s *Server) handleDeleteThesis(w http.ResponseWriter, r *http.Request) {
	if err := s.theses.Delete(r.Context(), identityFromContext(r.Context()), chi.URLParam(r, "id")); err != nil {
		s.handleDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleSemanticSearch handles GET and POST /api/theses/search. The
// query comes from the "query" parameter or a JSON body.
func (s *Server) handleSemanticSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")
	if query == "" && r.Method == http.MethodPost {
		var req searchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeBadRequest, "invalid request body: "+err.Error())
			return
		}
		query = req.Query
	}

	results, err := s.search.Search(r.Context(), query)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	items := make([]rankedThesisResponse, len(results))
	for i := range results {
		items[i] = rankedThesisResponse{
			thesisResponse: s.thesisToResponse(r.Context(), &results[i].Thesis),
			Score:          results[i].Score,
		}
	}
	writeJSON(w, http.StatusOK, searchResponse{Items: items, Total: len(items)})
}

// handleListUsers handles GET /api/users.
func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.users.List(r.Context(), identityFromContext(r.Context()))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	items := make([]userResponse, len(users))
	for i, u := range users {
		items[i] = userToResponse(u)
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items, "total": len(items)})
}

// handleUpdateRole handles PATCH /api/users/{id}/role.
func (s *Server) handleUpdateRole(w http.ResponseWriter, r *http.Request) {
	var req roleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid request body: "+err.Error())
		return
	}

	u, err := s.users.UpdateRole(r.Context(), identityFromContext(r.Context()), chi.URLParam(r, "id"), req.Role)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, userToResponse(u))
}

// handleHealth handles GET /health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	status := http.StatusOK
	if report.Status != healthuc.Healthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, report)
}

// requestLogger emits a canonical log line per request and propagates
// X-Request-ID.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		requestID := middleware.GetReqID(r.Context())
		if requestID != "" {
			w.Header().Set("X-Request-ID", requestID)
		}

		reqLogger := s.logger.With(zap.String("request_id", requestID))
		ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r.WithContext(ctx))

		reqLogger.Info("http_request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", r.RemoteAddr),
			zap.Int("response_bytes", ww.BytesWritten()),
		)
	})
}

// jsonRecoverer turns panics into JSON 500s instead of chi's plain text.
func (s *Server) jsonRecoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Error("panic recovered",
					zap.Any("panic", rec),
					zap.Stack("stacktrace"),
				)
				writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}
