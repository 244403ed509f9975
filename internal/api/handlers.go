package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"flixxit-service/internal/domain"
	"flixxit-service/internal/media"
	"flixxit-service/pkg/auth"
)

// AccountService операции с учетными записями, которые нужны HTTP слою.
type AccountService interface {
	Register(ctx context.Context, req domain.RegisterRequest) (*domain.User, error)
	Login(ctx context.Context, req domain.LoginRequest) (*domain.LoginResponse, error)
	AdminLogin(ctx context.Context, req domain.LoginRequest) (*domain.LoginResponse, error)
	Verify(ctx context.Context, id domain.Identity) (*domain.User, error)
	GetUser(ctx context.Context, userID string) (*domain.User, error)
	UpdateUser(ctx context.Context, caller domain.Identity, userID string, req domain.UpdateUserRequest) (*domain.User, error)
	DeleteUser(ctx context.Context, caller domain.Identity, userID string) error
	ListUsers(ctx context.Context, caller domain.Identity, newest bool) ([]*domain.User, error)
	Stats(ctx context.Context) ([]domain.MonthlyUserStat, error)
}

// CatalogService операции каталога фильмов и подборок.
type CatalogService interface {
	CreateMovie(ctx context.Context, caller domain.Identity, req domain.CreateMovieRequest) (*domain.Movie, error)
	UpdateMovie(ctx context.Context, caller domain.Identity, id string, patch domain.MoviePatch) (*domain.Movie, error)
	DeleteMovie(ctx context.Context, caller domain.Identity, id string) error
	ViewMovie(ctx context.Context, id string) (*domain.Movie, error)
	RandomMovie(ctx context.Context, kind string) ([]*domain.Movie, error)
	AllMovies(ctx context.Context, caller domain.Identity) ([]*domain.Movie, error)
	IncrementViews(ctx context.Context, req domain.IncrementViewsRequest) (*domain.Movie, int64, error)
	Trending(ctx context.Context) ([]*domain.Movie, error)
	CreateList(ctx context.Context, caller domain.Identity, req domain.CreateListRequest) (*domain.List, error)
	UpdateList(ctx context.Context, caller domain.Identity, id string, patch domain.ListPatch) (*domain.List, error)
	DeleteList(ctx context.Context, caller domain.Identity, id string) error
	GetLists(ctx context.Context, filter domain.ListFilter) ([]*domain.List, error)
	ListsForAdmin(ctx context.Context, caller domain.Identity) ([]*domain.List, error)
	ResolveList(ctx context.Context, id string) (*domain.ResolvedList, error)
}

// MediaUploader загрузка файлов во внешнее хранилище.
type MediaUploader interface {
	Upload(ctx context.Context, kind media.Kind, filename, contentType string, body io.Reader, size int64) (*media.Result, error)
}

// defaultMaxUploadBytes ограничение тела multipart запроса по умолчанию
const defaultMaxUploadBytes = 100 << 20

// HTTPHandler обработчики REST API.
type HTTPHandler struct {
	accounts       AccountService
	catalog        CatalogService
	uploader       MediaUploader
	tokenManager   auth.TokenManager
	logger         *slog.Logger
	maxUploadBytes int64
}

// HandlerOption настраивает HTTPHandler.
type HandlerOption func(*HTTPHandler)

// WithMaxUploadBytes ограничивает размер загружаемого файла.
func WithMaxUploadBytes(n int64) HandlerOption {
	return func(h *HTTPHandler) {
		if n > 0 {
			h.maxUploadBytes = n
		}
	}
}

func NewHTTPHandler(accounts AccountService, catalog CatalogService, uploader MediaUploader, tm auth.TokenManager, l *slog.Logger, opts ...HandlerOption) *HTTPHandler {
	h := &HTTPHandler{
		accounts:       accounts,
		catalog:        catalog,
		uploader:       uploader,
		tokenManager:   tm,
		logger:         l,
		maxUploadBytes: defaultMaxUploadBytes,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

type messageResponse struct {
	Message string `json:"message"`
}

func (h *HTTPHandler) respondJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			h.logger.ErrorContext(r.Context(), "Failed to encode JSON response", slog.String("error", err.Error()), slog.String("path", r.URL.Path))
		}
	}
}

func (h *HTTPHandler) respondError(w http.ResponseWriter, r *http.Request, status int, message string) {
	h.respondJSON(w, r, status, messageResponse{Message: message})
}

// statusFor сопоставляет вид ошибки со статусом HTTP.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, domain.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

// respondServiceError отдает клиентскую ошибку как есть, остальное логирует и отвечает 500.
func (h *HTTPHandler) respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	if msg, ok := domain.Message(err); ok {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			h.logger.ErrorContext(r.Context(), "Unmapped domain error", slog.String("error", err.Error()))
		}
		h.respondError(w, r, status, msg)
		return
	}
	h.logger.ErrorContext(r.Context(), "Request failed", slog.String("path", r.URL.Path), slog.String("error", err.Error()))
	h.respondError(w, r, http.StatusInternalServerError, "Internal server error")
}

// decodeJSON читает тело запроса; при ошибке сам отвечает 400.
func (h *HTTPHandler) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.logger.WarnContext(r.Context(), "Failed to decode request body", slog.String("path", r.URL.Path), slog.String("error", err.Error()))
		h.respondError(w, r, http.StatusBadRequest, "Invalid request payload")
		return false
	}
	return true
}

// Root GET /
func (h *HTTPHandler) Root(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, r, http.StatusOK, messageResponse{Message: "Flixxit Backend API is running"})
}

func (h *HTTPHandler) notFound(w http.ResponseWriter, r *http.Request) {
	h.respondError(w, r, http.StatusNotFound, "Route not found")
}

func (h *HTTPHandler) methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	h.respondError(w, r, http.StatusMethodNotAllowed, "Method not allowed")
}

func (h *HTTPHandler) rateLimited(w http.ResponseWriter, r *http.Request) {
	h.logger.WarnContext(r.Context(), "Auth rate limit exceeded", slog.String("remote", r.RemoteAddr))
	h.respondError(w, r, http.StatusTooManyRequests, "Too many requests, please try again later")
}
