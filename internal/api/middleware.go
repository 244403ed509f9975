package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"flixxit-service/internal/domain"
	"flixxit-service/pkg/auth"

	"github.com/gorilla/mux"
)

// TokenHeader заголовок, в котором клиенты присылают "Bearer <jwt>".
const TokenHeader = "token"

// ContextKey используется для ключей в контексте запроса.
type ContextKey string

// IdentityKey ключ для domain.Identity в контексте.
const IdentityKey ContextKey = "identity"

// WithIdentity кладет личность вызывающего в контекст.
func WithIdentity(ctx context.Context, id domain.Identity) context.Context {
	return context.WithValue(ctx, IdentityKey, id)
}

// IdentityFromContext достает личность, положенную AuthMiddleware.
func IdentityFromContext(ctx context.Context) (domain.Identity, bool) {
	id, ok := ctx.Value(IdentityKey).(domain.Identity)
	return id, ok
}

// bearerToken разбирает значение заголовка "Bearer <token>".
func bearerToken(header string) (string, bool) {
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	return parts[1], true
}

// AuthMiddleware проверяет JWT токен из заголовка token.
// Если токен валиден, личность пользователя добавляется в контекст запроса.
func (h *HTTPHandler) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get(TokenHeader)
		if header == "" {
			h.logger.WarnContext(r.Context(), "Token header missing", slog.String("path", r.URL.Path))
			h.respondError(w, r, http.StatusUnauthorized, "Access token is required")
			return
		}
		tokenString, ok := bearerToken(header)
		if !ok {
			h.logger.WarnContext(r.Context(), "Invalid token header format")
			h.respondError(w, r, http.StatusUnauthorized, "Access token is required")
			return
		}

		claims, err := h.tokenManager.Validate(tokenString)
		if err != nil {
			h.logger.WarnContext(r.Context(), "Token rejected", slog.String("error", err.Error()))
			switch {
			case errors.Is(err, auth.ErrTokenExpired):
				h.respondError(w, r, http.StatusUnauthorized, "Token expired")
			case errors.Is(err, auth.ErrInvalidSignature):
				h.respondError(w, r, http.StatusForbidden, "Invalid token")
			default:
				h.respondError(w, r, http.StatusUnauthorized, "Malformed token")
			}
			return
		}

		ctx := WithIdentity(r.Context(), domain.Identity{UserID: claims.UserID, IsAdmin: claims.IsAdmin})
		h.logger.DebugContext(ctx, "Token validated successfully", slog.String("userID", claims.UserID), slog.Bool("isAdmin", claims.IsAdmin))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// protected оборачивает обработчик в AuthMiddleware.
func (h *HTTPHandler) protected(fn http.HandlerFunc) http.Handler {
	return h.AuthMiddleware(fn)
}

// identity возвращает личность из контекста; ее отсутствие после AuthMiddleware это ошибка сервера.
func (h *HTTPHandler) identity(w http.ResponseWriter, r *http.Request) (domain.Identity, bool) {
	id, ok := IdentityFromContext(r.Context())
	if !ok || id.UserID == "" {
		h.logger.ErrorContext(r.Context(), "Identity not found in request context after AuthMiddleware")
		h.respondError(w, r, http.StatusInternalServerError, "Error processing user identity")
		return domain.Identity{}, false
	}
	return id, true
}

// RequestObserver принимает итог обработанного запроса (метрики).
type RequestObserver interface {
	ObserveRequest(method, route string, status int, elapsed time.Duration)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// MetricsMiddleware учитывает запросы по шаблону маршрута, а не по фактическому пути.
func MetricsMiddleware(obs RequestObserver) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			route := "unmatched"
			if current := mux.CurrentRoute(r); current != nil {
				if tpl, err := current.GetPathTemplate(); err == nil {
					route = tpl
				}
			}
			obs.ObserveRequest(r.Method, route, rec.status, time.Since(start))
		})
	}
}
