package api

import (
	"log/slog"
	"net/http"

	"flixxit-service/internal/domain"
)

// Register POST /api/auth/register
func (h *HTTPHandler) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	h.logger.InfoContext(ctx, "HTTP Register request received", slog.String("path", r.URL.Path))

	var req domain.RegisterRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	user, err := h.accounts.Register(ctx, req)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusCreated, user)
}

// Login POST /api/auth/login
func (h *HTTPHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	h.logger.InfoContext(ctx, "HTTP Login request received", slog.String("path", r.URL.Path))

	var req domain.LoginRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	resp, err := h.accounts.Login(ctx, req)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, resp)
}

// AdminLogin POST /api/auth/admin
func (h *HTTPHandler) AdminLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	h.logger.InfoContext(ctx, "HTTP AdminLogin request received", slog.String("path", r.URL.Path))

	var req domain.LoginRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	resp, err := h.accounts.AdminLogin(ctx, req)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, resp)
}

// Verify GET /api/auth/verify
func (h *HTTPHandler) Verify(w http.ResponseWriter, r *http.Request) {
	id, ok := h.identity(w, r)
	if !ok {
		return
	}
	user, err := h.accounts.Verify(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, user)
}
