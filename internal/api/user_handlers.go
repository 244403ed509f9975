package api

import (
	"net/http"

	"flixxit-service/internal/domain"

	"github.com/gorilla/mux"
)

// ListUsers GET /api/users[?new=true]
func (h *HTTPHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	id, ok := h.identity(w, r)
	if !ok {
		return
	}
	newest := r.URL.Query().Get("new") == "true"
	users, err := h.accounts.ListUsers(r.Context(), id, newest)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, users)
}

// UserStats GET /api/users/stats
func (h *HTTPHandler) UserStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.accounts.Stats(r.Context())
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, stats)
}

// GetUser GET /api/users/find/{id}
func (h *HTTPHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.accounts.GetUser(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, user)
}

// UpdateUser PUT /api/users/{id}
func (h *HTTPHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := h.identity(w, r)
	if !ok {
		return
	}
	var req domain.UpdateUserRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	user, err := h.accounts.UpdateUser(r.Context(), id, mux.Vars(r)["id"], req)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, user)
}

// DeleteUser DELETE /api/users/{id}
func (h *HTTPHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := h.identity(w, r)
	if !ok {
		return
	}
	if err := h.accounts.DeleteUser(r.Context(), id, mux.Vars(r)["id"]); err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, messageResponse{Message: "User has been deleted..."})
}
