package api

import (
	"net/http"

	"flixxit-service/internal/domain"

	"github.com/gorilla/mux"
)

// CreateList POST /api/lists
func (h *HTTPHandler) CreateList(w http.ResponseWriter, r *http.Request) {
	id, ok := h.identity(w, r)
	if !ok {
		return
	}
	if !id.IsAdmin {
		h.respondError(w, r, http.StatusForbidden, "You are not allowed!")
		return
	}
	var req domain.CreateListRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	list, err := h.catalog.CreateList(r.Context(), id, req)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusCreated, list)
}

// UpdateList PUT /api/lists/{id}
func (h *HTTPHandler) UpdateList(w http.ResponseWriter, r *http.Request) {
	id, ok := h.identity(w, r)
	if !ok {
		return
	}
	if !id.IsAdmin {
		h.respondError(w, r, http.StatusForbidden, "You are not allowed!")
		return
	}
	var patch domain.ListPatch
	if !h.decodeJSON(w, r, &patch) {
		return
	}
	list, err := h.catalog.UpdateList(r.Context(), id, mux.Vars(r)["id"], patch)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, list)
}

// DeleteList DELETE /api/lists/{id}
func (h *HTTPHandler) DeleteList(w http.ResponseWriter, r *http.Request) {
	id, ok := h.identity(w, r)
	if !ok {
		return
	}
	if err := h.catalog.DeleteList(r.Context(), id, mux.Vars(r)["id"]); err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, messageResponse{Message: "The list has been deleted..."})
}

// GetLists GET /api/lists?type=&genre=
func (h *HTTPHandler) GetLists(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	lists, err := h.catalog.GetLists(r.Context(), domain.ListFilter{Type: q.Get("type"), Genre: q.Get("genre")})
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, lists)
}

// AdminLists GET /api/lists/admin/all
func (h *HTTPHandler) AdminLists(w http.ResponseWriter, r *http.Request) {
	id, ok := h.identity(w, r)
	if !ok {
		return
	}
	lists, err := h.catalog.ListsForAdmin(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, lists)
}

// ListMovies GET /api/lists/{id}/movies
func (h *HTTPHandler) ListMovies(w http.ResponseWriter, r *http.Request) {
	resolved, err := h.catalog.ResolveList(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, resolved)
}
