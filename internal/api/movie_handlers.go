package api

import (
	"fmt"
	"log/slog"
	"net/http"

	"flixxit-service/internal/domain"

	"github.com/gorilla/mux"
)

type incrementViewsResponse struct {
	Message string        `json:"message"`
	Movie   *domain.Movie `json:"movie"`
}

// CreateMovie POST /api/movies
func (h *HTTPHandler) CreateMovie(w http.ResponseWriter, r *http.Request) {
	id, ok := h.identity(w, r)
	if !ok {
		return
	}
	// Право проверяется до разбора тела: не-админ получает 403 при любом payload
	if !id.IsAdmin {
		h.respondError(w, r, http.StatusForbidden, "You are not allowed!")
		return
	}
	var req domain.CreateMovieRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	movie, err := h.catalog.CreateMovie(r.Context(), id, req)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusCreated, movie)
}

// UpdateMovie PUT /api/movies/{id}
func (h *HTTPHandler) UpdateMovie(w http.ResponseWriter, r *http.Request) {
	id, ok := h.identity(w, r)
	if !ok {
		return
	}
	if !id.IsAdmin {
		h.respondError(w, r, http.StatusForbidden, "You are not allowed!")
		return
	}
	var patch domain.MoviePatch
	if !h.decodeJSON(w, r, &patch) {
		return
	}
	movie, err := h.catalog.UpdateMovie(r.Context(), id, mux.Vars(r)["id"], patch)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, movie)
}

// DeleteMovie DELETE /api/movies/{id}
func (h *HTTPHandler) DeleteMovie(w http.ResponseWriter, r *http.Request) {
	id, ok := h.identity(w, r)
	if !ok {
		return
	}
	if err := h.catalog.DeleteMovie(r.Context(), id, mux.Vars(r)["id"]); err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, messageResponse{Message: "The movie has been deleted..."})
}

// GetMovie GET /api/movies/find/{id}. Каждый запрос засчитывается как просмотр.
func (h *HTTPHandler) GetMovie(w http.ResponseWriter, r *http.Request) {
	movieID := mux.Vars(r)["id"]
	h.logger.InfoContext(r.Context(), "HTTP GetMovie request received", slog.String("movieID", movieID))
	movie, err := h.catalog.ViewMovie(r.Context(), movieID)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, movie)
}

// RandomMovie GET /api/movies/random?type=series|movie
func (h *HTTPHandler) RandomMovie(w http.ResponseWriter, r *http.Request) {
	movies, err := h.catalog.RandomMovie(r.Context(), r.URL.Query().Get("type"))
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, movies)
}

// TrendingMovies GET /api/movies/trending
func (h *HTTPHandler) TrendingMovies(w http.ResponseWriter, r *http.Request) {
	movies, err := h.catalog.Trending(r.Context())
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, movies)
}

// AllMovies GET /api/movies
func (h *HTTPHandler) AllMovies(w http.ResponseWriter, r *http.Request) {
	id, ok := h.identity(w, r)
	if !ok {
		return
	}
	movies, err := h.catalog.AllMovies(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, movies)
}

// IncrementViews POST /api/movies/increment-views
func (h *HTTPHandler) IncrementViews(w http.ResponseWriter, r *http.Request) {
	var req domain.IncrementViewsRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	movie, by, err := h.catalog.IncrementViews(r.Context(), req)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, incrementViewsResponse{
		Message: fmt.Sprintf("Views incremented by %d", by),
		Movie:   movie,
	})
}
