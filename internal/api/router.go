package api

import (
	"net/http"
	"time"

	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/gorilla/mux"
)

// RouterOptions внешние параметры маршрутизатора.
type RouterOptions struct {
	CORSOrigins []string
	// AuthRateLimit запросов в минуту с одного IP на /api/auth/*; 0 отключает ограничение
	AuthRateLimit int
	Metrics       RequestObserver
	// MetricsHandler отдается на /metrics, если задан
	MetricsHandler http.Handler
}

// NewHTTPRouter создает и настраивает HTTP маршрутизатор Flixxit API.
func NewHTTPRouter(h *HTTPHandler, opts RouterOptions) http.Handler {
	router := mux.NewRouter()
	router.NotFoundHandler = http.HandlerFunc(h.notFound)
	router.MethodNotAllowedHandler = http.HandlerFunc(h.methodNotAllowed)
	if opts.Metrics != nil {
		router.Use(MetricsMiddleware(opts.Metrics))
	}

	router.HandleFunc("/", h.Root).Methods(http.MethodGet)
	if opts.MetricsHandler != nil {
		router.Handle("/metrics", opts.MetricsHandler).Methods(http.MethodGet)
	}

	api := router.PathPrefix("/api").Subrouter()

	// Аутентификация
	authRouter := api.PathPrefix("/auth").Subrouter()
	if opts.AuthRateLimit > 0 {
		authRouter.Use(httprate.Limit(
			opts.AuthRateLimit,
			time.Minute,
			httprate.WithKeyFuncs(httprate.KeyByIP),
			httprate.WithLimitHandler(h.rateLimited),
		))
	}
	authRouter.HandleFunc("/register", h.Register).Methods(http.MethodPost)
	authRouter.HandleFunc("/login", h.Login).Methods(http.MethodPost)
	authRouter.HandleFunc("/admin", h.AdminLogin).Methods(http.MethodPost)
	authRouter.Handle("/verify", h.protected(h.Verify)).Methods(http.MethodGet)

	// Пользователи
	users := api.PathPrefix("/users").Subrouter()
	users.Handle("", h.protected(h.ListUsers)).Methods(http.MethodGet)
	users.HandleFunc("/stats", h.UserStats).Methods(http.MethodGet)
	users.HandleFunc("/find/{id}", h.GetUser).Methods(http.MethodGet)
	users.Handle("/{id}", h.protected(h.UpdateUser)).Methods(http.MethodPut)
	users.Handle("/{id}", h.protected(h.DeleteUser)).Methods(http.MethodDelete)

	// Фильмы: find, random и trending публичные
	movies := api.PathPrefix("/movies").Subrouter()
	movies.Handle("", h.protected(h.CreateMovie)).Methods(http.MethodPost)
	movies.Handle("", h.protected(h.AllMovies)).Methods(http.MethodGet)
	movies.HandleFunc("/find/{id}", h.GetMovie).Methods(http.MethodGet)
	movies.HandleFunc("/random", h.RandomMovie).Methods(http.MethodGet)
	movies.HandleFunc("/trending", h.TrendingMovies).Methods(http.MethodGet)
	movies.Handle("/increment-views", h.protected(h.IncrementViews)).Methods(http.MethodPost)
	movies.Handle("/{id}", h.protected(h.UpdateMovie)).Methods(http.MethodPut)
	movies.Handle("/{id}", h.protected(h.DeleteMovie)).Methods(http.MethodDelete)

	// Подборки
	lists := api.PathPrefix("/lists").Subrouter()
	lists.Handle("", h.protected(h.CreateList)).Methods(http.MethodPost)
	lists.Handle("", h.protected(h.GetLists)).Methods(http.MethodGet)
	lists.Handle("/admin/all", h.protected(h.AdminLists)).Methods(http.MethodGet)
	lists.Handle("/{id}/movies", h.protected(h.ListMovies)).Methods(http.MethodGet)
	lists.Handle("/{id}", h.protected(h.UpdateList)).Methods(http.MethodPut)
	lists.Handle("/{id}", h.protected(h.DeleteList)).Methods(http.MethodDelete)

	// Загрузка медиа
	upload := api.PathPrefix("/upload").Subrouter()
	upload.HandleFunc("/test", h.UploadTest).Methods(http.MethodGet)
	upload.Handle("/image", h.protected(h.UploadImage)).Methods(http.MethodPost)
	upload.Handle("/video", h.protected(h.UploadVideo)).Methods(http.MethodPost)

	corsHandler := cors.Handler(cors.Options{
		AllowedOrigins:   opts.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", TokenHeader},
		AllowCredentials: true,
		MaxAge:           300,
	})
	return corsHandler(router)
}
