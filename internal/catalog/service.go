// Package catalog содержит правила каталога фильмов и подборок, а также
// счетчик просмотров и выдачу трендов.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"flixxit-service/internal/domain"
	"flixxit-service/internal/store"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

const (
	// TrendingLimit размер выдачи трендов
	TrendingLimit = 10
	// SampleSize сколько случайных подборок отдает GET /lists
	SampleSize = 10
)

const (
	msgNotAllowed    = "You are not allowed!"
	msgMovieNotFound = "Movie not found"
	msgListNotFound  = "List not found"
	msgViewsOverflow = "incrementBy is too large"
)

// ViewObserver получает уведомления о засчитанных просмотрах.
type ViewObserver interface {
	MovieViewed(by int64)
}

type noopObserver struct{}

func (noopObserver) MovieViewed(int64) {}

// Service бизнес-логика каталога.
type Service struct {
	movies   store.MovieStore
	lists    store.ListStore
	validate *validator.Validate
	logger   *slog.Logger
	views    ViewObserver
	now      func() time.Time
}

// Option настраивает Service.
type Option func(*Service)

// WithViewObserver подключает учет просмотров (метрики).
func WithViewObserver(o ViewObserver) Option {
	return func(s *Service) { s.views = o }
}

// WithClock подменяет источник времени.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService создает сервис каталога.
func NewService(movies store.MovieStore, lists store.ListStore, validate *validator.Validate, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		movies:   movies,
		lists:    lists,
		validate: validate,
		logger:   logger,
		views:    noopObserver{},
		now:      func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func requireAdmin(caller domain.Identity) error {
	if !caller.IsAdmin {
		return domain.NewError(domain.ErrForbidden, msgNotAllowed)
	}
	return nil
}

func (s *Service) validationError(ctx context.Context, err error) error {
	s.logger.WarnContext(ctx, "Catalog request validation failed", slog.String("error", err.Error()))
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 && verrs[0].Field() == "Title" {
		if verrs[0].Tag() == "max" {
			return domain.NewError(domain.ErrValidation, "Title must be at most 255 characters long")
		}
		return domain.NewError(domain.ErrValidation, "Title is required")
	}
	return domain.NewError(domain.ErrValidation, "Validation failed: "+err.Error())
}

func movieErr(err error, op string) error {
	switch {
	case errors.Is(err, store.ErrMovieNotFound):
		return domain.NewError(domain.ErrNotFound, msgMovieNotFound)
	case errors.Is(err, store.ErrViewsOverflow):
		return domain.NewError(domain.ErrValidation, msgViewsOverflow)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func listErr(err error, op string) error {
	switch {
	case errors.Is(err, store.ErrListNotFound):
		return domain.NewError(domain.ErrNotFound, msgListNotFound)
	case errors.Is(err, store.ErrListAlreadyExists):
		return domain.NewError(domain.ErrConflict, "List with this title already exists")
	}
	return fmt.Errorf("%s: %w", op, err)
}

// CreateMovie добавляет фильм. Только для администратора.
func (s *Service) CreateMovie(ctx context.Context, caller domain.Identity, req domain.CreateMovieRequest) (*domain.Movie, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	if err := s.validate.StructCtx(ctx, req); err != nil {
		return nil, s.validationError(ctx, err)
	}
	now := s.now()
	movie := &domain.Movie{
		ID:          uuid.NewString(),
		Title:       req.Title,
		Description: req.Description,
		Img:         req.Img,
		ImgTitle:    req.ImgTitle,
		ImgSm:       req.ImgSm,
		Trailer:     req.Trailer,
		Video:       req.Video,
		Year:        req.Year,
		Limit:       req.Limit,
		Genre:       req.Genre,
		Duration:    req.Duration,
		IsSeries:    req.IsSeries,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.movies.Create(ctx, movie); err != nil {
		return nil, fmt.Errorf("create movie: %w", err)
	}
	s.logger.InfoContext(ctx, "Movie created", slog.String("movieID", movie.ID), slog.String("by", caller.UserID))
	return movie, nil
}

// UpdateMovie частично обновляет фильм. Только для администратора.
func (s *Service) UpdateMovie(ctx context.Context, caller domain.Identity, id string, patch domain.MoviePatch) (*domain.Movie, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	if err := s.validate.StructCtx(ctx, patch); err != nil {
		return nil, s.validationError(ctx, err)
	}
	movie, err := s.movies.Update(ctx, id, patch)
	if err != nil {
		return nil, movieErr(err, "update movie")
	}
	s.logger.InfoContext(ctx, "Movie updated", slog.String("movieID", id), slog.String("by", caller.UserID))
	return movie, nil
}

// DeleteMovie удаляет фильм. Подборки, ссылающиеся на него, остаются как есть.
func (s *Service) DeleteMovie(ctx context.Context, caller domain.Identity, id string) error {
	if err := requireAdmin(caller); err != nil {
		return err
	}
	if err := s.movies.Delete(ctx, id); err != nil {
		return movieErr(err, "delete movie")
	}
	s.logger.InfoContext(ctx, "Movie deleted", slog.String("movieID", id), slog.String("by", caller.UserID))
	return nil
}

// ViewMovie отдает фильм и засчитывает просмотр одной атомарной операцией.
func (s *Service) ViewMovie(ctx context.Context, id string) (*domain.Movie, error) {
	movie, err := s.movies.IncrementViews(ctx, id, 1, s.now())
	if err != nil {
		return nil, movieErr(err, "view movie")
	}
	s.views.MovieViewed(1)
	return movie, nil
}

// RandomMovie выбирает случайный сериал при kind == "series", иначе фильм.
func (s *Service) RandomMovie(ctx context.Context, kind string) ([]*domain.Movie, error) {
	movie, err := s.movies.Random(ctx, kind == "series")
	if err != nil {
		if errors.Is(err, store.ErrMovieNotFound) {
			return nil, domain.NewError(domain.ErrNotFound, "No movies found")
		}
		return nil, fmt.Errorf("random movie: %w", err)
	}
	return []*domain.Movie{movie}, nil
}

// AllMovies полный список для администратора, новые первыми.
func (s *Service) AllMovies(ctx context.Context, caller domain.Identity) ([]*domain.Movie, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	movies, err := s.movies.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list movies: %w", err)
	}
	return movies, nil
}

// IncrementViews прибавляет к счетчику incrementBy (по умолчанию 1).
func (s *Service) IncrementViews(ctx context.Context, req domain.IncrementViewsRequest) (*domain.Movie, int64, error) {
	if req.MovieID == "" {
		return nil, 0, domain.NewError(domain.ErrValidation, "Movie ID is required")
	}
	by := int64(1)
	if req.IncrementBy != nil {
		by = *req.IncrementBy
	}
	if by < 1 {
		return nil, 0, domain.NewError(domain.ErrValidation, "incrementBy must be a positive integer")
	}
	movie, err := s.movies.IncrementViews(ctx, req.MovieID, by, s.now())
	if err != nil {
		return nil, 0, movieErr(err, "increment views")
	}
	s.views.MovieViewed(by)
	s.logger.InfoContext(ctx, "Movie views incremented", slog.String("movieID", req.MovieID), slog.Int64("by", by))
	return movie, by, nil
}

// Trending до TrendingLimit фильмов: сначала просмотренные по убыванию
// просмотров, затем добор самыми новыми из оставшихся.
func (s *Service) Trending(ctx context.Context) ([]*domain.Movie, error) {
	top, err := s.movies.TopViewed(ctx, TrendingLimit)
	if err != nil {
		return nil, fmt.Errorf("top viewed movies: %w", err)
	}
	if len(top) >= TrendingLimit {
		return top[:TrendingLimit], nil
	}
	exclude := make([]string, 0, len(top))
	for _, m := range top {
		exclude = append(exclude, m.ID)
	}
	recent, err := s.movies.Recent(ctx, exclude, TrendingLimit-len(top))
	if err != nil {
		return nil, fmt.Errorf("recent movies: %w", err)
	}
	return append(top, recent...), nil
}

// CreateList добавляет подборку. Только для администратора.
func (s *Service) CreateList(ctx context.Context, caller domain.Identity, req domain.CreateListRequest) (*domain.List, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	if err := s.validate.StructCtx(ctx, req); err != nil {
		return nil, s.validationError(ctx, err)
	}
	now := s.now()
	list := &domain.List{
		ID:        uuid.NewString(),
		Title:     req.Title,
		Type:      req.Type,
		Genre:     req.Genre,
		Content:   pq.StringArray(append([]string{}, req.Content...)),
		IsTop10:   req.IsTop10,
		Order:     req.Order,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.lists.Create(ctx, list); err != nil {
		return nil, listErr(err, "create list")
	}
	s.logger.InfoContext(ctx, "List created", slog.String("listID", list.ID), slog.String("by", caller.UserID))
	return list, nil
}

// UpdateList частично обновляет подборку. Только для администратора.
func (s *Service) UpdateList(ctx context.Context, caller domain.Identity, id string, patch domain.ListPatch) (*domain.List, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	if err := s.validate.StructCtx(ctx, patch); err != nil {
		return nil, s.validationError(ctx, err)
	}
	list, err := s.lists.Update(ctx, id, patch)
	if err != nil {
		return nil, listErr(err, "update list")
	}
	s.logger.InfoContext(ctx, "List updated", slog.String("listID", id), slog.String("by", caller.UserID))
	return list, nil
}

// DeleteList удаляет подборку. Только для администратора.
func (s *Service) DeleteList(ctx context.Context, caller domain.Identity, id string) error {
	if err := requireAdmin(caller); err != nil {
		return err
	}
	if err := s.lists.Delete(ctx, id); err != nil {
		return listErr(err, "delete list")
	}
	s.logger.InfoContext(ctx, "List deleted", slog.String("listID", id), slog.String("by", caller.UserID))
	return nil
}

// GetLists публичная выборка: "top10" отдает не более одной подборки,
// иначе до SampleSize случайных с фильтрами.
func (s *Service) GetLists(ctx context.Context, filter domain.ListFilter) ([]*domain.List, error) {
	var (
		lists []*domain.List
		err   error
	)
	if filter.Type == domain.TypeTop10 {
		lists, err = s.lists.Top10(ctx)
	} else {
		lists, err = s.lists.Sample(ctx, filter, SampleSize)
	}
	if err != nil {
		return nil, fmt.Errorf("get lists: %w", err)
	}
	return lists, nil
}

// ListsForAdmin все подборки без фильтров.
func (s *Service) ListsForAdmin(ctx context.Context, caller domain.Identity) ([]*domain.List, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	lists, err := s.lists.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list all lists: %w", err)
	}
	return lists, nil
}

// ResolveList разрешает content подборки в фильмы в порядке подборки.
// Ссылки на удаленные фильмы попадают в Missing. Просмотры не засчитываются.
func (s *Service) ResolveList(ctx context.Context, id string) (*domain.ResolvedList, error) {
	list, err := s.lists.GetByID(ctx, id)
	if err != nil {
		return nil, listErr(err, "get list")
	}
	found, err := s.movies.GetByIDs(ctx, list.Content)
	if err != nil {
		return nil, fmt.Errorf("resolve list content: %w", err)
	}
	byID := make(map[string]*domain.Movie, len(found))
	for _, m := range found {
		byID[m.ID] = m
	}
	resolved := &domain.ResolvedList{List: list, Movies: []*domain.Movie{}, Missing: []string{}}
	for _, movieID := range list.Content {
		if m, ok := byID[movieID]; ok {
			resolved.Movies = append(resolved.Movies, m)
		} else {
			resolved.Missing = append(resolved.Missing, movieID)
		}
	}
	return resolved, nil
}
