package grpc

import (
	"context"
	"errors"
	"log/slog"

	"flixxit-service/internal/domain"
	"flixxit-service/internal/store"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// Server реализует CatalogServiceServer поверх хранилища фильмов.
// Чтение через GetByID, просмотры не засчитываются.
type Server struct {
	store  store.MovieStore
	logger *slog.Logger
}

var _ CatalogServiceServer = (*Server)(nil)

// NewServer создает gRPC сервер каталога.
func NewServer(movieStore store.MovieStore, logger *slog.Logger) *Server {
	return &Server{
		store:  movieStore,
		logger: logger,
	}
}

// movieInfo краткая карточка фильма для соседних сервисов
func movieInfo(movie *domain.Movie) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{
		"id":       movie.ID,
		"title":    movie.Title,
		"year":     movie.Year,
		"genre":    movie.Genre,
		"isSeries": movie.IsSeries,
		"views":    movie.Views,
	})
}

// GetMovieInfo возвращает карточку фильма по id.
func (s *Server) GetMovieInfo(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	movieID := req.GetValue()
	s.logger.InfoContext(ctx, "gRPC GetMovieInfo called", slog.String("movieID", movieID))
	if movieID == "" {
		return nil, status.Error(codes.InvalidArgument, "movie id cannot be empty")
	}

	movie, err := s.store.GetByID(ctx, movieID)
	if err != nil {
		if errors.Is(err, store.ErrMovieNotFound) {
			s.logger.WarnContext(ctx, "Movie not found for GetMovieInfo", slog.String("movieID", movieID))
			return nil, status.Errorf(codes.NotFound, "movie not found with ID %s", movieID)
		}
		s.logger.ErrorContext(ctx, "Failed to get movie for GetMovieInfo", slog.String("movieID", movieID), slog.String("error", err.Error()))
		return nil, status.Error(codes.Internal, "failed to retrieve movie details")
	}

	info, err := movieInfo(movie)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to encode movie info", slog.String("movieID", movieID), slog.String("error", err.Error()))
		return nil, status.Error(codes.Internal, "failed to encode movie details")
	}
	return info, nil
}

// CheckMovieExists сообщает, есть ли фильм в каталоге.
func (s *Server) CheckMovieExists(ctx context.Context, req *wrapperspb.StringValue) (*wrapperspb.BoolValue, error) {
	movieID := req.GetValue()
	s.logger.InfoContext(ctx, "gRPC CheckMovieExists called", slog.String("movieID", movieID))
	if movieID == "" {
		return nil, status.Error(codes.InvalidArgument, "movie id cannot be empty")
	}

	if _, err := s.store.GetByID(ctx, movieID); err != nil {
		if errors.Is(err, store.ErrMovieNotFound) {
			return wrapperspb.Bool(false), nil
		}
		s.logger.ErrorContext(ctx, "Failed to check movie existence", slog.String("movieID", movieID), slog.String("error", err.Error()))
		return nil, status.Error(codes.Internal, "failed to check movie existence")
	}
	return wrapperspb.Bool(true), nil
}
