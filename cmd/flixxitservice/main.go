package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"google.golang.org/grpc"
	"google.golang.org/grpc/reflection"

	"flixxit-service/internal/account"
	httpAPI "flixxit-service/internal/api"
	"flixxit-service/internal/catalog"
	"flixxit-service/internal/config"
	"flixxit-service/internal/domain"
	grpcServer "flixxit-service/internal/grpc"
	"flixxit-service/internal/media"
	"flixxit-service/internal/metrics"
	"flixxit-service/internal/store"
	"flixxit-service/pkg/auth"
)

const shutdownTimeout = 10 * time.Second

// stores набор хранилищ выбранного бэкенда
type stores struct {
	users  store.UserStore
	movies store.MovieStore
	lists  store.ListStore
	db     *sqlx.DB
}

func openStores(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger) (*stores, error) {
	if cfg.Storage == config.StorageMemory {
		logger.Warn("Using in-memory storage, data will be lost on restart")
		return &stores{
			users:  store.NewMockUserStore(),
			movies: store.NewMockMovieStore(),
			lists:  store.NewMockListStore(),
		}, nil
	}

	db, err := store.Connect(cfg.URL, logger)
	if err != nil {
		return nil, err
	}
	if cfg.RunMigrations {
		if err := store.RunMigrations(ctx, db, logger); err != nil {
			db.Close()
			return nil, err
		}
	}

	users, err := store.NewPostgresUserStore(db, logger)
	if err != nil {
		db.Close()
		return nil, err
	}
	movies, err := store.NewPostgresMovieStore(db, logger)
	if err != nil {
		db.Close()
		return nil, err
	}
	lists, err := store.NewPostgresListStore(db, logger)
	if err != nil {
		db.Close()
		return nil, err
	}
	logger.Info("PostgreSQL stores initialized")
	return &stores{users: users, movies: movies, lists: lists, db: db}, nil
}

func (s *stores) Close(logger *slog.Logger) {
	if s.db == nil {
		return
	}
	logger.Info("Closing PostgreSQL database connection...")
	if err := s.db.Close(); err != nil {
		logger.Error("Failed to close PostgreSQL connection", slog.String("error", err.Error()))
	}
}

func main() {
	bootLogger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	cfg, err := config.Load()
	if err != nil {
		bootLogger.Error("Failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.Logging.SlogLevel()}))

	if err := run(cfg, logger); err != nil {
		logger.Error("Flixxit service stopped with error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tokenManager, err := auth.NewTokenManager(cfg.Security.SecretKey)
	if err != nil {
		return fmt.Errorf("init token manager: %w", err)
	}

	st, err := openStores(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}
	defer st.Close(logger)

	validate := domain.NewValidator()
	m := metrics.New()
	accounts := account.NewService(st.users, tokenManager, validate, logger)
	catalogSvc := catalog.NewService(st.movies, st.lists, validate, logger, catalog.WithViewObserver(m))
	uploader := media.NewUploader(media.Config{
		Bucket:    cfg.Media.Bucket,
		Region:    cfg.Media.Region,
		Endpoint:  cfg.Media.Endpoint,
		AccessKey: cfg.Media.AccessKey,
		SecretKey: cfg.Media.SecretKey,
		PublicURL: cfg.Media.PublicURL,
		Folder:    cfg.Media.Folder,
	}, logger)

	// --- gRPC сервер каталога ---
	grpcAddr := ":" + strconv.Itoa(cfg.Server.GRPCPort)
	lis, err := net.Listen("tcp", grpcAddr)
	if err != nil {
		return fmt.Errorf("listen gRPC on %s: %w", grpcAddr, err)
	}
	grpcSrv := grpc.NewServer()
	grpcServer.RegisterCatalogServiceServer(grpcSrv, grpcServer.NewServer(st.movies, logger))
	reflection.Register(grpcSrv)

	// --- HTTP сервер ---
	handler := httpAPI.NewHTTPHandler(accounts, catalogSvc, uploader, tokenManager, logger,
		httpAPI.WithMaxUploadBytes(cfg.Media.MaxUploadBytes()))
	httpSrv := &http.Server{
		Addr: ":" + strconv.Itoa(cfg.Server.Port),
		Handler: httpAPI.NewHTTPRouter(handler, httpAPI.RouterOptions{
			CORSOrigins:    cfg.Security.CORSOrigins,
			AuthRateLimit:  cfg.Security.AuthRateLimit,
			Metrics:        m,
			MetricsHandler: m.Handler(),
		}),
		ReadHeaderTimeout: 5 * time.Second,
		// загрузка видео занимает больше обычного запроса
		ReadTimeout:  5 * time.Minute,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 2)
	go func() {
		logger.Info("Flixxit gRPC server starting", slog.String("addr", grpcAddr))
		if err := grpcSrv.Serve(lis); err != nil {
			errCh <- fmt.Errorf("gRPC server: %w", err)
		}
	}()
	go func() {
		logger.Info("Flixxit HTTP server starting", slog.String("addr", httpSrv.Addr), slog.String("storage", cfg.Database.Storage))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("HTTP server: %w", err)
		}
	}()

	var serveErr error
	select {
	case <-ctx.Done():
		logger.Info("Flixxit service shutting down...")
	case serveErr = <-errCh:
		logger.Error("Server failed, shutting down", slog.String("error", serveErr.Error()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown failed", slog.String("error", err.Error()))
	} else {
		logger.Info("HTTP server gracefully stopped.")
	}
	grpcSrv.GracefulStop()
	logger.Info("gRPC server gracefully stopped.")

	return serveErr
}
