package grpc

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// callTimeout таймаут одного вызова
const callTimeout = 3 * time.Second

// CatalogClient клиент сервиса каталога для соседних сервисов.
type CatalogClient struct {
	conn   *grpc.ClientConn
	logger *slog.Logger
}

// NewCatalogClient создает клиента к addr. Соединение устанавливается лениво при первом вызове.
func NewCatalogClient(addr string, logger *slog.Logger, opts ...grpc.DialOption) (*CatalogClient, error) {
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create catalog client for %s: %w", addr, err)
	}
	return &CatalogClient{conn: conn, logger: logger}, nil
}

// GetMovieInfo запрашивает карточку фильма.
func (c *CatalogClient) GetMovieInfo(ctx context.Context, movieID string) (*structpb.Struct, error) {
	callCtx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	out := new(structpb.Struct)
	if err := c.conn.Invoke(callCtx, getMovieInfoMethod, wrapperspb.String(movieID), out); err != nil {
		c.logger.WarnContext(ctx, "CatalogService.GetMovieInfo failed", slog.String("movieID", movieID), slog.String("error", err.Error()))
		return nil, err
	}
	return out, nil
}

// CheckMovieExists проверяет наличие фильма. NotFound от сервера трактуется как false.
func (c *CatalogClient) CheckMovieExists(ctx context.Context, movieID string) (bool, error) {
	callCtx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	out := new(wrapperspb.BoolValue)
	if err := c.conn.Invoke(callCtx, checkMovieExistsMethod, wrapperspb.String(movieID), out); err != nil {
		if status.Code(err) == codes.NotFound {
			return false, nil
		}
		c.logger.WarnContext(ctx, "CatalogService.CheckMovieExists failed", slog.String("movieID", movieID), slog.String("error", err.Error()))
		return false, err
	}
	return out.GetValue(), nil
}

// Close закрывает соединение.
func (c *CatalogClient) Close() error {
	return c.conn.Close()
}
