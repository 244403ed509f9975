// catalogctl запрашивает gRPC сервис каталога Flixxit.
//
//	catalogctl -addr localhost:9090 -id <movieID>          карточка фильма
//	catalogctl -addr localhost:9090 -id <movieID> -exists  только проверка наличия
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	grpcClient "flixxit-service/internal/grpc"
)

func main() {
	addr := flag.String("addr", "localhost:9090", "catalog gRPC address")
	movieID := flag.String("id", "", "movie id")
	exists := flag.Bool("exists", false, "only check that the movie exists")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	if err := run(logger, *addr, *movieID, *exists); err != nil {
		logger.Error("Catalog request failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(logger *slog.Logger, addr, movieID string, existsOnly bool) error {
	if movieID == "" {
		return errors.New("-id is required")
	}
	client, err := grpcClient.NewCatalogClient(addr, logger)
	if err != nil {
		return err
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if existsOnly {
		found, err := client.CheckMovieExists(ctx, movieID)
		if err != nil {
			return err
		}
		fmt.Println(found)
		return nil
	}

	info, err := client.GetMovieInfo(ctx, movieID)
	if err != nil {
		return err
	}
	out, err := json.MarshalIndent(info.AsMap(), "", "  ")
	if err != nil {
		return fmt.Errorf("encode movie info: %w", err)
	}
	fmt.Println(string(out))
	return nil
}
