package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	commenthttp "github.com/MyNameIsWhaaat/bookcomments/internal/comment/handler/http"
	"github.com/MyNameIsWhaaat/bookcomments/internal/comment/remote"
	"github.com/MyNameIsWhaaat/bookcomments/internal/comment/service"
	"github.com/MyNameIsWhaaat/bookcomments/internal/comment/storage"
	"github.com/MyNameIsWhaaat/bookcomments/internal/comment/storage/inmemory"
	"github.com/MyNameIsWhaaat/bookcomments/internal/comment/storage/postgres"
	"github.com/MyNameIsWhaaat/bookcomments/internal/comment/storage/redis"
	"github.com/MyNameIsWhaaat/bookcomments/internal/config"
	"github.com/MyNameIsWhaaat/bookcomments/internal/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("bookcomments stopped")
	}
}

func run(ctx context.Context, cfg config.Config, log zerolog.Logger) error {
	snaps, closeSnaps, err := openSnapshots(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeSnaps.Close(); err != nil {
			log.Warn().Err(err).Msg("close snapshot store")
		}
	}()

	tokens := remote.NewFileTokenSource(cfg.TokenFile)
	client := remote.New(cfg.Remote.BaseURL, cfg.Remote.Timeout, tokens)

	sessions := service.New(client, snaps, service.Options{
		CascadeDelete: cfg.Moderation.CascadeDelete,
	}, log.With().Str("component", "discussion").Logger())
	h := commenthttp.New(sessions, log.With().Str("component", "http").Logger())

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           h.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		log.Info().
			Str("addr", cfg.HTTPAddr).
			Str("remote", cfg.Remote.BaseURL).
			Str("snapshots", cfg.Snapshot.Driver).
			Msg("listening")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	log.Info().Msg("shutting down")
	return srv.Shutdown(shutdownCtx)
}

func openSnapshots(ctx context.Context, cfg config.Config) (storage.Snapshots, io.Closer, error) {
	switch cfg.Snapshot.Driver {
	case config.SnapshotRedis:
		s, err := redis.Dial(ctx, goredis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, cfg.Snapshot.TTL)
		if err != nil {
			return nil, nil, err
		}
		return s, s, nil
	case config.SnapshotPostgres:
		s, err := postgres.Open(ctx, cfg.Postgres.DSN)
		if err != nil {
			return nil, nil, err
		}
		if err := s.Migrate(ctx); err != nil {
			_ = s.Close()
			return nil, nil, fmt.Errorf("migrate snapshots: %w", err)
		}
		return s, s, nil
	case config.SnapshotNone:
		return storage.Nop{}, noClose{}, nil
	default:
		return inmemory.NewSnapshots(), noClose{}, nil
	}
}

type noClose struct{}

func (noClose) Close() error { return nil }
