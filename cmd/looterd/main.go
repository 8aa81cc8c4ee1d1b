package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/evelooter/looter/internal/config"
	"github.com/evelooter/looter/internal/server"
	"github.com/evelooter/looter/pkg/cache"
	"github.com/evelooter/looter/pkg/esi"
	"github.com/evelooter/looter/pkg/logging"
	"github.com/evelooter/looter/pkg/pipeline"
	"github.com/evelooter/looter/pkg/ratelimit"
	"github.com/evelooter/looter/pkg/zkb"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "looterd",
		Short: "Loot payout service for zKillboard kill lists",
		Long:  "looterd fetches kill lists from zKillboard, hydrates them from ESI and splits dropped loot between participants.",
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP service",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}
	rootCmd.AddCommand(serveCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runServe() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := logging.Setup(logging.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.LogPretty,
		Output: os.Stderr,
	})

	store, err := buildStore(cfg)
	if err != nil {
		return err
	}

	tracker := ratelimit.NewTracker(logging.NewLogger("ratelimit"))

	esiClient, err := esi.NewClient(esi.Config{
		BaseURL:   cfg.ESIBaseURL,
		UserAgent: cfg.UserAgent,
		Timeout:   cfg.RequestTimeout,
		Tracker:   tracker,
	})
	if err != nil {
		return fmt.Errorf("create esi client: %w", err)
	}

	listClient := zkb.NewClient(zkb.Config{
		BaseURL:   cfg.ZKillBaseURL,
		UserAgent: cfg.UserAgent,
		Timeout:   cfg.RequestTimeout,
	})

	fetcher := pipeline.NewFetcher(
		listClient,
		esi.NewHydrator(esiClient, store, cfg.HydrateConcurrency),
		esi.NewResolver(esiClient, store),
		store,
		pipeline.Config{MaxPages: cfg.MaxPages, PageDelay: cfg.PageDelay},
	)

	srv := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: server.New(fetcher).Router(),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", cfg.ListenAddr).Msg("looterd listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("serve: %w", err)
	case sig := <-sigCh:
		logger.Info().Str("signal", sig.String()).Msg("Shutting down")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}

// buildStore selects the cache backend: Redis when REDIS_ADDR is set,
// in-memory otherwise.
func buildStore(cfg config.Config) (cache.Store, error) {
	if cfg.RedisAddr == "" {
		return cache.NewMemoryStore(), nil
	}

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis at %s: %w", cfg.RedisAddr, err)
	}

	return cache.NewRedisStore(redisClient), nil
}
