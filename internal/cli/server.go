package cli

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"persona-quiz-service/internal/app"
	"persona-quiz-service/internal/auth"
	"persona-quiz-service/internal/config"
	"persona-quiz-service/internal/domain"
	"persona-quiz-service/internal/infra/memory"
	pgstore "persona-quiz-service/internal/infra/postgres"
	rediscache "persona-quiz-service/internal/infra/redis"
	transport "persona-quiz-service/internal/transport/http"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

type services struct {
	results *app.ResultService
	avatars *app.AvatarService
	close   func()
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	svc, err := buildServices(ctx, cfg)
	if err != nil {
		return err
	}
	defer svc.close()

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      transport.NewRouter(svc.results, svc.avatars),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		slog.Info("starting quiz service", "port", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("failed to start server", "error", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		slog.Info("shutting down server")
	case <-ctx.Done():
		slog.Info("context canceled, shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// buildServices picks Postgres or in-memory stores, optionally fronted by Redis.
func buildServices(ctx context.Context, cfg config.Config) (*services, error) {
	redisClient := newRedisClient(cfg)
	redisTTL := config.TTLDuration(cfg.Redis.TTL, 10*time.Minute)
	gameTTL := config.TTLDuration(cfg.Game.TTL, 10*time.Minute)

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		var err error
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return nil, err
		}
	}

	var (
		loader  memory.GameLoader
		results app.ResultStore
		avatars app.AvatarStore
		tokens  app.TokenResolver
	)
	if pool != nil {
		loader = pgstore.NewGameLoader(pool)
		results = pgstore.NewResultStore(pool)
		avatars = pgstore.NewAvatarStore(pool)
		tokens = pgstore.NewTokenResolver(pool)
	} else {
		catalog := memory.NewCatalog(sampleGame())
		loader = catalog
		results = memory.NewResultStore(catalog)
		avatars = memory.NewAvatarStore()
		tokens = memory.NewTokenStore(cfg.Auth.Tokens)
	}
	// JWTs are verified locally and carry their own expiry, so only store
	// lookups go through the Redis token cache.
	switch {
	case cfg.Auth.JWTSecret != "":
		tokens = auth.NewJWTResolver(cfg.Auth.JWTSecret)
	case redisClient != nil:
		tokens = rediscache.NewTokenCache(redisClient, tokens, redisTTL)
	}

	var games app.GameRepository
	if redisClient != nil {
		games = rediscache.NewGameRepository(redisClient, loader, gameTTL)
	} else {
		games = memory.NewGameRepository(loader, gameTTL)
	}

	return &services{
		results: app.NewResultService(games, tokens, results),
		avatars: app.NewAvatarService(avatars, tokens),
		close: func() {
			if pool != nil {
				pool.Close()
			}
			if redisClient != nil {
				_ = redisClient.Close()
			}
		},
	}, nil
}

// newRedisClient returns nil when Redis is not configured.
func newRedisClient(cfg config.Config) *redis.Client {
	if cfg.Redis.Addr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}

// sampleGame provides a playable game when no database is configured.
func sampleGame() domain.Game {
	return domain.Game{
		ID:          "sample",
		Title:       "Which hero are you?",
		Description: "Three questions, four possible heroes.",
		Questions: []domain.Question{
			{Index: 0, Question: "What is 2 + 2?", Answers: []string{"3", "4", "5"}, RightAnswer: 1},
			{Index: 1, Question: "Which planet is the largest?", Answers: []string{"Mars", "Jupiter", "Venus"}, RightAnswer: 1},
			{Index: 2, Question: "How many sides has a hexagon?", Answers: []string{"5", "6", "8"}, RightAnswer: 1},
		},
		Persons: []domain.Person{
			{ID: "sample-0", Count: 0, Name: "Bystander"},
			{ID: "sample-1", Count: 1, Name: "Sidekick"},
			{ID: "sample-2", Count: 2, Name: "Ranger"},
			{ID: "sample-3", Count: 3, Name: "Champion"},
		},
	}
}
