package cli

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/lmittmann/tint"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"trivia-session-service/internal/app"
	"trivia-session-service/internal/config"
	"trivia-session-service/internal/genai"
	"trivia-session-service/internal/infra/memory"
	"trivia-session-service/internal/infra/postgres"
	infraredis "trivia-session-service/internal/infra/redis"
	"trivia-session-service/internal/session"
	transport "trivia-session-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the trivia session server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	log := slog.New(tint.NewHandler(os.Stdout, &tint.Options{Level: slog.LevelDebug}))
	slog.SetDefault(log)

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

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
	}

	client := genai.NewClient(genai.Config{
		APIKey:  cfg.GenAI.APIKey,
		BaseURL: cfg.GenAI.BaseURL,
		Model:   cfg.GenAI.Model,
		Timeout: config.DurationOr(cfg.GenAI.Timeout, 2*time.Minute),
	})
	if !client.IsAvailable() {
		log.Warn("GENAI_API_KEY not set, question fetches will fail")
	}

	dailyTTL := config.DurationOr(cfg.Quiz.DailyCacheTTL, time.Hour)
	var source session.QuestionSource
	if redisClient != nil {
		source = infraredis.NewQuestionCache(redisClient, client, dailyTTL)
	} else {
		source = memory.NewQuestionCache(client, dailyTTL)
	}

	// A missing Postgres degrades to in-process persistence: leaderboard and
	// comments survive only for the lifetime of the server.
	var remote app.RemoteStore
	if pool != nil {
		remote = postgres.NewStore(pool)
	} else {
		log.Warn("postgres not configured, using in-process score/comment store")
		remote = memory.NewFeedStore()
	}

	var local app.BoardCache
	var stats app.StatsStore
	if redisClient != nil {
		local = infraredis.NewBoardCache(redisClient)
		stats = infraredis.NewStatsStore(redisClient)
	} else {
		local = memory.NewBoardCache()
		stats = memory.NewStatsStore()
	}

	boards := app.NewGateway(remote, local, log)
	registry := app.NewRegistry()
	wsHandler := transport.NewWSHandler(registry, source, stats, boards, log)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/ws", wsHandler.ServeWS)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Info("starting trivia session service", "port", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("failed to start server", "error", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Info("shutting down server")
	case <-ctx.Done():
		log.Info("context canceled, shutting down server")
	}

	registry.StopAll()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
