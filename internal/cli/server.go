package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"quizlink-service/internal/app"
	"quizlink-service/internal/config"
	"quizlink-service/internal/infra/memory"
	"quizlink-service/internal/infra/postgres"
	rediscache "quizlink-service/internal/infra/redis"
	transport "quizlink-service/internal/transport/http"
	"quizlink-service/internal/upstream"
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
	baseURL := cfg.Server.BaseURL
	if baseURL == "" {
		baseURL = "http://localhost:" + finalPort
	}

	service, cleanup, err := buildService(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	var generator transport.Generator
	if cfg.Gemini.APIKey != "" {
		generator = upstream.NewGeminiClient(cfg.Gemini.APIKey, cfg.Gemini.APIURL)
	} else {
		log.Println("gemini api key not configured, /api/generate disabled")
	}
	var transcripts transport.TranscriptFetcher
	if cfg.Transcript.Host != "" && cfg.Transcript.APIKey != "" {
		transcripts = upstream.NewTranscriptClient(cfg.Transcript.Host, cfg.Transcript.APIKey)
	}

	pollInterval := config.Duration(cfg.Quiz.PollInterval, app.DefaultPollInterval)
	api := transport.NewAPI(service, generator, transcripts, baseURL, pollInterval)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      api.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting quiz service on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// buildService wires the quiz and score repositories from config: postgres
// when configured (with an optional redis cache in front of the quiz side),
// in-memory otherwise.
func buildService(ctx context.Context, cfg config.Config) (*app.QuizService, func(), error) {
	cleanup := func() {}

	var quizRepo app.QuizRepository
	var scoreRepo app.ScoreRepository
	if cfg.Postgres.URL != "" {
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return nil, cleanup, err
		}
		cleanup = pool.Close
		store := postgres.NewStore(pool)
		quizRepo = store
		scoreRepo = store
	} else {
		log.Println("postgres not configured, running in-memory")
		store := memory.NewStore()
		quizRepo = store
		scoreRepo = store
	}

	if cfg.Redis.Addr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		quizTTL := config.Duration(cfg.Quiz.TTL, 10*time.Minute)
		quizRepo = rediscache.NewQuizCache(redisClient, quizRepo, quizTTL)
	}

	return app.NewQuizService(quizRepo, scoreRepo), cleanup, nil
}
