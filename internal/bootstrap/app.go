package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"

	"sentiment-scoop/internal/accounts"
	"sentiment-scoop/internal/llm"
	"sentiment-scoop/internal/llm/gemini"
	openai "sentiment-scoop/internal/llm/openai"
	"sentiment-scoop/internal/sentiment"
	"sentiment-scoop/internal/services/health"
	"sentiment-scoop/internal/shared/config"
	"sentiment-scoop/internal/shared/server"
	"sentiment-scoop/internal/shared/storage/db"
	"sentiment-scoop/internal/shared/telemetry"
	"sentiment-scoop/internal/youtube"
)

// App holds shared dependencies.
type App struct {
	Config config.Config
	Router *gin.Engine
	DB     *sql.DB
	Cache  *sentiment.Cache
	Cron   *cron.Cron

	AccountsRepo  accounts.Repo
	SentimentRepo sentiment.Repo

	AccountsService  *accounts.Service
	SentimentService *sentiment.Service
	HealthService    *health.Service

	AccountsHandler  *accounts.Handler
	SentimentHandler *sentiment.Handler
}

// Build prepares shared dependencies and wires the router.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	ctx := context.Background()

	sqlDB, dialect, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config: cfg,
		DB:     sqlDB,
		Cache:  sentiment.NewCache(cfg.RedisURL, time.Duration(cfg.CacheMaxAgeHours)*time.Hour),
	}

	if err := buildServices(ctx, app, dialect); err != nil {
		return nil, err
	}

	if err := buildJanitor(app); err != nil {
		return nil, err
	}

	app.Router = server.NewRouter(server.RouterDeps{
		Config:           app.Config,
		Health:           app.HealthService,
		AccountsHandler:  app.AccountsHandler,
		SentimentHandler: app.SentimentHandler,
	})

	return app, nil
}

// Start kicks off background workers. Call after Build, before serving.
func (a *App) Start() {
	if a.Cron != nil {
		a.Cron.Start()
	}
}

// Stop shuts background workers down and closes the database.
func (a *App) Stop() {
	if a.Cron != nil {
		a.Cron.Stop()
	}
	if a.DB != nil {
		a.DB.Close()
	}
}

type dbDialect int

const (
	dialectNone dbDialect = iota
	dialectPostgres
	dialectSQLite
)

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, dbDialect, error) {
	if strings.TrimSpace(cfg.DatabaseURL) != "" {
		opts := db.OptionsFromEnv(db.DefaultServerOptions())
		sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
		if err != nil {
			if isDevLike(cfg.Env) {
				telemetry.Warn("bootstrap.db_unavailable", map[string]any{"error": err.Error()})
				return nil, dialectNone, nil
			}
			return nil, dialectNone, err
		}
		if err := db.RunMigrations(ctx, sqlDB); err != nil {
			sqlDB.Close()
			return nil, dialectNone, fmt.Errorf("run migrations: %w", err)
		}
		return sqlDB, dialectPostgres, nil
	}

	if !isDevLike(cfg.Env) {
		return nil, dialectNone, errors.New("DATABASE_URL is required outside dev")
	}

	if strings.TrimSpace(cfg.SQLitePath) != "" {
		sqlDB, err := db.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			telemetry.Warn("bootstrap.sqlite_unavailable", map[string]any{"error": err.Error()})
			return nil, dialectNone, nil
		}
		return sqlDB, dialectSQLite, nil
	}

	telemetry.Info("bootstrap.memory_repos", nil)
	return nil, dialectNone, nil
}

func buildServices(ctx context.Context, app *App, dialect dbDialect) error {
	cfg := app.Config

	var accountsRepo accounts.Repo
	var sentimentRepo sentiment.Repo
	switch dialect {
	case dialectPostgres:
		accountsRepo = &accounts.PGRepo{DB: app.DB}
		sentimentRepo = &sentiment.PGRepo{DB: app.DB}
	case dialectSQLite:
		var err error
		if accountsRepo, err = accounts.NewSQLiteRepo(ctx, app.DB); err != nil {
			return fmt.Errorf("init accounts schema: %w", err)
		}
		if sentimentRepo, err = sentiment.NewSQLiteRepo(ctx, app.DB); err != nil {
			return fmt.Errorf("init sentiment schema: %w", err)
		}
	default:
		accountsRepo = accounts.NewMemoryRepo()
		sentimentRepo = sentiment.NewMemoryRepo()
	}

	comments, err := buildComments(ctx, cfg)
	if err != nil {
		return err
	}
	llmClient, err := buildLLM(ctx, cfg)
	if err != nil {
		return err
	}

	app.AccountsRepo = accountsRepo
	app.SentimentRepo = sentimentRepo
	app.AccountsService = accounts.NewService(accountsRepo)
	app.SentimentService = &sentiment.Service{
		Repo:     sentimentRepo,
		Cache:    app.Cache,
		Comments: comments,
		LLM:      llmClient,
		MaxAge:   time.Duration(cfg.CacheMaxAgeHours) * time.Hour,
	}
	app.HealthService = health.NewService(app.DB)
	app.AccountsHandler = accounts.NewHandler(app.AccountsService, cfg.Env)
	app.SentimentHandler = sentiment.NewHandler(app.SentimentService)
	return nil
}

func buildComments(ctx context.Context, cfg config.Config) (sentiment.CommentSource, error) {
	if strings.TrimSpace(cfg.YouTubeAPIKey) == "" {
		if isDevLike(cfg.Env) {
			telemetry.Warn("bootstrap.youtube_unconfigured", nil)
			return unconfiguredComments{}, nil
		}
		return nil, errors.New("YOUTUBE_API_KEY is required outside dev")
	}
	return youtube.NewClient(ctx, cfg.YouTubeAPIKey, cfg.MaxComments)
}

func buildLLM(ctx context.Context, cfg config.Config) (llm.Client, error) {
	switch cfg.LLMProvider {
	case "gemini":
		if strings.TrimSpace(cfg.GeminiAPIKey) == "" {
			return placeholderIfDev(cfg, "GEMINI_API_KEY")
		}
		return gemini.NewClient(ctx, cfg.GeminiAPIKey, cfg.LLMModel)
	default:
		if strings.TrimSpace(cfg.OpenAIAPIKey) == "" {
			return placeholderIfDev(cfg, "OPENAI_API_KEY")
		}
		return openai.NewClient(cfg.OpenAIAPIKey, cfg.LLMModel)
	}
}

func placeholderIfDev(cfg config.Config, key string) (llm.Client, error) {
	if isDevLike(cfg.Env) {
		telemetry.Warn("bootstrap.llm_unconfigured", map[string]any{"missing": key})
		return llm.PlaceholderClient{}, nil
	}
	return nil, fmt.Errorf("%s is required outside dev", key)
}

func buildJanitor(app *App) error {
	spec := strings.TrimSpace(app.Config.JanitorSpec)
	if spec == "" {
		return nil
	}
	c := cron.New()
	svc := app.SentimentService
	_, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		deleted, err := svc.PruneExpired(ctx)
		if err != nil {
			telemetry.Error("janitor.prune_failed", map[string]any{"error": err.Error()})
			return
		}
		telemetry.Info("janitor.pruned", map[string]any{"deleted": deleted})
	})
	if err != nil {
		return fmt.Errorf("schedule janitor: %w", err)
	}
	app.Cron = c
	return nil
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}

type unconfiguredComments struct{}

func (unconfiguredComments) FetchComments(ctx context.Context, videoID string) ([]string, error) {
	return nil, errors.New("youtube client not configured")
}

func (unconfiguredComments) CommentCount(ctx context.Context, videoID string) (int64, error) {
	return 0, errors.New("youtube client not configured")
}
