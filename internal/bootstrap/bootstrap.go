package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/UmerKhan7479/SemesterSurvival/internal/auth"
	"github.com/UmerKhan7479/SemesterSurvival/internal/config"
	"github.com/UmerKhan7479/SemesterSurvival/internal/core/ports"
	"github.com/UmerKhan7479/SemesterSurvival/internal/core/usecase"
	"github.com/UmerKhan7479/SemesterSurvival/internal/infrastructure/extractor/pdftext"
	"github.com/UmerKhan7479/SemesterSurvival/internal/infrastructure/llm/gemini"
	"github.com/UmerKhan7479/SemesterSurvival/internal/infrastructure/parsing"
	"github.com/UmerKhan7479/SemesterSurvival/internal/infrastructure/queue/nats"
	"github.com/UmerKhan7479/SemesterSurvival/internal/infrastructure/repository/postgres"
	"github.com/UmerKhan7479/SemesterSurvival/internal/infrastructure/resilience"
	miniostore "github.com/UmerKhan7479/SemesterSurvival/internal/infrastructure/storage/minio"
	"github.com/UmerKhan7479/SemesterSurvival/internal/infrastructure/validate"
	"github.com/UmerKhan7479/SemesterSurvival/internal/observability/logging"
	"github.com/UmerKhan7479/SemesterSurvival/internal/observability/metrics"
)

type App struct {
	Config config.Config
	Logger *slog.Logger

	Queue       *nats.Queue
	Notes       ports.NoteRepository
	History     ports.HistoryService
	Persister   ports.HistoryPersister
	Uploader    ports.NoteUploader
	Reports     ports.ReportGenerator
	CheatSheets ports.CheatSheetGenerator
	AuthHandler *auth.Handler
	Sessions    *auth.SessionStore
	APIMetrics  *metrics.HTTPServerMetrics

	closeFn func()
}

func New(ctx context.Context, cfg config.Config, service string) (*App, error) {
	logger := logging.NewJSONLogger(service, cfg.LogLevel)

	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	noteRepo := postgres.NewNoteRepository(db)
	historyRepo := postgres.NewHistoryRepository(db)
	userRepo := postgres.NewUserRepository(db)
	for _, ensure := range []func(context.Context) error{
		noteRepo.EnsureSchema, historyRepo.EnsureSchema, userRepo.EnsureSchema,
	} {
		if err := ensure(ctx); err != nil {
			return nil, fmt.Errorf("ensure schema: %w", err)
		}
	}

	executor := resilience.NewExecutor(resilience.DefaultConfig(), logging.WithComponent(logger, "resilience"))

	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
		ResilienceExecutor: executor,
	})
	if err != nil {
		return nil, fmt.Errorf("init history queue: %w", err)
	}

	storage, err := miniostore.New(ctx, miniostore.Config{
		Endpoint:  cfg.MinioEndpoint,
		AccessKey: cfg.MinioAccessKey,
		SecretKey: cfg.MinioSecretKey,
		Bucket:    cfg.MinioBucket,
		UseSSL:    cfg.MinioUseSSL,
		PublicURL: cfg.MinioPublicURL,
	})
	if err != nil {
		return nil, fmt.Errorf("init object storage: %w", err)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	sessions := auth.NewSessionStore(rdb)

	apiMetrics := metrics.NewHTTPServerMetrics(service)

	client := gemini.New(cfg.GeminiBaseURL, cfg.GeminiAPIKey)
	invoker := gemini.NewInvoker(client, executor, time.Duration(cfg.ModelAttemptTimeoutS)*time.Second).
		WithMetrics(service, apiMetrics)
	prompts := gemini.Prompts{}
	parser := parsing.New()

	validator := validate.New(logging.WithComponent(logger, "validate"))
	extractor := pdftext.New(logging.WithComponent(logger, "pdftext"))

	history := usecase.NewHistoryService(historyRepo, queue, logger)
	uploader := usecase.NewUploadOrchestrator(validator, storage, noteRepo, invoker, prompts, parser,
		ports.ModelWorkflow{Candidates: gemini.NoteCandidates, Options: gemini.NoteOptions}, logger)
	reports := usecase.NewReportOrchestrator(invoker, prompts, parser, extractor,
		ports.ModelWorkflow{Candidates: gemini.ReportCandidates, Options: gemini.ReportOptions}, logger)
	cheatSheets := usecase.NewCheatSheetOrchestrator(extractor, invoker, prompts,
		ports.ModelWorkflow{Candidates: gemini.CheatSheetCandidates, Options: gemini.CheatSheetOptions})

	return &App{
		Config:      cfg,
		Logger:      logger,
		Queue:       queue,
		Notes:       noteRepo,
		History:     history,
		Persister:   usecase.NewHistoryPersister(historyRepo, logger),
		Uploader:    uploader,
		Reports:     reports,
		CheatSheets: cheatSheets,
		AuthHandler: auth.NewHandler(userRepo, sessions),
		Sessions:    sessions,
		APIMetrics:  apiMetrics,

		closeFn: func() {
			queue.Close()
			_ = rdb.Close()
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
