package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bryanwahyu/errexplain/internal/application"
	appanalysis "github.com/bryanwahyu/errexplain/internal/application/analysis"
	"github.com/bryanwahyu/errexplain/internal/application/extraction"
	appquota "github.com/bryanwahyu/errexplain/internal/application/quota"
	appvotes "github.com/bryanwahyu/errexplain/internal/application/votes"
	"github.com/bryanwahyu/errexplain/internal/config"
	"github.com/bryanwahyu/errexplain/internal/domain/ai"
	"github.com/bryanwahyu/errexplain/internal/infra/ai/openai"
	"github.com/bryanwahyu/errexplain/internal/infra/db"
	"github.com/bryanwahyu/errexplain/internal/infra/db/sqlstore"
	"github.com/bryanwahyu/errexplain/internal/infra/httpserver"
	minioStore "github.com/bryanwahyu/errexplain/internal/infra/storage"
	"github.com/bryanwahyu/errexplain/internal/middleware"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	// path config.yaml
	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}

	// load config
	cfg, err := config.Load(path)
	if err != nil {
		logger.Error("config load error", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	// connect database + migrate
	conn, dialect, err := db.Open(ctx, cfg)
	if err != nil {
		logger.Error("database connect error", "driver", cfg.Database.Driver, "error", err)
		os.Exit(1)
	}
	defer conn.Close()
	if err := db.Migrate(ctx, conn, dialect); err != nil {
		logger.Error("migrate error", "error", err)
		os.Exit(1)
	}

	// init repo
	submissions := sqlstore.NewSubmissionRepository(conn, dialect)
	usage := sqlstore.NewUsageRepository(conn, dialect)
	votes := sqlstore.NewVoteRepository(conn, dialect)

	checks := map[string]middleware.HealthChecker{
		"database": &middleware.DatabaseHealthChecker{DB: conn},
	}

	// init minio (optional, hanya untuk arsip transcript yang gagal di-parse)
	var transcripts ai.TranscriptStore
	if cfg.Minio.Enabled {
		store, err := minioStore.New(ctx,
			cfg.Minio.Endpoint,
			cfg.Minio.Region,
			cfg.Minio.BucketName,
			cfg.Minio.AccessKey,
			cfg.Minio.SecretKey,
			cfg.Minio.UseSSL,
		)
		if err != nil {
			logger.Error("minio init error", "error", err)
			os.Exit(1)
		}
		transcripts = store
		checks["minio"] = middleware.CheckerFunc(store.Ping)
	}

	// init completion client
	completer := openai.NewClient(cfg.AI.APIKey, cfg.AI.BaseURL, cfg.AI.Model)
	completer.JSONMode = cfg.AI.JSONMode
	checks["completion"] = middleware.CompletionConfigChecker{APIKey: cfg.AI.APIKey, Model: completer.Model}

	// init service
	clock := application.SystemClock{}
	ledger := appquota.NewLedger(usage, clock, cfg.Quota.DailyLimit, cfg.Location())
	engine := extraction.NewEngine(completer, ai.CompletionOptions{
		Temperature:     cfg.AI.Temperature,
		MaxOutputTokens: cfg.AI.MaxTokens,
	}, cfg.AI.Timeout)
	analysisSvc := &appanalysis.Service{
		Repo:        submissions,
		Ledger:      ledger,
		Extractor:   engine,
		Transcripts: transcripts,
		Clock:       clock,
		Location:    cfg.Location(),
		BaseURL:     cfg.App.BaseURL,
		Logger:      logger,
	}
	votesSvc := &appvotes.Service{
		Repo:   votes,
		Shares: analysisSvc,
		Clock:  clock,
	}

	limiter := middleware.NewRateLimiter(cfg.Server.RateLimit.RPS, cfg.Server.RateLimit.Burst)
	defer limiter.Stop()

	// init router
	handler := httpserver.NewRouter(analysisSvc, votesSvc, ledger, httpserver.Options{
		Logger:         logger,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		RateLimit:      limiter,
		AdminKey:       cfg.Server.AdminKey,
		Checks:         checks,
		Required:       map[string]middleware.HealthChecker{"database": checks["database"]},
	})

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// run server
	go func() {
		logger.Info("server listening", "addr", addr, "driver", cfg.Database.Driver, "model", completer.Model)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	logger.Info("shutting down server...")

	ctx2, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx2); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}
