package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/meridian-books/meridian/internal/accounting/journals"
	journalshttp "github.com/meridian-books/meridian/internal/accounting/journals/http"
	"github.com/meridian-books/meridian/internal/accounting/reportcache"
	"github.com/meridian-books/meridian/internal/accounting/reports"
	reportshttp "github.com/meridian-books/meridian/internal/accounting/reports/http"
	"github.com/meridian-books/meridian/internal/app"
	"github.com/meridian-books/meridian/internal/close"
	closehttp "github.com/meridian-books/meridian/internal/close/http"
	"github.com/meridian-books/meridian/internal/platform/cache"
	"github.com/meridian-books/meridian/internal/platform/db"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	var reportStore reportcache.Store
	if cfg.RedisAddr != "" {
		redisClient, err := cache.New(ctx, cfg.RedisAddr)
		if err != nil {
			logger.Error("connect redis", slog.Any("error", err))
			os.Exit(1)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}()
		reportStore = reportcache.NewRedis(redisClient, logger)
	} else {
		reportStore = reportcache.NewMemory(cfg.ReportCacheMax)
	}

	closeRepo := close.NewRepository(dbpool)
	configRepo := close.NewConfigRepository(dbpool)
	auditLogger := close.NewAuditLogger(dbpool)

	journalsRepo := journals.NewRepository(dbpool)

	// The close service doubles as the period guard for postings; the ledger
	// port is filled in after the journals service exists.
	closeService := close.NewService(closeRepo, nil, configRepo, auditLogger, logger)
	closeService.WithDefaultCITRate(cfg.CITRate)
	journalsService := journals.NewService(journalsRepo, closeService, reportStore, logger)
	closeService.SetLedger(journalsService)

	reportService := reports.NewService(journalsService, reportStore, cfg.ReportCacheTTL, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:          logger,
		Config:          cfg,
		JournalsHandler: journalshttp.NewHandler(logger, journalsService),
		ReportsHandler:  reportshttp.NewHandler(logger, reportService),
		CloseHandler:    closehttp.NewHandler(logger, closeService),
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
