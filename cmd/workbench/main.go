package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/statement-workbench/statement-workbench/internal/app"
	"github.com/statement-workbench/statement-workbench/internal/backend"
	"github.com/statement-workbench/statement-workbench/internal/journal"
	journalhttp "github.com/statement-workbench/statement-workbench/internal/journal/http"
	"github.com/statement-workbench/statement-workbench/internal/mapper"
	mapperhttp "github.com/statement-workbench/statement-workbench/internal/mapper/http"
	"github.com/statement-workbench/statement-workbench/internal/observability"
	statementhttp "github.com/statement-workbench/statement-workbench/internal/statement/http"
	"github.com/statement-workbench/statement-workbench/internal/workspace"
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

	client := backend.NewClient(cfg.BackendBaseURL, cfg.BackendTimeout)
	store := workspace.NewStore()
	metrics := observability.NewMetrics()

	mapperService := mapper.NewService(logger, client)
	journalService := journal.NewService(logger, client)

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		Store:            store,
		Metrics:          metrics,
		MapperHandler:    mapperhttp.NewHandler(logger, mapperService, store, metrics, cfg.UploadMaxBytes),
		StatementHandler: statementhttp.NewHandler(logger, store),
		JournalHandler:   journalhttp.NewHandler(logger, journalService, store, metrics),
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("workbench listening", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("serve", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", slog.Any("error", err))
	}
}
