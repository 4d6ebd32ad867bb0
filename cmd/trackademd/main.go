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

	"github.com/joho/godotenv"

	"github.com/brendan-liang/softdev-sat/internal/application"
	"github.com/brendan-liang/softdev-sat/internal/config"
	httptransport "github.com/brendan-liang/softdev-sat/internal/http"
	"github.com/brendan-liang/softdev-sat/internal/logging"
	"github.com/brendan-liang/softdev-sat/internal/persistence"
	"github.com/brendan-liang/softdev-sat/internal/persistence/jsonfile"
	"github.com/brendan-liang/softdev-sat/internal/persistence/sqlite"
)

func main() {
	// A missing .env is fine; the environment still applies.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load configuration:", err)
		os.Exit(1)
	}

	logger := logging.New(os.Stdout, cfg.LogFormat, logging.ParseLevel(cfg.LogLevel))
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var store persistence.Store
	switch cfg.Storage {
	case config.StorageSQLite:
		store, err = sqlite.Open(cfg.SQLitePath)
	default:
		store, err = jsonfile.Open(cfg.DataDir)
	}
	if err != nil {
		logger.Error("failed to open storage", "error", err, "backend", cfg.Storage)
		os.Exit(1)
	}
	defer func() {
		if cerr := store.Close(); cerr != nil {
			logger.Error("failed to close storage", "error", cerr)
		}
	}()

	accounts := application.NewAccountService(store, logger)
	events := application.NewEventService(store, logger)
	groups := application.NewGroupService(store, logger)

	metrics := httptransport.NewMetrics()
	router := httptransport.NewRouter(httptransport.RouterConfig{
		Users:     httptransport.NewUserHandler(accounts, events, logger),
		Groups:    httptransport.NewGroupHandler(groups, events, logger),
		Reference: httptransport.NewReferenceHandler(cfg.DataDir, logger),
		Metrics:   metrics.Handler(),
		Middleware: []func(http.Handler) http.Handler{
			httptransport.RequestLogger(logger),
			metrics.Middleware(),
		},
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("trackademic API listening", "addr", server.Addr, "storage", cfg.Storage)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server encountered error", "error", err)
		os.Exit(1)
	}
}
