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

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"traklio/internal/auth"
	"traklio/internal/config"
	"traklio/internal/events"
	"traklio/internal/httpapi"
	"traklio/internal/services"
	"traklio/internal/store"
)

func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	if err := run(cfg, logger); err != nil {
		logger.Error("Server error", "error", err)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var st store.Store
	switch cfg.DataBackend {
	case "sqlite":
		db, err := store.NewSQLite(cfg.SQLiteDBPath)
		if err != nil {
			return err
		}
		defer db.Close()
		st = db
		logger.Info("Initialized sqlite backend", "backend", cfg.DataBackend, "path", cfg.SQLiteDBPath)
	default:
		st = store.NewMemory()
		logger.Info("Initialized memory backend", "backend", cfg.DataBackend)
	}

	if cfg.SeedDemo {
		if err := seedDemo(ctx, st); err != nil {
			return err
		}
	}

	var publisher *events.Publisher
	if cfg.AMQPURL != "" {
		p, err := events.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			return err
		}
		publisher = p
		logger.Info("Connected to AMQP broker", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	}

	am := auth.NewManager(st, cfg.AuthTimeout)
	es := services.NewExpenseService(st, publisher)
	defer es.Close()

	srv := httpapi.NewServer(":"+cfg.Port, am, es, st)
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting traklio server", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
