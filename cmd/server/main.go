package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/Simplici0/brewbox/internal/config"
	"github.com/Simplici0/brewbox/internal/db"
	"github.com/Simplici0/brewbox/internal/dispenser"
	"github.com/Simplici0/brewbox/internal/kiosk"
	"github.com/Simplici0/brewbox/internal/migrations"
	"github.com/Simplici0/brewbox/internal/seed"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.Load()

	logger, err := newLogger(cfg)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	for _, warning := range cfg.Warnings() {
		logger.Warn(warning)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	database, err := db.Open(ctx, cfg.DBPath)
	if err != nil {
		logger.Fatal("failed to open database", zap.Error(err))
	}
	defer database.Close()

	if err := migrations.Up(ctx, database); err != nil {
		logger.Fatal("failed to run database migrations", zap.Error(err))
	}

	seedCfg := seed.EmptyConfig()
	if cfg.IsDev() {
		seedCfg = seed.DemoConfig()
	}
	stats, err := seed.Run(ctx, database, seedCfg)
	if err != nil {
		logger.Fatal("failed to seed database", zap.Error(err))
	}
	logger.Info("seed complete", zap.Int("inserts", stats.Inserts))

	machineCfg := dispenser.DefaultConfig()
	machineCfg.MaxSugarLevel = cfg.MaxSugarLevel
	machine, err := dispenser.New(machineCfg)
	if err != nil {
		logger.Fatal("failed to build dispenser", zap.Error(err))
	}

	svc := kiosk.NewService(machine, kiosk.NewSQLiteRepository(database), logger.Named("kiosk"))
	if err := svc.Load(ctx); err != nil {
		logger.Fatal("failed to load machine state", zap.Error(err))
	}

	srv := newServer(svc, newOperatorAuth(cfg.OperatorToken), logger.Named("http"))
	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", zap.Error(err))
		}
	}()

	logger.Info("listening", zap.String("addr", httpServer.Addr), zap.String("env", cfg.Env))
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("server stopped", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger(cfg config.Config) (*zap.Logger, error) {
	level, err := zap.ParseAtomicLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	zcfg := zap.NewProductionConfig()
	if cfg.IsDev() {
		zcfg = zap.NewDevelopmentConfig()
	}
	zcfg.Level = level
	return zcfg.Build()
}
