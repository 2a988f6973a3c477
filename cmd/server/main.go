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

	"github.com/thefledgedhurricane/journal-quality-analyzer/config"
	"github.com/thefledgedhurricane/journal-quality-analyzer/internal/app"
	httpDelivery "github.com/thefledgedhurricane/journal-quality-analyzer/internal/delivery/http"
	"github.com/thefledgedhurricane/journal-quality-analyzer/internal/logging"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal("failed to load configuration", "err", err)
	}

	if err := logging.Init(cfg.Log.Level, cfg.Log.Format, os.Stdout); err != nil {
		logging.Fatal("failed to configure logging", "err", err)
	}

	logging.Info("starting Journal Quality Analyzer v1.0.0",
		"environment", cfg.Server.Environment,
		"port", cfg.Server.Port,
		"cache", cfg.Cache.Type,
		"cache_ttl", cfg.Cache.TTL,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	engine, err := app.New(ctx, cfg)
	if err != nil {
		logging.Fatal("failed to start engine", "err", err)
	}
	defer engine.Close()

	logging.Info("matching configured",
		"floor", cfg.Matching.Floor,
		"edit_weight", cfg.Matching.EditWeight,
		"token_weight", cfg.Matching.TokenWeight,
		"pruning", cfg.Matching.EnablePruning,
		"debug", cfg.Matching.EnableDebugLogging,
	)

	handler := httpDelivery.NewHandler(engine.Aggregator, engine.Matcher, engine.Index, engine.Builder, cfg.Matching.TopK)
	router := httpDelivery.SetupRouter(cfg, handler)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logging.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal("failed to start server", "err", err)
		}
	}()

	<-ctx.Done()
	logging.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.Error("graceful shutdown failed", "err", err)
	}
}
