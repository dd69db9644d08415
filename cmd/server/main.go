package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"newsportal/internal/app"
	"newsportal/internal/bootstrap"
	"newsportal/internal/config"
	"newsportal/internal/infra/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt := config.LoadRuntime()

	if _, err := logger.Init(); err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logger.Sync()
	lg := logger.S()

	if rt.JWTSecret == "" {
		lg.Fatalw("JWT_SECRET is required")
	}

	resources, err := app.Bootstrap(ctx)
	if err != nil {
		lg.Fatalw("bootstrap failed", "error", err)
	}
	defer func() {
		if err := resources.Close(); err != nil {
			lg.Warnw("resource cleanup error", "error", err)
		}
	}()

	lg.Infow("mysql connected", "host", resources.MySQL.Host, "database", resources.MySQL.Database)

	application, err := bootstrap.BuildApplication(ctx, lg, resources, rt)
	if err != nil {
		lg.Fatalw("build application failed", "error", err)
	}

	srv := &http.Server{
		Addr:              ":" + rt.HTTPPort,
		Handler:           application.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		lg.Infow("http server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Fatalw("http server failed", "error", err)
		}
	}()

	<-ctx.Done()
	lg.Infow("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		lg.Warnw("graceful shutdown failed", "error", err)
	}
}
