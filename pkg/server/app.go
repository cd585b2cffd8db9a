package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"SilverFetch/internal/domain/repository"
	"SilverFetch/internal/usecase"
	"SilverFetch/pkg/config"
	xhttp "SilverFetch/pkg/http"
	applogger "SilverFetch/pkg/logger"
)

// App encapsulates the entire application lifecycle: the refresh scheduler,
// the HTTP/websocket server, and the optional snapshot sinks.
type App struct {
	cfg        *config.Config
	log        *applogger.Logger
	scheduler  *usecase.Scheduler
	handler    xhttp.Handler
	sinks      []repository.SnapshotSink
	httpServer *xhttp.Server
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	log *applogger.Logger,
	scheduler *usecase.Scheduler,
	handler xhttp.Handler,
	sinks []repository.SnapshotSink,
) *App {
	return &App{
		cfg:       cfg,
		log:       log,
		scheduler: scheduler,
		handler:   handler,
		sinks:     sinks,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a.httpServer = xhttp.NewServer(a.handler,
		xhttp.WithHost(a.cfg.Server.Host),
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
		xhttp.WithAllowedOrigins(a.cfg.Server.AllowedOrigins),
		xhttp.WithMetrics(a.cfg.Metrics.Enabled, a.cfg.Metrics.Path),
		xhttp.WithLogger(a.log),
	)

	// The scheduler drives everything; the HTTP layer only reads its output.
	go func() {
		if err := a.scheduler.Run(ctx); err != nil && ctx.Err() == nil {
			a.log.Error("scheduler error", applogger.Error(err))
		}
	}()

	if err := a.httpServer.Start(); err != nil {
		a.log.Error("http server start error", applogger.Error(err))
		return err
	}

	// Wait for interrupt
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.log.Info("shutdown signal received")
	cancel()
	return a.shutdown()
}

// shutdown gracefully stops all services.
func (a *App) shutdown() error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.log.Error("http shutdown error", applogger.Error(err))
	}

	for _, sink := range a.sinks {
		if err := sink.Close(); err != nil {
			a.log.Warn("sink close error", applogger.Error(err))
		}
	}

	a.log.Info("shutdown complete")
	return nil
}
