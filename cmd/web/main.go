package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"

	"github.com/jallerangel/portfolio/internal/config"
	"github.com/jallerangel/portfolio/internal/session"
	"github.com/jallerangel/portfolio/internal/visits"
	"github.com/jallerangel/portfolio/internal/web"
)

const (
	defaultHost      = "0.0.0.0"
	defaultPort      = "8080"
	defaultVisitsDB  = "visits.db"
	defaultRetention = 90 * 24 * time.Hour
)

func main() {
	if err := config.Load(); err != nil {
		log.Fatal("load .env", "err", err)
	}
	logger := config.NewLogger("web")
	log.SetDefault(logger)
	gin.SetMode(config.GetEnv("GIN_MODE", gin.ReleaseMode))

	host := config.GetEnv("WEB_HOST", defaultHost)
	port := config.GetEnv("WEB_PORT", defaultPort)
	dbPath := config.GetEnv("VISITS_DB", defaultVisitsDB)
	retention := config.GetEnvDuration("VISITS_RETENTION", defaultRetention)
	shutdownWait := config.GetEnvDuration("SHUTDOWN_WAIT", 5*time.Second)

	store, err := visits.Open(dbPath, visits.WithSalt(config.GetEnv("VISITS_SALT", "")))
	if err != nil {
		logger.Warn("visit log unavailable", "err", err)
	}

	hub := session.NewHub()
	srv := web.New(web.Options{
		SSHHost:  config.GetEnv("SSH_DISPLAY_HOST", "your-server.com"),
		SSHPort:  config.GetEnv("SSH_PORT", "2222"),
		Registry: hub,
		Visits:   store,
		Logger:   logger,
	})

	ctx, stop := context.WithCancel(context.Background())
	defer stop()
	if store != nil {
		go pruneVisits(ctx, store, retention, logger)
	}

	httpServer := &http.Server{
		Addr:              net.JoinHostPort(host, port),
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("starting web server", "url", "http://"+httpServer.Addr)
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", "err", err)
		}
	}()

	<-done
	logger.Info("shutting down server")

	// Rain streams are hijacked connections that http.Server.Shutdown does
	// not wait for; the hub closes them.
	if !hub.Shutdown(shutdownWait) {
		logger.Warn("rain streams still open after shutdown wait", "sessions", hub.Active())
	}
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "err", err)
	}
	if store != nil {
		if err := store.Close(); err != nil {
			logger.Error("close visit log", "err", err)
		}
	}
}

// pruneVisits drops visits older than retention once at startup and then
// daily until ctx is done.
func pruneVisits(ctx context.Context, store *visits.Store, retention time.Duration, logger *log.Logger) {
	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()
	for {
		removed, err := store.Prune(ctx, retention)
		switch {
		case err != nil && !errors.Is(err, visits.ErrClosed) && ctx.Err() == nil:
			logger.Warn("prune visit log", "err", err)
		case removed > 0:
			logger.Info("pruned visit log", "removed", removed)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
