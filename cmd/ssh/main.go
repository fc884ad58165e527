package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/activeterm"
	"github.com/charmbracelet/wish/logging"

	"github.com/jallerangel/portfolio/internal/config"
	"github.com/jallerangel/portfolio/internal/draw"
	"github.com/jallerangel/portfolio/internal/page"
	"github.com/jallerangel/portfolio/internal/session"
	"github.com/jallerangel/portfolio/internal/visits"
)

const (
	defaultHost        = "::"
	defaultPort        = "2222"
	defaultHostKeyPath = "/app/keys/host_key"
	defaultVisitsDB    = "visits.db"
)

func main() {
	if err := config.Load(); err != nil {
		log.Fatal("load .env", "err", err)
	}
	logger := config.NewLogger("ssh")
	log.SetDefault(logger)

	host := config.GetEnv("SSH_HOST", defaultHost)
	port := config.GetEnv("SSH_PORT", defaultPort)
	hostKeyPath := config.GetEnv("SSH_HOST_KEY", defaultHostKeyPath)
	dbPath := config.GetEnv("VISITS_DB", defaultVisitsDB)
	shutdownWait := config.GetEnvDuration("SHUTDOWN_WAIT", 15*time.Second)
	logger.Info("config", "host", host, "port", port, "hostKeyPath", hostKeyPath, "visitsDB", dbPath)

	hub := session.NewHub()

	// The page still works without a visit log; the footer just hides the count.
	store, err := visits.Open(dbPath, visits.WithSalt(config.GetEnv("VISITS_SALT", "")))
	if err != nil {
		logger.Warn("visit log unavailable", "err", err)
	}

	opts := []ssh.Option{
		wish.WithAddress(net.JoinHostPort(host, port)),
		wish.WithMiddleware(
			pageMiddleware(hub, store),
			activeterm.Middleware(),
			logging.Middleware(),
		),
		// TCP_NODELAY keeps key presses and frames snappy
		ssh.WrapConn(func(ctx ssh.Context, conn net.Conn) net.Conn {
			if tcpConn, ok := conn.(*net.TCPConn); ok {
				_ = tcpConn.SetNoDelay(true)
			}
			return conn
		}),
	}

	if hostKeyPath != "" {
		opts = append(opts, wish.WithHostKeyPath(hostKeyPath))
	}

	s, err := wish.NewServer(opts...)
	if err != nil {
		logger.Fatal("create server", "err", err)
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("starting SSH server", "addr", net.JoinHostPort(host, port))
	go func() {
		if err := s.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			logger.Fatal("server error", "err", err)
		}
	}()

	<-done
	logger.Info("shutting down server")

	// Tell viewers the server is going away and give them the countdown
	logger.Info("notifying connected sessions", "sessions", hub.Active())
	if !hub.Shutdown(shutdownWait) {
		logger.Warn("sessions still connected after shutdown wait", "sessions", hub.Active())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Shutdown(ctx); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
		logger.Error("shutdown error", "err", err)
	}
	if store != nil {
		if err := store.Close(); err != nil {
			logger.Error("close visit log", "err", err)
		}
	}
}

// pageMiddleware renders the portfolio into each SSH session.
func pageMiddleware(hub *session.Hub, store *visits.Store) wish.Middleware {
	return func(next ssh.Handler) ssh.Handler {
		return func(sess ssh.Session) {
			pty, winCh, ok := sess.Pty()
			if !ok {
				fmt.Fprintln(sess, "Error: PTY required. Please connect with: ssh -t user@host")
				return
			}

			logger := log.With("user", sess.User(), "remote", sess.RemoteAddr().String())
			logger.Info("new session", "term", pty.Term, "size", fmt.Sprintf("%dx%d", pty.Window.Width, pty.Window.Height))

			clientOpts := page.ClientOptions{
				User:      sess.User(),
				Transport: "ssh",
			}
			if store != nil {
				_, err := store.Record(sess.Context(), visits.Visit{
					Transport: "ssh",
					Addr:      sess.RemoteAddr().String(),
					User:      sess.User(),
				})
				if err != nil {
					logger.Warn("record visit", "err", err)
				}
				clientOpts.Visits = store.Total
			}

			sizeTracker := newSizeTracker(pty.Window.Width, pty.Window.Height)
			go func() {
				for win := range winCh {
					sizeTracker.update(win.Width, win.Height)
				}
			}()
			clientOpts.TermSizeFunc = sizeTracker.getSize

			c := page.NewClient(hub, bufio.NewReader(sess), sess, clientOpts)
			if err := c.Run(); err != nil {
				logger.Error("session error", "err", err)
			}

			logger.Info("session ended")
			next(sess)
		}
	}
}

// sizeTracker tracks terminal size from SSH window change events.
type sizeTracker struct {
	mu     sync.RWMutex
	width  int
	height int
}

func newSizeTracker(width, height int) *sizeTracker {
	return &sizeTracker{width: width, height: height}
}

func (s *sizeTracker) update(width, height int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.width = width
	s.height = height
}

func (s *sizeTracker) getSize() (int, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.width, s.height, nil
}

// Ensure sizeTracker.getSize satisfies draw.TermSizeFunc
var _ draw.TermSizeFunc = (*sizeTracker)(nil).getSize
