// Package server runs the bot: the chat session and the webhook HTTP server.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vmunix/arrbot/internal/chat"
	"github.com/vmunix/arrbot/internal/status"
)

const (
	defaultShutdownTimeout = 10 * time.Second
	startupReportTimeout   = 30 * time.Second
)

// Session is the lifecycle of a chat connection.
type Session interface {
	Login(ctx context.Context) error
	Sync(ctx context.Context) error
	Stop()
	Close(ctx context.Context) error
}

// StatusChecker produces the service status report.
type StatusChecker interface {
	Check(ctx context.Context) []status.Result
}

// Web is the HTTP surface served alongside the chat session.
type Web interface {
	Routes() http.Handler
	MarkReady()
}

// Config for the runner.
type Config struct {
	Addr            string
	TargetRoom      string
	StartupReport   bool
	ShutdownTimeout time.Duration
}

// Runner owns the chat session and the HTTP server.
type Runner struct {
	config  Config
	session Session
	msgr    chat.Messenger
	checker StatusChecker
	web     Web
	logger  *slog.Logger
}

// NewRunner creates a new runner.
func NewRunner(cfg Config, session Session, msgr chat.Messenger, checker StatusChecker, web Web, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}
	return &Runner{
		config:  cfg,
		session: session,
		msgr:    msgr,
		checker: checker,
		web:     web,
		logger:  logger.With("component", "runner"),
	}
}

// Run logs in, serves HTTP and syncs until ctx is canceled or a component
// fails. Shutdown stops the sync loop, ends the chat session and then
// drains the HTTP server.
func (r *Runner) Run(ctx context.Context) error {
	if err := r.session.Login(ctx); err != nil {
		return err
	}

	ln, err := net.Listen("tcp", r.config.Addr)
	if err != nil {
		r.closeSession()
		return fmt.Errorf("listen on %s: %w", r.config.Addr, err)
	}
	srv := &http.Server{
		Handler:           r.web.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	r.logger.Info("webhook server listening", "addr", ln.Addr().String())

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("webhook server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		return r.session.Sync(gctx)
	})

	g.Go(func() error {
		<-gctx.Done()
		r.shutdown(srv)
		return nil
	})

	r.startupReport(gctx)
	r.web.MarkReady()
	r.logger.Info("ready")

	return g.Wait()
}

// startupReport posts the status report to the target room.
func (r *Runner) startupReport(ctx context.Context) {
	switch {
	case !r.config.StartupReport:
		r.logger.Debug("startup report disabled")
		return
	case r.config.TargetRoom == "":
		r.logger.Info("no target room configured, skipping startup report")
		return
	}

	ctx, cancel := context.WithTimeout(ctx, startupReportTimeout)
	defer cancel()

	plain, html := status.Report(r.checker.Check(ctx))
	if err := r.msgr.SendFormatted(ctx, r.config.TargetRoom, plain, html); err != nil {
		r.logger.Error("failed to send startup report", "error", err)
	}
}

// shutdown runs each step regardless of earlier failures.
func (r *Runner) shutdown(srv *http.Server) {
	r.logger.Info("shutting down")
	r.session.Stop()
	r.closeSession()

	ctx, cancel := context.WithTimeout(context.Background(), r.config.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		r.logger.Error("webhook server shutdown failed", "error", err)
	}
	r.logger.Info("shutdown complete")
}

func (r *Runner) closeSession() {
	ctx, cancel := context.WithTimeout(context.Background(), r.config.ShutdownTimeout)
	defer cancel()
	if err := r.session.Close(ctx); err != nil {
		r.logger.Error("failed to close chat session", "error", err)
	}
}
