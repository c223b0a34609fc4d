// Package logger builds slog loggers for relay applications: a JSON
// stdout logger by default, optionally fanned out to Sentry.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/getsentry/sentry-go"
	sentryslog "github.com/getsentry/sentry-go/slog"
)

// Option configures the logger.
type Option func(*config)

type config struct {
	writer    io.Writer
	level     slog.Level
	sentryDSN string
	sentryEnv string
}

// WithLevel sets the minimum log level. Defaults to Info.
func WithLevel(level slog.Level) Option {
	return func(c *config) {
		c.level = level
	}
}

// WithWriter redirects log output. Defaults to stdout.
func WithWriter(w io.Writer) Option {
	return func(c *config) {
		c.writer = w
	}
}

// WithSentry enables the Sentry handler alongside stdout. An empty DSN
// leaves Sentry disabled, which keeps local development config-free.
func WithSentry(dsn, environment string) Option {
	return func(c *config) {
		c.sentryDSN = dsn
		c.sentryEnv = environment
	}
}

// New creates a JSON logger. When a Sentry DSN is configured and the
// SDK initializes, records fan out to both stdout and Sentry; a failed
// Sentry init degrades to stdout only.
func New(opts ...Option) *slog.Logger {
	cfg := &config{
		writer: os.Stdout,
		level:  slog.LevelInfo,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	stdout := slog.NewJSONHandler(cfg.writer, &slog.HandlerOptions{Level: cfg.level})
	if cfg.sentryDSN == "" {
		return slog.New(stdout)
	}

	if err := sentry.Init(sentry.ClientOptions{
		Dsn:         cfg.sentryDSN,
		Environment: cfg.sentryEnv,
		EnableLogs:  true,
	}); err != nil {
		slog.New(stdout).Error("sentry init failed", "error", err)
		return slog.New(stdout)
	}

	sentryHandler := sentryslog.Option{
		EventLevel: []slog.Level{slog.LevelError},
		LogLevel:   []slog.Level{slog.LevelWarn, slog.LevelError},
	}.NewSentryHandler(context.Background())

	return slog.New(newFanoutHandler(stdout, sentryHandler))
}

// NewNope creates a no-op logger that discards all output. Used as the
// default when logging is not configured.
func NewNope() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fanoutHandler forwards records to every handler that accepts the
// record's level.
type fanoutHandler struct {
	handlers []slog.Handler
}

func newFanoutHandler(handlers ...slog.Handler) slog.Handler {
	return &fanoutHandler{handlers: handlers}
}

func (h *fanoutHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, handler := range h.handlers {
		if handler.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (h *fanoutHandler) Handle(ctx context.Context, rec slog.Record) error {
	for _, handler := range h.handlers {
		if handler.Enabled(ctx, rec.Level) {
			if err := handler.Handle(ctx, rec.Clone()); err != nil {
				return err
			}
		}
	}
	return nil
}

func (h *fanoutHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := make([]slog.Handler, len(h.handlers))
	for i, handler := range h.handlers {
		next[i] = handler.WithAttrs(attrs)
	}
	return newFanoutHandler(next...)
}

func (h *fanoutHandler) WithGroup(name string) slog.Handler {
	next := make([]slog.Handler, len(h.handlers))
	for i, handler := range h.handlers {
		next[i] = handler.WithGroup(name)
	}
	return newFanoutHandler(next...)
}
