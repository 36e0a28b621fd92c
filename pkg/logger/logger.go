// Package logger builds the slog loggers used across orgsignal.
//
// NewDefaultLogger returns a text logger that colors records by level when
// writing to a terminal: warnings yellow, errors red, and override
// persistence messages (export, import) green.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/soundprediction/orgsignal/pkg/config"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
)

// persistenceWords marks info messages that touch the override registry on disk.
var persistenceWords = []string{"export", "import", "persist"}

// ColorHandler wraps a slog.Handler and surrounds each line with an ANSI color.
type ColorHandler struct {
	next slog.Handler
	out  io.Writer
	mu   *sync.Mutex
	opts *slog.HandlerOptions
}

// NewColorHandler creates a ColorHandler writing text records to w.
func NewColorHandler(w io.Writer, opts *slog.HandlerOptions) *ColorHandler {
	if opts == nil {
		opts = &slog.HandlerOptions{}
	}
	return &ColorHandler{
		next: slog.NewTextHandler(w, opts),
		out:  w,
		mu:   &sync.Mutex{},
		opts: opts,
	}
}

// Enabled implements slog.Handler
func (h *ColorHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

// Handle implements slog.Handler
func (h *ColorHandler) Handle(ctx context.Context, r slog.Record) error {
	color := colorFor(r)

	h.mu.Lock()
	defer h.mu.Unlock()

	if color != "" {
		if _, err := io.WriteString(h.out, color); err != nil {
			return err
		}
		defer io.WriteString(h.out, colorReset) //nolint:errcheck
	}
	return h.next.Handle(ctx, r)
}

// WithAttrs implements slog.Handler
func (h *ColorHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ColorHandler{next: h.next.WithAttrs(attrs), out: h.out, mu: h.mu, opts: h.opts}
}

// WithGroup implements slog.Handler
func (h *ColorHandler) WithGroup(name string) slog.Handler {
	return &ColorHandler{next: h.next.WithGroup(name), out: h.out, mu: h.mu, opts: h.opts}
}

func colorFor(r slog.Record) string {
	switch {
	case r.Level >= slog.LevelError:
		return colorRed
	case r.Level >= slog.LevelWarn:
		return colorYellow
	}
	msg := strings.ToLower(r.Message)
	for _, w := range persistenceWords {
		if strings.Contains(msg, w) {
			return colorGreen
		}
	}
	return ""
}

// NewDefaultLogger returns a colored text logger on stderr.
func NewDefaultLogger(level slog.Level) *slog.Logger {
	return slog.New(NewColorHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// ParseLevel maps a config level name to a slog.Level, defaulting to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewHandler builds the handler described by cfg writing to w.
func NewHandler(w io.Writer, cfg config.LogConfig) slog.Handler {
	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.Level)}
	if strings.EqualFold(cfg.Format, "json") {
		return slog.NewJSONHandler(w, opts)
	}
	return NewColorHandler(w, opts)
}

// NewWriter returns stderr, or a size-rotated file when cfg.File is set.
// The caller closes the returned writer when it is an io.Closer.
func NewWriter(cfg config.LogConfig) io.Writer {
	if cfg.File == "" {
		return os.Stderr
	}
	return &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   true,
	}
}

// NewLogger builds a logger from cfg writing to NewWriter(cfg). Log files
// are always written as plain JSON.
func NewLogger(cfg config.LogConfig) *slog.Logger {
	if cfg.File != "" {
		cfg.Format = "json"
	}
	return slog.New(NewHandler(NewWriter(cfg), cfg))
}
