package tui

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Environment variables tuning the rotating log file
const (
	EnvLogMaxSize    = "VAULTSYNC_LOG_MAX_SIZE"
	EnvLogMaxBackups = "VAULTSYNC_LOG_MAX_BACKUPS"
	EnvLogMaxAge     = "VAULTSYNC_LOG_MAX_AGE"
)

// consoleHandler writes bare messages to the terminal. Warnings and errors
// go to errOut.
type consoleHandler struct {
	out     io.Writer
	errOut  io.Writer
	mu      *sync.Mutex
	verbose *bool
	quiet   *bool
}

func (h *consoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	if level <= slog.LevelDebug {
		return *h.verbose
	}
	return true
}

func (h *consoleHandler) Handle(_ context.Context, record slog.Record) error {
	if *h.quiet {
		return nil
	}
	w := h.out
	if record.Level >= slog.LevelWarn {
		w = h.errOut
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := fmt.Fprintln(w, record.Message)
	return err
}

func (h *consoleHandler) WithAttrs(_ []slog.Attr) slog.Handler {
	return h
}

func (h *consoleHandler) WithGroup(_ string) slog.Handler {
	return h
}

// newRotatingWriter builds a lumberjack writer, letting the environment
// override the size limits
func newRotatingWriter(path string) *lumberjack.Logger {
	w := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    1,
		MaxBackups: 3,
		MaxAge:     30,
		Compress:   false,
	}

	if n, ok := envInt(EnvLogMaxSize); ok && n > 0 {
		w.MaxSize = n
	}
	if n, ok := envInt(EnvLogMaxBackups); ok && n >= 0 {
		w.MaxBackups = n
	}
	if n, ok := envInt(EnvLogMaxAge); ok && n > 0 {
		w.MaxAge = n
	}
	return w
}

func envInt(key string) (int, bool) {
	raw := os.Getenv(key)
	if raw == "" {
		return 0, false
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return n, true
}

// fanoutHandler sends each record to every handler that accepts its level
type fanoutHandler struct {
	handlers []slog.Handler
}

func (h *fanoutHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, handler := range h.handlers {
		if handler.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (h *fanoutHandler) Handle(ctx context.Context, record slog.Record) error {
	var first error
	for _, handler := range h.handlers {
		if !handler.Enabled(ctx, record.Level) {
			continue
		}
		if err := handler.Handle(ctx, record.Clone()); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (h *fanoutHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := make([]slog.Handler, len(h.handlers))
	for i, handler := range h.handlers {
		next[i] = handler.WithAttrs(attrs)
	}
	return &fanoutHandler{handlers: next}
}

func (h *fanoutHandler) WithGroup(name string) slog.Handler {
	next := make([]slog.Handler, len(h.handlers))
	for i, handler := range h.handlers {
		next[i] = handler.WithGroup(name)
	}
	return &fanoutHandler{handlers: next}
}

// Splog is the operator-facing logger. Console output is plain text; when a
// log file is configured every record, debug included, is also written there
// with a timestamp.
type Splog struct {
	logger    *slog.Logger
	out       io.Writer
	logWriter io.WriteCloser
	verbose   bool
	quiet     bool
}

// SplogOptions configures NewSplogWithOptions
type SplogOptions struct {
	// Out receives info and debug lines; nil means stdout
	Out io.Writer
	// ErrOut receives warnings and errors; nil means stderr
	ErrOut io.Writer
	// LogFile enables the rotating file log when non-empty
	LogFile string
	// Verbose shows debug lines on the console
	Verbose bool
}

// NewSplog creates a console-only logger. Debug lines are shown when the
// DEBUG environment variable is set.
func NewSplog() *Splog {
	splog, _ := NewSplogWithOptions(SplogOptions{Verbose: os.Getenv("DEBUG") != ""})
	return splog
}

// NewSplogWithOptions creates a logger, opening the log file if requested
func NewSplogWithOptions(opts SplogOptions) (*Splog, error) {
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	errOut := opts.ErrOut
	if errOut == nil {
		errOut = os.Stderr
	}

	s := &Splog{out: out, verbose: opts.Verbose}
	handlers := []slog.Handler{&consoleHandler{
		out:     out,
		errOut:  errOut,
		mu:      &sync.Mutex{},
		verbose: &s.verbose,
		quiet:   &s.quiet,
	}}

	if opts.LogFile != "" {
		if err := os.MkdirAll(filepath.Dir(opts.LogFile), 0750); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		rotating := newRotatingWriter(opts.LogFile)
		s.logWriter = rotating
		handlers = append(handlers, slog.NewTextHandler(rotating, &slog.HandlerOptions{
			Level: slog.LevelDebug,
			ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
				if a.Key == slog.TimeKey {
					return slog.String(a.Key, a.Value.Time().Format("2006-01-02 15:04:05.000"))
				}
				return a
			},
		}))
	}

	s.logger = slog.New(&fanoutHandler{handlers: handlers})
	return s, nil
}

// SetVerbose toggles debug output on the console
func (s *Splog) SetVerbose(verbose bool) {
	s.verbose = verbose
}

// SetQuiet suppresses console output while a full-screen view owns the terminal.
// The log file still receives every record.
func (s *Splog) SetQuiet(quiet bool) {
	s.quiet = quiet
}

// IsQuiet returns whether console output is suppressed
func (s *Splog) IsQuiet() bool {
	return s.quiet
}

// Logger exposes the underlying slog.Logger for structured records
func (s *Splog) Logger() *slog.Logger {
	return s.logger
}

func format(msg string, args []interface{}) string {
	if len(args) == 0 {
		return msg
	}
	return fmt.Sprintf(msg, args...)
}

// Info writes an info line
// nolint // format string validation is handled internally via fmt.Sprintf
func (s *Splog) Info(msg string, args ...interface{}) {
	s.logger.Log(context.Background(), slog.LevelInfo, format(msg, args))
}

// Success writes an info line prefixed with a check mark
// nolint // format string validation is handled internally via fmt.Sprintf
func (s *Splog) Success(msg string, args ...interface{}) {
	s.logger.Log(context.Background(), slog.LevelInfo, "✅ "+format(msg, args))
}

// Warn writes a warning line
// nolint // format string validation is handled internally via fmt.Sprintf
func (s *Splog) Warn(msg string, args ...interface{}) {
	s.logger.Log(context.Background(), slog.LevelWarn, "⚠️  "+format(msg, args))
}

// Error writes an error line
// nolint // format string validation is handled internally via fmt.Sprintf
func (s *Splog) Error(msg string, args ...interface{}) {
	s.logger.Log(context.Background(), slog.LevelError, "❌ "+format(msg, args))
}

// Debug writes a line shown only in verbose mode, always kept in the log file
// nolint // format string validation is handled internally via fmt.Sprintf
func (s *Splog) Debug(msg string, args ...interface{}) {
	s.logger.Log(context.Background(), slog.LevelDebug, format(msg, args))
}

// Tip writes a hint line
// nolint // format string validation is handled internally via fmt.Sprintf
func (s *Splog) Tip(msg string, args ...interface{}) {
	s.logger.Log(context.Background(), slog.LevelInfo, "💡 "+format(msg, args))
}

// Page writes preformatted output as is
func (s *Splog) Page(content string) {
	if s.quiet {
		return
	}
	_, _ = fmt.Fprint(s.out, content)
}

// Newline writes an empty line
func (s *Splog) Newline() {
	if s.quiet {
		return
	}
	_, _ = fmt.Fprintln(s.out)
}

// Close flushes and closes the log file if one was opened
func (s *Splog) Close() error {
	if s.logWriter != nil {
		return s.logWriter.Close()
	}
	return nil
}
