package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

var (
	log     = zerolog.Nop()
	logFile *os.File
)

// levelFromEnv reads SSV_LOG_LEVEL (any zerolog level name). DEBUG being set
// wins over it.
func levelFromEnv() zerolog.Level {
	if _, debug := os.LookupEnv("DEBUG"); debug {
		return zerolog.DebugLevel
	}
	if raw := os.Getenv("SSV_LOG_LEVEL"); raw != "" {
		if level, err := zerolog.ParseLevel(raw); err == nil && level != zerolog.NoLevel {
			return level
		}
	}
	return zerolog.InfoLevel
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
}

func console(w io.Writer) io.Writer {
	return zerolog.ConsoleWriter{
		Out:        w,
		NoColor:    !isTerminal(w),
		TimeFormat: time.RFC3339,
		FormatLevel: func(i interface{}) string {
			return fmt.Sprintf("[%s]", i)
		},
		FormatMessage: func(i interface{}) string {
			return fmt.Sprint(i)
		},
	}
}

func install(w io.Writer) {
	log = zerolog.New(w).Level(levelFromEnv()).With().Timestamp().Logger()
}

// Init logs to stderr so inspect/simulate output on stdout stays pipeable
func Init() {
	install(console(os.Stderr))
}

// SetOutput sends human-readable log lines to w
func SetOutput(w io.Writer) {
	install(console(w))
}

// InitFileOnly writes JSON lines to a timestamped file in logDir while the TUI
// owns the terminal. It returns the file path.
func InitFileOnly(logDir string) (string, error) {
	if logDir == "" {
		logDir = "logs"
	}
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create logs directory: %w", err)
	}

	name := fmt.Sprintf("ssv-cluster-debugger_%s.log", time.Now().Format("2006-01-02_15-04-05"))
	logPath := filepath.Join(logDir, name)

	f, err := os.Create(logPath)
	if err != nil {
		return "", fmt.Errorf("failed to create log file: %w", err)
	}

	Close()
	logFile = f
	install(f)
	return logPath, nil
}

// Close releases the log file, if any, and silences logging until the next Init
func Close() {
	if logFile == nil {
		return
	}
	_ = logFile.Close()
	logFile = nil
	log = zerolog.Nop()
}

// Component tags every line with the subsystem that wrote it
type Component struct {
	name string
}

// For returns the logger of one subsystem, e.g. "contract" or "subgraph".
// It follows later Init/InitFileOnly calls.
func For(name string) Component {
	return Component{name: name}
}

func (c Component) event(e *zerolog.Event) *zerolog.Event {
	return e.Str("component", c.name)
}

func (c Component) Debug(msg string, args ...interface{}) { c.event(log.Debug()).Msgf(msg, args...) }
func (c Component) Info(msg string, args ...interface{})  { c.event(log.Info()).Msgf(msg, args...) }
func (c Component) Warn(msg string, args ...interface{})  { c.event(log.Warn()).Msgf(msg, args...) }
func (c Component) Error(msg string, args ...interface{}) { c.event(log.Error()).Msgf(msg, args...) }

// Debug logs a debug message
func Debug(msg string, args ...interface{}) {
	log.Debug().Msgf(msg, args...)
}

// Info logs an info message
func Info(msg string, args ...interface{}) {
	log.Info().Msgf(msg, args...)
}

// Warn logs a warning message
func Warn(msg string, args ...interface{}) {
	log.Warn().Msgf(msg, args...)
}

// Error logs an error message
func Error(msg string, args ...interface{}) {
	log.Error().Msgf(msg, args...)
}

// Fatal logs a fatal message and exits the program
func Fatal(msg string, args ...interface{}) {
	log.Fatal().Msgf(msg, args...)
}
