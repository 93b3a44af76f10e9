// Package logging builds the process logger: JSON records on stdout, mirrored
// to Logstash when an address is configured.
package logging

import (
	"io"
	"log"
	"log/slog"
	"os"
	"strings"
)

// Setup installs a JSON slog logger as the default and routes the standard
// log package through it. The returned closer releases the Logstash link.
func Setup(level, logstashAddr string) (*slog.Logger, io.Closer) {
	var out io.Writer = os.Stdout
	var closer io.Closer = nopCloser{}

	if strings.TrimSpace(logstashAddr) != "" {
		w, err := NewLogstashWriter(logstashAddr)
		if err != nil {
			log.Printf("logstash disabled: %v", err)
		} else {
			out = io.MultiWriter(os.Stdout, w)
			closer = w
		}
	}

	logger := New(out, level)
	slog.SetDefault(logger)
	logger.Info("logger initialized", "level", ParseLevel(level).String(), "logstash", logstashAddr != "")
	return logger, closer
}

// New returns a JSON logger writing to w.
func New(w io.Writer, level string) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: ParseLevel(level)}))
}

func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
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

// Discard is a logger for tests and optional collaborators.
func Discard() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
