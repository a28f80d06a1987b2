package logger

import (
	"io"
	"log/slog"
	"os"

	"github.com/jwebster45206/house-engine/internal/config"
)

// serviceName tags every record so the api and worker processes can
// share one log sink.
const serviceName = "house-engine"

// Setup builds the process logger and installs it as the slog default.
func Setup(cfg *config.Config) *slog.Logger {
	logger := New(os.Stdout, cfg)
	slog.SetDefault(logger)
	return logger
}

// New builds a logger writing to w. Production gets JSON for the log
// pipeline, everything else human-readable text; both carry the service
// name and environment on every record.
func New(w io.Writer, cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel}

	var handler slog.Handler
	if cfg.Environment == "production" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler).With(
		"service", serviceName,
		"environment", cfg.Environment,
	)
}
