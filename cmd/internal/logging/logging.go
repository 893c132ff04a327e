// Package logging sets up the process-wide slog handler and tracks
// whether anything logged at error level, so commands can exit non-zero
// even when a batch run carries on past failures.
package logging

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"sync/atomic"
)

func Logging() (exit func()) {
	var logLevel slog.LevelVar
	flag.TextVar(&logLevel, "log-level", &logLevel, "Set the logging level")

	h := &errorTrackingHandler{
		Handler: slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: &logLevel}),
	}

	slog.SetDefault(slog.New(h))
	slog.SetLogLoggerLevel(slog.LevelError)

	return func() {
		if h.hadError.Load() {
			os.Exit(1)
		}
		os.Exit(0)
	}
}

type errorTrackingHandler struct {
	slog.Handler
	hadError atomic.Bool
}

func (h *errorTrackingHandler) Handle(ctx context.Context, r slog.Record) error {
	if r.Level >= slog.LevelError {
		h.hadError.Store(true)
	}
	return h.Handler.Handle(ctx, r)
}
