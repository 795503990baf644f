// Package bootstrap is the composition root.
// Keep construction/wiring here so module code stays framework-agnostic.
package bootstrap

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"cardsync/internal/platform/config"
	"cardsync/internal/platform/httpserver"

	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

// NewLogger builds the process logger from LOG_LEVEL and LOG_FORMAT.
func NewLogger(cfg config.Config, out io.Writer) *slog.Logger {
	if out == nil {
		out = os.Stdout
	}
	level, err := cfg.SlogLevel()
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.LogFormat == "text" {
		handler = slog.NewTextHandler(out, opts)
	} else {
		handler = slog.NewJSONHandler(out, opts)
	}
	return slog.New(handler)
}

type closer struct {
	name  string
	close func() error
}

type closers []closer

func (c *closers) add(name string, fn func() error) {
	*c = append(*c, closer{name: name, close: fn})
}

// closeAll releases resources in reverse order of acquisition.
func (c closers) closeAll(logger *slog.Logger) error {
	var errs []error
	for i := len(c) - 1; i >= 0; i-- {
		if err := c[i].close(); err != nil {
			logger.Warn("resource close failed",
				"event", "bootstrap_close_failed",
				"module", "internal/app/bootstrap",
				"layer", "platform",
				"resource", c[i].name,
				"error", err.Error(),
			)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// serve runs the server and stops it when ctx is done.
func serve(ctx context.Context, group *errgroup.Group, server *httpserver.Server) {
	group.Go(server.Start)
	group.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
}

func normalizeAddr(port string) string {
	value := strings.TrimSpace(port)
	if value == "" {
		return ":8080"
	}
	if strings.Contains(value, ":") {
		return value
	}
	return ":" + value
}
