package cli

import (
	"context"
	"io"
	"log/slog"

	"github.com/roach88/suiterun/internal/ctxlog"
)

// withLogger returns ctx carrying a text logger on w. Verbose enables debug
// records.
func withLogger(ctx context.Context, opts *RootOptions, w io.Writer) context.Context {
	level := slog.LevelInfo
	if opts.Verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	return ctxlog.WithLogger(ctx, slog.New(handler))
}
