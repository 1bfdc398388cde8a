// Package logging holds the package-wide structured logger.
package logging

import (
	"io"
	"log/slog"
	"os"
)

// L is the logger used by containers and sorters that were not given one
// explicitly. It discards all output until Init enables it.
var L = slog.New(slog.NewTextHandler(io.Discard, nil))

// Options configures Init.
type Options struct {
	Enabled bool       // If false, all logging is discarded
	Writer  io.Writer  // Destination. Default: os.Stderr
	Level   slog.Level // Minimum level. The zero value is slog.LevelInfo
	JSON    bool       // Emit JSON records instead of key=value text
}

// Init replaces L according to opts. Call it from main before building any
// container or sorter, since those capture the logger at construction.
func Init(opts Options) {
	L = New(opts)
}

// New builds a logger without touching L.
func New(opts Options) *slog.Logger {
	if !opts.Enabled {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	w := opts.Writer
	if w == nil {
		w = os.Stderr
	}

	handlerOpts := &slog.HandlerOptions{Level: opts.Level}
	if opts.JSON {
		return slog.New(slog.NewJSONHandler(w, handlerOpts))
	}

	return slog.New(slog.NewTextHandler(w, handlerOpts))
}
