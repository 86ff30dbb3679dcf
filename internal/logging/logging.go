// Package logging builds the slog loggers used by the allocators and the CLI.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Discard drops every record. Allocators use it unless a logger is configured.
var Discard = slog.New(slog.NewTextHandler(io.Discard, nil))

// Options configures New.
type Options struct {
	Writer io.Writer  // Destination. Default: os.Stderr
	Level  slog.Level // Minimum level. Default: slog.LevelInfo
	JSON   bool       // JSON records instead of key=value text
}

// New returns a logger writing to opts.Writer.
func New(opts Options) *slog.Logger {
	w := opts.Writer
	if w == nil {
		w = os.Stderr
	}
	ho := &slog.HandlerOptions{Level: opts.Level}
	if opts.JSON {
		return slog.New(slog.NewJSONHandler(w, ho))
	}
	return slog.New(slog.NewTextHandler(w, ho))
}

// ParseLevel accepts debug, info, warn or error (case-insensitive).
func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	err := l.UnmarshalText([]byte(strings.TrimSpace(s)))
	return l, err
}
