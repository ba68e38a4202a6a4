package config

import (
	"io"
	"log/slog"
)

// NewLogger returns a text logger at the configured level.
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: c.SlogLevel(),
	}))
}
