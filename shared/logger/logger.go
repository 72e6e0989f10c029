package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Config controls logger output.
type Config struct {
	Level   string `env:"LOG_LEVEL"  envDefault:"info"`
	Format  string `env:"LOG_FORMAT" envDefault:"json"`
	Service string
}

// New builds a zerolog.Logger. Format "console" writes human-readable output.
func New(cfg Config) *zerolog.Logger {
	return NewWithWriter(cfg, os.Stderr)
}

// NewWithWriter builds a zerolog.Logger writing to w.
func NewWithWriter(cfg Config, w io.Writer) *zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	out := w
	if cfg.Format == "console" {
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}

	ctx := zerolog.New(out).Level(level).With().Timestamp()
	if cfg.Service != "" {
		ctx = ctx.Str("service", cfg.Service)
	}

	l := ctx.Logger()
	return &l
}
