package app

import (
	"io"
	"os"

	"github.com/rs/zerolog"

	"github.com/artpricematcher/price-matcher/config"
)

// NewLogger builds the process logger from cfg
func NewLogger(cfg config.LoggingConfig, service string) *zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}

	var output io.Writer
	if cfg.Format == "json" {
		output = os.Stdout
	} else {
		output = zerolog.ConsoleWriter{Out: os.Stderr, NoColor: cfg.NoColor}
	}

	logger := zerolog.New(output).Level(level).With().Timestamp().Str("service", service).Logger()
	return &logger
}
