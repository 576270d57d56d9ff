package logging

import (
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"eisen/internal/config"
)

// New builds the process logger. Unknown levels fall back to info.
func New(cfg config.Log, w io.Writer) zerolog.Logger {
	if strings.EqualFold(cfg.Format, "console") {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	}
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}
