package logger

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Log is the process-wide logger. It is usable before Init for early
// startup paths and tests; Init reconfigures level and output format.
var Log = zerolog.New(os.Stdout).With().Timestamp().Logger()

func Init(level string) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	Log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.StampMilli}).
		Level(lvl).
		With().Timestamp().Logger()
}
