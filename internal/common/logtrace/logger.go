// Package logtrace provides logging and tracing utilities built on zerolog.
package logtrace

import (
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// InitLogger initializes the global logger with Unix timestamp format, writing to stderr
// at the named level. Unknown or empty levels fall back to info.
func InitLogger(level string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	log.Logger = zerolog.New(os.Stderr).Level(lvl).With().Timestamp().Logger()
}
