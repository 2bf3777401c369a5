package observability

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/danmuck/charmctl/internal/logging"
)

// InitLogger applies the runtime logging profile (level, timestamp and
// color come from the profile plus CHARMCTL_LOG_* overrides) and tags
// the global logger with the application name.
func InitLogger(app string) zerolog.Logger {
	logging.ConfigureRuntime()
	logger := log.With().Str("app", app).Logger()
	log.Logger = logger
	return logger
}
