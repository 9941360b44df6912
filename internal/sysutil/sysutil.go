// Package sysutil holds small process-level helpers shared by the server
// entrypoint: logger bootstrap and build-version resolution.
package sysutil

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// SetupLogger configures the global zerolog logger. Level is matched
// case-insensitively (debug, info, warn, error, fatal, panic; anything else
// falls back to info). With pretty set, output goes through a human-readable
// console writer instead of raw JSON.
func SetupLogger(level string, pretty bool) {
	zerolog.SetGlobalLevel(ParseLevel(level))
	if pretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
}

// ParseLevel maps a level string onto a zerolog level, defaulting to info.
func ParseLevel(lvl string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(lvl)) {
	case "debug":
		return zerolog.DebugLevel
	case "info", "":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	case "panic":
		return zerolog.PanicLevel
	default:
		return zerolog.InfoLevel
	}
}

// AppVersion resolves the version string reported in traces and logs: the
// APP_VERSION environment variable wins over the build-time value, and an
// unset build falls back to "dev".
func AppVersion(buildVersion string) string {
	return FirstNonEmpty(os.Getenv("APP_VERSION"), buildVersion, "dev")
}

// FirstNonEmpty returns the first value that is not blank after trimming.
// If all values are blank, it returns "".
func FirstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
