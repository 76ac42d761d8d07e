package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"
)

// Environment variables read by the card tools.
const (
	EnvLogLevel = "HS2CARD_LOG_LEVEL"
	EnvJSONLog  = "HS2CARD_JSON_LOG"
	EnvLogPath  = "HS2CARD_LOG_PATH"
)

// NewLogger creates a new hclog logger with standard settings
func NewLogger(name string, level string, output io.Writer) hclog.Logger {
	if output == nil {
		output = os.Stderr
	}

	// "json" or "json:<level>" selects JSON output as well as the env switch
	jsonFormat := os.Getenv(EnvJSONLog) == "1"
	if strings.HasPrefix(level, "json") {
		jsonFormat = true
		level = strings.TrimPrefix(strings.TrimPrefix(level, "json"), ":")
		if level == "" {
			level = "info"
		}
	}

	if !jsonFormat {
		output = NewPrefixWriter("🃏 ", output)
	}

	opts := &hclog.LoggerOptions{
		Name:       name,
		Level:      hclog.LevelFromString(level),
		JSONFormat: jsonFormat,
		Output:     output,
		TimeFormat: "2006-01-02T15:04:05Z", // UTC ISO format
		TimeFn: func() time.Time {
			return time.Now().UTC()
		},
	}

	return hclog.New(opts)
}

// GetLogLevel returns the level from the CLI flag, then the environment,
// then "warn".
func GetLogLevel(flagLevel string) string {
	if flagLevel != "" {
		return flagLevel
	}
	if level := os.Getenv(EnvLogLevel); level != "" {
		return level
	}
	return "warn"
}

// OpenLogOutput returns the file named by HS2CARD_LOG_PATH, or stderr when it
// is unset or cannot be opened. The returned closer is never nil.
func OpenLogOutput() (io.Writer, func() error) {
	logPath := os.Getenv(EnvLogPath)
	if logPath == "" {
		return os.Stderr, func() error { return nil }
	}
	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return os.Stderr, func() error { return nil }
	}
	return file, file.Close
}
