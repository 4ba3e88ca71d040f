package log

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/gammadia/prereq/cli/flags"
	"github.com/spf13/viper"
)

// New builds the CLI logger from the bound flags. Verbose output lowers the
// level to DEBUG.
func New(w io.Writer) (*slog.Logger, error) {
	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(viper.GetString(flags.LogLevel))); err != nil {
		return nil, fmt.Errorf("failed to parse log level: %w", err)
	}
	if viper.GetBool(flags.Verbose) {
		logLevel = min(logLevel, slog.LevelDebug)
	}

	options := slog.HandlerOptions{
		AddSource: viper.GetBool(flags.LogSource),
		Level:     logLevel,
	}

	switch format := viper.GetString(flags.LogFormat); format {
	case "json":
		return slog.New(slog.NewJSONHandler(w, &options)).With("component", "cli"), nil
	case "text":
		return slog.New(slog.NewTextHandler(w, &options)).With("component", "cli"), nil
	default:
		return nil, fmt.Errorf("unknown log format '%s'", format)
	}
}
