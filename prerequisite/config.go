package prerequisite

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"
)

const (
	// DefaultTimeout bounds the wall-clock time of a single check
	DefaultTimeout    = 60 * time.Second
	DefaultFilePrefix = "prereq"
)

type Config struct {
	Logger     *slog.Logger  `json:"-"`
	Timeout    time.Duration `json:"timeout"`
	FilePrefix string        `json:"file-prefix"`
}

func Validate(config Config) error {
	if config.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative")
	}
	if strings.ContainsAny(config.FilePrefix, `/\`) {
		return fmt.Errorf("file-prefix must not contain path separators")
	}
	return nil
}

func (c Config) withDefaults() Config {
	if c.Logger == nil {
		c.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
	if c.FilePrefix == "" {
		c.FilePrefix = DefaultFilePrefix
	}
	return c
}
