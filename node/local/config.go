package local

import (
	"log/slog"
)

type Config struct {
	// Name of the node, defaults to the hostname
	Name string
	// Directory in which prerequisite scripts are written and run
	Workspace string
	// Logger to use
	Logger *slog.Logger
}
