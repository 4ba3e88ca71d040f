package docker

import "log/slog"

type Config struct {
	// Name of the node, defaults to the container name
	Name string
	// Directory in which prerequisite scripts are written and run,
	// defaults to the working directory of the container
	Workspace string
	Logger    *slog.Logger
}
