package prerequisite

import (
	"context"
	"io"
)

// Command describes a process to launch on a node.
type Command struct {
	Argv []string
	// Env is merged over the node's own environment
	Env map[string]string
	// Dir is the working directory on the node
	Dir string
	// Output receives both stdout and stderr
	Output io.Writer
}

// Node is an execution target able to host prerequisite checks.
type Node interface {
	Name() string
	// Platform is the platform of the node itself, which may differ from the one of the caller.
	Platform() Platform
	// RootPath returns the working root of the node, or false when the node is offline.
	RootPath() (string, bool)
	// CreateTempFile creates a new file with a unique name in dir and returns its path.
	CreateTempFile(ctx context.Context, dir, prefix, ext, content string) (string, error)
	Delete(ctx context.Context, path string) error
	// Launch runs the command and blocks until it exits, returning its exit code.
	// When ctx ends first, Launch must stop waiting and return an error wrapping ctx.Err().
	Launch(ctx context.Context, cmd Command) (int, error)
}
