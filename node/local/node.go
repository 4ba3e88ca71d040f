package local

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"time"

	"github.com/gammadia/prereq/prerequisite"
	"github.com/samber/lo"
)

// waitDelay bounds how long output pipes are drained after the process is gone,
// in case it left children holding them open.
const waitDelay = 2 * time.Second

// Node runs prerequisite checks on the local machine.
type Node struct {
	name string
	fs   *fs

	log *slog.Logger
}

// Node implements prerequisite.Node
var _ prerequisite.Node = (*Node)(nil)

func New(config Config) (*Node, error) {
	workspace, err := filepath.Abs(lo.Must(lo.Coalesce(config.Workspace, os.TempDir())))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve workspace '%s': %w", config.Workspace, err)
	}

	name := config.Name
	if name == "" {
		if name, err = os.Hostname(); err != nil {
			name = "local"
		}
	}

	logger := lo.Ternary(config.Logger != nil, config.Logger, slog.New(slog.NewTextHandler(io.Discard, nil)))

	return &Node{
		name: name,
		fs:   newFs(workspace),
		log:  logger.With("node", name),
	}, nil
}

func (n *Node) Name() string {
	return n.name
}

func (*Node) Platform() prerequisite.Platform {
	return prerequisite.ParsePlatform(runtime.GOOS)
}

// RootPath reports the node offline when its workspace directory is missing.
func (n *Node) RootPath() (string, bool) {
	info, err := os.Stat(n.fs.Root())
	if err != nil || !info.IsDir() {
		n.log.Debug("Workspace is unavailable", "workspace", n.fs.Root(), "error", err)
		return "", false
	}
	return n.fs.Root(), true
}

func (n *Node) CreateTempFile(ctx context.Context, dir, prefix, ext, content string) (string, error) {
	return n.fs.CreateTemp(ctx, dir, prefix, ext, content)
}

func (n *Node) Delete(ctx context.Context, path string) error {
	return n.fs.Delete(ctx, path)
}

func (n *Node) Launch(ctx context.Context, command prerequisite.Command) (int, error) {
	if len(command.Argv) == 0 {
		return -1, fmt.Errorf("empty command")
	}

	cmd := exec.CommandContext(ctx, command.Argv[0], command.Argv[1:]...)
	cmd.Dir = command.Dir
	cmd.Env = append(os.Environ(), lo.MapToSlice(command.Env, func(key, value string) string {
		return key + "=" + value
	})...)
	cmd.Stdout = command.Output
	cmd.Stderr = command.Output
	cmd.WaitDelay = waitDelay
	setProcessGroup(cmd)

	n.log.Debug("Starting process", "cmd", command.Argv, "dir", command.Dir)
	err := cmd.Run()
	if ctx.Err() != nil {
		return -1, fmt.Errorf("process '%s' interrupted: %w", command.Argv[0], ctx.Err())
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	if err != nil {
		return -1, fmt.Errorf("failed to run '%s': %w", command.Argv[0], err)
	}

	return 0, nil
}
