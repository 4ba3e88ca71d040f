package docker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/pkg/stdcopy"
	"github.com/gammadia/prereq/node/internal"
	"github.com/gammadia/prereq/prerequisite"
	"github.com/samber/lo"
)

// DockerClient abstracts the Docker SDK methods used by Node,
// enabling mock-based testing without a real Docker daemon.
type DockerClient interface {
	ContainerInspect(ctx context.Context, containerID string) (container.InspectResponse, error)
	ContainerExecCreate(ctx context.Context, containerID string, options container.ExecOptions) (container.ExecCreateResponse, error)
	ContainerExecAttach(ctx context.Context, execID string, config container.ExecStartOptions) (types.HijackedResponse, error)
	ContainerExecInspect(ctx context.Context, execID string) (container.ExecInspect, error)
}

var (
	errUnsupportedPlatform = errors.New("only POSIX containers can host prerequisite scripts")
	errStillRunning        = errors.New("docker exec is still running")
)

const inspectTimeout = 10 * time.Second

// exitBackoff polls for the exit code of an exec whose output stream already ended.
var exitBackoff = internal.Backoff{Attempts: 5, Initial: 20 * time.Millisecond}

// Node runs prerequisite checks inside a running Docker container.
type Node struct {
	name      string
	container string
	platform  prerequisite.Platform
	docker    DockerClient
	fs        *internal.ShellFS

	log *slog.Logger
}

// Node implements prerequisite.Node
var _ prerequisite.Node = (*Node)(nil)

func New(ctx context.Context, docker DockerClient, containerID string, config Config) (*Node, error) {
	if containerID == "" {
		return nil, fmt.Errorf("container is required")
	}

	info, err := internal.RetryResult(ctx, internal.DefaultBackoff, func(int) (container.InspectResponse, error) {
		return docker.ContainerInspect(ctx, containerID)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to inspect container '%s': %w", containerID, err)
	}

	name, platform, workingDir := containerID, "", ""
	if info.ContainerJSONBase != nil {
		name = lo.Must(lo.Coalesce(strings.TrimPrefix(info.Name, "/"), containerID))
		platform = info.Platform
	}
	if info.Config != nil {
		workingDir = info.Config.WorkingDir
	}
	name = lo.Ternary(config.Name != "", config.Name, name)

	logger := lo.Ternary(config.Logger != nil, config.Logger, slog.New(slog.NewTextHandler(io.Discard, nil)))

	n := &Node{
		name:      name,
		container: containerID,
		platform:  prerequisite.ParsePlatform(platform),
		docker:    docker,
		log:       logger.With("node", name, "container", containerID),
	}
	n.fs = internal.NewShellFS(lo.Must(lo.Coalesce(config.Workspace, workingDir, "/tmp")), n.run)
	return n, nil
}

func (n *Node) Name() string {
	return n.name
}

func (n *Node) Platform() prerequisite.Platform {
	return n.platform
}

// RootPath reports the node offline unless the container is running.
func (n *Node) RootPath() (string, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), inspectTimeout)
	defer cancel()

	info, err := n.docker.ContainerInspect(ctx, n.container)
	if err != nil {
		n.log.Debug("Failed to inspect container", "error", err)
		return "", false
	}
	if info.ContainerJSONBase == nil || info.State == nil || !info.State.Running {
		return "", false
	}
	return n.fs.Root(), true
}

func (n *Node) CreateTempFile(ctx context.Context, dir, prefix, ext, content string) (string, error) {
	if n.platform != prerequisite.PlatformPOSIX {
		return "", errUnsupportedPlatform
	}
	return n.fs.CreateTemp(ctx, dir, prefix, ext, content)
}

func (n *Node) Delete(ctx context.Context, path string) error {
	if n.platform != prerequisite.PlatformPOSIX {
		return errUnsupportedPlatform
	}
	return n.fs.Delete(ctx, path)
}

func (n *Node) Launch(ctx context.Context, command prerequisite.Command) (int, error) {
	env := lo.MapToSlice(command.Env, func(key, value string) string {
		return key + "=" + value
	})
	return n.exec(ctx, container.ExecOptions{
		Cmd:          command.Argv,
		Env:          env,
		WorkingDir:   command.Dir,
		AttachStdout: true,
		AttachStderr: true,
	}, nil, command.Output, command.Output)
}

// run implements internal.Runner
func (n *Node) run(ctx context.Context, argv []string, stdin io.Reader, stdout io.Writer) error {
	var stderr strings.Builder
	exitCode, err := n.exec(ctx, container.ExecOptions{
		Cmd:          argv,
		AttachStdin:  stdin != nil,
		AttachStdout: true,
		AttachStderr: true,
	}, stdin, stdout, &stderr)
	if err != nil {
		return err
	}
	if exitCode != 0 {
		return fmt.Errorf("exit code %d: %s", exitCode, strings.TrimSpace(stderr.String()))
	}
	return nil
}

func (n *Node) exec(ctx context.Context, options container.ExecOptions, stdin io.Reader, stdout, stderr io.Writer) (int, error) {
	exec, err := n.docker.ContainerExecCreate(ctx, n.container, options)
	if err != nil {
		return -1, fmt.Errorf("failed to create docker exec: %w", err)
	}

	n.log.Debug("Running docker exec", "exec", exec.ID, "cmd", options.Cmd)
	attach, err := n.docker.ContainerExecAttach(ctx, exec.ID, container.ExecStartOptions{})
	if err != nil {
		return -1, fmt.Errorf("failed to attach docker exec: %w", err)
	}
	defer attach.Close()

	// Closing the stream is the only way to stop waiting on a hanging exec
	var interrupted atomic.Bool
	stop := context.AfterFunc(ctx, func() {
		interrupted.Store(true)
		attach.Close()
	})
	defer stop()

	if stdin != nil {
		go func() {
			_, _ = io.Copy(attach.Conn, stdin)
			_ = attach.CloseWrite()
		}()
	}

	if _, err := stdcopy.StdCopy(stdout, stderr, attach.Reader); err != nil && !interrupted.Load() {
		return -1, fmt.Errorf("failed during docker exec: %w", err)
	}
	if interrupted.Load() {
		return -1, fmt.Errorf("docker exec interrupted: %w", ctx.Err())
	}

	inspect, err := internal.RetryResult(ctx, exitBackoff, func(int) (container.ExecInspect, error) {
		inspect, err := n.docker.ContainerExecInspect(ctx, exec.ID)
		if err == nil && inspect.Running {
			err = errStillRunning
		}
		return inspect, err
	})
	if err != nil {
		return -1, fmt.Errorf("failed to inspect docker exec: %w", err)
	}

	return inspect.ExitCode, nil
}
