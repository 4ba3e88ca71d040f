package remote

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/alessio/shellescape"
	"github.com/gammadia/prereq/node/internal"
	"github.com/gammadia/prereq/prerequisite"
	"github.com/samber/lo"
	"golang.org/x/crypto/ssh"
)

var connectBackoff = internal.Backoff{Attempts: 5, Initial: 500 * time.Millisecond}

const dialTimeout = 10 * time.Second

var errClosed = errors.New("node is closed")

// Node runs prerequisite checks on a POSIX host reached over SSH.
// It is offline until Connect succeeds, and again once the connection drops.
type Node struct {
	name   string
	config Config
	fs     *internal.ShellFS

	client *ssh.Client
	closed atomic.Bool
	mutex  sync.Mutex

	log *slog.Logger
}

// Node implements prerequisite.Node
var _ prerequisite.Node = (*Node)(nil)

func New(config Config) *Node {
	if _, _, err := net.SplitHostPort(config.Address); err != nil {
		config.Address = net.JoinHostPort(config.Address, "22")
	}

	name := lo.Ternary(config.Name != "", config.Name, config.Address)
	logger := lo.Ternary(config.Logger != nil, config.Logger, slog.New(slog.NewTextHandler(io.Discard, nil)))

	n := &Node{
		name:   name,
		config: config,
		log:    logger.With("node", name),
	}
	n.fs = internal.NewShellFS(lo.Must(lo.Coalesce(config.Workspace, "/tmp")), n.run)
	return n
}

func (n *Node) Name() string {
	return n.name
}

func (n *Node) Connect(ctx context.Context) error {
	if n.closed.Load() {
		return fmt.Errorf("failed to connect to '%s': %w", n.config.Address, errClosed)
	}
	if n.config.Signer == nil {
		return fmt.Errorf("failed to connect to '%s': no SSH key configured", n.config.Address)
	}

	hostKeyCallback := n.config.HostKeyCallback
	if hostKeyCallback == nil {
		n.log.Warn("Host key verification is disabled")
		hostKeyCallback = ssh.InsecureIgnoreHostKey()
	}

	clientConfig := &ssh.ClientConfig{
		User:            n.config.Username,
		Timeout:         dialTimeout,
		HostKeyCallback: hostKeyCallback,
		Auth:            []ssh.AuthMethod{ssh.PublicKeys(n.config.Signer)},
	}

	client, err := internal.RetryResult(ctx, connectBackoff, func(attempt int) (*ssh.Client, error) {
		if attempt > 1 {
			n.log.Debug("Retrying connection", "attempt", attempt)
		}
		return dial(ctx, n.config.Address, clientConfig)
	})
	if err != nil {
		return fmt.Errorf("failed to connect to '%s': %w", n.config.Address, err)
	}

	n.mutex.Lock()
	if n.closed.Load() {
		n.mutex.Unlock()
		_ = client.Close()
		return fmt.Errorf("failed to connect to '%s': %w", n.config.Address, errClosed)
	}
	n.client = client
	n.mutex.Unlock()
	n.log.Debug("Connected", "address", n.config.Address)

	go func() {
		err := client.Wait()
		n.log.Debug("Connection closed", "error", err)

		n.mutex.Lock()
		if n.client == client {
			n.client = nil
		}
		n.mutex.Unlock()
	}()

	return nil
}

func dial(ctx context.Context, address string, config *ssh.ClientConfig) (*ssh.Client, error) {
	dialer := net.Dialer{Timeout: config.Timeout}
	conn, err := dialer.DialContext(ctx, "tcp", address)
	if err != nil {
		return nil, err
	}

	c, chans, reqs, err := ssh.NewClientConn(conn, address, config)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	return ssh.NewClient(c, chans, reqs), nil
}

func (n *Node) Close() error {
	if !n.closed.CompareAndSwap(false, true) {
		return nil
	}

	n.mutex.Lock()
	defer n.mutex.Unlock()
	if n.client == nil {
		return nil
	}
	err := n.client.Close()
	n.client = nil
	return err
}

func (n *Node) connection() (*ssh.Client, error) {
	n.mutex.Lock()
	defer n.mutex.Unlock()
	if n.closed.Load() || n.client == nil {
		return nil, fmt.Errorf("node '%s' is not connected", n.name)
	}
	return n.client, nil
}

func (*Node) Platform() prerequisite.Platform {
	return prerequisite.PlatformPOSIX
}

func (n *Node) RootPath() (string, bool) {
	if _, err := n.connection(); err != nil {
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

func (n *Node) through(thunk func(*ssh.Session) error) error {
	client, err := n.connection()
	if err != nil {
		return err
	}

	session, err := client.NewSession()
	if err != nil {
		return fmt.Errorf("failed to create SSH session: %w", err)
	}
	defer session.Close()

	return thunk(session)
}

// run implements internal.Runner
func (n *Node) run(ctx context.Context, argv []string, stdin io.Reader, stdout io.Writer) error {
	return n.through(func(session *ssh.Session) error {
		var stderr bytes.Buffer
		session.Stdin = stdin
		session.Stdout = stdout
		session.Stderr = &stderr

		stop := context.AfterFunc(ctx, func() { _ = session.Close() })
		defer stop()

		if err := session.Run(shellescape.QuoteCommand(argv)); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("%w: %s", err, strings.TrimSpace(stderr.String()))
		}
		return nil
	})
}

func (n *Node) Launch(ctx context.Context, command prerequisite.Command) (exitCode int, err error) {
	err = n.through(func(session *ssh.Session) error {
		session.Stdout = command.Output
		session.Stderr = command.Output

		line := remoteCommand(command)
		n.log.Debug("Starting remote process", "cmd", line)
		if err := session.Start(line); err != nil {
			return fmt.Errorf("failed to start remote process: %w", err)
		}

		done := make(chan error, 1)
		go func() { done <- session.Wait() }()

		select {
		case err := <-done:
			var exitErr *ssh.ExitError
			if errors.As(err, &exitErr) {
				exitCode = exitErr.ExitStatus()
				return nil
			}
			if err != nil {
				return fmt.Errorf("failed while waiting for remote process: %w", err)
			}
			exitCode = 0
			return nil

		case <-ctx.Done():
			_ = session.Signal(ssh.SIGKILL)
			_ = session.Close()
			return fmt.Errorf("remote process interrupted: %w", ctx.Err())
		}
	})
	if err != nil {
		return -1, err
	}
	return exitCode, nil
}
