package prerequisite

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

var ErrTimeout = errors.New("prerequisite check timed out")

// Execute launches argv on the node and waits at most timeout for it to exit.
// The combined output is only logged. An error is returned when the process
// could not be launched or waited for, including when the timeout elapses
// (ErrTimeout) or ctx is cancelled.
func Execute(
	ctx context.Context,
	node Node,
	argv []string,
	env map[string]string,
	dir string,
	timeout time.Duration,
	log *slog.Logger,
) (int, error) {
	execCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	output := &outputBuffer{}
	log.Debug("Launching command", "cmd", argv, "dir", dir, "timeout", timeout)

	exitCode, err := node.Launch(execCtx, Command{
		Argv:   argv,
		Env:    env,
		Dir:    dir,
		Output: output,
	})
	if err == nil && execCtx.Err() != nil {
		// The node returned a result after the deadline, it cannot count as a success
		err = execCtx.Err()
	}
	if err != nil {
		if ctx.Err() == nil && errors.Is(execCtx.Err(), context.DeadlineExceeded) {
			err = fmt.Errorf("%w after %s: %w", ErrTimeout, timeout, err)
		}
		log.Warn("Command execution failed", "error", err, "output", output.String())
		return -1, err
	}

	if exitCode != 0 {
		log.Warn("Command execution exited with non-zero code", "exitcode", exitCode, "output", output.String())
		return exitCode, nil
	}

	log.Info("Command execution succeeded", "output", output.String())
	return 0, nil
}

// outputBuffer may be written to by a node after Launch gave up on the process.
type outputBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *outputBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *outputBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
