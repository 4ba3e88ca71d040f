package internal

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/samber/lo"
)

const cleanupTimeout = 30 * time.Second

// WorkspaceFS manages the files prerequisite checks write on a node.
type WorkspaceFS interface {
	Root() string
	CreateTemp(ctx context.Context, dir, prefix, ext, content string) (string, error)
	Delete(ctx context.Context, p string) error
}

// Runner runs argv on a POSIX node, feeding stdin and copying stdout.
// It returns an error when the process can't be run or exits with a non-zero code.
type Runner func(ctx context.Context, argv []string, stdin io.Reader, stdout io.Writer) error

// ShellFS is a WorkspaceFS for nodes only reachable through process execution.
type ShellFS struct {
	root string
	run  Runner
}

// ShellFS implements WorkspaceFS
var _ WorkspaceFS = (*ShellFS)(nil)

func NewShellFS(root string, run Runner) *ShellFS {
	return &ShellFS{
		root: strings.TrimRight(root, "/"),
		run:  run,
	}
}

func (f *ShellFS) Root() string {
	return lo.Ternary(f.root == "", "/", f.root)
}

func (f *ShellFS) CreateTemp(ctx context.Context, dir, prefix, ext, content string) (string, error) {
	var out bytes.Buffer
	if err := f.run(ctx, TempFileCommand(dir, prefix, ext), strings.NewReader(content), &out); err != nil {
		// The file may exist even though the run failed, the caller can't remove it without its path
		if p := strings.TrimSpace(out.String()); p != "" && strings.HasPrefix(path.Base(p), prefix) && strings.HasSuffix(p, ext) {
			cleanupCtx, cancel := context.WithTimeout(context.Background(), cleanupTimeout)
			defer cancel()
			_ = f.Delete(cleanupCtx, p)
		}
		return "", fmt.Errorf("failed to create temporary file in '%s': %w", dir, err)
	}

	p := strings.TrimSpace(out.String())
	if p == "" {
		return "", fmt.Errorf("failed to create temporary file in '%s': no path reported", dir)
	}
	return p, nil
}

func (f *ShellFS) Delete(ctx context.Context, p string) error {
	if err := f.run(ctx, []string{"rm", "-f", "--", p}, nil, io.Discard); err != nil {
		return fmt.Errorf("failed to remove file '%s': %w", p, err)
	}
	return nil
}

// TempFileCommand returns a POSIX shell invocation that creates a new file with
// a unique name in dir, fills it with its stdin and prints its path.
// The file is removed when the shell is interrupted or can't report the path.
// Arguments are passed positionally so that they never need quoting.
// It relies on GNU mktemp for --suffix.
func TempFileCommand(dir, prefix, ext string) []string {
	const script = `f=; trap '[ -n "$f" ] && rm -f "$f"; exit 1' HUP INT TERM PIPE; ` +
		`f=$(mktemp --suffix="$3" -p "$1" "${2}XXXXXXXXXX") || exit 1; ` +
		`cat > "$f" || { rm -f "$f"; exit 1; }; ` +
		`printf '%s' "$f" || { rm -f "$f"; exit 1; }`

	return []string{"sh", "-c", script, "sh", dir, prefix, ext}
}
