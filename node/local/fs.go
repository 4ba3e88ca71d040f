package local

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/gammadia/prereq/node/internal"
)

type fs struct {
	root string
}

// fs implements internal.WorkspaceFS
var _ internal.WorkspaceFS = (*fs)(nil)

func newFs(root string) *fs {
	return &fs{root}
}

func (f *fs) Root() string {
	return f.root
}

func (f *fs) CreateTemp(_ context.Context, dir, prefix, ext, content string) (p string, err error) {
	file, err := os.CreateTemp(dir, prefix+"*"+ext)
	if err != nil {
		return "", err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close '%s': %w", file.Name(), closeErr)
		}
		if err != nil {
			_ = os.Remove(file.Name())
		}
	}()

	if _, err = file.WriteString(content); err != nil {
		return "", fmt.Errorf("failed to write '%s': %w", file.Name(), err)
	}

	return file.Name(), nil
}

func (f *fs) Delete(_ context.Context, p string) error {
	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
