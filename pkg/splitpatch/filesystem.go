package splitpatch

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

type filesystemWorkspace struct {
	dir string
}

func newFilesystemWorkspace(dir string) (*filesystemWorkspace, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to determine working directory: %w", err)
		}
		dir = wd
	}
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, outputError(dir, "open output directory", err)
	}
	if !info.IsDir() {
		return nil, &Error{Kind: KindOutputIO, Message: "output path is not a directory", Path: dir}
	}
	return &filesystemWorkspace{dir: dir}, nil
}

func (ws *filesystemWorkspace) Exists(name string) (bool, error) {
	_, err := os.Lstat(filepath.Join(ws.dir, name))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, err
	}
}

// Create refuses to truncate an existing file.
func (ws *filesystemWorkspace) Create(name string) (io.WriteCloser, error) {
	return os.OpenFile(filepath.Join(ws.dir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
}
