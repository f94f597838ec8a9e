package splitpatch

import (
	"errors"
	"io"
	"strings"
)

type memoryWorkspace struct {
	files map[string]string
}

func newMemoryWorkspace(files map[string]string) *memoryWorkspace {
	return &memoryWorkspace{files: files}
}

func (ws *memoryWorkspace) Exists(name string) (bool, error) {
	_, ok := ws.files[name]
	return ok, nil
}

func (ws *memoryWorkspace) Create(name string) (io.WriteCloser, error) {
	if _, ok := ws.files[name]; ok {
		return nil, errors.New("file exists")
	}
	// Reserve the name so a later Exists sees it even before Close.
	ws.files[name] = ""
	return &memoryFile{ws: ws, name: name}, nil
}

type memoryFile struct {
	ws     *memoryWorkspace
	name   string
	buf    strings.Builder
	closed bool
}

func (f *memoryFile) Write(p []byte) (int, error) {
	if f.closed {
		return 0, errors.New("write to closed file")
	}
	return f.buf.Write(p)
}

func (f *memoryFile) Close() error {
	if f.closed {
		return nil
	}
	f.closed = true
	f.ws.files[f.name] = f.buf.String()
	return nil
}
