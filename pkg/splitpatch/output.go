package splitpatch

import (
	"bufio"
	"context"
	"fmt"
	"io"
)

// workspace is the storage the output manager creates files in.
type workspace interface {
	// Exists reports whether name is already taken.
	Exists(name string) (bool, error)
	// Create opens name for writing. The caller guarantees it does not exist.
	Create(name string) (io.WriteCloser, error)
}

// Result describes one output file produced by a split.
type Result struct {
	// Name is the file name actually written, including any ".NNN"
	// disambiguation suffix.
	Name string
	// Stem is the name derived from the section header.
	Stem string
	// Hunk is the 0-based hunk index within its section, or -1 when
	// splitting by file.
	Hunk int
	// Renamed is set when the composed name was taken and a suffix was added.
	Renamed bool
	// Lines counts the lines written, headers included.
	Lines int
}

type output struct {
	name   string
	file   io.WriteCloser
	writer *bufio.Writer
	result int
}

// outputManager owns the single open output of a run.
type outputManager struct {
	ws      workspace
	notices io.Writer
	logger  Logger
	current *output
	results []Result
}

func newOutputManager(ws workspace, notices io.Writer, logger Logger) *outputManager {
	if notices == nil {
		notices = io.Discard
	}
	if logger == nil {
		logger = &NoOpLogger{}
	}
	return &outputManager{ws: ws, notices: notices, logger: logger}
}

// Open closes the current output and creates stem+suffix, or the first free
// name of the form stem+suffix+".NNN" when that is taken.
func (m *outputManager) Open(ctx context.Context, stem, suffix string, hunk int) error {
	if err := m.CloseCurrent(); err != nil {
		return err
	}

	name := stem + suffix
	taken, err := m.ws.Exists(name)
	if err != nil {
		return outputError(name, "stat", err)
	}
	renamed := false
	if taken {
		fmt.Fprintf(m.notices, "File %s already exists. Renaming patch.\n", name)
		base := name
		for n := 0; taken; n++ {
			name = fmt.Sprintf("%s.%03d", base, n)
			if taken, err = m.ws.Exists(name); err != nil {
				return outputError(name, "stat", err)
			}
		}
		renamed = true
		m.logger.Warn(ctx, "output exists, renamed", Field("requested", base), Field("file", name))
	}

	file, err := m.ws.Create(name)
	if err != nil {
		return outputError(name, "create", err)
	}
	m.results = append(m.results, Result{Name: name, Stem: stem, Hunk: hunk, Renamed: renamed})
	m.current = &output{
		name:   name,
		file:   file,
		writer: bufio.NewWriter(file),
		result: len(m.results) - 1,
	}
	m.logger.Debug(ctx, "created output", Field("file", name))
	return nil
}

// Write appends line to the open output. It returns false, and drops the
// line, when no output is open.
func (m *outputManager) Write(line string) (bool, error) {
	if m.current == nil {
		return false, nil
	}
	if _, err := m.current.writer.WriteString(line); err != nil {
		return false, outputError(m.current.name, "write", err)
	}
	m.results[m.current.result].Lines++
	return true, nil
}

// CloseCurrent flushes and closes the open output, if any.
func (m *outputManager) CloseCurrent() error {
	cur := m.current
	if cur == nil {
		return nil
	}
	m.current = nil
	if err := cur.writer.Flush(); err != nil {
		_ = cur.file.Close()
		return outputError(cur.name, "write", err)
	}
	if err := cur.file.Close(); err != nil {
		return outputError(cur.name, "close", err)
	}
	return nil
}

// Results returns a copy of the outputs created so far.
func (m *outputManager) Results() []Result {
	return append([]Result(nil), m.results...)
}
