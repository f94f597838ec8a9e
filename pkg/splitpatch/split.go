package splitpatch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
)

// SplitMode selects the unit each output file holds.
type SplitMode int

const (
	// SplitByFile writes one output per file section: <stem>.patch.
	SplitByFile SplitMode = iota
	// SplitByHunk writes one output per hunk: <stem>.<NNN>.patch, each
	// starting with a copy of its section header.
	SplitByHunk
)

func (m SplitMode) String() string {
	if m == SplitByHunk {
		return "hunk"
	}
	return "file"
}

// legacyHeaderLines is the size of an "Index:" header block in hunk mode.
const legacyHeaderLines = 4

// fallbackStem names outputs whose header carries no usable path.
const fallbackStem = "unnamed"

// Options configure a split run for both filesystem and in-memory targets.
type Options struct {
	Mode     SplitMode
	Naming   NamingPolicy
	Encoding string
	// Notices receives the "already exists" message printed when an output
	// has to be renamed. Nil discards it.
	Notices io.Writer
	// Logger defaults to a NoOpLogger.
	Logger Logger
}

// FilesystemOptions augments Options with the directory outputs are written
// to. An empty OutputDir means the current working directory.
type FilesystemOptions struct {
	Options
	OutputDir string
}

// SplitFile opens the patch at path and splits it into opts.OutputDir.
func SplitFile(ctx context.Context, path string, opts FilesystemOptions) ([]Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &Error{Kind: KindUnreadableInput, Message: "failed to open patch", Path: path, Err: err}
	}
	defer f.Close()
	return Split(ctx, f, opts)
}

// Split reads a patch from r and writes the pieces into opts.OutputDir. On
// failure the outputs completed so far are returned alongside the error and
// are left on disk.
func Split(ctx context.Context, r io.Reader, opts FilesystemOptions) ([]Result, error) {
	ws, err := newFilesystemWorkspace(opts.OutputDir)
	if err != nil {
		return nil, err
	}
	return split(ctx, r, ws, opts.Options)
}

// SplitToMemory splits a patch into an in-memory map of file name to content.
// existing lists names that are already taken; it is copied, never mutated.
func SplitToMemory(ctx context.Context, r io.Reader, existing map[string]string, opts Options) (map[string]string, []Result, error) {
	snapshot := make(map[string]string, len(existing))
	for k, v := range existing {
		snapshot[k] = v
	}
	ws := newMemoryWorkspace(snapshot)
	results, err := split(ctx, r, ws, opts)
	if err != nil {
		return nil, results, err
	}
	return ws.files, results, nil
}

func split(ctx context.Context, r io.Reader, ws workspace, opts Options) ([]Result, error) {
	lines, err := NewLineDecoder(r, opts.Encoding)
	if err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = &NoOpLogger{}
	}
	s := &splitter{
		mode:       opts.Mode,
		naming:     opts.Naming,
		lines:      lines,
		classifier: NewClassifier(),
		out:        newOutputManager(ws, opts.Notices, logger),
		logger:     logger,
	}
	err = s.run(ctx)
	results := s.out.Results()
	if err != nil {
		logger.Error(ctx, "split aborted", err, Field("line", lines.Line()), Field("files", len(results)))
		return results, err
	}
	logger.Info(ctx, "split complete",
		Field("mode", s.mode),
		Field("patch_format", s.classifier.Mode()),
		Field("lines", lines.Line()),
		Field("files", len(results)),
		Field("dropped", s.dropped),
	)
	return results, nil
}

type splitter struct {
	mode       SplitMode
	naming     NamingPolicy
	lines      *LineDecoder
	classifier *Classifier
	out        *outputManager
	logger     Logger

	// Hunk mode keeps the current section header and names each hunk after it.
	header  []string
	stem    string
	counter int

	dropped int
}

func (s *splitter) run(ctx context.Context) (err error) {
	defer func() {
		if cerr := s.out.CloseCurrent(); err == nil {
			err = cerr
		}
	}()

	for {
		line, ok, err := s.pull()
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		event := s.classifier.Classify(line)
		if s.mode == SplitByHunk {
			err = s.byHunk(ctx, event, line)
		} else {
			err = s.byFile(ctx, event, line)
		}
		if err != nil {
			return err
		}
	}
}

// pull returns the next line; ok is false at end of input.
func (s *splitter) pull() (string, bool, error) {
	line, err := s.lines.Next()
	if errors.Is(err, io.EOF) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return line, true, nil
}

// unifiedHeader completes a "---" line with the "+++" line that follows it.
func (s *splitter) unifiedHeader(first string) ([]string, error) {
	header := []string{first}
	next, ok, err := s.pull()
	if err != nil {
		return nil, err
	}
	if ok {
		header = append(header, next)
	}
	return header, nil
}

func (s *splitter) byFile(ctx context.Context, event Event, line string) error {
	var header []string
	var stem string
	switch event {
	case EventLegacySection:
		header = []string{line}
		stem = ExtractFilename(line, s.naming)
	case EventUnifiedSection:
		var err error
		if header, err = s.unifiedHeader(line); err != nil {
			return err
		}
		stem = ExtractFilenameFromHeader(header, s.naming)
	default:
		return s.write(line)
	}

	stem = stemOrFallback(stem)
	s.logger.Debug(ctx, "section", Field("event", event), Field("stem", stem), Field("line", s.lines.Line()))
	if err := s.out.Open(ctx, stem, ".patch", -1); err != nil {
		return err
	}
	return s.writeAll(header)
}

func (s *splitter) byHunk(ctx context.Context, event Event, line string) error {
	switch event {
	case EventLegacySection:
		header := []string{line}
		for len(header) < legacyHeaderLines {
			next, ok, err := s.pull()
			if err != nil {
				return err
			}
			if !ok {
				break
			}
			header = append(header, next)
		}
		s.startSection(ctx, event, header, ExtractFilename(line, s.naming))
		return nil
	case EventUnifiedSection:
		header, err := s.unifiedHeader(line)
		if err != nil {
			return err
		}
		s.startSection(ctx, event, header, ExtractFilenameFromHeader(header, s.naming))
		return nil
	case EventHunk:
		suffix := fmt.Sprintf(".%03d.patch", s.counter)
		if err := s.out.Open(ctx, stemOrFallback(s.stem), suffix, s.counter); err != nil {
			return err
		}
		s.counter++
		if err := s.writeAll(s.header); err != nil {
			return err
		}
		return s.write(line)
	}
	return s.write(line)
}

func (s *splitter) startSection(ctx context.Context, event Event, header []string, stem string) {
	s.header = header
	s.stem = stem
	s.counter = 0
	s.logger.Debug(ctx, "section", Field("event", event), Field("stem", stemOrFallback(stem)), Field("line", s.lines.Line()))
}

func (s *splitter) write(line string) error {
	written, err := s.out.Write(line)
	if err != nil {
		return err
	}
	if !written {
		s.dropped++
	}
	return nil
}

func (s *splitter) writeAll(lines []string) error {
	for _, line := range lines {
		if err := s.write(line); err != nil {
			return err
		}
	}
	return nil
}

func stemOrFallback(stem string) string {
	if stem == "" {
		return fallbackStem
	}
	return stem
}
