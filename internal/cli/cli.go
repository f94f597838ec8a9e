package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/asynkron/splitpatch/internal/config"
	"github.com/asynkron/splitpatch/pkg/splitpatch"
)

const (
	program  = "splitpatch"
	version  = "1.1"
	license  = "GPL-2+"
	homepage = "https://github.com/jaalto/splitpatch"
)

type options struct {
	help       bool
	version    bool
	hunks      bool
	fullName   bool
	dryRun     bool
	encoding   string
	outputDir  string
	logLevel   string
	configPath string
	file       string
}

// environment is the process state a run reads besides its arguments.
type environment struct {
	loadDotenv func() error
	getenv     func(string) string
}

// Run executes splitpatch with the provided CLI arguments and returns a
// POSIX-style exit code.
func Run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	return run(ctx, args, stdout, stderr, environment{loadDotenv: loadDotenv, getenv: os.Getenv})
}

// loadDotenv reads .env from the working directory into the process
// environment. A missing file is not an error.
func loadDotenv() error {
	if err := godotenv.Load(); err != nil {
		var pathErr *os.PathError
		if !errors.As(err, &pathErr) {
			return err
		}
	}
	return nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer, env environment) int {
	if stdout == nil {
		stdout = io.Discard
	}
	if stderr == nil {
		stderr = io.Discard
	}

	if err := env.loadDotenv(); err != nil {
		fmt.Fprintf(stderr, "failed to load .env: %v\n", err)
		return 1
	}

	opts, set, err := parseArgs(args, stderr)
	if err != nil {
		return 2
	}
	if opts.help {
		if err := renderHelp(stdout); err != nil {
			fmt.Fprintf(stderr, "failed to render help: %v\n", err)
			return 1
		}
		return 0
	}
	if opts.version {
		fmt.Fprintf(stdout, "%s %s %s\n", version, license, homepage)
		return 0
	}
	if opts.file == "" {
		fmt.Fprintln(stderr, "ERROR: missing patch argument. See --help.")
		return 1
	}

	cfg, err := config.Load(opts.configPath, env.getenv)
	if err != nil {
		fmt.Fprintf(stderr, "ERROR: %v\n", err)
		return 1
	}
	if err := cfg.ApplyEnv(env.getenv); err != nil {
		fmt.Fprintf(stderr, "ERROR: %v\n", err)
		return 1
	}
	applyFlags(cfg, opts, set)

	level, err := splitpatch.ParseLogLevel(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(stderr, "ERROR: %v\n", err)
		return 1
	}
	logger := splitpatch.NewStdLogger(level, stderr).WithFields(splitpatch.Field("input", opts.file))
	ctx = splitpatch.WithTraceID(ctx, uuid.NewString())

	if err := checkReadable(opts.file); err != nil {
		fmt.Fprintf(stderr, "File does not exist or is not readable: %s\n", opts.file)
		logger.Debug(ctx, "input check failed", splitpatch.Field("reason", err))
		return 1
	}

	splitOpts := splitpatch.Options{
		Mode:     splitpatch.SplitByFile,
		Naming:   splitpatch.NamingShort,
		Encoding: cfg.Encoding,
		Notices:  stdout,
		Logger:   logger,
	}
	if cfg.Hunks {
		splitOpts.Mode = splitpatch.SplitByHunk
	}
	if cfg.FullName {
		splitOpts.Naming = splitpatch.NamingFull
	}

	var results []splitpatch.Result
	if opts.dryRun {
		results, err = dryRun(ctx, opts.file, cfg.OutputDir, splitOpts)
	} else {
		results, err = splitpatch.SplitFile(ctx, opts.file, splitpatch.FilesystemOptions{
			Options:   splitOpts,
			OutputDir: cfg.OutputDir,
		})
	}
	if err != nil {
		fmt.Fprintf(stderr, "ERROR: %v\n", err)
		return 1
	}

	renderSummary(stdout, summary{
		source:  opts.file,
		mode:    splitOpts.Mode,
		results: results,
		dryRun:  opts.dryRun,
	})
	return 0
}

// parseArgs accepts flags before and after the patch path, as in
// "splitpatch big.patch --hunks". It returns the names of flags that were
// given explicitly so they can override config values.
func parseArgs(args []string, stderr io.Writer) (options, map[string]bool, error) {
	var opts options
	fs := flag.NewFlagSet(program, flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: %s [options] FILE.patch\nSee --help.\n", program)
	}

	fs.BoolVar(&opts.help, "h", false, "show help")
	fs.BoolVar(&opts.help, "help", false, "show help")
	fs.BoolVar(&opts.version, "V", false, "show version")
	fs.BoolVar(&opts.version, "version", false, "show version")
	fs.BoolVar(&opts.hunks, "H", false, "split by hunk instead of by file")
	fs.BoolVar(&opts.hunks, "hunks", false, "split by hunk instead of by file")
	fs.BoolVar(&opts.hunks, "hunk", false, "split by hunk instead of by file")
	fs.BoolVar(&opts.fullName, "f", false, "name outputs after the full path")
	fs.BoolVar(&opts.fullName, "fullname", false, "name outputs after the full path")
	fs.BoolVar(&opts.dryRun, "n", false, "report what would be written without writing")
	fs.BoolVar(&opts.dryRun, "dry-run", false, "report what would be written without writing")
	fs.StringVar(&opts.encoding, "e", "", "source encoding of the patch (default UTF-8)")
	fs.StringVar(&opts.encoding, "encode", "", "source encoding of the patch (default UTF-8)")
	fs.StringVar(&opts.outputDir, "C", "", "directory to write outputs to (default .)")
	fs.StringVar(&opts.outputDir, "dir", "", "directory to write outputs to (default .)")
	fs.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error")
	fs.StringVar(&opts.configPath, "config", "", "path to config.toml")

	var positional []string
	rest := args
	for {
		if err := fs.Parse(rest); err != nil {
			return opts, nil, err
		}
		rest = fs.Args()
		if len(rest) == 0 {
			break
		}
		positional = append(positional, rest[0])
		rest = rest[1:]
	}
	if len(positional) > 1 {
		fmt.Fprintf(stderr, "ERROR: expected one patch file, got %d: %s\n", len(positional), strings.Join(positional, " "))
		return opts, nil, errors.New("too many arguments")
	}
	if len(positional) == 1 {
		opts.file = positional[0]
	}

	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) {
		set[canonicalFlag(f.Name)] = true
	})
	return opts, set, nil
}

func canonicalFlag(name string) string {
	switch name {
	case "H", "hunk":
		return "hunks"
	case "f":
		return "fullname"
	case "e":
		return "encode"
	case "C":
		return "dir"
	}
	return name
}

func applyFlags(cfg *config.Config, opts options, set map[string]bool) {
	if set["hunks"] {
		cfg.Hunks = opts.hunks
	}
	if set["fullname"] {
		cfg.FullName = opts.fullName
	}
	if set["encode"] {
		cfg.Encoding = opts.encoding
	}
	if set["dir"] {
		cfg.OutputDir = opts.outputDir
	}
	if set["log-level"] {
		cfg.LogLevel = opts.logLevel
	}
}

// checkReadable reports why path cannot be split: missing, a directory, or
// not openable for reading.
func checkReadable(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", path)
	}
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	return f.Close()
}

// dryRun splits into memory, seeding the names already present in outputDir
// so renames are reported the way a real run would produce them.
func dryRun(ctx context.Context, path, outputDir string, opts splitpatch.Options) ([]splitpatch.Result, error) {
	existing := make(map[string]string)
	if entries, err := os.ReadDir(outputDir); err == nil {
		for _, e := range entries {
			existing[e.Name()] = ""
		}
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, &splitpatch.Error{Kind: splitpatch.KindUnreadableInput, Message: "failed to open patch", Path: path, Err: err}
	}
	defer f.Close()

	opts.Notices = io.Discard
	_, results, err := splitpatch.SplitToMemory(ctx, f, existing, opts)
	return results, err
}
