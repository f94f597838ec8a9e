package cli

import (
	"fmt"
	"io"

	glam "github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/asynkron/splitpatch/pkg/splitpatch"
)

const helpMarkdown = `# splitpatch

Split a patch up into files or hunks.

## SYNOPSIS

    splitpatch [options] FILE.patch

## OPTIONS

    -h, --help              show this help
    -V, --version           print the version
    -H, --hunks             one output per hunk instead of per file
    -f, --fullname          name outputs after the full path (a-foo-bar.c)
    -e, --encode=ENCODING   source encoding of FILE.patch (UTF-8 default)
    -C, --dir=DIR           write outputs to DIR instead of the current directory
    -n, --dry-run           report the outputs without writing them
        --log-level=LEVEL   debug, info, warn or error (warn default)
        --config=FILE       read defaults from FILE instead of ~/.config/splitpatch/config.toml

## DESCRIPTION

Divide a patch or diff file into pieces. The split can be made by file or by
hunk. This makes it possible to separate changes that might not be desirable,
or to assemble the patch into a more coherent set of changes. See e.g.
combinediff(1) from the patchutils package.

Outputs are named after the changed file: *name.patch* when splitting by file
and *name.NNN.patch* when splitting by hunk. An existing file is never
overwritten; a *.NNN* suffix is appended instead.

Only patches in unified format are recognized. Patches with *Index:* lines
(as produced by Subversion) are split on those lines.

## ENVIRONMENT

SPLITPATCH_ENCODING, SPLITPATCH_FULLNAME, SPLITPATCH_HUNKS,
SPLITPATCH_LOG_LEVEL, SPLITPATCH_OUTPUT_DIR and SPLITPATCH_CONFIG override the
config file. A *.env* file in the current directory is loaded first.

## AUTHORS

Peter Hutterer (original author), Benjamin Close (original author),
Jari Aalto (maintainer).

Homepage: ` + homepage + `
`

// renderHelp renders the manual with glamour, plain when w is not a terminal.
func renderHelp(w io.Writer) error {
	style := "dark"
	if termenv.NewOutput(w).Profile == termenv.Ascii {
		style = "notty"
	}
	renderer, err := glam.NewTermRenderer(glam.WithStandardStyle(style), glam.WithWordWrap(80))
	if err != nil {
		return err
	}
	out, err := renderer.Render(helpMarkdown)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, out)
	return err
}

type summary struct {
	source  string
	mode    splitpatch.SplitMode
	results []splitpatch.Result
	dryRun  bool
}

// renderSummary lists the outputs of a run, one per line.
func renderSummary(w io.Writer, s summary) {
	r := lipgloss.NewRenderer(w)
	title := r.NewStyle().Bold(true)
	name := r.NewStyle().Foreground(lipgloss.Color("63"))
	muted := r.NewStyle().Foreground(lipgloss.Color("244"))
	warn := r.NewStyle().Foreground(lipgloss.Color("214"))

	verb := "wrote"
	if s.dryRun {
		verb = "would write"
	}
	noun := "patches"
	if len(s.results) == 1 {
		noun = "patch"
	}
	fmt.Fprintln(w, title.Render(fmt.Sprintf("%s %d %s from %s (split by %s)", verb, len(s.results), noun, s.source, s.mode)))

	width := 0
	for _, res := range s.results {
		if len(res.Name) > width {
			width = len(res.Name)
		}
	}
	for _, res := range s.results {
		line := "  " + name.Render(fmt.Sprintf("%-*s", width, res.Name)) + "  " + muted.Render(fmt.Sprintf("%d lines", res.Lines))
		if res.Renamed {
			line += "  " + warn.Render("renamed, name was taken")
		}
		fmt.Fprintln(w, line)
	}
}
