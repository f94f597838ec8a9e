package splitpatch

import "strings"

// Mode records which header style the patch uses.
type Mode int

const (
	ModeUndetermined Mode = iota
	// ModeLegacy is entered on the first "Index: " line and never left.
	ModeLegacy
	// ModeUnified is entered on the first "--- " header seen outside legacy mode.
	ModeUnified
)

func (m Mode) String() string {
	switch m {
	case ModeLegacy:
		return "legacy"
	case ModeUnified:
		return "unified"
	}
	return "undetermined"
}

// Event is the classification of a single input line.
type Event int

const (
	EventBody Event = iota
	// EventLegacySection marks an "Index: " line.
	EventLegacySection
	// EventUnifiedSection marks a "--- " line; the "+++ " line that follows
	// belongs to the same header and is not classified on its own.
	EventUnifiedSection
	// EventHunk marks an "@@ ... @@" line.
	EventHunk
)

func (e Event) String() string {
	switch e {
	case EventLegacySection:
		return "legacy-section"
	case EventUnifiedSection:
		return "unified-section"
	case EventHunk:
		return "hunk"
	}
	return "body"
}

const (
	legacyPrefix     = "Index: "
	unifiedOldPrefix = "--- "
	hunkPrefix       = "@@ "
	hunkCloser       = " @@"
)

type rule struct {
	event Event
	match func(mode Mode, line string) bool
}

// rules are evaluated in order; the first match wins. Legacy headers are
// checked first so an "Index: " line always opens a section, and "--- " lines
// are only headers while the patch has not been seen to be legacy.
var rules = []rule{
	{event: EventLegacySection, match: isLegacyIndex},
	{event: EventUnifiedSection, match: isUnifiedHeader},
	{event: EventHunk, match: isHunkMarker},
}

func isLegacyIndex(_ Mode, line string) bool {
	return strings.HasPrefix(line, legacyPrefix)
}

func isUnifiedHeader(mode Mode, line string) bool {
	return mode != ModeLegacy && strings.HasPrefix(line, unifiedOldPrefix)
}

func isHunkMarker(_ Mode, line string) bool {
	rest, ok := strings.CutPrefix(line, hunkPrefix)
	return ok && strings.Contains(rest, hunkCloser)
}

// Classifier tracks the patch mode across a run.
type Classifier struct {
	mode Mode
}

// NewClassifier returns a classifier in ModeUndetermined.
func NewClassifier() *Classifier {
	return &Classifier{}
}

// Mode returns the mode established so far.
func (c *Classifier) Mode() Mode {
	return c.mode
}

// Classify returns the event for line and updates the mode.
func (c *Classifier) Classify(line string) Event {
	for _, r := range rules {
		if !r.match(c.mode, line) {
			continue
		}
		switch r.event {
		case EventLegacySection:
			c.mode = ModeLegacy
		case EventUnifiedSection:
			if c.mode == ModeUndetermined {
				c.mode = ModeUnified
			}
		}
		return r.event
	}
	return EventBody
}
