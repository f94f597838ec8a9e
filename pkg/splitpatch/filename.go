package splitpatch

import "strings"

// NamingPolicy selects how an output stem is derived from a header path.
type NamingPolicy int

const (
	// NamingShort keeps only the last path segment: a/foo/bar.c -> bar.c.
	NamingShort NamingPolicy = iota
	// NamingFull flattens the whole path: a/foo/bar.c -> a-foo-bar.c.
	NamingFull
)

func (p NamingPolicy) String() string {
	if p == NamingFull {
		return "full"
	}
	return "short"
}

// sentinel is the stem produced for /dev/null under the policy.
func (p NamingPolicy) sentinel() string {
	if p == NamingFull {
		return "dev-null"
	}
	return "null"
}

// ExtractFilename derives an output stem from a "---", "+++" or "Index:"
// header line. Anything from the first ':' in the path token is dropped, so
// "file.c:1.4" and "file.c:2024-01-01" both yield "file.c". An empty string is
// returned when the line carries no usable path.
func ExtractFilename(line string, policy NamingPolicy) string {
	tokens := strings.Fields(line)
	if len(tokens) < 2 {
		return ""
	}
	path, _, _ := strings.Cut(tokens[1], ":")

	segments := make([]string, 0, 8)
	for _, seg := range strings.Split(path, "/") {
		if seg != "" {
			segments = append(segments, seg)
		}
	}
	if len(segments) == 0 {
		return ""
	}
	if policy == NamingFull {
		return strings.Join(segments, "-")
	}
	return segments[len(segments)-1]
}

// ExtractFilenameFromHeader names a unified section from its "---"/"+++"
// pair. The old path wins unless it is /dev/null, as for a newly added file,
// in which case the new path is used.
func ExtractFilenameFromHeader(header []string, policy NamingPolicy) string {
	if len(header) == 0 {
		return ""
	}
	name := ExtractFilename(header[0], policy)
	if name == policy.sentinel() && len(header) > 1 {
		name = ExtractFilename(header[1], policy)
	}
	return name
}
