package compileoutput

import (
	"strings"
	"unicode"
)

// Marker delimiters. A marker occupies a whole line.
const (
	MarkerPrefix = "{{#compile_output:"
	MarkerSuffix = "}}"
)

// ExtractStepName returns the step named by a marker line.
// Leading whitespace before the marker is ignored and the name is trimmed.
// A line that opens a marker without closing it is not a marker.
func ExtractStepName(line string) (string, bool) {
	trimmed := strings.TrimLeftFunc(line, unicode.IsSpace)

	rest, ok := strings.CutPrefix(trimmed, MarkerPrefix)
	if !ok {
		return "", false
	}

	name, ok := strings.CutSuffix(rest, MarkerSuffix)
	if !ok {
		return "", false
	}

	return strings.TrimSpace(name), true
}
