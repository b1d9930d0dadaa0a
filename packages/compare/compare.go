// Package compare checks canonical responses against expectations line by
// line and renders a readable diff when they differ.
package compare

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// SplitLines splits s into lines, each keeping its trailing "\n" so the
// original text can be rebuilt by concatenation.
func SplitLines(s string) []string {
	if s == "" {
		return nil
	}
	lines := strings.SplitAfter(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// Lines reports whether expected and actual are identical. Differing line
// counts fail immediately; otherwise every line is visited, with no
// wildcard or fuzzy matching.
func Lines(expected, actual []string) bool {
	if len(expected) != len(actual) {
		return false
	}

	match := true
	for i, line := range actual {
		if line != expected[i] {
			match = false
		}
	}
	return match
}

// Strings is Lines applied to two canonical documents.
func Strings(expected, actual string) bool {
	return Lines(SplitLines(expected), SplitLines(actual))
}

// Diff renders a line diff of expected and actual. Unchanged lines are
// prefixed with "  ", removed lines with "- " and added lines with "+ ".
func Diff(expected, actual string) string {
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(expected, actual)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	var sb strings.Builder
	for _, d := range diffs {
		prefix := "  "
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			prefix = "- "
		case diffmatchpatch.DiffInsert:
			prefix = "+ "
		}
		for _, line := range SplitLines(d.Text) {
			sb.WriteString(prefix)
			sb.WriteString(line)
			if !strings.HasSuffix(line, "\n") {
				sb.WriteString("\n")
			}
		}
	}
	return sb.String()
}

// Changed counts the removed and added lines of a diff produced by Diff.
func Changed(diff string) (removed, added int) {
	for _, line := range SplitLines(diff) {
		switch {
		case strings.HasPrefix(line, "- "):
			removed++
		case strings.HasPrefix(line, "+ "):
			added++
		}
	}
	return removed, added
}
