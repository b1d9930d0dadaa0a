package compare

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitLines_KeepsTerminators(t *testing.T) {
	assert.Equal(t, []string{"a\n", "b\n", "c"}, SplitLines("a\nb\nc"))
	assert.Equal(t, []string{"a\n", "b\n"}, SplitLines("a\nb\n"))
	assert.Equal(t, []string{"\n"}, SplitLines("\n"))
	assert.Nil(t, SplitLines(""))

	s := "{\n    \"a\": 1\n}"
	assert.Equal(t, s, strings.Join(SplitLines(s), ""))
}

func TestLines(t *testing.T) {
	assert.True(t, Lines([]string{"a\n", "b"}, []string{"a\n", "b"}))
	assert.True(t, Lines(nil, nil))
	assert.False(t, Lines([]string{"a\n", "b"}, []string{"a\n", "c"}))
	assert.False(t, Lines([]string{"a\n", "b"}, []string{"x\n", "b"}))
	// terminators are part of the line
	assert.False(t, Lines([]string{"a\n"}, []string{"a"}))
}

func TestLines_CountMismatchFailsEvenIfPrefixMatches(t *testing.T) {
	assert.False(t, Lines([]string{"a\n", "b\n"}, []string{"a\n", "b\n", "c"}))
	assert.False(t, Lines([]string{"a\n", "b\n", "c"}, []string{"a\n", "b\n"}))
}

func TestLines_NoWildcards(t *testing.T) {
	assert.False(t, Lines([]string{"    \"id\": *\n"}, []string{"    \"id\": 42\n"}))
	assert.False(t, Lines([]string{"[\n"}, []string{"?\n"}))
}

func TestStrings(t *testing.T) {
	assert.True(t, Strings("{\n}", "{\n}"))
	assert.False(t, Strings("{\n}", "{\n}\n"))
}

func TestDiff_OneLineChange(t *testing.T) {
	expected := "{\n    \"data\": {\n        \"ping\": \"pong\"\n    }\n}"
	actual := "{\n    \"data\": {\n        \"ping\": \"pung\"\n    }\n}"

	diff := Diff(expected, actual)

	assert.Contains(t, diff, "-         \"ping\": \"pong\"\n")
	assert.Contains(t, diff, "+         \"ping\": \"pung\"\n")
	assert.Contains(t, diff, "  {\n")
	removed, added := Changed(diff)
	assert.Equal(t, 1, removed)
	assert.Equal(t, 1, added)
}

func TestDiff_Identical(t *testing.T) {
	diff := Diff("a\nb", "a\nb")

	assert.Equal(t, "  a\n  b\n", diff)
	removed, added := Changed(diff)
	assert.Zero(t, removed)
	assert.Zero(t, added)
}
