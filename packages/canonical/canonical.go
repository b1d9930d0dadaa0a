package canonical

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
)

// Indent is the indentation used for every nesting level.
const Indent = "    "

var options = &pretty.Options{
	// Width 0 keeps every array element on its own line.
	Width:    0,
	Prefix:   "",
	Indent:   Indent,
	SortKeys: true,
}

var commentLine = regexp.MustCompile(`(?m)^[ \t]*#.*$`)

// JSON returns the canonical form of text and whether text was valid JSON.
// Invalid input is returned as-is.
func JSON(text string) (string, bool) {
	if !Valid(text) {
		return text, false
	}
	var sb strings.Builder
	normalize(&sb, gjson.Parse(text))
	out := pretty.PrettyOptions([]byte(sb.String()), options)
	return strings.TrimSuffix(string(out), "\n"), true
}

// Bytes is JSON for raw response bodies.
func Bytes(body []byte) (string, bool) {
	return JSON(string(body))
}

// Valid reports whether text holds exactly one JSON value.
func Valid(text string) bool {
	if strings.TrimSpace(text) == "" {
		return false
	}
	return gjson.Valid(text)
}

// StripComments blanks every line whose first non-whitespace character is
// '#'. Line count is preserved so parse errors still point at the right line.
func StripComments(text string) string {
	return commentLine.ReplaceAllString(text, "")
}

// normalize writes v as compact JSON with every string decoded and
// re-escaped the same way. Repeated object keys keep the last value.
// Number literals are copied verbatim.
func normalize(sb *strings.Builder, v gjson.Result) {
	switch {
	case v.IsObject():
		var keys []string
		values := make(map[string]gjson.Result)
		v.ForEach(func(k, val gjson.Result) bool {
			key := k.String()
			if _, seen := values[key]; !seen {
				keys = append(keys, key)
			}
			values[key] = val
			return true
		})
		sb.WriteByte('{')
		for i, key := range keys {
			if i > 0 {
				sb.WriteByte(',')
			}
			writeString(sb, key)
			sb.WriteByte(':')
			normalize(sb, values[key])
		}
		sb.WriteByte('}')
	case v.IsArray():
		sb.WriteByte('[')
		first := true
		v.ForEach(func(_, val gjson.Result) bool {
			if !first {
				sb.WriteByte(',')
			}
			first = false
			normalize(sb, val)
			return true
		})
		sb.WriteByte(']')
	case v.Type == gjson.String:
		writeString(sb, v.String())
	default:
		sb.WriteString(strings.TrimSpace(v.Raw))
	}
}

// writeString quotes s without escaping '/' or HTML characters, so decoded
// text round-trips to its shortest readable form.
func writeString(sb *strings.Builder, s string) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(s)
	sb.Write(bytes.TrimSuffix(buf.Bytes(), []byte("\n")))
}
