// CLAUDE:SUMMARY DSL parser for [key:value] commands embedded in input paths, plus the alias tables.
package attach

import (
	"regexp"
	"sort"
	"strings"

	"github.com/spf13/cast"
)

// Commands maps command names to raw string values.
type Commands map[string]string

// commandRe matches one [key:value] command. Keys are identifiers; values run
// to the closing bracket.
var commandRe = regexp.MustCompile(`\[([A-Za-z_][A-Za-z0-9_]*):([^\]]*)\]`)

// ParseInput extracts every non-overlapping [key:value] command from the
// input, in any position, and returns the trimmed remainder as the path.
// Parsing is total: anything that is not a well-formed command stays in the
// path verbatim. When a key repeats, the last occurrence wins.
func ParseInput(input string) (string, Commands) {
	cmds := make(Commands)
	path := commandRe.ReplaceAllStringFunc(input, func(m string) string {
		sub := commandRe.FindStringSubmatch(m)
		cmds[sub[1]] = sub[2]
		return ""
	})
	return strings.TrimSpace(path), cmds
}

// String renders the commands back into DSL form in sorted key order.
// ParseInput(path + cmds.String()) reproduces (path, cmds).
func (c Commands) String() string {
	if len(c) == 0 {
		return ""
	}
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var sb strings.Builder
	for _, k := range keys {
		sb.WriteString("[")
		sb.WriteString(k)
		sb.WriteString(":")
		sb.WriteString(c[k])
		sb.WriteString("]")
	}
	return sb.String()
}

// Get returns the raw value for key, or "" when absent.
func (c Commands) Get(key string) string { return c[key] }

// GetOr returns the value for key, or def when absent.
func (c Commands) GetOr(key, def string) string {
	if v, ok := c[key]; ok {
		return v
	}
	return def
}

// Bool interprets the value for key as a boolean, defaulting when absent or
// unparseable.
func (c Commands) Bool(key string, def bool) bool {
	v, ok := c[key]
	if !ok {
		return def
	}
	b, err := cast.ToBoolE(v)
	if err != nil {
		return def
	}
	return b
}

// Int interprets the value for key as an integer, defaulting when absent or
// unparseable.
func (c Commands) Int(key string, def int) int {
	v, ok := c[key]
	if !ok {
		return def
	}
	n, err := cast.ToIntE(v)
	if err != nil {
		return def
	}
	return n
}

// Clone returns an independent copy, used when one attachment spawns others
// (archive members, directory expansion, splits).
func (c Commands) Clone() Commands {
	out := make(Commands, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

// Format aliases. The parser stores values raw; verbs normalize on read.
const (
	FormatPlain      = "plain"
	FormatMarkdown   = "markdown"
	FormatStructured = "structured"
)

// CanonicalFormat normalizes a format command value. Structured variants keep
// their concrete name (html, xml, json) so presenters can pick the right one;
// "code" and "structured" collapse to the generic structured token.
func CanonicalFormat(v string) string {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "markdown", "md":
		return FormatMarkdown
	case "plain", "text", "txt":
		return FormatPlain
	case "code", "structured":
		return FormatStructured
	case "html":
		return "html"
	case "xml":
		return "xml"
	case "json":
		return "json"
	default:
		return FormatMarkdown
	}
}

// Format returns the canonical format for this command set.
func (c Commands) Format() string {
	return CanonicalFormat(c.Get("format"))
}

// ResizeSpec returns the image-resize specification, honoring both the
// resize_images and resize spellings (the former wins).
func (c Commands) ResizeSpec() string {
	if v, ok := c["resize_images"]; ok {
		return v
	}
	return c["resize"]
}
