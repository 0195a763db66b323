// Package asserter compares two recorded responses — the snapshot
// Records produced by two different recording runs for the same
// fingerprint — and reports the differences, for the `diff` CLI
// subcommand built on top of the recording proxy.
package asserter

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/esse/relayproxy/internal/snapshot"
)

// Diff describes a single difference between two Records at some path.
type Diff struct {
	Path     string `json:"path"`
	Expected any    `json:"expected,omitempty"`
	Actual   any    `json:"actual,omitempty"`
	Message  string `json:"message"`
}

// Options configures comparison behavior.
type Options struct {
	// IgnoreFields lists dotted paths (and "*.field" wildcards) to
	// exclude from comparison, e.g. "headers.Date" or "*.updated_at" —
	// useful when comparing two recordings of the same endpoint taken
	// at different times, where a timestamp field is expected to move.
	IgnoreFields []string
}

// CompareRecords compares two Records and returns every field-level
// difference found in status, headers, or body. Both sides are Records
// the proxy actually captured, never a hand-authored expectation, so
// there is no sentinel-placeholder matching here — only structural
// comparison of what was recorded.
func CompareRecords(a, b snapshot.Record, opts *Options) []Diff {
	var diffs []Diff

	if a.StatusCode() != b.StatusCode() {
		diffs = append(diffs, Diff{
			Path:     "status",
			Expected: a.Status,
			Actual:   b.Status,
			Message:  "status code mismatch",
		})
	}

	c := &comparer{opts: opts, diffs: &diffs}
	c.compare("headers", headerValue(a.Headers), headerValue(b.Headers))
	c.compare("body", a.Body, b.Body)

	return diffs
}

func headerValue(h map[string]string) any {
	out := make(map[string]any, len(h))
	for k, v := range h {
		out[k] = v
	}
	return out
}

// comparer walks two JSON-shaped values in lockstep, appending one Diff
// per disagreement to a shared slice rather than allocating and merging
// a new slice at every recursion level.
type comparer struct {
	opts  *Options
	diffs *[]Diff
}

func (c *comparer) record(path string, expected, actual any, message string) {
	*c.diffs = append(*c.diffs, Diff{Path: path, Expected: expected, Actual: actual, Message: message})
}

func (c *comparer) compare(path string, expected, actual any) {
	if c.ignored(path) {
		return
	}

	expected = canonicalize(expected)
	actual = canonicalize(actual)

	switch ev := expected.(type) {
	case map[string]any:
		av, ok := actual.(map[string]any)
		if !ok {
			c.record(path, expected, actual, "type mismatch")
			return
		}
		c.compareMap(path, ev, av)

	case []any:
		av, ok := actual.([]any)
		if !ok {
			c.record(path, expected, actual, "type mismatch")
			return
		}
		c.compareSlice(path, ev, av)

	default:
		if fmt.Sprint(expected) != fmt.Sprint(actual) {
			c.record(path, expected, actual, "value mismatch")
		}
	}
}

func (c *comparer) compareMap(base string, expected, actual map[string]any) {
	seen := make(map[string]bool, len(expected)+len(actual))
	for k := range expected {
		seen[k] = true
	}
	for k := range actual {
		seen[k] = true
	}

	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		path := base + "." + key
		if c.ignored(path) {
			continue
		}

		ev, eOk := expected[key]
		av, aOk := actual[key]
		switch {
		case !eOk:
			c.record(path, nil, av, "unexpected field")
		case !aOk:
			c.record(path, ev, nil, "missing field")
		default:
			c.compare(path, ev, av)
		}
	}
}

func (c *comparer) compareSlice(base string, expected, actual []any) {
	if len(expected) != len(actual) {
		c.record(base+".length", len(expected), len(actual), "array length mismatch")
	}

	n := len(expected)
	if len(actual) > n {
		n = len(actual)
	}
	for i := 0; i < n; i++ {
		path := fmt.Sprintf("%s[%d]", base, i)
		switch {
		case i >= len(expected):
			c.record(path, nil, actual[i], "extra element")
		case i >= len(actual):
			c.record(path, expected[i], nil, "missing element")
		default:
			c.compare(path, expected[i], actual[i])
		}
	}
}

func (c *comparer) ignored(path string) bool {
	if c.opts == nil {
		return false
	}
	for _, pattern := range c.opts.IgnoreFields {
		if globMatch(pattern, path) {
			return true
		}
	}
	return false
}

// globMatch supports the one wildcard shape the --ignore flag needs: a
// literal path, a "*.suffix" match against the tail of a dotted path, or
// a single embedded "*" splitting the pattern into a required prefix and
// suffix. Anything fancier isn't needed for ignoring a field name.
func globMatch(pattern, path string) bool {
	if pattern == path {
		return true
	}
	if strings.HasPrefix(pattern, "*.") {
		return strings.HasSuffix(path, pattern[1:])
	}
	if i := strings.IndexByte(pattern, '*'); i >= 0 {
		prefix, suffix := pattern[:i], pattern[i+1:]
		return len(path) >= len(prefix)+len(suffix) &&
			strings.HasPrefix(path, prefix) && strings.HasSuffix(path, suffix)
	}
	return false
}

// canonicalize round-trips a value through JSON so differently-typed but
// equivalent values (int vs float64, for instance) compare equal.
func canonicalize(v any) any {
	if v == nil {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return v
	}
	var out any
	if json.Unmarshal(data, &out) != nil {
		return v
	}
	return out
}

// FormatDiffs renders diffs as a human-readable report.
func FormatDiffs(diffs []Diff) string {
	if len(diffs) == 0 {
		return "No differences found."
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Found %d difference(s):\n\n", len(diffs))
	for i, d := range diffs {
		fmt.Fprintf(&sb, "  %d) %s\n     %s\n", i+1, d.Path, d.Message)
		if d.Expected != nil {
			fmt.Fprintf(&sb, "     expected: %s\n", formatValue(d.Expected))
		}
		if d.Actual != nil {
			fmt.Fprintf(&sb, "     actual:   %s\n", formatValue(d.Actual))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func formatValue(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}
