// Package reporter renders the outcome of diffing two recorded
// snapshots against each other, in the output formats the inspect/diff
// CLI tooling supports.
package reporter

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/esse/relayproxy/internal/asserter"
)

// Format is an output format name.
type Format string

const (
	FormatText  Format = "text"
	FormatJUnit Format = "junit"
	FormatTAP   Format = "tap"
	FormatJSON  Format = "json"
)

// Result is the outcome of comparing one recorded Record against its
// counterpart in another snapshot, identified by fingerprint and
// sequence index.
type Result struct {
	Fingerprint string          `json:"fingerprint"`
	Index       int             `json:"index"`
	Passed      bool            `json:"passed"`
	Diffs       []asserter.Diff `json:"diffs,omitempty"`
	Error       string          `json:"error,omitempty"`
}

// verdict is the three-way outcome every format below renders; deriving
// it once here means none of the four renderers has to re-decide what
// Passed/Error combination means "pass" vs "fail" vs "error".
type verdict int

const (
	verdictPass verdict = iota
	verdictFail
	verdictError
)

func (r Result) verdict() verdict {
	switch {
	case r.Error != "":
		return verdictError
	case r.Passed:
		return verdictPass
	default:
		return verdictFail
	}
}

func (r Result) label() string {
	return fmt.Sprintf("%s[%d]", r.Fingerprint, r.Index)
}

// counts tallies each verdict across a result set; every renderer that
// needs a summary line or suite total builds it the same way.
type counts struct {
	passed, failed, errored int
}

func tally(results []Result) counts {
	var c counts
	for _, r := range results {
		switch r.verdict() {
		case verdictPass:
			c.passed++
		case verdictFail:
			c.failed++
		case verdictError:
			c.errored++
		}
	}
	return c
}

// Report renders results in the requested format.
func Report(results []Result, format Format) (string, error) {
	switch format {
	case FormatJUnit:
		return reportJUnit(results)
	case FormatTAP:
		return reportTAP(results), nil
	case FormatJSON:
		return reportJSON(results)
	default:
		return reportText(results), nil
	}
}

func reportText(results []Result) string {
	var sb strings.Builder

	for _, r := range results {
		switch r.verdict() {
		case verdictError:
			fmt.Fprintf(&sb, "ERROR %s\n  %s\n\n", r.label(), r.Error)
		case verdictPass:
			fmt.Fprintf(&sb, "PASS  %s\n", r.label())
		case verdictFail:
			fmt.Fprintf(&sb, "FAIL  %s\n%s\n", r.label(), asserter.FormatDiffs(r.Diffs))
		}
	}

	c := tally(results)
	fmt.Fprintf(&sb, "\nResults: %d passed, %d failed, %d errors, %d total\n",
		c.passed, c.failed, c.errored, len(results))
	return sb.String()
}

type junitTestSuites struct {
	XMLName xml.Name         `xml:"testsuites"`
	Suites  []junitTestSuite `xml:"testsuite"`
}

type junitTestSuite struct {
	XMLName  xml.Name        `xml:"testsuite"`
	Name     string          `xml:"name,attr"`
	Tests    int             `xml:"tests,attr"`
	Failures int             `xml:"failures,attr"`
	Errors   int             `xml:"errors,attr"`
	Cases    []junitTestCase `xml:"testcase"`
}

type junitTestCase struct {
	XMLName xml.Name      `xml:"testcase"`
	Name    string        `xml:"name,attr"`
	Failure *junitFailure `xml:"failure,omitempty"`
	Error   *junitError   `xml:"error,omitempty"`
}

type junitFailure struct {
	Message string `xml:"message,attr"`
	Body    string `xml:",chardata"`
}

type junitError struct {
	Message string `xml:"message,attr"`
	Body    string `xml:",chardata"`
}

func reportJUnit(results []Result) (string, error) {
	c := tally(results)
	cases := make([]junitTestCase, 0, len(results))

	for _, r := range results {
		tc := junitTestCase{Name: r.label()}
		switch r.verdict() {
		case verdictError:
			tc.Error = &junitError{Message: r.Error, Body: r.Error}
		case verdictFail:
			tc.Failure = &junitFailure{
				Message: fmt.Sprintf("%d differences found", len(r.Diffs)),
				Body:    asserter.FormatDiffs(r.Diffs),
			}
		}
		cases = append(cases, tc)
	}

	suites := junitTestSuites{
		Suites: []junitTestSuite{{
			Name:     "relayproxy-diff",
			Tests:    len(results),
			Failures: c.failed,
			Errors:   c.errored,
			Cases:    cases,
		}},
	}

	data, err := xml.MarshalIndent(suites, "", "  ")
	if err != nil {
		return "", err
	}
	return xml.Header + string(data), nil
}

func reportTAP(results []Result) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "TAP version 13\n1..%d\n", len(results))

	for i, r := range results {
		num := i + 1
		switch r.verdict() {
		case verdictPass:
			fmt.Fprintf(&sb, "ok %d - %s\n", num, r.label())
		case verdictError:
			fmt.Fprintf(&sb, "not ok %d - %s\n  ---\n  error: %s\n  ...\n", num, r.label(), r.Error)
		case verdictFail:
			fmt.Fprintf(&sb, "not ok %d - %s\n  ---\n", num, r.label())
			for _, d := range r.Diffs {
				fmt.Fprintf(&sb, "  - path: %s\n    message: %s\n", d.Path, d.Message)
			}
			sb.WriteString("  ...\n")
		}
	}
	return sb.String()
}

func reportJSON(results []Result) (string, error) {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}
