package reporter

import (
	"strings"
	"testing"

	"github.com/esse/relayproxy/internal/asserter"
)

func sampleResults() []Result {
	return []Result{
		{Fingerprint: "GET:/users", Index: 0, Passed: true},
		{
			Fingerprint: "POST:/users", Index: 0, Passed: false,
			Diffs: []asserter.Diff{
				{Path: "status", Expected: "201", Actual: "500", Message: "status code mismatch"},
			},
		},
		{Fingerprint: "DELETE:/users", Index: 0, Error: "snapshot file missing"},
	}
}

func TestReportText(t *testing.T) {
	output, err := Report(sampleResults(), FormatText)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"PASS", "FAIL", "ERROR", "1 passed"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in text output, got:\n%s", want, output)
		}
	}
}

func TestReportJUnit(t *testing.T) {
	output, err := Report(sampleResults(), FormatJUnit)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(output, "<?xml") || !strings.Contains(output, "testsuites") || !strings.Contains(output, "failure") {
		t.Errorf("unexpected JUnit output:\n%s", output)
	}
}

func TestReportTAP(t *testing.T) {
	output, err := Report(sampleResults(), FormatTAP)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(output, "TAP version 13") || !strings.Contains(output, "1..3") {
		t.Errorf("unexpected TAP output:\n%s", output)
	}
	if !strings.Contains(output, "ok 1") || !strings.Contains(output, "not ok 2") {
		t.Errorf("unexpected TAP output:\n%s", output)
	}
}

func TestReportJSON(t *testing.T) {
	output, err := Report(sampleResults(), FormatJSON)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(strings.TrimSpace(output), "[") {
		t.Errorf("expected JSON array output, got:\n%s", output)
	}
}
