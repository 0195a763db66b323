package asserter

import (
	"testing"

	"github.com/esse/relayproxy/internal/snapshot"
)

func rec(status string, headers map[string]string, body any) snapshot.Record {
	return snapshot.Record{Status: status, Headers: headers, Body: body}
}

func TestCompareRecordsIdentical(t *testing.T) {
	a := rec("200 OK", map[string]string{"Content-Type": "application/json"}, map[string]any{"id": float64(1)})
	diffs := CompareRecords(a, a, nil)
	if len(diffs) != 0 {
		t.Fatalf("expected no diffs, got %+v", diffs)
	}
}

func TestCompareRecordsStatusMismatch(t *testing.T) {
	a := rec("200", nil, nil)
	b := rec("404", nil, nil)
	diffs := CompareRecords(a, b, nil)
	if len(diffs) != 1 || diffs[0].Path != "status" {
		t.Fatalf("expected a single status diff, got %+v", diffs)
	}
}

func TestCompareRecordsBodyFieldMismatch(t *testing.T) {
	a := rec("200", nil, map[string]any{"name": "alice"})
	b := rec("200", nil, map[string]any{"name": "bob"})
	diffs := CompareRecords(a, b, nil)
	if len(diffs) != 1 || diffs[0].Path != "body.name" {
		t.Fatalf("expected a body.name diff, got %+v", diffs)
	}
}

func TestCompareRecordsIgnoreFields(t *testing.T) {
	a := rec("200", nil, map[string]any{"id": float64(1), "updated_at": "2020-01-01"})
	b := rec("200", nil, map[string]any{"id": float64(1), "updated_at": "2026-07-29"})
	diffs := CompareRecords(a, b, &Options{IgnoreFields: []string{"*.updated_at"}})
	if len(diffs) != 0 {
		t.Fatalf("expected ignored field to suppress diff, got %+v", diffs)
	}
}

func TestCompareRecordsHeaderMismatch(t *testing.T) {
	a := rec("200", map[string]string{"Content-Type": "application/json"}, nil)
	b := rec("200", map[string]string{"Content-Type": "text/plain"}, nil)
	diffs := CompareRecords(a, b, nil)
	if len(diffs) != 1 || diffs[0].Path != "headers.Content-Type" {
		t.Fatalf("expected a headers.Content-Type diff, got %+v", diffs)
	}
}

func TestFormatDiffsEmpty(t *testing.T) {
	if got := FormatDiffs(nil); got != "No differences found." {
		t.Fatalf("FormatDiffs(nil) = %q", got)
	}
}
