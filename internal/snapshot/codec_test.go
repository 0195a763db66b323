package snapshot

import (
	"path/filepath"
	"testing"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sub", "session.snap")

	records := Records{
		"GET:/todos/1": []Record{
			{Status: "200", Headers: map[string]string{"Content-Type": "application/json"}, Body: map[string]any{"id": float64(1)}},
			{Status: "200", Headers: map[string]string{"Content-Type": "application/json"}, Body: map[string]any{"id": float64(1), "again": true}},
		},
		"GET:/todos/2": []Record{
			{Status: "404", Headers: map[string]string{}, Body: nil},
		},
	}

	if err := Encode(path, records); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	got, err := Decode(path)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	if len(got) != len(records) {
		t.Fatalf("expected %d fingerprints, got %d", len(records), len(got))
	}
	if len(got["GET:/todos/1"]) != 2 {
		t.Fatalf("expected 2 records for GET:/todos/1, got %d", len(got["GET:/todos/1"]))
	}
	if got["GET:/todos/2"][0].Status != "404" {
		t.Fatalf("expected status 404, got %s", got["GET:/todos/2"][0].Status)
	}
}

func TestDecodeMissingFile(t *testing.T) {
	dir := t.TempDir()
	_, err := Decode(filepath.Join(dir, "missing.snap"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestEncodeEmptyRecords(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.snap")

	if err := Encode(path, nil); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	got, err := Decode(path)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty map, got %v", got)
	}
}
