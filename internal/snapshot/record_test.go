package snapshot

import "testing"

func TestRecordStatusCode(t *testing.T) {
	tests := []struct {
		status string
		want   int
	}{
		{"200 OK", 200},
		{"200", 200},
		{"404 Not Found", 404},
		{"", 200},
		{"not-a-status", 200},
	}
	for _, tt := range tests {
		r := Record{Status: tt.status}
		if got := r.StatusCode(); got != tt.want {
			t.Errorf("Record{Status:%q}.StatusCode() = %d, want %d", tt.status, got, tt.want)
		}
	}
}

func TestNewRecordRoundTrip(t *testing.T) {
	r := NewRecord(201, map[string]string{"Content-Type": "application/json"}, []byte(`{"ok":true}`), "application/json")
	if r.StatusCode() != 201 {
		t.Fatalf("expected 201, got %d", r.StatusCode())
	}
	raw, err := r.RawBody()
	if err != nil {
		t.Fatal(err)
	}
	if string(raw) != `{"ok":true}` {
		t.Fatalf("unexpected raw body: %s", raw)
	}
}
