package config

import "testing"

func TestValidateRequiresForwardTo(t *testing.T) {
	cfg := Default()
	cfg.Port = 3333
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error when --forward-to is missing")
	}
}

func TestValidateRejectsMalformedForwardTo(t *testing.T) {
	cfg := Default()
	cfg.ForwardTo = "not-a-url"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for a forward-to without scheme/host")
	}
}

func TestValidateAcceptsRecordWithoutDir(t *testing.T) {
	cfg := Default()
	cfg.ForwardTo = "https://example.com"
	cfg.Record = true
	cfg.Dir = ""
	if err := cfg.Validate(); err != nil {
		t.Fatalf("record=true with empty dir should still validate (degrades to passthrough): %v", err)
	}
}

func TestAddr(t *testing.T) {
	cfg := Default()
	cfg.ListenAddr = "0.0.0.0"
	cfg.Port = 8080
	if got := cfg.Addr(); got != "0.0.0.0:8080" {
		t.Fatalf("Addr() = %q", got)
	}
}

func TestRecordDirStripsTrailingSlashes(t *testing.T) {
	cfg := Default()
	cfg.Dir = "./recordings///"
	if got := cfg.RecordDir(); got != "./recordings" {
		t.Fatalf("RecordDir() = %q", got)
	}
}

func TestUpstreamURLRoundTrips(t *testing.T) {
	cfg := Default()
	cfg.ForwardTo = "https://jsonplaceholder.typicode.com/"
	u, err := cfg.UpstreamURL()
	if err != nil {
		t.Fatal(err)
	}
	if u.Scheme != "https" || u.Host != "jsonplaceholder.typicode.com" {
		t.Fatalf("unexpected parsed URL: %+v", u)
	}
}
