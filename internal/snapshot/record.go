// Package snapshot implements the on-disk snapshot file format: the
// serialized form of a recording session's per-fingerprint record
// sequences, and the request/response body encoding used within it.
package snapshot

import (
	"strconv"
	"strings"
)

// Record is one persisted HTTP response, as described by the snapshot
// file format. Headers are stored verbatim; Body may be a parsed JSON
// value, a plain string, or an EncodedBody wrapper for non-UTF-8 payloads.
type Record struct {
	Status  string            `json:"status" yaml:"status"`
	Headers map[string]string `json:"headers" yaml:"headers"`
	Body    any               `json:"body" yaml:"body"`
}

// NewRecord builds a Record from a response status code, header map, and
// raw body bytes, choosing a body representation via ParseBody.
func NewRecord(statusCode int, headers map[string]string, body []byte, contentType string) Record {
	return Record{
		Status:  strconv.Itoa(statusCode),
		Headers: headers,
		Body:    ParseBody(body, contentType),
	}
}

// StatusCode parses the record's Status field as the three-digit status
// code the record was saved with. Common libraries emit a textual status
// such as "200 OK" alongside the code; only the leading integer prefix is
// significant. Parse failure defaults to 200, matching the reference
// behavior documented for replay.
func (r Record) StatusCode() int {
	field := strings.TrimSpace(r.Status)
	if i := strings.IndexByte(field, ' '); i >= 0 {
		field = field[:i]
	}
	code, err := strconv.Atoi(field)
	if err != nil || code < 100 || code > 599 {
		return 200
	}
	return code
}

// RawBody decodes the record's Body back into transportable bytes.
func (r Record) RawBody() ([]byte, error) {
	return DecodeBody(r.Body)
}
