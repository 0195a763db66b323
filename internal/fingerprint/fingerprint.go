// Package fingerprint derives the deterministic request key the record
// store and replay engine use to correlate an inbound request with its
// recorded responses.
package fingerprint

import "strings"

// Of returns the fingerprint of an inbound request: its uppercase method
// joined with its raw request-target (path plus query, no host) by a
// colon. Two requests differing only in headers or body share a
// fingerprint.
func Of(method, requestURI string) string {
	return strings.ToUpper(method) + ":" + requestURI
}
