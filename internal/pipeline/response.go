package pipeline

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/esse/relayproxy/internal/forwarder"
)

// Response body strings that are part of the external contract; test
// assertions match on these verbatim.
const (
	msgNoFileFound        = "No file found"
	msgNoIdentifierFound  = "No identifier found"
	msgNoSessionConfig    = "No session started"
	msgNoSessionStarted   = "No session was started"
	msgSessionStarted     = "Session started"
	msgRecordSaved        = "Record saved"
	msgNotRecording       = "Not recording"
	msgSessionsCleared    = "Sessions cleared"
	msgSessionError       = "Session error"
	msgInvalidSessionName = "Invalid session name"
)

func writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	io.WriteString(w, body)
}

// writeHopByHopStripped copies src into dst's header set, skipping
// Connection: the proxy surface strips it in every mode.
func writeHopByHopStripped(dst http.Header, src map[string]string) {
	for k, v := range src {
		if k == "" || strings.EqualFold(k, "Connection") {
			continue
		}
		dst.Set(k, v)
	}
}

// statusForForwarderErr maps a Forwarder sentinel error to the status
// code surfaced to the proxy caller.
func statusForForwarderErr(err error) int {
	switch {
	case errors.Is(err, forwarder.ErrUpstreamTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, forwarder.ErrUpstreamUnreachable):
		return http.StatusBadGateway
	case errors.Is(err, forwarder.ErrUpstreamProtocolError):
		return http.StatusBadGateway
	default:
		return http.StatusBadGateway
	}
}
