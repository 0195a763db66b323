// Package forwarder implements the upstream forwarder: the component
// that rewrites an inbound request onto the configured upstream base
// URL and performs the exchange, either fully buffered (for record
// mode) or streamed (for passthrough).
package forwarder

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"
	"time"
)

// hopByHopHeaders lists the connection-specific headers that must never
// be copied across a proxy hop, per RFC 7230 §6.1.
var hopByHopHeaders = []string{
	"Connection",
	"Keep-Alive",
	"Proxy-Authenticate",
	"Proxy-Authorization",
	"Te",
	"Trailer",
	"Transfer-Encoding",
	"Upgrade",
}

// Forwarder issues HTTP requests against a fixed upstream base URL on
// behalf of the pipeline, rewriting only the scheme, host, and port of
// the inbound request.
type Forwarder struct {
	base   *url.URL
	client *http.Client
}

// New returns a Forwarder targeting base, with upstream requests
// subject to timeout.
func New(base *url.URL, timeout time.Duration) *Forwarder {
	return &Forwarder{
		base: base,
		client: &http.Client{
			Timeout: timeout,
			// The forwarder relays whatever the upstream sends, redirects
			// included; it must not follow them on the caller's behalf.
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

// targetURL rewrites requestURI (path + optional query, no host) onto
// the configured upstream base, preserving path and query exactly.
func (f *Forwarder) targetURL(requestURI string) (string, error) {
	ref, err := url.Parse(requestURI)
	if err != nil {
		return "", err
	}
	resolved := f.base.ResolveReference(&url.URL{Path: ref.Path, RawQuery: ref.RawQuery})
	return resolved.String(), nil
}

func stripHopByHop(h http.Header) {
	for _, name := range hopByHopHeaders {
		h.Del(name)
	}
}

func (f *Forwarder) newRequest(ctx context.Context, method, requestURI string, header http.Header, body io.Reader, peerIP string) (*http.Request, error) {
	target, err := f.targetURL(requestURI)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, err
	}

	req.Header = header.Clone()
	stripHopByHop(req.Header)
	if peerIP != "" {
		req.Header.Set("X-Forwarded-For", peerIP)
	}
	return req, nil
}

// Buffered performs the upstream exchange and fully reads the response
// body into memory, for use by record mode. The returned headers have
// hop-by-hop headers already stripped.
func (f *Forwarder) Buffered(ctx context.Context, method, requestURI string, header http.Header, body []byte, peerIP string) (status int, respHeader http.Header, respBody []byte, err error) {
	var bodyReader io.Reader
	if len(body) > 0 {
		bodyReader = bytes.NewReader(body)
	}

	req, err := f.newRequest(ctx, method, requestURI, header, bodyReader, peerIP)
	if err != nil {
		return 0, nil, nil, err
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return 0, nil, nil, classify(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, nil, classify(err)
	}

	stripHopByHop(resp.Header)
	return resp.StatusCode, resp.Header, data, nil
}

// Streamed performs the upstream exchange and returns the live
// *http.Response for passthrough mode. The caller is responsible for
// closing resp.Body once it has relayed the body to the client.
func (f *Forwarder) Streamed(ctx context.Context, method, requestURI string, header http.Header, body io.Reader, peerIP string) (*http.Response, error) {
	req, err := f.newRequest(ctx, method, requestURI, header, body, peerIP)
	if err != nil {
		return nil, err
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, classify(err)
	}

	stripHopByHop(resp.Header)
	return resp, nil
}
