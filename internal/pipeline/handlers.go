package pipeline

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/esse/relayproxy/internal/fingerprint"
	"github.com/esse/relayproxy/internal/security"
	"github.com/esse/relayproxy/internal/snapshot"
	"github.com/esse/relayproxy/internal/store"
)

// flattenHeaders renders an http.Header into the verbatim string map
// the snapshot format stores. Multi-valued headers are joined with ", "
// as common client libraries do on read. A value that is not valid
// UTF-8 is stored as an empty string rather than dropped, matching the
// recorded byte stream's behavior on replay.
func flattenHeaders(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k, v := range h {
		joined := strings.Join(v, ", ")
		if !utf8.ValidString(joined) {
			joined = ""
		}
		out[k] = joined
	}
	return out
}

func (p *Pipeline) handleStartRecord(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if err := security.ValidateSessionName(name); err != nil {
		writeText(w, http.StatusBadRequest, msgInvalidSessionName)
		return
	}

	id, err := store.NewSessionID()
	if err != nil {
		writeText(w, http.StatusInternalServerError, msgSessionError)
		return
	}

	p.store.Create(id, p.snapshotPath(name))

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		Secure:   false,
	})
	logRequest(r, http.StatusOK, "handler", "start-record", "name", name)
	writeText(w, http.StatusOK, msgSessionStarted)
}

func (p *Pipeline) handleEndRecord(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		writeText(w, http.StatusBadRequest, msgNoSessionStarted)
		return
	}

	if !p.record || p.recordDir == "" {
		p.store.Remove(cookie.Value)
		writeText(w, http.StatusOK, msgNotRecording)
		return
	}

	sess, ok := p.store.Get(cookie.Value)
	if !ok {
		writeText(w, http.StatusBadRequest, msgNoSessionStarted)
		return
	}

	if err := snapshot.Encode(sess.Filepath, sess.Records()); err != nil {
		logRequest(r, http.StatusInternalServerError, "handler", "end-record", "error", err)
		writeText(w, http.StatusInternalServerError, msgSessionError)
		return
	}

	p.store.Remove(cookie.Value)
	logRequest(r, http.StatusOK, "handler", "end-record", "file", sess.Filepath)
	writeText(w, http.StatusOK, msgRecordSaved)
}

func (p *Pipeline) handleClearSessions(w http.ResponseWriter, r *http.Request) {
	p.store.Clear()
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   false,
		MaxAge:   -1,
	})
	logRequest(r, http.StatusOK, "handler", "clear-sessions")
	writeText(w, http.StatusOK, msgSessionsCleared)
}

func (p *Pipeline) handleProxy(w http.ResponseWriter, r *http.Request) {
	if p.recordDir == "" {
		p.proxyPassthrough(w, r)
		return
	}

	cookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		writeText(w, http.StatusBadRequest, msgNoSessionConfig)
		return
	}

	sess, ok := p.store.Get(cookie.Value)
	if !ok {
		writeText(w, http.StatusBadRequest, msgNoSessionConfig)
		return
	}

	if p.record {
		p.proxyRecord(w, r, sess)
		return
	}
	p.proxyReplay(w, r, sess)
}

func (p *Pipeline) proxyPassthrough(w http.ResponseWriter, r *http.Request) {
	resp, err := p.forwarder.Streamed(r.Context(), r.Method, r.URL.RequestURI(), r.Header, r.Body, peerIP(r))
	if err != nil {
		logRequest(r, statusForForwarderErr(err), "mode", "passthrough", "error", err)
		writeText(w, statusForForwarderErr(err), msgSessionError)
		return
	}
	defer resp.Body.Close()

	for k, v := range resp.Header {
		w.Header()[k] = v
	}
	w.WriteHeader(resp.StatusCode)
	io.Copy(w, resp.Body)
	logRequest(r, resp.StatusCode, "mode", "passthrough")
}

func (p *Pipeline) proxyRecord(w http.ResponseWriter, r *http.Request, sess *store.Session) {
	var reqBody []byte
	if r.Body != nil {
		var err error
		reqBody, err = io.ReadAll(r.Body)
		if err != nil {
			writeText(w, http.StatusBadRequest, msgSessionError)
			return
		}
	}

	status, headers, body, err := p.forwarder.Buffered(r.Context(), r.Method, r.URL.RequestURI(), r.Header, reqBody, peerIP(r))
	if err != nil {
		logRequest(r, statusForForwarderErr(err), "mode", "record", "error", err)
		writeText(w, statusForForwarderErr(err), msgSessionError)
		return
	}

	strHeaders := flattenHeaders(headers)
	contentType := headers.Get("Content-Type")
	rec := snapshot.NewRecord(status, strHeaders, body, contentType)

	fp := fingerprint.Of(r.Method, r.URL.RequestURI())
	sess.AppendRecord(fp, rec)

	for k, v := range strHeaders {
		w.Header().Set(k, v)
	}
	w.WriteHeader(status)
	w.Write(body)
	logRequest(r, status, "mode", "record", "fingerprint", fp)
}

func (p *Pipeline) proxyReplay(w http.ResponseWriter, r *http.Request, sess *store.Session) {
	records, err := snapshot.Decode(sess.Filepath)
	if err != nil {
		if os.IsNotExist(err) {
			writeText(w, http.StatusNotFound, msgNoFileFound)
			return
		}
		logRequest(r, http.StatusInternalServerError, "mode", "replay", "error", err)
		writeText(w, http.StatusInternalServerError, msgSessionError)
		return
	}

	fp := fingerprint.Of(r.Method, r.URL.RequestURI())
	seq, ok := records[fp]
	if !ok {
		writeText(w, http.StatusNotFound, msgNoIdentifierFound)
		return
	}

	idx, ok := sess.NextReplayIndex(fp, len(seq))
	if !ok {
		writeText(w, http.StatusNotFound, fmt.Sprintf("No record in position %d found", idx))
		return
	}

	rec := seq[idx]
	body, err := rec.RawBody()
	if err != nil {
		logRequest(r, http.StatusInternalServerError, "mode", "replay", "error", err)
		writeText(w, http.StatusInternalServerError, msgSessionError)
		return
	}

	writeHopByHopStripped(w.Header(), rec.Headers)
	w.WriteHeader(rec.StatusCode())
	w.Write(body)
	logRequest(r, rec.StatusCode(), "mode", "replay", "fingerprint", fp, "index", idx)
}
