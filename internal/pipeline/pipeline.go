// Package pipeline implements the request handler that ties the
// fingerprinter, record store, snapshot codec, and upstream forwarder
// together: the dispatcher described as the Pipeline in the proxy's
// design, and the state machine governing passthrough, record, and
// replay.
package pipeline

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/esse/relayproxy/internal/forwarder"
	"github.com/esse/relayproxy/internal/store"
)

// SessionCookieName is the cookie the pipeline uses to correlate an
// inbound request with its RecordSession.
const SessionCookieName = "r-session"

// Config is the fixed, explicit configuration a Pipeline runs with.
// Nothing about request handling is module-scoped; every dependency a
// handler needs travels through this struct or the Pipeline it builds.
type Config struct {
	// RecordDir is the directory snapshot files are written to and
	// read from. Empty means passthrough: sessions are accepted but
	// ignored by the proxy path.
	RecordDir string

	// Record is true when the server is running in record mode, false
	// for replay mode. Meaningless when RecordDir is empty.
	Record bool

	// UpstreamBase is the forwarding target; scheme/host/port of every
	// inbound request are rewritten onto it.
	UpstreamBase *url.URL

	// UpstreamTimeout bounds each upstream exchange.
	UpstreamTimeout time.Duration
}

// Pipeline builds the server's single http.Handler (see Handler), which
// dispatches the control endpoints and, for everything else, the
// proxy/record/replay state machine.
type Pipeline struct {
	recordDir string
	record    bool

	forwarder *forwarder.Forwarder
	store     *store.Store
}

// New builds a Pipeline from cfg, sharing sess as its record store.
func New(cfg Config, sess *store.Store) *Pipeline {
	recordDir := strings.TrimRight(cfg.RecordDir, "/")
	return &Pipeline{
		recordDir: recordDir,
		record:    cfg.Record,
		forwarder: forwarder.New(cfg.UpstreamBase, cfg.UpstreamTimeout),
		store:     sess,
	}
}

// Handler returns the http.Handler to serve, wiring the control
// endpoints and the catch-all proxy route.
func (p *Pipeline) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /start-record/{name}", p.handleStartRecord)
	mux.HandleFunc("POST /end-record", p.handleEndRecord)
	mux.HandleFunc("POST /clear-sessions", p.handleClearSessions)
	mux.HandleFunc("/", p.handleProxy)
	return mux
}

func (p *Pipeline) snapshotPath(name string) string {
	if p.recordDir == "" {
		return name + ".snap"
	}
	return p.recordDir + "/" + name + ".snap"
}

func peerIP(r *http.Request) string {
	addr := r.RemoteAddr
	if i := strings.LastIndex(addr, ":"); i >= 0 {
		return addr[:i]
	}
	return addr
}

func logRequest(r *http.Request, status int, extra ...any) {
	args := []any{"method", r.Method, "path", r.URL.Path, "status", status}
	args = append(args, extra...)
	slog.Info("request handled", args...)
}
