package store

import (
	"sync"

	"github.com/esse/relayproxy/internal/snapshot"
)

// Session is the in-memory state of one recording/replay session: the
// spec's RecordSession. Records and states are guarded by an internal
// mutex so the table lock in Store only needs to be held long enough to
// look the session up, never across upstream or disk I/O.
type Session struct {
	// Filepath is the path the session's snapshot is, or will be,
	// persisted to. Immutable after creation.
	Filepath string

	mu      sync.Mutex
	records snapshot.Records
	states  map[string]int
}

func newSession(filepath string) *Session {
	return &Session{
		Filepath: filepath,
		records:  snapshot.Records{},
		states:   make(map[string]int),
	}
}

// AppendRecord adds rec to the end of fingerprint's sequence. Used by
// record mode; every occurrence of a repeated request is appended, none
// are coalesced.
func (s *Session) AppendRecord(fingerprint string, rec snapshot.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[fingerprint] = append(s.records[fingerprint], rec)
}

// Records returns a snapshot-safe copy of the session's recorded data,
// suitable for passing to snapshot.Encode.
func (s *Session) Records() snapshot.Records {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(snapshot.Records, len(s.records))
	for fp, seq := range s.records {
		out[fp] = append([]snapshot.Record(nil), seq...)
	}
	return out
}

// NextReplayIndex atomically reads and, if it is still within bounds,
// advances the replay cursor for fingerprint. seqLen is the length of
// fingerprint's recorded sequence as loaded from the snapshot file. If
// the current cursor is already at or past seqLen, the cursor is left
// untouched and ok is false. Otherwise the cursor is incremented and the
// pre-increment value is returned as the index to serve.
//
// Because the read-compare-increment happens under the session mutex,
// concurrent replay requests for the same fingerprint observe distinct,
// strictly increasing indices with no duplicates and no gaps.
func (s *Session) NextReplayIndex(fingerprint string, seqLen int) (idx int, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.states[fingerprint]
	if cur >= seqLen {
		return cur, false
	}
	s.states[fingerprint] = cur + 1
	return cur, true
}
