package snapshot

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Records is the decoded form of a snapshot file: a mapping from request
// fingerprint to its ordered sequence of recorded responses. Sequence
// order is replay order and is significant.
type Records map[string][]Record

// Encode writes records to path as the snapshot JSON document, creating
// the parent directory if necessary. The write replaces the file in
// full; there is no partial-write protection beyond what the filesystem
// gives os.WriteFile, matching the "written atomically only at session
// end" guarantee in spec — not "torn writes never happen".
func Encode(path string, records Records) error {
	if records == nil {
		records = Records{}
	}

	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating snapshot directory: %w", err)
		}
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling snapshot: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing snapshot file: %w", err)
	}
	return nil
}

// Decode reads and parses a snapshot file at path. A missing file is
// reported via os.IsNotExist on the returned error so callers can map it
// to the "no file found" replay response without inspecting error text.
func Decode(path string) (Records, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var records Records
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parsing snapshot file %s: %w", path, err)
	}
	return records, nil
}
