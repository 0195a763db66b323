package security

import (
	"errors"
	"strings"
)

// ErrPathTraversal is returned when a path contains directory traversal sequences.
var ErrPathTraversal = errors.New("path contains directory traversal sequences")

// ValidateSessionName validates the {name} path segment of
// start-record before it is interpolated into a snapshot file path as
// "{record_dir}/{name}.snap".
//
// Security: name comes directly from the request path and is never
// meant to address anything outside record_dir. Without this check a
// name of "../../../etc/cron.d/evil" (or an absolute path) would let a
// caller write the snapshot file anywhere the process has permission.
func ValidateSessionName(name string) error {
	if name == "" {
		return errors.New("session name cannot be empty")
	}
	if strings.ContainsAny(name, "/\\") {
		return ErrPathTraversal
	}
	if name == "." || name == ".." || strings.Contains(name, "..") {
		return ErrPathTraversal
	}
	return nil
}
