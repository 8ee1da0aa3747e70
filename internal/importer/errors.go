package importer

import (
	"fmt"
	"strings"
)

// MalformedInputError reports a staged file that could not be parsed
// under either the comma or the tab delimiter. Client-correctable.
type MalformedInputError struct {
	Filename string
	Err      error
}

func (e *MalformedInputError) Error() string {
	return fmt.Sprintf("failed to parse %s: %v", e.Filename, e.Err)
}

func (e *MalformedInputError) Unwrap() error { return e.Err }

// SchemaMismatchError carries the expected fields left unmatched on the
// source or destination side. It is always raised before any mutation.
type SchemaMismatchError struct {
	MissingInSource      []string
	MissingInDestination []string
}

func (e *SchemaMismatchError) Error() string {
	var parts []string
	if len(e.MissingInSource) > 0 {
		parts = append(parts, "missing in file: "+strings.Join(e.MissingInSource, ", "))
	}
	if len(e.MissingInDestination) > 0 {
		parts = append(parts, "missing in destination: "+strings.Join(e.MissingInDestination, ", "))
	}
	return "schema mismatch: " + strings.Join(parts, "; ")
}

// InvalidTokenError reports a staging token with no backing file: never
// issued, already consumed, or reclaimed by the janitor.
type InvalidTokenError struct {
	Token string
}

func (e *InvalidTokenError) Error() string {
	return "invalid token or file expired"
}

// InvalidModeError reports a commit mode outside {overwrite, append}.
type InvalidModeError struct {
	Mode string
}

func (e *InvalidModeError) Error() string {
	return fmt.Sprintf("mode must be %q or %q, got %q", ModeOverwrite, ModeAppend, e.Mode)
}

// CommitFailedError wraps a bulk-insert failure. Restored tells the
// caller whether the destination was rolled back to its pre-commit
// content (overwrite mode) or may hold a partial prefix (append mode).
type CommitFailedError struct {
	Restored bool
	Err      error
}

func (e *CommitFailedError) Error() string {
	if e.Restored {
		return fmt.Sprintf("import failed; destination restored to pre-import state: %v", e.Err)
	}
	return fmt.Sprintf("import failed; destination may contain a partial import: %v", e.Err)
}

func (e *CommitFailedError) Unwrap() error { return e.Err }
