package archive

import (
	"errors"
	"fmt"
	"io/fs"
)

// ErrorKind classifies a recorded per-file failure.
type ErrorKind string

const (
	KindSourceNotFound    ErrorKind = "source_not_found"
	KindPermissionDenied  ErrorKind = "permission_denied"
	KindCodecFailure      ErrorKind = "codec_failure"
	KindFormatMismatch    ErrorKind = "format_mismatch"
	KindIntegrityMismatch ErrorKind = "integrity_mismatch"
)

// Fatal whole-run errors. Callers can errors.Is against these.
var (
	ErrSourceNotFound = errors.New("source not found")
	ErrNotDirectory   = errors.New("source is not a directory")
	ErrFormatMismatch = errors.New("archive format mismatch")
)

// ErrorRecord notes a unit that failed without aborting the run.
type ErrorRecord struct {
	Path   string    `json:"path"`
	Kind   ErrorKind `json:"kind"`
	Detail string    `json:"detail"`
}

func (e ErrorRecord) String() string {
	return fmt.Sprintf("%s: %s: %s", e.Path, e.Kind, e.Detail)
}

func newErrorRecord(rel string, kind ErrorKind, err error) ErrorRecord {
	return ErrorRecord{Path: rel, Kind: kind, Detail: err.Error()}
}

// classifyError maps OS-level causes to a kind, falling back to the given
// kind for everything else (typically the codec or container layer).
func classifyError(err error, fallback ErrorKind) ErrorKind {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return KindSourceNotFound
	case errors.Is(err, fs.ErrPermission):
		return KindPermissionDenied
	default:
		return fallback
	}
}
