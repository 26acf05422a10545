package sync

import "errors"

var (
	// ErrSyncInProgress indicates a pass was requested while one is running.
	ErrSyncInProgress = errors.New("sync already in progress")
	// ErrMalformedSnapshot indicates an import payload that could not be parsed.
	ErrMalformedSnapshot = errors.New("malformed snapshot payload")
	// ErrUnsupportedVersion indicates a snapshot from an unknown format version.
	ErrUnsupportedVersion = errors.New("unsupported snapshot version")
)
