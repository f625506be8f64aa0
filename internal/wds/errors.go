package wds

import "errors"

// Error taxonomy. Read paths report absence with a nil result, not an
// error; these sentinels cover rejections and mutations on absent rows.
// Callers match with errors.Is so wrapped context stays intact.
var (
	// ErrQuotaExceeded rejects an operation whose post-state bytes_used
	// would exceed the owner's quota_bytes. Nothing is mutated.
	ErrQuotaExceeded = errors.New("quota exceeded")

	// ErrVersionConflict rejects an update whose from-version no longer
	// matches the stored record version.
	ErrVersionConflict = errors.New("version conflict")

	// ErrNotFound reports a mutation against a row that does not exist
	// (pinning an unknown record, unpinning an unknown pin).
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput rejects malformed identifiers at the boundary,
	// before any I/O.
	ErrInvalidInput = errors.New("invalid input")
)
