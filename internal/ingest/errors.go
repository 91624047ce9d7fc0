package ingest

import "errors"

// Batch-fatal error kinds. Mapping/validation failures are per-row and
// never abort a batch; only these do.
var (
	// ErrUnsupportedFileType means the upload extension is not accepted;
	// no pipeline work is performed.
	ErrUnsupportedFileType = errors.New("unsupported file type")

	// ErrMalformedData means the payload passed the extension gate but
	// could not be parsed into rows at all.
	ErrMalformedData = errors.New("malformed tabular data")

	// ErrTargetNotOwned means an explicit project id belongs to a
	// different account.
	ErrTargetNotOwned = errors.New("project not owned by account")

	// ErrTargetResolutionFailed means project lookup or creation failed
	// at the storage layer; nothing was persisted.
	ErrTargetResolutionFailed = errors.New("project resolution failed")

	// ErrPersistenceFailed means the batch insert failed after a possible
	// prior delete. The project may be left empty; the upload is retryable.
	ErrPersistenceFailed = errors.New("persisting batch failed")
)
