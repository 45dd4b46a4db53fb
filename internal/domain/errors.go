package domain

import "errors"

var (
	ErrNotFound           = errors.New("resource not found")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserInactive       = errors.New("user is inactive")
	ErrDuplicateEmail     = errors.New("email already exists")

	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file exceeds maximum allowed size")
	ErrUploadFailed        = errors.New("file upload to storage failed")
	ErrMissingArtifact     = errors.New("submission requires both primary and receipt ledgers")

	ErrBatchNotFound      = errors.New("batch not found")
	ErrBatchNotReviewable = errors.New("batch is not awaiting review")
	ErrRecordNotFound     = errors.New("record not found")
	ErrExtractionFailed   = errors.New("record extraction failed")

	// ErrInvalidHash rejects malformed fingerprints before any history query.
	ErrInvalidHash = errors.New("malformed content hash")

	// ErrHistoryUnavailable marks a failed or timed-out batch history query.
	// The engine degrades to full processing instead of failing the request.
	ErrHistoryUnavailable = errors.New("batch history unavailable")

	// ErrReconciliationInconsistency signals a natural key classified into
	// more than one diff category. This is a broken invariant, never bad
	// input, and must not be swallowed.
	ErrReconciliationInconsistency = errors.New("record classified in multiple diff categories")
)
