package apperrors

import "errors"

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrUnauthorized indicates missing or invalid credentials.
var ErrUnauthorized = errors.New("unauthorized")

// ErrInvalidDocument indicates a document payload that could not be parsed
// or carried no usable data.
var ErrInvalidDocument = errors.New("invalid document")

// Geolocation errors. These never cross the shift machine boundary as
// returned errors; the machine converts them to operator notices.
var (
	// ErrGeoPermissionDenied indicates the platform refused access to location.
	ErrGeoPermissionDenied = errors.New("geolocation permission denied")

	// ErrGeoUnavailable indicates no position could be determined.
	ErrGeoUnavailable = errors.New("geolocation unavailable")

	// ErrGeoTimeout indicates the one-shot position read timed out.
	ErrGeoTimeout = errors.New("geolocation timed out")
)

// Sync errors. Local edits are never rolled back on these; they only
// affect the advisory sync state shown to the operator.
var (
	// ErrOffline indicates no connectivity; network calls are skipped entirely.
	ErrOffline = errors.New("offline")

	// ErrRemoteUnavailable indicates the remote state service could not be reached
	// or answered with a server error.
	ErrRemoteUnavailable = errors.New("remote state service unavailable")
)
