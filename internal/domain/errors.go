package domain

import "errors"

// Error taxonomy shared across the core. Adapters wrap these sentinels
// with fmt.Errorf("...: %w", ...) so callers can branch with errors.Is.
var (
	// ErrStorageUnavailable means a persistence read or write failed.
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrUnauthorized means the generation credential was rejected.
	ErrUnauthorized = errors.New("generation credential rejected")

	// ErrGenerationFailed covers any other generation-call problem,
	// including timeouts, malformed replies, and empty payloads.
	ErrGenerationFailed = errors.New("generation failed")

	// ErrValidationRejected marks input rejected before any side effect.
	ErrValidationRejected = errors.New("validation rejected")

	// ErrConversationNotFound is the lookup miss, as distinct from a
	// storage failure.
	ErrConversationNotFound = errors.New("conversation not found")
)
