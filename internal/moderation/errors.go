package moderation

import "errors"

// Error codes for moderation domain errors.
const (
	ErrCodeValidation        = "invalid_input"
	ErrCodeNotFound          = "message_not_found"
	ErrCodeForbidden         = "forbidden"
	ErrCodeInvalidTransition = "invalid_state_transition"
	ErrCodeStoreUnavailable  = "store_unavailable"
)

var (
	// ErrValidation is returned when input violates shape or length
	// constraints. Nothing is persisted for such requests.
	ErrValidation = errors.New("invalid input")

	// ErrNotFound is returned when the referenced message does not exist.
	ErrNotFound = errors.New("message not found")

	// ErrForbidden is returned when the actor lacks the role or ownership
	// required for the requested operation. The target is left untouched.
	ErrForbidden = errors.New("operation not allowed")

	// ErrInvalidTransition is returned when the requested transition is not
	// legal from the message's current state, e.g. approving an
	// already-published message. Idempotent callers may treat it as a no-op.
	ErrInvalidTransition = errors.New("invalid state transition")

	// ErrStoreUnavailable is returned when the persistence layer failed.
	// Mutations never report success once this fires.
	ErrStoreUnavailable = errors.New("store unavailable")
)

// ErrorCode maps a domain error to its wire code, or "" for unknown errors.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrValidation):
		return ErrCodeValidation
	case errors.Is(err, ErrNotFound):
		return ErrCodeNotFound
	case errors.Is(err, ErrForbidden):
		return ErrCodeForbidden
	case errors.Is(err, ErrInvalidTransition):
		return ErrCodeInvalidTransition
	case errors.Is(err, ErrStoreUnavailable):
		return ErrCodeStoreUnavailable
	}
	return ""
}
