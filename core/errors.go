package core

import "errors"

var (
	// ErrInvalidCredentials is returned when email/password is wrong. Unknown
	// email and wrong password produce this same error so callers cannot
	// probe which accounts exist.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrMissingCredentials is returned when email or password is absent.
	ErrMissingCredentials = errors.New("email and password are required")
	// ErrDuplicateAccount is returned when the email is already registered.
	ErrDuplicateAccount = errors.New("account already exists")
	// ErrAccountNotFound is returned by lookups for unknown accounts.
	ErrAccountNotFound = errors.New("account not found")

	// Token validation failures. Classified for diagnostics; the HTTP
	// boundary collapses all three into a single unauthenticated response.
	ErrTokenExpired   = errors.New("token expired")
	ErrBadSignature   = errors.New("token signature mismatch")
	ErrTokenMalformed = errors.New("token malformed")
)

// ValidationError reports the first violated input rule during registration.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Reason
}
