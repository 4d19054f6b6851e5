package usecase

import "errors"

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrConflict              = errors.New("resource already exists")
	ErrPayloadTooLarge       = errors.New("payload too large")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
)

// User-facing authentication failures. Their text is shown to the user as is,
// whatever the underlying cause.
var (
	ErrAuthFailed         = errors.New("Invalid email or password")
	ErrRegistrationFailed = errors.New("Registration failed")
	ErrGoogleLoginFailed  = errors.New("Failed to log in with Google")
	ErrLogoutFailed       = errors.New("Logout failed")
)

// PublicError returns the generic failure err belongs to, if any.
func PublicError(err error) (error, bool) {
	for _, target := range []error{ErrRegistrationFailed, ErrGoogleLoginFailed, ErrAuthFailed, ErrLogoutFailed} {
		if errors.Is(err, target) {
			return target, true
		}
	}
	return nil, false
}
