package user

import "time"

// Principal is the authenticated caller resolved from a session token.
type Principal struct {
	UserID        string
	Email         string
	EmailVerified bool
	TokenID       string
	ExpiresAt     time.Time
}
