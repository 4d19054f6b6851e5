package account

import (
	"strings"
	"time"
)

// Account is an identity registered with email/password or Google.
type Account struct {
	ID            string
	Email         string
	PasswordHash  string
	DisplayName   string
	GoogleSubject string
	EmailVerified bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (a Account) HasPassword() bool {
	return a.PasswordHash != ""
}

// Verification is a single-use email verification token.
type Verification struct {
	Token      string
	UserID     string
	Email      string
	ExpiresAt  time.Time
	ConsumedAt *time.Time
	CreatedAt  time.Time
}

func (v Verification) Usable(now time.Time) bool {
	return v.ConsumedAt == nil && now.Before(v.ExpiresAt)
}

// NormalizeEmail is the canonical form used for uniqueness checks.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
