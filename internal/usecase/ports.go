package usecase

import (
	"context"
	"time"

	"github.com/riskibarqy/paintball-league/internal/domain/account"
)

// Session is an issued access token.
type Session struct {
	AccessToken string
	TokenType   string
	TokenID     string
	UserID      string
	ExpiresAt   time.Time
}

type SessionManager interface {
	Issue(ctx context.Context, acc account.Account) (Session, error)
	// Revoke invalidates tokenID until expiresAt.
	Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error
}

type PasswordHasher interface {
	Hash(plain string) (string, error)
	Compare(hash, plain string) error
}

// GoogleIdentity is a verified Google ID token.
type GoogleIdentity struct {
	Subject       string
	Email         string
	EmailVerified bool
	Name          string
	Picture       string
}

type GoogleVerifier interface {
	Verify(ctx context.Context, idToken string) (GoogleIdentity, error)
}

// VerificationMail carries everything needed to deliver a verification link.
type VerificationMail struct {
	To     string `json:"to"`
	UserID string `json:"user_id"`
	Token  string `json:"token"`
	Link   string `json:"link"`
}

type VerificationMailer interface {
	SendVerification(ctx context.Context, mail VerificationMail) error
}

// ObjectURLResolver issues download URLs for stored objects and fails when the
// object does not exist.
type ObjectURLResolver interface {
	DownloadURL(ctx context.Context, path string) (string, error)
}

// TaskRunner runs fire-and-forget work off the request goroutine.
type TaskRunner interface {
	Submit(task func()) error
}

type syncRunner struct{}

func (syncRunner) Submit(task func()) error {
	task()
	return nil
}
