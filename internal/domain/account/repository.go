package account

import (
	"context"
	"errors"
	"time"
)

var (
	ErrDuplicate = errors.New("account already exists")
	ErrNotFound  = errors.New("account not found")
)

// Repository describes account persistence needs from use cases.
// Create and Update return ErrDuplicate when the email or Google subject is
// taken by another account. Update returns ErrNotFound for unknown ids.
type Repository interface {
	GetByID(ctx context.Context, id string) (Account, bool, error)
	GetByEmail(ctx context.Context, email string) (Account, bool, error)
	GetByGoogleSubject(ctx context.Context, subject string) (Account, bool, error)
	Create(ctx context.Context, acc Account) error
	Update(ctx context.Context, acc Account) error
	// Delete removes the account. Deleting an unknown id is not an error.
	Delete(ctx context.Context, id string) error
}

type VerificationRepository interface {
	Create(ctx context.Context, v Verification) error
	// Consume marks a usable token consumed and returns it. The bool is false
	// when the token is unknown, expired or already used.
	Consume(ctx context.Context, token string, now time.Time) (Verification, bool, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
