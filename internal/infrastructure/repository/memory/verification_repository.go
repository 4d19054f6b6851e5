package memory

import (
	"context"
	"sync"
	"time"

	"github.com/riskibarqy/paintball-league/internal/domain/account"
)

type VerificationRepository struct {
	mu    sync.Mutex
	items map[string]account.Verification
}

func NewVerificationRepository() *VerificationRepository {
	return &VerificationRepository{items: make(map[string]account.Verification)}
}

func (r *VerificationRepository) Create(_ context.Context, v account.Verification) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[v.Token]; ok {
		return account.ErrDuplicate
	}
	r.items[v.Token] = v
	return nil
}

func (r *VerificationRepository) Consume(_ context.Context, token string, now time.Time) (account.Verification, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	v, ok := r.items[token]
	if !ok || !v.Usable(now) {
		return account.Verification{}, false, nil
	}
	consumedAt := now
	v.ConsumedAt = &consumedAt
	r.items[token] = v
	return v, true, nil
}

func (r *VerificationRepository) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for token, v := range r.items {
		if v.ExpiresAt.Before(now) {
			delete(r.items, token)
			n++
		}
	}
	return n, nil
}
