package memory

import (
	"context"
	"sync"

	"github.com/riskibarqy/paintball-league/internal/domain/account"
)

type AccountRepository struct {
	mu       sync.RWMutex
	items    map[string]account.Account
	byEmail  map[string]string
	byGoogle map[string]string
}

func NewAccountRepository() *AccountRepository {
	return &AccountRepository{
		items:    make(map[string]account.Account),
		byEmail:  make(map[string]string),
		byGoogle: make(map[string]string),
	}
}

func (r *AccountRepository) GetByID(_ context.Context, id string) (account.Account, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	acc, ok := r.items[id]
	return acc, ok, nil
}

func (r *AccountRepository) GetByEmail(_ context.Context, email string) (account.Account, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.lookup(r.byEmail, account.NormalizeEmail(email))
}

func (r *AccountRepository) GetByGoogleSubject(_ context.Context, subject string) (account.Account, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.lookup(r.byGoogle, subject)
}

func (r *AccountRepository) Create(_ context.Context, acc account.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	acc.Email = account.NormalizeEmail(acc.Email)
	if _, ok := r.items[acc.ID]; ok {
		return account.ErrDuplicate
	}
	if r.taken(r.byEmail, acc.Email, acc.ID) || r.taken(r.byGoogle, acc.GoogleSubject, acc.ID) {
		return account.ErrDuplicate
	}

	r.put(acc)
	return nil
}

func (r *AccountRepository) Update(_ context.Context, acc account.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.items[acc.ID]
	if !ok {
		return account.ErrNotFound
	}
	acc.Email = account.NormalizeEmail(acc.Email)
	if r.taken(r.byEmail, acc.Email, acc.ID) || r.taken(r.byGoogle, acc.GoogleSubject, acc.ID) {
		return account.ErrDuplicate
	}

	delete(r.byEmail, current.Email)
	delete(r.byGoogle, current.GoogleSubject)
	r.put(acc)
	return nil
}

func (r *AccountRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.items[id]
	if !ok {
		return nil
	}
	delete(r.items, id)
	delete(r.byEmail, current.Email)
	delete(r.byGoogle, current.GoogleSubject)
	return nil
}

func (r *AccountRepository) put(acc account.Account) {
	r.items[acc.ID] = acc
	if acc.Email != "" {
		r.byEmail[acc.Email] = acc.ID
	}
	if acc.GoogleSubject != "" {
		r.byGoogle[acc.GoogleSubject] = acc.ID
	}
}

func (r *AccountRepository) taken(index map[string]string, key, ownerID string) bool {
	if key == "" {
		return false
	}
	id, ok := index[key]
	return ok && id != ownerID
}

func (r *AccountRepository) lookup(index map[string]string, key string) (account.Account, bool, error) {
	if key == "" {
		return account.Account{}, false, nil
	}
	id, ok := index[key]
	if !ok {
		return account.Account{}, false, nil
	}
	acc, ok := r.items[id]
	return acc, ok, nil
}
