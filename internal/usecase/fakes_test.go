package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/riskibarqy/paintball-league/internal/domain/account"
	"github.com/riskibarqy/paintball-league/internal/domain/objectstore"
	"github.com/riskibarqy/paintball-league/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/paintball-league/internal/platform/logging"
)

type plainHasher struct{}

func (plainHasher) Hash(plain string) (string, error) { return "hashed:" + plain, nil }

func (plainHasher) Compare(hash, plain string) error {
	if hash == "" || hash != "hashed:"+plain {
		return errors.New("password mismatch")
	}
	return nil
}

type fakeSessions struct {
	mu      sync.Mutex
	issued  []account.Account
	revoked []string
	err     error
}

func (f *fakeSessions) Issue(_ context.Context, acc account.Account) (Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return Session{}, f.err
	}
	f.issued = append(f.issued, acc)
	return Session{
		AccessToken: "token-" + acc.ID,
		TokenType:   "Bearer",
		TokenID:     fmt.Sprintf("jti-%d", len(f.issued)),
		UserID:      acc.ID,
		ExpiresAt:   time.Date(2026, 10, 2, 0, 0, 0, 0, time.UTC),
	}, nil
}

func (f *fakeSessions) Revoke(_ context.Context, tokenID string, _ time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.revoked = append(f.revoked, tokenID)
	return nil
}

type fakeGoogle struct {
	identity GoogleIdentity
	err      error
}

func (f fakeGoogle) Verify(_ context.Context, idToken string) (GoogleIdentity, error) {
	if f.err != nil {
		return GoogleIdentity{}, f.err
	}
	if idToken != "google-id-token" {
		return GoogleIdentity{}, fmt.Errorf("%w: unknown token", ErrUnauthorized)
	}
	return f.identity, nil
}

type recordingMailer struct {
	mu    sync.Mutex
	sent  []VerificationMail
	err   error
	block chan struct{}
}

func (m *recordingMailer) SendVerification(_ context.Context, mail VerificationMail) error {
	if m.block != nil {
		<-m.block
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, mail)
	return nil
}

func (m *recordingMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

type sequenceIDs struct {
	mu     sync.Mutex
	prefix string
	n      int
}

func (g *sequenceIDs) NewID() (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("%s%d", g.prefix, g.n), nil
}

type fakeURLResolver struct {
	mu    sync.Mutex
	urls  map[string]string
	calls int
	err   error
}

func (r *fakeURLResolver) DownloadURL(_ context.Context, path string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if r.err != nil {
		return "", r.err
	}
	url, ok := r.urls[path]
	if !ok {
		return "", fmt.Errorf("%w: %s", objectstore.ErrNotFound, path)
	}
	return url, nil
}

type queuedRunner struct {
	mu    sync.Mutex
	tasks []func()
	err   error
}

func (r *queuedRunner) Submit(task func()) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.tasks = append(r.tasks, task)
	return nil
}

func (r *queuedRunner) drain() {
	r.mu.Lock()
	tasks := r.tasks
	r.tasks = nil
	r.mu.Unlock()
	for _, task := range tasks {
		task()
	}
}

type authFixture struct {
	service       *AuthService
	accounts      *memory.AccountRepository
	verifications *memory.VerificationRepository
	sessions      *fakeSessions
	mailer        *recordingMailer
	runner        *queuedRunner
	now           time.Time
}

func newAuthFixture(google GoogleVerifier) *authFixture {
	f := &authFixture{
		accounts:      memory.NewAccountRepository(),
		verifications: memory.NewVerificationRepository(),
		sessions:      &fakeSessions{},
		mailer:        &recordingMailer{},
		runner:        &queuedRunner{},
		now:           time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC),
	}
	f.service = NewAuthService(AuthDependencies{
		Accounts:      f.accounts,
		Verifications: f.verifications,
		Hasher:        plainHasher{},
		Sessions:      f.sessions,
		Google:        google,
		Mailer:        f.mailer,
		Runner:        f.runner,
		AccountIDs:    &sequenceIDs{prefix: "user-"},
		Tokens:        &sequenceIDs{prefix: "verify-"},
		Logger:        logging.NewNop(),
	}, AuthConfig{
		VerificationTTL: time.Hour,
		VerifyURL:       "https://paintball.example.com/v1/auth/verify-email",
	})
	f.service.now = func() time.Time { return f.now }
	return f
}

func containsAll(s string, parts ...string) bool {
	for _, p := range parts {
		if !strings.Contains(s, p) {
			return false
		}
	}
	return true
}
