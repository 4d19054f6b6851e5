package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/riskibarqy/paintball-league/internal/domain/account"
	"github.com/riskibarqy/paintball-league/internal/domain/navigation"
	"github.com/riskibarqy/paintball-league/internal/domain/user"
	"github.com/riskibarqy/paintball-league/internal/platform/id"
	"github.com/riskibarqy/paintball-league/internal/platform/logging"
)

const (
	MinPasswordLength = 6
	VerifyEmailPrompt = "Please verify your email before accessing the dashboard."
)

type AuthDependencies struct {
	Accounts      account.Repository
	Verifications account.VerificationRepository
	Hasher        PasswordHasher
	Sessions      SessionManager
	Google        GoogleVerifier
	Mailer        VerificationMailer
	Runner        TaskRunner
	AccountIDs    id.Generator
	Tokens        id.Generator
	Logger        *logging.Logger
}

type AuthConfig struct {
	VerificationTTL time.Duration
	// VerifyURL is the public endpoint that consumes verification tokens.
	VerifyURL string
}

type AuthService struct {
	deps     AuthDependencies
	cfg      AuthConfig
	validate *validator.Validate
	logger   *logging.Logger
	now      func() time.Time
}

func NewAuthService(deps AuthDependencies, cfg AuthConfig) *AuthService {
	logger := deps.Logger
	if logger == nil {
		logger = logging.Default()
	}
	if deps.Runner == nil {
		deps.Runner = syncRunner{}
	}
	if deps.AccountIDs == nil {
		deps.AccountIDs = id.NewUUIDGenerator()
	}
	if deps.Tokens == nil {
		deps.Tokens = id.NewRandomGenerator()
	}
	if cfg.VerificationTTL <= 0 {
		cfg.VerificationTTL = 24 * time.Hour
	}

	return &AuthService{
		deps:     deps,
		cfg:      cfg,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logger.Named("auth"),
		now:      time.Now,
	}
}

// LoginWithEmail checks the password and issues a session. Every failure is
// reported as ErrAuthFailed.
func (s *AuthService) LoginWithEmail(ctx context.Context, email, password string) (Session, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.AuthService.LoginWithEmail")
	defer span.End()

	email = account.NormalizeEmail(email)
	if email == "" || password == "" {
		return Session{}, fmt.Errorf("%w: email and password are required", ErrAuthFailed)
	}

	acc, exists, err := s.deps.Accounts.GetByEmail(ctx, email)
	if err != nil {
		s.logger.ErrorContext(ctx, "login account lookup failed", "error", err)
		return Session{}, fmt.Errorf("%w: get account: %v", ErrAuthFailed, err)
	}
	if !exists {
		return Session{}, fmt.Errorf("%w: unknown email", ErrAuthFailed)
	}
	if err := s.deps.Hasher.Compare(acc.PasswordHash, password); err != nil {
		return Session{}, fmt.Errorf("%w: %v", ErrAuthFailed, err)
	}

	session, err := s.deps.Sessions.Issue(ctx, acc)
	if err != nil {
		s.logger.ErrorContext(ctx, "issue session failed", "user_id", acc.ID, "error", err)
		return Session{}, fmt.Errorf("%w: issue session: %v", ErrAuthFailed, err)
	}
	return session, nil
}

// RegisterWithEmail creates a password account and mails its verification link.
func (s *AuthService) RegisterWithEmail(ctx context.Context, email, password string) (account.Account, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.AuthService.RegisterWithEmail")
	defer span.End()

	email = account.NormalizeEmail(email)
	if err := s.validate.Var(email, "required,email"); err != nil {
		return account.Account{}, fmt.Errorf("%w: invalid email", ErrInvalidInput)
	}
	if len(password) < MinPasswordLength {
		return account.Account{}, fmt.Errorf("%w: password must be at least %d characters", ErrInvalidInput, MinPasswordLength)
	}

	if _, exists, err := s.deps.Accounts.GetByEmail(ctx, email); err != nil {
		return account.Account{}, fmt.Errorf("get account by email: %w", err)
	} else if exists {
		return account.Account{}, fmt.Errorf("%w: email already registered", ErrConflict)
	}

	hash, err := s.deps.Hasher.Hash(password)
	if err != nil {
		return account.Account{}, err
	}
	accountID, err := s.deps.AccountIDs.NewID()
	if err != nil {
		return account.Account{}, fmt.Errorf("generate account id: %w", err)
	}

	now := s.now().UTC()
	acc := account.Account{
		ID:           accountID,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.deps.Accounts.Create(ctx, acc); err != nil {
		if errors.Is(err, account.ErrDuplicate) {
			return account.Account{}, fmt.Errorf("%w: email already registered", ErrConflict)
		}
		return account.Account{}, fmt.Errorf("create account: %w", err)
	}

	if err := s.sendVerification(ctx, acc); err != nil {
		s.discardAccount(ctx, acc.ID)
		return account.Account{}, fmt.Errorf("send verification: %w", err)
	}

	s.logger.InfoContext(ctx, "account registered", "user_id", acc.ID)
	return acc, nil
}

// LoginWithGoogle verifies a Google ID token, then finds, links or creates the
// matching account and issues a session.
func (s *AuthService) LoginWithGoogle(ctx context.Context, idToken string) (Session, GoogleIdentity, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.AuthService.LoginWithGoogle")
	defer span.End()

	idToken = strings.TrimSpace(idToken)
	if idToken == "" {
		return Session{}, GoogleIdentity{}, fmt.Errorf("%w: id_token is required", ErrInvalidInput)
	}

	identity, err := s.deps.Google.Verify(ctx, idToken)
	if err != nil {
		return Session{}, GoogleIdentity{}, fmt.Errorf("verify google token: %w", err)
	}
	identity.Email = account.NormalizeEmail(identity.Email)

	acc, err := s.resolveGoogleAccount(ctx, identity)
	if err != nil {
		return Session{}, GoogleIdentity{}, err
	}

	session, err := s.deps.Sessions.Issue(ctx, acc)
	if err != nil {
		return Session{}, GoogleIdentity{}, fmt.Errorf("issue session: %w", err)
	}
	return session, identity, nil
}

func (s *AuthService) resolveGoogleAccount(ctx context.Context, identity GoogleIdentity) (account.Account, error) {
	acc, exists, err := s.deps.Accounts.GetByGoogleSubject(ctx, identity.Subject)
	if err != nil {
		return account.Account{}, fmt.Errorf("get account by google subject: %w", err)
	}
	if exists {
		return acc, nil
	}

	now := s.now().UTC()
	if identity.Email != "" && identity.EmailVerified {
		acc, exists, err = s.deps.Accounts.GetByEmail(ctx, identity.Email)
		if err != nil {
			return account.Account{}, fmt.Errorf("get account by email: %w", err)
		}
		if exists {
			acc.GoogleSubject = identity.Subject
			acc.EmailVerified = true
			if acc.DisplayName == "" {
				acc.DisplayName = identity.Name
			}
			acc.UpdatedAt = now
			if err := s.deps.Accounts.Update(ctx, acc); err != nil {
				return account.Account{}, fmt.Errorf("link google account: %w", err)
			}
			s.logger.InfoContext(ctx, "google identity linked", "user_id", acc.ID)
			return acc, nil
		}
	}

	accountID, err := s.deps.AccountIDs.NewID()
	if err != nil {
		return account.Account{}, fmt.Errorf("generate account id: %w", err)
	}
	acc = account.Account{
		ID:            accountID,
		Email:         identity.Email,
		DisplayName:   identity.Name,
		GoogleSubject: identity.Subject,
		EmailVerified: identity.EmailVerified,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.deps.Accounts.Create(ctx, acc); err != nil {
		return account.Account{}, fmt.Errorf("create google account: %w", err)
	}
	s.logger.InfoContext(ctx, "google account created", "user_id", acc.ID)
	return acc, nil
}

// Logout revokes the caller's session token.
func (s *AuthService) Logout(ctx context.Context, principal user.Principal) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.AuthService.Logout")
	defer span.End()

	if strings.TrimSpace(principal.TokenID) == "" {
		return fmt.Errorf("%w: missing session", ErrUnauthorized)
	}
	if err := s.deps.Sessions.Revoke(ctx, principal.TokenID, principal.ExpiresAt); err != nil {
		return fmt.Errorf("%w: %w", ErrLogoutFailed, err)
	}
	return nil
}

type VerificationStatus struct {
	Verified bool
	Redirect string
	Message  string
}

// CheckEmailVerification reports whether the caller may enter the dashboard.
// Unverified callers get a fresh verification mail sent in the background.
func (s *AuthService) CheckEmailVerification(ctx context.Context, principal user.Principal) (VerificationStatus, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.AuthService.CheckEmailVerification")
	defer span.End()

	acc, exists, err := s.deps.Accounts.GetByID(ctx, principal.UserID)
	if err != nil {
		return VerificationStatus{}, fmt.Errorf("get account: %w", err)
	}
	if !exists {
		return VerificationStatus{}, fmt.Errorf("%w: account no longer exists", ErrUnauthorized)
	}
	if acc.EmailVerified {
		return VerificationStatus{Verified: true, Redirect: navigation.RouteDashboard}, nil
	}

	bg := context.WithoutCancel(ctx)
	submitErr := s.deps.Runner.Submit(func() {
		if err := s.sendVerification(bg, acc); err != nil {
			s.logger.WarnContext(bg, "resend verification failed", "user_id", acc.ID, "error", err)
		}
	})
	if submitErr != nil {
		s.logger.WarnContext(ctx, "resend verification not scheduled", "user_id", acc.ID, "error", submitErr)
	}

	return VerificationStatus{Verified: false, Message: VerifyEmailPrompt}, nil
}

// VerifyEmail consumes a mailed token and marks its account verified.
func (s *AuthService) VerifyEmail(ctx context.Context, token string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.AuthService.VerifyEmail")
	defer span.End()

	token = strings.TrimSpace(token)
	if token == "" {
		return fmt.Errorf("%w: token is required", ErrInvalidInput)
	}

	now := s.now().UTC()
	v, ok, err := s.deps.Verifications.Consume(ctx, token, now)
	if err != nil {
		return fmt.Errorf("consume verification: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: verification link is invalid or expired", ErrInvalidInput)
	}

	acc, exists, err := s.deps.Accounts.GetByID(ctx, v.UserID)
	if err != nil {
		return fmt.Errorf("get account: %w", err)
	}
	if !exists {
		return fmt.Errorf("%w: account not found", ErrNotFound)
	}
	if acc.EmailVerified {
		return nil
	}
	acc.EmailVerified = true
	acc.UpdatedAt = now
	if err := s.deps.Accounts.Update(ctx, acc); err != nil {
		return fmt.Errorf("mark email verified: %w", err)
	}

	s.logger.InfoContext(ctx, "email verified", "user_id", acc.ID)
	return nil
}

// PurgeExpiredVerifications removes tokens past their expiry.
func (s *AuthService) PurgeExpiredVerifications(ctx context.Context) (int64, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.AuthService.PurgeExpiredVerifications")
	defer span.End()

	n, err := s.deps.Verifications.DeleteExpired(ctx, s.now().UTC())
	if err != nil {
		return 0, fmt.Errorf("delete expired verifications: %w", err)
	}
	return n, nil
}

// discardAccount removes an account whose registration did not complete, so
// the email can be registered again. It runs even if ctx was cancelled.
func (s *AuthService) discardAccount(ctx context.Context, accountID string) {
	ctx = context.WithoutCancel(ctx)
	if err := s.deps.Accounts.Delete(ctx, accountID); err != nil {
		s.logger.ErrorContext(ctx, "discard incomplete registration failed", "user_id", accountID, "error", err)
		return
	}
	s.logger.InfoContext(ctx, "incomplete registration discarded", "user_id", accountID)
}

func (s *AuthService) sendVerification(ctx context.Context, acc account.Account) error {
	token, err := s.deps.Tokens.NewID()
	if err != nil {
		return fmt.Errorf("generate verification token: %w", err)
	}

	now := s.now().UTC()
	v := account.Verification{
		Token:     token,
		UserID:    acc.ID,
		Email:     acc.Email,
		ExpiresAt: now.Add(s.cfg.VerificationTTL),
		CreatedAt: now,
	}
	if err := s.deps.Verifications.Create(ctx, v); err != nil {
		return fmt.Errorf("create verification: %w", err)
	}

	mail := VerificationMail{
		To:     acc.Email,
		UserID: acc.ID,
		Token:  token,
		Link:   verificationLink(s.cfg.VerifyURL, token),
	}
	if err := s.deps.Mailer.SendVerification(ctx, mail); err != nil {
		return fmt.Errorf("%w: send verification mail: %v", ErrDependencyUnavailable, err)
	}
	return nil
}

func verificationLink(base, token string) string {
	if strings.TrimSpace(base) == "" {
		return ""
	}
	u, err := url.Parse(base)
	if err != nil {
		return ""
	}
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()
	return u.String()
}
