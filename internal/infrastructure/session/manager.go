package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/riskibarqy/paintball-league/internal/domain/account"
	"github.com/riskibarqy/paintball-league/internal/domain/user"
	"github.com/riskibarqy/paintball-league/internal/platform/id"
	"github.com/riskibarqy/paintball-league/internal/platform/logging"
	"github.com/riskibarqy/paintball-league/internal/usecase"
)

const tokenType = "Bearer"

type Config struct {
	Secret []byte
	Issuer string
	TTL    time.Duration
}

// Manager issues HS256 access tokens and checks them against a revocation
// store.
type Manager struct {
	secret      []byte
	issuer      string
	ttl         time.Duration
	ids         id.Generator
	revocations RevocationStore
	logger      *logging.Logger
	now         func() time.Time
}

func NewManager(cfg Config, ids id.Generator, revocations RevocationStore, logger *logging.Logger) *Manager {
	if logger == nil {
		logger = logging.Default()
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	return &Manager{
		secret:      cfg.Secret,
		issuer:      strings.TrimSpace(cfg.Issuer),
		ttl:         ttl,
		ids:         ids,
		revocations: revocations,
		logger:      logger.Named("session"),
		now:         time.Now,
	}
}

func (m *Manager) Issue(_ context.Context, acc account.Account) (usecase.Session, error) {
	tokenID, err := m.ids.NewID()
	if err != nil {
		return usecase.Session{}, fmt.Errorf("generate token id: %w", err)
	}

	issuedAt := m.now()
	expiresAt := issuedAt.Add(m.ttl)
	claims := jwt.MapClaims{
		"sub":            acc.ID,
		"email":          acc.Email,
		"email_verified": acc.EmailVerified,
		"jti":            tokenID,
		"iss":            m.issuer,
		"iat":            issuedAt.Unix(),
		"exp":            expiresAt.Unix(),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return usecase.Session{}, fmt.Errorf("sign access token: %w", err)
	}

	return usecase.Session{
		AccessToken: signed,
		TokenType:   tokenType,
		TokenID:     tokenID,
		UserID:      acc.ID,
		ExpiresAt:   time.Unix(expiresAt.Unix(), 0).UTC(),
	}, nil
}

// Revoke is a no-op for tokens that already expired.
func (m *Manager) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	tokenID = strings.TrimSpace(tokenID)
	if tokenID == "" {
		return fmt.Errorf("%w: token id is required", usecase.ErrInvalidInput)
	}
	ttl := expiresAt.Sub(m.now())
	if ttl <= 0 {
		return nil
	}
	if err := m.revocations.Revoke(ctx, tokenID, ttl); err != nil {
		return fmt.Errorf("%w: revoke session: %v", usecase.ErrDependencyUnavailable, err)
	}
	return nil
}

// VerifyAccessToken resolves a bearer token to the principal it was issued for.
func (m *Manager) VerifyAccessToken(ctx context.Context, token string) (user.Principal, error) {
	parsed, err := jwt.Parse(strings.TrimSpace(token), func(t *jwt.Token) (any, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(m.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || !parsed.Valid {
		return user.Principal{}, fmt.Errorf("%w: invalid access token", usecase.ErrUnauthorized)
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return user.Principal{}, fmt.Errorf("%w: invalid token claims", usecase.ErrUnauthorized)
	}
	subject, _ := claims.GetSubject()
	tokenID, _ := claims["jti"].(string)
	if strings.TrimSpace(subject) == "" || strings.TrimSpace(tokenID) == "" {
		return user.Principal{}, fmt.Errorf("%w: invalid token claims", usecase.ErrUnauthorized)
	}
	expiresAt, err := claims.GetExpirationTime()
	if err != nil || expiresAt == nil {
		return user.Principal{}, fmt.Errorf("%w: invalid token expiry", usecase.ErrUnauthorized)
	}

	revoked, err := m.revocations.IsRevoked(ctx, tokenID)
	if err != nil {
		m.logger.WarnContext(ctx, "session revocation lookup failed", "error", err)
		return user.Principal{}, fmt.Errorf("%w: session revocation lookup: %v", usecase.ErrDependencyUnavailable, err)
	}
	if revoked {
		return user.Principal{}, fmt.Errorf("%w: session has been revoked", usecase.ErrUnauthorized)
	}

	email, _ := claims["email"].(string)
	verified, _ := claims["email_verified"].(bool)
	return user.Principal{
		UserID:        subject,
		Email:         email,
		EmailVerified: verified,
		TokenID:       tokenID,
		ExpiresAt:     expiresAt.Time.UTC(),
	}, nil
}

var errEmptySecret = errors.New("session secret is empty")

// ValidateSecret rejects configurations that would sign tokens with no key.
func ValidateSecret(secret []byte) error {
	if len(secret) == 0 {
		return errEmptySecret
	}
	return nil
}
