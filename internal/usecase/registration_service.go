package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/riskibarqy/paintball-league/internal/domain/document"
	"github.com/riskibarqy/paintball-league/internal/domain/navigation"
	"github.com/riskibarqy/paintball-league/internal/domain/profile"
	"github.com/riskibarqy/paintball-league/internal/platform/logging"
)

const (
	RegistrationTitle   = "Thank you for registering!"
	RegistrationMessage = "Please confirm your email before logging in. We've sent you a verification link."
)

type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

type RegistrationResult struct {
	UserID   string
	Title    string
	Message  string
	Redirect string
}

type GoogleLoginResult struct {
	Session  Session
	Redirect string
}

type RegistrationService struct {
	auth   *AuthService
	docs   document.Store
	logger *logging.Logger
}

func NewRegistrationService(auth *AuthService, docs document.Store, logger *logging.Logger) *RegistrationService {
	if logger == nil {
		logger = logging.Default()
	}
	return &RegistrationService{auth: auth, docs: docs, logger: logger.Named("registration")}
}

// Register creates the account, writes its profile document and leaves the
// user signed out until the email is verified. Any failure is reported as
// ErrRegistrationFailed.
func (s *RegistrationService) Register(ctx context.Context, input RegisterInput) (RegistrationResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RegistrationService.Register")
	defer span.End()

	acc, err := s.auth.RegisterWithEmail(ctx, input.Email, input.Password)
	if err != nil {
		s.logger.WarnContext(ctx, "registration failed", "error", err)
		return RegistrationResult{}, fmt.Errorf("%w: %v", ErrRegistrationFailed, err)
	}

	fields := map[string]any{
		profile.FieldName:  input.Name,
		profile.FieldEmail: acc.Email,
	}
	if err := s.docs.Set(ctx, document.CollectionUsers, acc.ID, fields, document.SetOptions{}); err != nil {
		s.logger.ErrorContext(ctx, "write profile document failed", "user_id", acc.ID, "error", err)
		s.auth.discardAccount(ctx, acc.ID)
		return RegistrationResult{}, fmt.Errorf("%w: write profile: %v", ErrRegistrationFailed, err)
	}

	return RegistrationResult{
		UserID:   acc.ID,
		Title:    RegistrationTitle,
		Message:  RegistrationMessage,
		Redirect: navigation.RouteLogin,
	}, nil
}

// ContinueWithGoogle signs in with Google and merges the display name and
// email into the profile document when a display name is present. Other
// stored fields are never cleared. Any failure is reported as
// ErrGoogleLoginFailed.
func (s *RegistrationService) ContinueWithGoogle(ctx context.Context, idToken string) (GoogleLoginResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RegistrationService.ContinueWithGoogle")
	defer span.End()

	session, identity, err := s.auth.LoginWithGoogle(ctx, idToken)
	if err != nil {
		s.logger.WarnContext(ctx, "google login failed", "error", err)
		return GoogleLoginResult{}, fmt.Errorf("%w: %v", ErrGoogleLoginFailed, err)
	}

	if name := strings.TrimSpace(identity.Name); name != "" {
		fields := map[string]any{
			profile.FieldName:  identity.Name,
			profile.FieldEmail: identity.Email,
		}
		if err := s.docs.Set(ctx, document.CollectionUsers, session.UserID, fields, document.SetOptions{Merge: true}); err != nil {
			s.logger.ErrorContext(ctx, "merge profile document failed", "user_id", session.UserID, "error", err)
			return GoogleLoginResult{}, fmt.Errorf("%w: merge profile: %v", ErrGoogleLoginFailed, err)
		}
	}

	return GoogleLoginResult{Session: session, Redirect: navigation.RouteDashboard}, nil
}
