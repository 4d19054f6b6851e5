package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/riskibarqy/paintball-league/internal/domain/document"
	"github.com/riskibarqy/paintball-league/internal/domain/navigation"
	"github.com/riskibarqy/paintball-league/internal/infrastructure/repository/memory"
	documentmock "github.com/riskibarqy/paintball-league/internal/mocks/domain/document"
	"github.com/riskibarqy/paintball-league/internal/platform/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestRegistrationService_Register(t *testing.T) {
	t.Parallel()

	f := newAuthFixture(nil)
	docs := memory.NewDocumentStore(nil)
	service := NewRegistrationService(f.service, docs, logging.NewNop())
	ctx := context.Background()

	result, err := service.Register(ctx, RegisterInput{Name: "Ann", Email: "Ann@Example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, RegistrationResult{
		UserID:   "user-1",
		Title:    "Thank you for registering!",
		Message:  "Please confirm your email before logging in. We've sent you a verification link.",
		Redirect: navigation.RouteLogin,
	}, result)

	doc, exists, err := docs.Get(ctx, document.CollectionUsers, "user-1")
	require.NoError(t, err)
	require.True(t, exists)
	assert.Equal(t, map[string]any{"name": "Ann", "email": "ann@example.com"}, doc.Fields)
	assert.Empty(t, f.sessions.issued, "registration does not sign the user in")
}

func TestRegistrationService_Register_FailuresAreGeneric(t *testing.T) {
	t.Parallel()

	t.Run("duplicate email", func(t *testing.T) {
		f := newAuthFixture(nil)
		service := NewRegistrationService(f.service, memory.NewDocumentStore(nil), logging.NewNop())
		_, err := service.Register(context.Background(), RegisterInput{Email: "ann@example.com", Password: "secret1"})
		require.NoError(t, err)

		_, err = service.Register(context.Background(), RegisterInput{Email: "ann@example.com", Password: "secret1"})
		if !errors.Is(err, ErrRegistrationFailed) {
			t.Fatalf("expected ErrRegistrationFailed, got %v", err)
		}
		public, ok := PublicError(err)
		require.True(t, ok)
		assert.Equal(t, "Registration failed", public.Error())
	})

	t.Run("profile write fails", func(t *testing.T) {
		f := newAuthFixture(nil)
		docs := documentmock.NewStore(t)
		docs.On("Set", mock.Anything, document.CollectionUsers, "user-1", mock.Anything, document.SetOptions{}).
			Return(errors.New("write conflict")).Once()
		service := NewRegistrationService(f.service, docs, logging.NewNop())

		ctx := context.Background()
		_, err := service.Register(ctx, RegisterInput{Name: "Ann", Email: "ann@example.com", Password: "secret1"})
		if !errors.Is(err, ErrRegistrationFailed) {
			t.Fatalf("expected ErrRegistrationFailed, got %v", err)
		}

		_, exists, err := f.accounts.GetByID(ctx, "user-1")
		require.NoError(t, err)
		assert.False(t, exists, "the account is removed when the profile cannot be written")
		_, exists, err = f.accounts.GetByEmail(ctx, "ann@example.com")
		require.NoError(t, err)
		assert.False(t, exists)
	})
}

func TestRegistrationService_ContinueWithGoogle_MergesProfile(t *testing.T) {
	t.Parallel()

	f := newAuthFixture(fakeGoogle{identity: GoogleIdentity{Subject: "g-1", Email: "ann@example.com", EmailVerified: true, Name: "Ann G"}})
	docs := memory.NewDocumentStore(nil)
	service := NewRegistrationService(f.service, docs, logging.NewNop())
	ctx := context.Background()

	require.NoError(t, docs.Set(ctx, document.CollectionUsers, "user-1", map[string]any{"bio": "Front player", "name": "Old"}, document.SetOptions{}))

	result, err := service.ContinueWithGoogle(ctx, "google-id-token")
	require.NoError(t, err)
	assert.Equal(t, navigation.RouteDashboard, result.Redirect)
	assert.Equal(t, "user-1", result.Session.UserID)

	doc, _, err := docs.Get(ctx, document.CollectionUsers, "user-1")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"bio": "Front player", "name": "Ann G", "email": "ann@example.com"}, doc.Fields)
}

func TestRegistrationService_ContinueWithGoogle_NoNameSkipsWrite(t *testing.T) {
	t.Parallel()

	f := newAuthFixture(fakeGoogle{identity: GoogleIdentity{Subject: "g-1", Email: "ann@example.com", EmailVerified: true}})
	docs := documentmock.NewStore(t)
	service := NewRegistrationService(f.service, docs, logging.NewNop())

	result, err := service.ContinueWithGoogle(context.Background(), "google-id-token")
	require.NoError(t, err)
	assert.Equal(t, navigation.RouteDashboard, result.Redirect)
	docs.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRegistrationService_ContinueWithGoogle_FailuresAreGeneric(t *testing.T) {
	t.Parallel()

	t.Run("verification fails", func(t *testing.T) {
		f := newAuthFixture(fakeGoogle{err: ErrUnauthorized})
		service := NewRegistrationService(f.service, documentmock.NewStore(t), logging.NewNop())

		_, err := service.ContinueWithGoogle(context.Background(), "google-id-token")
		if !errors.Is(err, ErrGoogleLoginFailed) {
			t.Fatalf("expected ErrGoogleLoginFailed, got %v", err)
		}
		public, ok := PublicError(err)
		require.True(t, ok)
		assert.Equal(t, "Failed to log in with Google", public.Error())
	})

	t.Run("merge fails", func(t *testing.T) {
		f := newAuthFixture(fakeGoogle{identity: GoogleIdentity{Subject: "g-1", Email: "ann@example.com", Name: "Ann"}})
		docs := documentmock.NewStore(t)
		docs.On("Set", mock.Anything, document.CollectionUsers, "user-1", mock.Anything, document.SetOptions{Merge: true}).
			Return(errors.New("unavailable")).Once()
		service := NewRegistrationService(f.service, docs, logging.NewNop())

		_, err := service.ContinueWithGoogle(context.Background(), "google-id-token")
		if !errors.Is(err, ErrGoogleLoginFailed) {
			t.Fatalf("expected ErrGoogleLoginFailed, got %v", err)
		}
	})
}
