package httpapi

import (
	"context"
	"fmt"
	"net/http"

	"github.com/riskibarqy/paintball-league/internal/domain/navigation"
	"github.com/riskibarqy/paintball-league/internal/usecase"
)

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Login")
	defer span.End()

	var req loginRequest
	if err := h.decodeAuthRequest(ctx, w, r, &req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: %v", usecase.ErrAuthFailed, err))
		return
	}

	session, err := h.authService.LoginWithEmail(ctx, req.Email, req.Password)
	if err != nil {
		h.logger.InfoContext(ctx, "login rejected", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, loginResponseDTO{
		Session:  sessionToDTO(session),
		Redirect: navigation.RouteDashboard,
	})
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Register")
	defer span.End()

	var req registerRequest
	if err := h.decodeAuthRequest(ctx, w, r, &req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: %v", usecase.ErrRegistrationFailed, err))
		return
	}

	result, err := h.registrationService.Register(ctx, usecase.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, registrationResponseDTO{
		UserID:   result.UserID,
		Title:    result.Title,
		Message:  result.Message,
		Redirect: result.Redirect,
	})
}

func (h *Handler) LoginWithGoogle(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.LoginWithGoogle")
	defer span.End()

	var req googleLoginRequest
	if err := h.decodeAuthRequest(ctx, w, r, &req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: %v", usecase.ErrGoogleLoginFailed, err))
		return
	}

	result, err := h.registrationService.ContinueWithGoogle(ctx, req.IDToken)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, loginResponseDTO{
		Session:  sessionToDTO(result.Session),
		Redirect: result.Redirect,
	})
}

// VerifyEmail is the target of the mailed verification link.
func (h *Handler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.VerifyEmail")
	defer span.End()

	if err := h.authService.VerifyEmail(ctx, r.URL.Query().Get("token")); err != nil {
		h.logger.WarnContext(ctx, "verify email failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, verificationStatusDTO{
		Verified: true,
		Redirect: navigation.RouteLogin,
	})
}

func (h *Handler) GetVerificationStatus(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetVerificationStatus")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	status, err := h.authService.CheckEmailVerification(ctx, principal)
	if err != nil {
		h.logger.ErrorContext(ctx, "check email verification failed", "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, verificationStatusDTO{
		Verified: status.Verified,
		Redirect: status.Redirect,
		Message:  status.Message,
	})
}

// Logout signs the caller out through the sidebar's logout flow.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Logout")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var logoutErr error
	result := navigation.NewSidebar().Logout(ctx, func(ctx context.Context) error {
		logoutErr = h.authService.Logout(ctx, principal)
		if public, ok := usecase.PublicError(logoutErr); ok {
			return public
		}
		return logoutErr
	})
	if result.Alert != "" {
		h.logger.WarnContext(ctx, "logout failed", "user_id", principal.UserID, "error", logoutErr)
		kind := classifyError(logoutErr)
		message := result.Alert
		if kind.code == http.StatusInternalServerError {
			message = internalErrMessage
		}
		writeErrorEnvelope(ctx, w, kind, message)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, redirectDTO{Redirect: result.Redirect})
}

func (h *Handler) decodeAuthRequest(ctx context.Context, w http.ResponseWriter, r *http.Request, dst any) error {
	if err := decodeJSON(w, r, dst); err != nil {
		return err
	}
	return h.validateRequest(ctx, dst)
}
