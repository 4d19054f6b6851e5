package httpapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	sonic "github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"
	"github.com/riskibarqy/paintball-league/internal/platform/logging"
	"github.com/riskibarqy/paintball-league/internal/usecase"
)

const (
	maxJSONBodyBytes         = 1 << 20
	defaultMaxUploadBodySize = 5 << 20
)

type Handler struct {
	authService         *usecase.AuthService
	registrationService *usecase.RegistrationService
	profileService      *usecase.ProfileService
	diagnosticsService  *usecase.DiagnosticsService
	mailService         *usecase.MailDeliveryService
	maxUploadBytes      int64
	logger              *logging.Logger
	validator           *validator.Validate
}

func NewHandler(
	authService *usecase.AuthService,
	registrationService *usecase.RegistrationService,
	profileService *usecase.ProfileService,
	diagnosticsService *usecase.DiagnosticsService,
	mailService *usecase.MailDeliveryService,
	maxUploadBytes int64,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	if maxUploadBytes <= 0 {
		maxUploadBytes = defaultMaxUploadBodySize
	}

	return &Handler{
		authService:         authService,
		registrationService: registrationService,
		profileService:      profileService,
		diagnosticsService:  diagnosticsService,
		mailService:         mailService,
		maxUploadBytes:      maxUploadBytes,
		logger:              logger.Named("httpapi"),
		validator:           validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

// decodeJSON reads a single JSON object and rejects unknown fields.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	body := http.MaxBytesReader(w, r.Body, maxJSONBodyBytes)
	decoder := sonic.ConfigDefault.NewDecoder(body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			return fmt.Errorf("%w: request body exceeds %d bytes", usecase.ErrPayloadTooLarge, tooLarge.Limit)
		case errors.Is(err, io.EOF):
			return fmt.Errorf("%w: request body is empty", usecase.ErrInvalidInput)
		default:
			return fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
		}
	}
	return nil
}
