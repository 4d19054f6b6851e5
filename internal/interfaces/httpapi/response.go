package httpapi

import (
	"context"
	"errors"
	"net/http"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/paintball-league/internal/usecase"
)

const (
	googleAPIVersion   = "2.0"
	errorDomain        = "paintball-league"
	internalErrMessage = "internal server error"
)

type googleResponseEnvelope struct {
	APIVersion string           `json:"apiVersion"`
	Data       any              `json:"data,omitempty"`
	Error      *googleErrorBody `json:"error,omitempty"`
}

type googleErrorBody struct {
	Code    int               `json:"code"`
	Message string            `json:"message"`
	Status  string            `json:"status"`
	Errors  []googleErrorItem `json:"errors,omitempty"`
}

type googleErrorItem struct {
	Domain  string `json:"domain"`
	Reason  string `json:"reason"`
	Message string `json:"message"`
}

// errorKind is the wire classification of a usecase error.
type errorKind struct {
	code   int
	reason string
	status string
}

var internalKind = errorKind{http.StatusInternalServerError, "internalError", "INTERNAL"}

// errorKinds is matched in order; the first sentinel found with errors.Is wins.
var errorKinds = []struct {
	target error
	kind   errorKind
}{
	{usecase.ErrRegistrationFailed, errorKind{http.StatusBadRequest, "registrationFailed", "FAILED_PRECONDITION"}},
	{usecase.ErrAuthFailed, errorKind{http.StatusUnauthorized, "authenticationFailed", "UNAUTHENTICATED"}},
	{usecase.ErrGoogleLoginFailed, errorKind{http.StatusUnauthorized, "authenticationFailed", "UNAUTHENTICATED"}},
	{usecase.ErrLogoutFailed, errorKind{http.StatusServiceUnavailable, "logoutFailed", "UNAVAILABLE"}},
	{usecase.ErrInvalidInput, errorKind{http.StatusBadRequest, "invalidInput", "INVALID_ARGUMENT"}},
	{usecase.ErrNotFound, errorKind{http.StatusNotFound, "notFound", "NOT_FOUND"}},
	{usecase.ErrUnauthorized, errorKind{http.StatusUnauthorized, "unauthorized", "UNAUTHENTICATED"}},
	{usecase.ErrConflict, errorKind{http.StatusConflict, "conflict", "ALREADY_EXISTS"}},
	{usecase.ErrPayloadTooLarge, errorKind{http.StatusRequestEntityTooLarge, "payloadTooLarge", "OUT_OF_RANGE"}},
	{usecase.ErrDependencyUnavailable, errorKind{http.StatusServiceUnavailable, "dependencyUnavailable", "UNAVAILABLE"}},
}

func classifyError(err error) errorKind {
	for _, candidate := range errorKinds {
		if errors.Is(err, candidate.target) {
			return candidate.kind
		}
	}
	return internalKind
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	_, span := startSpan(ctx, "httpapi.writeJSON")
	defer span.End()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = sonic.ConfigDefault.NewEncoder(w).Encode(payload)
}

func writeSuccess(ctx context.Context, w http.ResponseWriter, status int, data any) {
	writeJSON(ctx, w, status, googleResponseEnvelope{APIVersion: googleAPIVersion, Data: data})
}

// writeError maps err onto the envelope. Authentication failures expose only
// their generic message and 500s never leak the cause.
func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	kind := classifyError(err)
	message := err.Error()
	if public, ok := usecase.PublicError(err); ok {
		message = public.Error()
	}
	if kind.code == http.StatusInternalServerError {
		message = internalErrMessage
	}
	writeErrorEnvelope(ctx, w, kind, message)
}

func writeInternalError(ctx context.Context, w http.ResponseWriter) {
	writeErrorEnvelope(ctx, w, internalKind, internalErrMessage)
}

func writeErrorEnvelope(ctx context.Context, w http.ResponseWriter, kind errorKind, message string) {
	writeJSON(ctx, w, kind.code, googleResponseEnvelope{
		APIVersion: googleAPIVersion,
		Error: &googleErrorBody{
			Code:    kind.code,
			Message: message,
			Status:  kind.status,
			Errors:  []googleErrorItem{{Domain: errorDomain, Reason: kind.reason, Message: message}},
		},
	})
}
