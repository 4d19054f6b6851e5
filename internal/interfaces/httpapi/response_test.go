package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/paintball-league/internal/usecase"
)

func TestWriteSuccess_GoogleEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	writeSuccess(context.Background(), rec, http.StatusOK, map[string]string{"status": "ok"})

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var body map[string]any
	if err := sonic.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response body: %v", err)
	}

	if got, _ := body["apiVersion"].(string); got != "2.0" {
		t.Fatalf("expected apiVersion=2.0, got %v", body["apiVersion"])
	}
	if _, ok := body["data"]; !ok {
		t.Fatalf("expected data key in success response")
	}
	if _, ok := body["error"]; ok {
		t.Fatalf("did not expect error key in success response")
	}
}

func TestWriteError_GoogleEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(context.Background(), rec, fmt.Errorf("%w: bad payload", usecase.ErrInvalidInput))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}

	var body map[string]any
	if err := sonic.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response body: %v", err)
	}

	errorObj, ok := body["error"].(map[string]any)
	if !ok {
		t.Fatalf("expected error object in response")
	}
	if got, _ := errorObj["status"].(string); got != "INVALID_ARGUMENT" {
		t.Fatalf("expected error status INVALID_ARGUMENT, got %v", errorObj["status"])
	}
	items, _ := errorObj["errors"].([]any)
	if len(items) != 1 {
		t.Fatalf("expected one error item, got %v", errorObj["errors"])
	}
	if domain, _ := items[0].(map[string]any)["domain"].(string); domain != errorDomain {
		t.Fatalf("unexpected error domain %q", domain)
	}
}

func TestWriteError_StatusMapping(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantMessage string
	}{
		{
			name:        "registration hides cause",
			err:         fmt.Errorf("%w: %v", usecase.ErrRegistrationFailed, fmt.Errorf("%w: email taken", usecase.ErrConflict)),
			wantStatus:  http.StatusBadRequest,
			wantMessage: "Registration failed",
		},
		{
			name:        "login hides cause",
			err:         fmt.Errorf("%w: unknown email", usecase.ErrAuthFailed),
			wantStatus:  http.StatusUnauthorized,
			wantMessage: "Invalid email or password",
		},
		{
			name:        "google hides cause",
			err:         fmt.Errorf("%w: circuit open", usecase.ErrGoogleLoginFailed),
			wantStatus:  http.StatusUnauthorized,
			wantMessage: "Failed to log in with Google",
		},
		{
			name:        "conflict",
			err:         fmt.Errorf("%w: account", usecase.ErrConflict),
			wantStatus:  http.StatusConflict,
			wantMessage: "resource already exists: account",
		},
		{
			name:        "too large",
			err:         usecase.ErrPayloadTooLarge,
			wantStatus:  http.StatusRequestEntityTooLarge,
			wantMessage: "payload too large",
		},
		{
			name:        "dependency",
			err:         fmt.Errorf("%w: redis down", usecase.ErrDependencyUnavailable),
			wantStatus:  http.StatusServiceUnavailable,
			wantMessage: "dependency unavailable: redis down",
		},
		{
			name:        "unknown errors are masked",
			err:         errors.New("pq: connection refused"),
			wantStatus:  http.StatusInternalServerError,
			wantMessage: "internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeError(context.Background(), rec, tt.err)
			if rec.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d", tt.wantStatus, rec.Code)
			}

			var body googleResponseEnvelope
			if err := sonic.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("unmarshal response body: %v", err)
			}
			if body.Error == nil || body.Error.Message != tt.wantMessage {
				t.Fatalf("unexpected error body: %s", rec.Body.String())
			}
		})
	}
}
