package httpapi

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riskibarqy/paintball-league/internal/domain/document"
	"github.com/riskibarqy/paintball-league/internal/domain/objectstore"
	"github.com/riskibarqy/paintball-league/internal/domain/profile"
	"github.com/riskibarqy/paintball-league/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/paintball-league/internal/infrastructure/session"
	"github.com/riskibarqy/paintball-league/internal/infrastructure/storage"
	"github.com/riskibarqy/paintball-league/internal/platform/id"
	"github.com/riskibarqy/paintball-league/internal/platform/logging"
	"github.com/riskibarqy/paintball-league/internal/platform/password"
	"github.com/riskibarqy/paintball-league/internal/usecase"
)

const (
	testBaseURL      = "http://localhost:8080"
	testJobToken     = "job-token"
	testMaxUpload    = 1024
	testGoogleToken  = "google-good-token"
	testUserPassword = "secret-pass"
)

type capturingMailer struct {
	mu    sync.Mutex
	mails []usecase.VerificationMail
}

func (m *capturingMailer) SendVerification(_ context.Context, mail usecase.VerificationMail) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mails = append(m.mails, mail)
	return nil
}

func (m *capturingMailer) sent() []usecase.VerificationMail {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]usecase.VerificationMail(nil), m.mails...)
}

type stubGoogle struct{}

func (stubGoogle) Verify(_ context.Context, idToken string) (usecase.GoogleIdentity, error) {
	if idToken != testGoogleToken {
		return usecase.GoogleIdentity{}, fmt.Errorf("%w: token rejected", usecase.ErrUnauthorized)
	}
	return usecase.GoogleIdentity{
		Subject:       "google-sub-1",
		Email:         "gina@example.com",
		EmailVerified: true,
		Name:          "Gina",
	}, nil
}

// failingRevocations fails every revoke while down is set.
type failingRevocations struct {
	session.RevocationStore
	down atomic.Bool
}

func (f *failingRevocations) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if f.down.Load() {
		return errors.New("dial tcp 10.0.0.7:6379: connect: connection refused")
	}
	return f.RevocationStore.Revoke(ctx, tokenID, ttl)
}

type testEnv struct {
	router      http.Handler
	docs        *memory.DocumentStore
	objects     *storage.MemoryStore
	mailer      *capturingMailer
	revocations *failingRevocations
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := logging.NewNop()
	mailer := &capturingMailer{}
	revocations := &failingRevocations{RevocationStore: session.NewMemoryRevocationStore()}
	sessions := session.NewManager(session.Config{
		Secret: []byte("0123456789abcdef0123456789abcdef"),
		Issuer: "paintball-league-test",
		TTL:    time.Hour,
	}, id.NewRandomGenerator(), revocations, logger)

	auth := usecase.NewAuthService(usecase.AuthDependencies{
		Accounts:      memory.NewAccountRepository(),
		Verifications: memory.NewVerificationRepository(),
		Hasher:        password.NewHasher(4),
		Sessions:      sessions,
		Google:        stubGoogle{},
		Mailer:        mailer,
		Logger:        logger,
	}, usecase.AuthConfig{
		VerificationTTL: time.Hour,
		VerifyURL:       testBaseURL + "/v1/auth/verify",
	})

	docs := memory.NewDocumentStore(memory.SeedDocuments())
	objects := storage.NewMemoryStore()
	profiles := usecase.NewProfileService(docs, objects, storage.NewURLResolver(objects, testBaseURL), nil,
		usecase.ProfileServiceConfig{ReadTimeout: time.Second, MaxPictureSize: testMaxUpload}, logger)

	handler := NewHandler(
		auth,
		usecase.NewRegistrationService(auth, docs, logger),
		profiles,
		usecase.NewDiagnosticsService(docs),
		usecase.NewMailDeliveryService(mailer),
		testMaxUpload,
		logger,
	)

	return &testEnv{
		router: NewRouter(handler, sessions, logger, RouterConfig{
			SwaggerEnabled:     true,
			CORSAllowedOrigins: []string{"*"},
			InternalJobToken:   testJobToken,
		}),
		docs:        docs,
		objects:     objects,
		mailer:      mailer,
		revocations: revocations,
	}
}

func (e *testEnv) do(t *testing.T, method, path string, body io.Reader, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) doJSON(t *testing.T, method, path string, payload any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var body io.Reader
	if payload != nil {
		raw, err := sonic.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	}
	headers := map[string]string{"Content-Type": "application/json"}
	if token != "" {
		headers["Authorization"] = "Bearer " + token
	}
	return e.do(t, method, path, body, headers)
}

func (e *testEnv) register(t *testing.T, email string) string {
	t.Helper()
	rec := e.doJSON(t, http.MethodPost, "/v1/auth/register", map[string]string{
		"name":     "Ann",
		"email":    email,
		"password": testUserPassword,
	}, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	userID, _ := decodeData(t, rec)["userId"].(string)
	require.NotEmpty(t, userID)
	return userID
}

func (e *testEnv) login(t *testing.T, email string) string {
	t.Helper()
	rec := e.doJSON(t, http.MethodPost, "/v1/auth/login", map[string]string{
		"email":    email,
		"password": testUserPassword,
	}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	data := decodeData(t, rec)
	assert.Equal(t, "/dashboard", data["redirect"])
	sess, _ := data["session"].(map[string]any)
	token, _ := sess["accessToken"].(string)
	require.NotEmpty(t, token)
	return token
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, sonic.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	data, ok := decodeBody(t, rec)["data"].(map[string]any)
	require.True(t, ok, "expected data object in %s", rec.Body.String())
	return data
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	errObj, ok := decodeBody(t, rec)["error"].(map[string]any)
	require.True(t, ok, "expected error object in %s", rec.Body.String())
	msg, _ := errObj["message"].(string)
	return msg
}

func TestHealthz(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/healthz", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
}

func TestLogout_DependencyFailureShowsGenericAlert(t *testing.T) {
	env := newTestEnv(t)

	rec := env.doJSON(t, http.MethodPost, "/v1/auth/register", map[string]string{
		"name":     "Ann",
		"email":    "ann@example.com",
		"password": testUserPassword,
	}, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	token := env.login(t, "ann@example.com")

	env.revocations.down.Store(true)
	rec = env.doJSON(t, http.MethodPost, "/v1/auth/logout", nil, token)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "Logout failed", errorMessage(t, rec))
	assert.NotContains(t, rec.Body.String(), "6379")
	assert.NotContains(t, rec.Body.String(), "dependency unavailable")

	env.revocations.down.Store(false)
	rec = env.doJSON(t, http.MethodPost, "/v1/auth/logout", nil, token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "/", decodeData(t, rec)["redirect"])
}

func TestAuthFlow_RegisterVerifyLogout(t *testing.T) {
	env := newTestEnv(t)

	rec := env.doJSON(t, http.MethodPost, "/v1/auth/register", map[string]string{
		"name":     "Ann",
		"email":    "ann@example.com",
		"password": testUserPassword,
	}, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	data := decodeData(t, rec)
	assert.Equal(t, usecase.RegistrationTitle, data["title"])
	assert.Equal(t, usecase.RegistrationMessage, data["message"])
	assert.Equal(t, "/login", data["redirect"])

	mails := env.mailer.sent()
	require.Len(t, mails, 1)
	assert.Equal(t, "ann@example.com", mails[0].To)

	token := env.login(t, "ann@example.com")

	rec = env.doJSON(t, http.MethodGet, "/v1/auth/verification-status", nil, token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	data = decodeData(t, rec)
	assert.Equal(t, false, data["verified"])
	assert.Equal(t, usecase.VerifyEmailPrompt, data["message"])
	assert.Len(t, env.mailer.sent(), 2, "unverified status check resends the mail")

	rec = env.do(t, http.MethodGet, "/v1/auth/verify?token="+mails[0].Token, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "/login", decodeData(t, rec)["redirect"])

	rec = env.do(t, http.MethodGet, "/v1/auth/verify?token="+mails[0].Token, nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "verification tokens are single use")

	rec = env.doJSON(t, http.MethodGet, "/v1/auth/verification-status", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	data = decodeData(t, rec)
	assert.Equal(t, true, data["verified"])
	assert.Equal(t, "/dashboard", data["redirect"])

	rec = env.doJSON(t, http.MethodPost, "/v1/auth/logout", nil, token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "/", decodeData(t, rec)["redirect"])

	rec = env.doJSON(t, http.MethodGet, "/v1/me/profile", nil, token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code, "revoked token must be rejected")
}

func TestRegister_FailuresAreGeneric(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "dup@example.com")

	tests := []struct {
		name string
		body string
	}{
		{name: "duplicate email", body: `{"name":"A","email":"dup@example.com","password":"secret-pass"}`},
		{name: "weak password", body: `{"name":"A","email":"new@example.com","password":"123"}`},
		{name: "invalid email", body: `{"name":"A","email":"not-an-email","password":"secret-pass"}`},
		{name: "malformed json", body: `{"email":`},
		{name: "unknown field", body: `{"email":"x@example.com","password":"secret-pass","role":"admin"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, http.MethodPost, "/v1/auth/register", bytes.NewBufferString(tt.body), nil)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, "Registration failed", errorMessage(t, rec))
		})
	}
}

func TestLogin_FailuresAreGeneric(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "ann@example.com")

	for _, body := range []string{
		`{"email":"ann@example.com","password":"wrong-pass"}`,
		`{"email":"nobody@example.com","password":"secret-pass"}`,
		`{"email":"ann@example.com"}`,
	} {
		rec := env.do(t, http.MethodPost, "/v1/auth/login", bytes.NewBufferString(body), nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, body)
		assert.Equal(t, "Invalid email or password", errorMessage(t, rec), body)
	}
}

func TestLoginWithGoogle(t *testing.T) {
	env := newTestEnv(t)

	rec := env.doJSON(t, http.MethodPost, "/v1/auth/google", map[string]string{"id_token": testGoogleToken}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	data := decodeData(t, rec)
	assert.Equal(t, "/dashboard", data["redirect"])
	sess, _ := data["session"].(map[string]any)
	userID, _ := sess["userId"].(string)
	require.NotEmpty(t, userID)

	doc, exists, err := env.docs.Get(context.Background(), document.CollectionUsers, userID)
	require.NoError(t, err)
	require.True(t, exists)
	assert.Equal(t, "Gina", doc.Fields[profile.FieldName])
	assert.Equal(t, "gina@example.com", doc.Fields[profile.FieldEmail])

	rec = env.doJSON(t, http.MethodPost, "/v1/auth/google", map[string]string{"id_token": "forged"}, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Failed to log in with Google", errorMessage(t, rec))
}

func TestProtectedRoutes_RequireBearerToken(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name   string
		method string
		path   string
		header string
	}{
		{name: "profile without header", method: http.MethodGet, path: "/v1/me/profile"},
		{name: "profile with basic auth", method: http.MethodGet, path: "/v1/me/profile", header: "Basic abc"},
		{name: "status with garbage token", method: http.MethodGet, path: "/v1/auth/verification-status", header: "Bearer garbage"},
		{name: "logout without header", method: http.MethodPost, path: "/v1/auth/logout"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			headers := map[string]string{}
			if tt.header != "" {
				headers["Authorization"] = tt.header
			}
			rec := env.do(t, tt.method, tt.path, nil, headers)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestGetProfile_DefaultsAndStoredFields(t *testing.T) {
	env := newTestEnv(t)
	userID := env.register(t, "ann@example.com")
	token := env.login(t, "ann@example.com")

	rec := env.doJSON(t, http.MethodGet, "/v1/me/profile", nil, token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	data := decodeData(t, rec)
	assert.Equal(t, "Ann", data["name"])
	assert.Equal(t, profile.DefaultBio, data["bio"])
	assert.Equal(t, profile.DefaultProfilePicture, data["profilePicture"])
	assert.Equal(t, false, data["isPro"])
	assert.Len(t, data["badges"], len(profile.DefaultBadges()))

	err := env.docs.Set(context.Background(), document.CollectionUsers, userID, map[string]any{
		profile.FieldBio:     "  Front player  ",
		profile.FieldIsPro:   "yes",
		profile.FieldBadges:  []any{"MVP", 3.0},
		profile.FieldCountry: "   ",
	}, document.SetOptions{Merge: true})
	require.NoError(t, err)

	rec = env.doJSON(t, http.MethodGet, "/v1/me/profile", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	data = decodeData(t, rec)
	assert.Equal(t, "  Front player  ", data["bio"])
	assert.Equal(t, false, data["isPro"])
	assert.Equal(t, []any{"MVP", "3"}, data["badges"])
	assert.Equal(t, profile.DefaultCountry, data["country"])
}

func TestProfilePicture_UploadAndDownload(t *testing.T) {
	env := newTestEnv(t)
	userID := env.register(t, "ann@example.com")
	token := env.login(t, "ann@example.com")

	png := append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, 32)...)
	rec := env.do(t, http.MethodPut, "/v1/me/profile-picture", bytes.NewReader(png), map[string]string{
		"Authorization": "Bearer " + token,
		"Content-Type":  "image/png",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	wantURL := testBaseURL + "/v1/storage/user/" + userID + "/profile_200x200"
	assert.Equal(t, wantURL, decodeData(t, rec)["profilePicture"])

	rec = env.doJSON(t, http.MethodGet, "/v1/me/profile", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, wantURL, decodeData(t, rec)["profilePicture"])

	rec = env.do(t, http.MethodGet, "/v1/storage/user/"+userID+"/profile_200x200", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Contains(t, rec.Header().Get("Content-Security-Policy"), "sandbox")
	assert.Equal(t, png, rec.Body.Bytes())

	rec = env.do(t, http.MethodGet, "/v1/storage/user/nobody/profile_200x200", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodPut, "/v1/me/profile-picture", bytes.NewReader(bytes.Repeat([]byte{1}, testMaxUpload+1)), map[string]string{
		"Authorization": "Bearer " + token,
		"Content-Type":  "image/png",
	})
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)

	rec = env.do(t, http.MethodPut, "/v1/me/profile-picture", bytes.NewBufferString("plain text"), map[string]string{
		"Authorization": "Bearer " + token,
		"Content-Type":  "text/plain",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProfilePicture_RejectsSVG(t *testing.T) {
	env := newTestEnv(t)
	userID := env.register(t, "svg@example.com")
	token := env.login(t, "svg@example.com")

	svg := `<svg xmlns="http://www.w3.org/2000/svg"><script>alert(document.cookie)</script></svg>`
	rec := env.do(t, http.MethodPut, "/v1/me/profile-picture", bytes.NewBufferString(svg), map[string]string{
		"Authorization": "Bearer " + token,
		"Content-Type":  "image/svg+xml",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())

	_, found, err := env.objects.Get(context.Background(), "user/"+userID+"/profile_200x200")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestDownloadObject_UnknownTypeIsNotRendered(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, env.objects.Put(context.Background(), objectstore.Object{
		Path:        "user/u9/profile_200x200",
		ContentType: "image/svg+xml",
		Data:        []byte("<svg/>"),
	}))

	rec := env.do(t, http.MethodGet, "/v1/storage/user/u9/profile_200x200", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/octet-stream", rec.Header().Get("Content-Type"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
}

func TestSwaggerRoutes(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/openapi.yaml", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "/api/firebase-test")

	rec = env.do(t, http.MethodGet, "/docs", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Paintball League API Docs")
}
