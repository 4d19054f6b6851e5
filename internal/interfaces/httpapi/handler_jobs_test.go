package httpapi

import (
	"bytes"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunSendVerificationJob(t *testing.T) {
	env := newTestEnv(t)
	const body = `{"to":"ann@example.com","user_id":"u1","token":"tok-1","link":"http://localhost:8080/v1/auth/verify?token=tok-1"}`

	rec := env.do(t, http.MethodPost, "/v1/internal/jobs/send-verification", bytes.NewBufferString(body), nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, env.mailer.sent())

	rec = env.do(t, http.MethodPost, "/v1/internal/jobs/send-verification", bytes.NewBufferString(body), map[string]string{
		internalJobTokenHeader: testJobToken,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, true, decodeData(t, rec)["delivered"])

	mails := env.mailer.sent()
	require.Len(t, mails, 1)
	assert.Equal(t, "tok-1", mails[0].Token)
	assert.Equal(t, "u1", mails[0].UserID)

	rec = env.do(t, http.MethodPost, "/v1/internal/jobs/send-verification", bytes.NewBufferString(`{"to":"ann@example.com"}`), map[string]string{
		internalJobTokenHeader: testJobToken,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRunPurgeVerificationsJob(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/v1/internal/jobs/purge-verifications", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(t, http.MethodPost, "/v1/internal/jobs/purge-verifications", nil, map[string]string{
		internalJobTokenHeader: testJobToken,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, float64(0), decodeData(t, rec)["removed"])
}
