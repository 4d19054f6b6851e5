package google

import (
	"crypto/sha256"
	"encoding/hex"
	stderrors "errors"

	"github.com/valyala/fasthttp"
)

func isCircuitFailure(err error) bool {
	return stderrors.Is(err, errGoogleTransient)
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func isRetryableStatus(statusCode int) bool {
	return statusCode == fasthttp.StatusRequestTimeout ||
		statusCode == fasthttp.StatusTooManyRequests ||
		statusCode >= fasthttp.StatusInternalServerError
}
