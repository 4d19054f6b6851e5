package httpapi

import (
	"net/http"

	"github.com/riskibarqy/paintball-league/internal/platform/logging"
	"github.com/sourcegraph/conc/panics"
)

type RouterConfig struct {
	SwaggerEnabled     bool
	CORSAllowedOrigins []string
	InternalJobToken   string
}

func NewRouter(
	handler *Handler,
	verifier TokenVerifier,
	logger *logging.Logger,
	cfg RouterConfig,
) http.Handler {
	if logger == nil {
		logger = logging.Default()
	}

	mux := http.NewServeMux()
	registerSystemRoutes(mux, handler, cfg.SwaggerEnabled)
	registerPublicRoutes(mux, handler)
	registerAuthRoutes(mux, handler, verifier)
	registerAuthorizedRoutes(mux, handler, verifier)
	registerInternalJobRoutes(mux, handler, cfg.InternalJobToken)

	return RequestTracing(RequestLogging(logger, CORS(cfg.CORSAllowedOrigins, recoverPanic(logger, mux))))
}

func recoverPanic(logger *logging.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, span := startSpan(r.Context(), "httpapi.recoverPanic")
		defer span.End()

		var catcher panics.Catcher
		catcher.Try(func() {
			next.ServeHTTP(w, r.WithContext(ctx))
		})
		if recovered := catcher.Recovered(); recovered != nil {
			logger.ErrorContext(ctx, "panic recovered",
				"method", r.Method,
				"path", r.URL.Path,
				"panic", recovered.Value,
				"stack", string(recovered.Stack),
			)
			writeInternalError(ctx, w)
		}
	})
}
