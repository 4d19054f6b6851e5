package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler, swaggerEnabled bool) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
	if !swaggerEnabled {
		return
	}

	mux.HandleFunc("GET /openapi.yaml", handler.OpenAPI)
	mux.HandleFunc("GET /docs", handler.SwaggerUI)
	mux.HandleFunc("GET /docs/", handler.SwaggerUI)
}

func registerPublicRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/storage/{path...}", handler.DownloadObject)
	mux.HandleFunc("GET /v1/navigation", handler.GetNavigation)
	mux.HandleFunc("GET /v1/navigation/routes", handler.ListRoutes)
	mux.HandleFunc("GET /v1/ticker", handler.GetTicker)
	mux.HandleFunc("GET /api/firebase-test", handler.ListDiagnosticDocuments)
	mux.HandleFunc("GET /v1/diagnostics/documents", handler.ListDiagnosticDocuments)
}

func registerAuthRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.HandleFunc("POST /v1/auth/register", handler.Register)
	mux.HandleFunc("POST /v1/auth/login", handler.Login)
	mux.HandleFunc("POST /v1/auth/google", handler.LoginWithGoogle)
	mux.HandleFunc("GET /v1/auth/verify", handler.VerifyEmail)
	mux.Handle("GET /v1/auth/verification-status", RequireAuth(verifier, http.HandlerFunc(handler.GetVerificationStatus)))
	mux.Handle("POST /v1/auth/logout", RequireAuth(verifier, http.HandlerFunc(handler.Logout)))
}

func registerAuthorizedRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.Handle("GET /v1/me/profile", RequireAuth(verifier, http.HandlerFunc(handler.GetProfile)))
	mux.Handle("PUT /v1/me/profile-picture", RequireAuth(verifier, http.HandlerFunc(handler.UploadProfilePicture)))
}

func registerInternalJobRoutes(mux *http.ServeMux, handler *Handler, internalJobToken string) {
	mux.Handle("POST /v1/internal/jobs/send-verification", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunSendVerificationJob)))
	mux.Handle("POST /v1/internal/jobs/purge-verifications", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunPurgeVerificationsJob)))
}
