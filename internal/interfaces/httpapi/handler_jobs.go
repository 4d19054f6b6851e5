package httpapi

import (
	"net/http"

	"github.com/riskibarqy/paintball-league/internal/usecase"
)

// RunSendVerificationJob is the queue callback that delivers a verification
// mail published by the queue mailer.
func (h *Handler) RunSendVerificationJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunSendVerificationJob")
	defer span.End()

	var req sendVerificationJobRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	err := h.mailService.DeliverVerification(ctx, usecase.VerificationMail{
		To:     req.To,
		UserID: req.UserID,
		Token:  req.Token,
		Link:   req.Link,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "send verification job failed", "user_id", req.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]bool{"delivered": true})
}

// RunPurgeVerificationsJob drops expired email verification tokens. It is
// meant to be scheduled from the job queue.
func (h *Handler) RunPurgeVerificationsJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunPurgeVerificationsJob")
	defer span.End()

	removed, err := h.authService.PurgeExpiredVerifications(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "purge verifications job failed", "error", err)
		writeError(ctx, w, err)
		return
	}
	h.logger.InfoContext(ctx, "expired verifications purged", "removed", removed)
	writeSuccess(ctx, w, http.StatusOK, map[string]int64{"removed": removed})
}
