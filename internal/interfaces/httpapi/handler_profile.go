package httpapi

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/riskibarqy/paintball-league/internal/usecase"
)

// GetProfile never fails once authenticated: missing or malformed data is
// replaced by defaults.
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetProfile")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, profileToDTO(h.profileService.Fetch(ctx, principal.UserID)))
}

func (h *Handler) UploadProfilePicture(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.UploadProfilePicture")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxUploadBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(ctx, w, fmt.Errorf("%w: picture exceeds %d bytes", usecase.ErrPayloadTooLarge, tooLarge.Limit))
			return
		}
		writeError(ctx, w, fmt.Errorf("%w: read picture: %v", usecase.ErrInvalidInput, err))
		return
	}

	url, err := h.profileService.UploadPicture(ctx, usecase.UploadPictureInput{
		UserID: principal.UserID,
		Data:   data,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "upload profile picture failed", "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, profilePictureDTO{ProfilePicture: url})
}

func (h *Handler) DownloadObject(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.DownloadObject")
	defer span.End()

	obj, err := h.profileService.Picture(ctx, r.PathValue("path"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	contentType := obj.ContentType
	if _, ok := usecase.PictureContentTypes[contentType]; !ok {
		contentType = "application/octet-stream"
	}
	header := w.Header()
	header.Set("Content-Type", contentType)
	header.Set("X-Content-Type-Options", "nosniff")
	header.Set("Content-Security-Policy", "default-src 'none'; sandbox")
	header.Set("Content-Disposition", "inline")
	header.Set("Content-Length", strconv.Itoa(len(obj.Data)))
	header.Set("Cache-Control", "private, max-age=60")
	if !obj.UpdatedAt.IsZero() {
		header.Set("Last-Modified", obj.UpdatedAt.UTC().Format(http.TimeFormat))
	}
	w.WriteHeader(http.StatusOK)
	if r.Method != http.MethodHead {
		_, _ = w.Write(obj.Data)
	}
}
