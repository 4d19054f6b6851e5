package httpapi

import (
	"net/http"
	"slices"

	sonic "github.com/bytedance/sonic"
	"github.com/valyala/bytebufferpool"
)

type diagnosticsResponse struct {
	Data []diagnosticItem `json:"data"`
}

type diagnosticsErrorResponse struct {
	Error string `json:"error"`
}

// diagnosticItem encodes "id" first and the remaining fields in key order.
type diagnosticItem map[string]any

func (d diagnosticItem) MarshalJSON() ([]byte, error) {
	keys := make([]string, 0, len(d))
	for k := range d {
		if k != "id" {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)
	if _, ok := d["id"]; ok {
		keys = append([]string{"id"}, keys...)
	}

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	_ = buf.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			_ = buf.WriteByte(',')
		}
		key, err := sonic.Marshal(k)
		if err != nil {
			return nil, err
		}
		value, err := sonic.Marshal(d[k])
		if err != nil {
			return nil, err
		}
		_, _ = buf.Write(key)
		_ = buf.WriteByte(':')
		_, _ = buf.Write(value)
	}
	_ = buf.WriteByte('}')
	return slices.Clone(buf.B), nil
}

// ListDiagnosticDocuments answers outside the standard envelope: clients of
// the diagnostics page expect {"data": [...]} or {"error": "Internal Server Error"}.
func (h *Handler) ListDiagnosticDocuments(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListDiagnosticDocuments")
	defer span.End()

	items, err := h.diagnosticsService.ListDocuments(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "list diagnostic documents failed", "error", err)
		writeJSON(ctx, w, http.StatusInternalServerError, diagnosticsErrorResponse{Error: "Internal Server Error"})
		return
	}

	out := diagnosticsResponse{Data: make([]diagnosticItem, 0, len(items))}
	for _, item := range items {
		out.Data = append(out.Data, diagnosticItem(item))
	}
	writeJSON(ctx, w, http.StatusOK, out)
}
