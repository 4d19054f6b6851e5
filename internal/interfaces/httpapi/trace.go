package httpapi

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const handlerSpanPrefix = "httpapi.Handler."

var (
	handlerTracer = otel.Tracer("paintball-league/internal/interfaces/httpapi")
	layerAttr     = attribute.String("app.layer", "httpapi")
)

// startSpan opens a child span for handlers running under a traced request.
// Middleware and response helpers share the request span instead.
func startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	parent := trace.SpanFromContext(ctx)
	if !parent.SpanContext().IsValid() || !shouldCreateHTTPAPISpan(name) {
		return ctx, trace.SpanFromContext(context.Background())
	}
	return handlerTracer.Start(ctx, name, trace.WithAttributes(layerAttr))
}

func shouldCreateHTTPAPISpan(name string) bool {
	return strings.HasPrefix(name, handlerSpanPrefix) && len(name) > len(handlerSpanPrefix)
}
