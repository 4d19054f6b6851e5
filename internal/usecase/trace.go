package usecase

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var serviceTracer = otel.Tracer("paintball-league/internal/usecase")

// startUsecaseSpan nests a service span under the caller's span. Untraced
// callers get a non-recording span and their own context back.
func startUsecaseSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	name = strings.TrimSpace(name)
	if name == "" || !trace.SpanContextFromContext(ctx).IsValid() {
		return ctx, trace.SpanFromContext(context.Background())
	}
	return serviceTracer.Start(ctx, name, trace.WithAttributes(attribute.String("app.layer", "usecase")))
}
