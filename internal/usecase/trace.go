package usecase

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var usecaseTracer = otel.Tracer("infantry-community/internal/usecase")

// startUsecaseSpan only creates child spans; work without a traced parent
// (admin CLI, tests) runs on the context's no-op span.
func startUsecaseSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	parent := trace.SpanFromContext(ctx)
	if strings.TrimSpace(name) == "" || !parent.SpanContext().IsValid() {
		return ctx, parent
	}
	return usecaseTracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func seasonAttr(season string) attribute.KeyValue {
	return attribute.String("infantry.season", season)
}

func gameModeAttr(mode string) attribute.KeyValue {
	return attribute.String("infantry.game_mode", mode)
}
