package llm

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/ahrav/go-prospect/internal/ports"
)

// tracedService wraps each request in an OpenTelemetry span carrying
// model and prompt-size attributes.
type tracedService struct {
	next   CoreService
	tracer trace.Tracer
}

// TracingMiddleware adds a span per request under the given service
// name.
func TracingMiddleware(serviceName string) Middleware {
	tracer := otel.Tracer(serviceName)

	return func(next CoreService) CoreService {
		return &tracedService{next: next, tracer: tracer}
	}
}

// Generate executes the request inside a span and records the outcome.
func (t *tracedService) Generate(
	ctx context.Context, systemPrompt, userPrompt string, params ports.RequestParams,
) (string, error) {
	ctx, span := t.tracer.Start(ctx, "evaluation.request",
		trace.WithAttributes(
			attribute.String("model", t.next.Model()),
			attribute.Int("prompt.system_length", len(systemPrompt)),
			attribute.Int("prompt.user_length", len(userPrompt)),
			attribute.Float64("params.temperature", params.Temperature),
		),
	)
	defer span.End()

	response, err := t.next.Generate(ctx, systemPrompt, userPrompt, params)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetAttributes(attribute.Int("response.length", len(response)))
	}

	return response, err
}

// Model returns the model name from the wrapped implementation.
func (t *tracedService) Model() string { return t.next.Model() }
