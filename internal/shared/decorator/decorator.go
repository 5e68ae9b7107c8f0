package decorator

import (
	"context"
	"fmt"
	"strings"

	"github.com/geofleet/svc-location-tracker/internal/infrastructure"
	"go.opentelemetry.io/otel/trace"
)

type (
	// CommandHandler defines a generic type for handlers that mutate state.
	CommandHandler[C, R any] interface {
		Handle(ctx context.Context, cmd C) (R, error)
	}

	// QueryHandler defines a generic type for handlers that read state.
	QueryHandler[Q, R any] interface {
		Execute(ctx context.Context, query Q) (R, error)
	}

	// MetricsClient counts handler executions keyed by handler name and outcome.
	MetricsClient interface {
		Inc(key string, value int)
	}
)

// ApplyCommandDecorators wraps a command handler with logging, tracing and
// metrics decorators, innermost first.
func ApplyCommandDecorators[C, R any](
	handler CommandHandler[C, R],
	logger infrastructure.Logger,
	tracerProvider trace.TracerProvider,
	metricsClient MetricsClient,
) CommandHandler[C, R] {
	return commandLoggingDecorator[C, R]{
		base: commandTracingDecorator[C, R]{
			base: commandMetricsDecorator[C, R]{
				base:   handler,
				client: metricsClient,
			},
			tracerProvider: tracerProvider,
		},
		logger: logger,
	}
}

// ApplyQueryDecorators wraps a query handler with logging, tracing and metrics
// decorators, innermost first.
func ApplyQueryDecorators[Q, R any](
	handler QueryHandler[Q, R],
	logger infrastructure.Logger,
	tracerProvider trace.TracerProvider,
	metricsClient MetricsClient,
) QueryHandler[Q, R] {
	return queryLoggingDecorator[Q, R]{
		base: queryTracingDecorator[Q, R]{
			base: queryMetricsDecorator[Q, R]{
				base:   handler,
				client: metricsClient,
			},
			tracerProvider: tracerProvider,
		},
		logger: logger,
	}
}

func actionName(action any) string {
	return strings.ToLower(strings.Split(fmt.Sprintf("%T", action), ".")[1])
}
