package usecases

import (
	"github.com/geofleet/svc-location-tracker/internal/infrastructure"
	"github.com/geofleet/svc-location-tracker/internal/service"
	"github.com/geofleet/svc-location-tracker/internal/shared/decorator"
	"github.com/geofleet/svc-location-tracker/internal/usecases/commands"
	"github.com/geofleet/svc-location-tracker/internal/usecases/queries"
	otelTrace "go.opentelemetry.io/otel/trace"
)

type (
	// DispatcherApplication groups the use cases driving the delivery queue.
	DispatcherApplication struct {
		Commands DispatcherCommands
		Queries  DispatcherQueries
	}

	DispatcherCommands struct {
		DeliverFixHandler commands.DeliverFixHandler
	}

	DispatcherQueries struct {
		FetchPendingDeliveriesQueryHandler   queries.FetchPendingDeliveriesQueryHandler
		FetchRetryableDeliveriesQueryHandler queries.FetchRetryableDeliveriesQueryHandler
	}
)

func NewDispatcherApplication(
	dispatcherService service.DispatcherService,
	logger infrastructure.Logger,
	tracerProvider otelTrace.TracerProvider,
	metricsClient decorator.MetricsClient,
) *DispatcherApplication {
	return &DispatcherApplication{
		Commands: DispatcherCommands{
			DeliverFixHandler: commands.NewDeliverFixHandler(
				dispatcherService,
				logger,
				tracerProvider,
				metricsClient,
			),
		},
		Queries: DispatcherQueries{
			FetchPendingDeliveriesQueryHandler: queries.NewFetchPendingDeliveriesQueryHandler(
				dispatcherService,
				logger,
				tracerProvider,
				metricsClient,
			),
			FetchRetryableDeliveriesQueryHandler: queries.NewFetchRetryableDeliveriesQueryHandler(
				dispatcherService,
				logger,
				tracerProvider,
				metricsClient,
			),
		},
	}
}
