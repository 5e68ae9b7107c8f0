package queries

import (
	"context"

	"github.com/geofleet/svc-location-tracker/internal/domain"
	"github.com/geofleet/svc-location-tracker/internal/infrastructure"
	"github.com/geofleet/svc-location-tracker/internal/service"
	"github.com/geofleet/svc-location-tracker/internal/shared/decorator"
	"go.opentelemetry.io/otel/trace"
)

type (
	FetchPendingDeliveriesQuery struct {
		BatchSize int
	}

	FetchPendingDeliveriesQueryHandler decorator.QueryHandler[FetchPendingDeliveriesQuery, []*domain.FixDelivery]

	fetchPendingDeliveriesQueryHandler struct {
		dispatcherService service.DispatcherService
	}
)

func NewFetchPendingDeliveriesQueryHandler(
	dispatcherService service.DispatcherService,
	logger infrastructure.Logger,
	tracerProvider trace.TracerProvider,
	metricsClient decorator.MetricsClient,
) FetchPendingDeliveriesQueryHandler {
	return decorator.ApplyQueryDecorators[FetchPendingDeliveriesQuery, []*domain.FixDelivery](
		fetchPendingDeliveriesQueryHandler{
			dispatcherService: dispatcherService,
		},
		logger,
		tracerProvider,
		metricsClient,
	)
}

func (h fetchPendingDeliveriesQueryHandler) Execute(
	ctx context.Context,
	query FetchPendingDeliveriesQuery,
) ([]*domain.FixDelivery, error) {
	return h.dispatcherService.FetchPendingDeliveries(ctx, query.BatchSize)
}
