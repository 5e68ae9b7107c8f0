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
	FetchRetryableDeliveriesQuery struct {
		BatchSize int
	}

	FetchRetryableDeliveriesQueryHandler decorator.QueryHandler[FetchRetryableDeliveriesQuery, []*domain.FixDelivery]

	fetchRetryableDeliveriesQueryHandler struct {
		dispatcherService service.DispatcherService
	}
)

func NewFetchRetryableDeliveriesQueryHandler(
	dispatcherService service.DispatcherService,
	logger infrastructure.Logger,
	tracerProvider trace.TracerProvider,
	metricsClient decorator.MetricsClient,
) FetchRetryableDeliveriesQueryHandler {
	return decorator.ApplyQueryDecorators[FetchRetryableDeliveriesQuery, []*domain.FixDelivery](
		fetchRetryableDeliveriesQueryHandler{
			dispatcherService: dispatcherService,
		},
		logger,
		tracerProvider,
		metricsClient,
	)
}

func (h fetchRetryableDeliveriesQueryHandler) Execute(
	ctx context.Context,
	query FetchRetryableDeliveriesQuery,
) ([]*domain.FixDelivery, error) {
	return h.dispatcherService.FetchRetryableDeliveries(ctx, query.BatchSize)
}
