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
	FetchTrackingStatusQuery struct{}

	FetchTrackingStatusQueryHandler decorator.QueryHandler[FetchTrackingStatusQuery, *domain.TrackingStatus]

	fetchTrackingStatusQueryHandler struct {
		trackerService service.TrackerService
	}
)

func NewFetchTrackingStatusQueryHandler(
	trackerService service.TrackerService,
	logger infrastructure.Logger,
	tracerProvider trace.TracerProvider,
	metricsClient decorator.MetricsClient,
) FetchTrackingStatusQueryHandler {
	return decorator.ApplyQueryDecorators[FetchTrackingStatusQuery, *domain.TrackingStatus](
		fetchTrackingStatusQueryHandler{
			trackerService: trackerService,
		},
		logger,
		tracerProvider,
		metricsClient,
	)
}

func (h fetchTrackingStatusQueryHandler) Execute(
	ctx context.Context,
	_ FetchTrackingStatusQuery,
) (*domain.TrackingStatus, error) {
	return h.trackerService.FetchStatus(ctx)
}
