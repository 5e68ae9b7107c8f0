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
	FetchLivenessReportQuery struct{}

	FetchLivenessReportQueryHandler decorator.QueryHandler[FetchLivenessReportQuery, *domain.LivenessResult]

	fetchLivenessReportQueryHandler struct {
		trackerService service.TrackerService
	}
)

func NewFetchLivenessReportQueryHandler(
	trackerService service.TrackerService,
	logger infrastructure.Logger,
	tracerProvider trace.TracerProvider,
	metricsClient decorator.MetricsClient,
) FetchLivenessReportQueryHandler {
	return decorator.ApplyQueryDecorators[FetchLivenessReportQuery, *domain.LivenessResult](
		fetchLivenessReportQueryHandler{
			trackerService: trackerService,
		},
		logger,
		tracerProvider,
		metricsClient,
	)
}

func (h fetchLivenessReportQueryHandler) Execute(
	ctx context.Context,
	_ FetchLivenessReportQuery,
) (*domain.LivenessResult, error) {
	return h.trackerService.FetchLivenessReport(ctx)
}
