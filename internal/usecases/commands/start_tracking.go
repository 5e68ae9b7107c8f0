package commands

import (
	"context"

	"github.com/geofleet/svc-location-tracker/internal/domain"
	"github.com/geofleet/svc-location-tracker/internal/infrastructure"
	"github.com/geofleet/svc-location-tracker/internal/service"
	"github.com/geofleet/svc-location-tracker/internal/shared/decorator"
	otelTrace "go.opentelemetry.io/otel/trace"
)

type (
	StartTrackingCommand struct {
		Params service.StartTrackingParams
	}

	StartTrackingHandler decorator.CommandHandler[StartTrackingCommand, *domain.TrackingSession]

	startTrackingHandler struct {
		trackerService service.TrackerService
		logger         infrastructure.Logger
	}
)

func NewStartTrackingHandler(
	trackerService service.TrackerService,
	logger infrastructure.Logger,
	tracerProvider otelTrace.TracerProvider,
	metricsClient decorator.MetricsClient,
) StartTrackingHandler {
	return decorator.ApplyCommandDecorators[StartTrackingCommand, *domain.TrackingSession](
		startTrackingHandler{
			trackerService: trackerService,
			logger:         logger,
		},
		logger,
		tracerProvider,
		metricsClient,
	)
}

func (h startTrackingHandler) Handle(
	ctx context.Context,
	cmd StartTrackingCommand,
) (*domain.TrackingSession, error) {
	return h.trackerService.StartTracking(ctx, cmd.Params)
}
