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
	StopTrackingCommand struct{}

	StopTrackingHandler decorator.CommandHandler[StopTrackingCommand, *domain.StopTrackingResult]

	stopTrackingHandler struct {
		trackerService service.TrackerService
		logger         infrastructure.Logger
	}
)

func NewStopTrackingHandler(
	trackerService service.TrackerService,
	logger infrastructure.Logger,
	tracerProvider otelTrace.TracerProvider,
	metricsClient decorator.MetricsClient,
) StopTrackingHandler {
	return decorator.ApplyCommandDecorators[StopTrackingCommand, *domain.StopTrackingResult](
		stopTrackingHandler{
			trackerService: trackerService,
			logger:         logger,
		},
		logger,
		tracerProvider,
		metricsClient,
	)
}

func (h stopTrackingHandler) Handle(
	ctx context.Context,
	_ StopTrackingCommand,
) (*domain.StopTrackingResult, error) {
	if err := h.trackerService.StopTracking(ctx); err != nil {
		return nil, err
	}

	return &domain.StopTrackingResult{Stopped: true}, nil
}
