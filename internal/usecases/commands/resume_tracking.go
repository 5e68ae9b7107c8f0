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
	ResumeTrackingCommand struct{}

	// ResumeTrackingHandler resumes a persisted session after a process
	// restart. A nil session in the result means there was nothing to resume.
	ResumeTrackingHandler decorator.CommandHandler[ResumeTrackingCommand, *domain.TrackingSession]

	resumeTrackingHandler struct {
		trackerService service.TrackerService
		logger         infrastructure.Logger
	}
)

func NewResumeTrackingHandler(
	trackerService service.TrackerService,
	logger infrastructure.Logger,
	tracerProvider otelTrace.TracerProvider,
	metricsClient decorator.MetricsClient,
) ResumeTrackingHandler {
	return decorator.ApplyCommandDecorators[ResumeTrackingCommand, *domain.TrackingSession](
		resumeTrackingHandler{
			trackerService: trackerService,
			logger:         logger,
		},
		logger,
		tracerProvider,
		metricsClient,
	)
}

func (h resumeTrackingHandler) Handle(
	ctx context.Context,
	_ ResumeTrackingCommand,
) (*domain.TrackingSession, error) {
	return h.trackerService.ContinueIfAppropriate(ctx)
}
