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
	// TrackerApplication groups the use cases behind the control API and the
	// boot-time resume hook.
	TrackerApplication struct {
		Commands TrackerCommands
		Queries  TrackerQueries
	}

	TrackerCommands struct {
		StartTrackingHandler  commands.StartTrackingHandler
		StopTrackingHandler   commands.StopTrackingHandler
		ResumeTrackingHandler commands.ResumeTrackingHandler
	}

	TrackerQueries struct {
		FetchTrackingStatusQueryHandler  queries.FetchTrackingStatusQueryHandler
		FetchReadinessReportQueryHandler queries.FetchReadinessReportQueryHandler
		FetchLivenessReportQueryHandler  queries.FetchLivenessReportQueryHandler
		FetchHealthReportQueryHandler    queries.FetchHealthReportQueryHandler
	}
)

func NewTrackerApplication(
	trackerService service.TrackerService,
	logger infrastructure.Logger,
	tracerProvider otelTrace.TracerProvider,
	metricsClient decorator.MetricsClient,
) *TrackerApplication {
	return &TrackerApplication{
		Commands: TrackerCommands{
			StartTrackingHandler:  commands.NewStartTrackingHandler(trackerService, logger, tracerProvider, metricsClient),
			StopTrackingHandler:   commands.NewStopTrackingHandler(trackerService, logger, tracerProvider, metricsClient),
			ResumeTrackingHandler: commands.NewResumeTrackingHandler(trackerService, logger, tracerProvider, metricsClient),
		},
		Queries: TrackerQueries{
			FetchTrackingStatusQueryHandler: queries.NewFetchTrackingStatusQueryHandler(
				trackerService, logger, tracerProvider, metricsClient,
			),
			FetchReadinessReportQueryHandler: queries.NewFetchReadinessReportQueryHandler(
				trackerService, logger, tracerProvider, metricsClient,
			),
			FetchLivenessReportQueryHandler: queries.NewFetchLivenessReportQueryHandler(
				trackerService, logger, tracerProvider, metricsClient,
			),
			FetchHealthReportQueryHandler: queries.NewFetchHealthReportQueryHandler(
				trackerService, logger, tracerProvider, metricsClient,
			),
		},
	}
}
