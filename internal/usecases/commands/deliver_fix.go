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
	DeliverFixCommand struct {
		Delivery *domain.FixDelivery
	}

	DeliverFixHandler decorator.CommandHandler[DeliverFixCommand, *domain.DeliverFixResult]

	deliverFixHandler struct {
		dispatcherService service.DispatcherService
		logger            infrastructure.Logger
	}
)

func NewDeliverFixHandler(
	dispatcherService service.DispatcherService,
	logger infrastructure.Logger,
	tracerProvider otelTrace.TracerProvider,
	metricsClient decorator.MetricsClient,
) DeliverFixHandler {
	return decorator.ApplyCommandDecorators[DeliverFixCommand, *domain.DeliverFixResult](
		deliverFixHandler{
			dispatcherService: dispatcherService,
			logger:            logger,
		},
		logger,
		tracerProvider,
		metricsClient,
	)
}

func (h deliverFixHandler) Handle(
	ctx context.Context,
	cmd DeliverFixCommand,
) (*domain.DeliverFixResult, error) {
	return h.dispatcherService.DeliverFix(ctx, cmd.Delivery)
}
