package dispatch

import (
	"context"
	"sync"
	"time"

	"github.com/geofleet/svc-location-tracker/internal/config"
	"github.com/geofleet/svc-location-tracker/internal/domain"
	"github.com/geofleet/svc-location-tracker/internal/infrastructure"
	"github.com/geofleet/svc-location-tracker/internal/ports"
	"github.com/geofleet/svc-location-tracker/internal/usecases"
	"github.com/geofleet/svc-location-tracker/internal/usecases/commands"
	"github.com/geofleet/svc-location-tracker/internal/usecases/queries"
)

// Ensure Processor implements the BackgroundProcessor interface
var _ ports.BackgroundProcessor = (*Processor)(nil)

type Processor struct {
	app          *usecases.DispatcherApplication
	deliveryRepo ports.DeliveryRepository
	cfg          config.DeliveryConfig
	retention    time.Duration
	logger       infrastructure.Logger
	metrics      infrastructure.Metrics
}

func NewProcessor(
	app *usecases.DispatcherApplication,
	deliveryRepo ports.DeliveryRepository,
	cfg config.DeliveryConfig,
	retention time.Duration,
	logger infrastructure.Logger,
	metrics infrastructure.Metrics,
) *Processor {
	return &Processor{
		app:          app,
		deliveryRepo: deliveryRepo,
		cfg:          cfg,
		retention:    retention,
		logger:       logger,
		metrics:      metrics,
	}
}

func (p *Processor) Start(ctx context.Context) error {
	p.logger.Info().
		Dur("dispatch_interval", p.cfg.DispatchInterval).
		Int("batch_size", p.cfg.BatchSize).
		Msg("starting delivery processor")

	ticker := time.NewTicker(p.cfg.DispatchInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info().Msg("delivery processor shutting down")

			return ctx.Err()

		case <-ticker.C:
			var wg sync.WaitGroup

			wg.Go(func() {
				if err := p.processPendingDeliveries(ctx); err != nil {
					p.logger.Error().Err(err).Msg("failed to process pending deliveries")
				}
			})

			wg.Go(func() {
				if err := p.processRetryableDeliveries(ctx); err != nil {
					p.logger.Error().Err(err).Msg("failed to process retryable deliveries")
				}
			})

			wg.Wait()

			p.recordQueueDepth(ctx)
			p.purgeDelivered(ctx)
		}
	}
}

func (p *Processor) processPendingDeliveries(ctx context.Context) error {
	deliveries, err := p.app.Queries.FetchPendingDeliveriesQueryHandler.Execute(ctx, queries.FetchPendingDeliveriesQuery{
		BatchSize: p.cfg.BatchSize,
	})
	if err != nil {
		return err
	}

	if len(deliveries) == 0 {
		return nil
	}

	p.logger.Debug().Int("count", len(deliveries)).Msg("processing pending deliveries")

	p.deliverBatch(ctx, deliveries)

	return nil
}

func (p *Processor) processRetryableDeliveries(ctx context.Context) error {
	deliveries, err := p.app.Queries.FetchRetryableDeliveriesQueryHandler.Execute(ctx, queries.FetchRetryableDeliveriesQuery{
		BatchSize: p.cfg.BatchSize,
	})
	if err != nil {
		return err
	}

	if len(deliveries) == 0 {
		return nil
	}

	p.logger.Debug().Int("count", len(deliveries)).Msg("processing retryable deliveries")

	p.deliverBatch(ctx, deliveries)

	return nil
}

func (p *Processor) deliverBatch(ctx context.Context, deliveries []*domain.FixDelivery) {
	var wg sync.WaitGroup

	for _, delivery := range deliveries {
		wg.Go(func() {
			if _, err := p.app.Commands.DeliverFixHandler.Handle(ctx, commands.DeliverFixCommand{
				Delivery: delivery,
			}); err != nil {
				p.logger.Error().
					Err(err).
					Str("delivery_id", delivery.ID.String()).
					Msg("failed to process delivery")
			}
		})
	}

	wg.Wait()
}

func (p *Processor) recordQueueDepth(ctx context.Context) {
	count, err := p.deliveryRepo.CountUndelivered(ctx)
	if err != nil {
		p.logger.Warn().Err(err).Msg("failed to count undelivered deliveries")

		return
	}

	p.metrics.RecordQueueDepth(ctx, int64(count))
}

func (p *Processor) purgeDelivered(ctx context.Context) {
	purged, err := p.deliveryRepo.PurgeDelivered(ctx, time.Now().UTC().Add(-p.retention))
	if err != nil {
		p.logger.Warn().Err(err).Msg("failed to purge delivered rows")

		return
	}

	if purged > 0 {
		p.logger.Debug().Int64("purged", purged).Msg("purged delivered rows")
	}
}
