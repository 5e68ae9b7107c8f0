package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/geofleet/svc-location-tracker/internal/config"
	"github.com/geofleet/svc-location-tracker/internal/domain"
	"github.com/geofleet/svc-location-tracker/internal/infrastructure"
	"github.com/geofleet/svc-location-tracker/internal/ports"
)

type (
	// CollectorService polls the location provider at the session's report
	// interval and queues each fix for delivery. The report gate caps the
	// polling rate independently of the configured interval.
	CollectorService struct {
		provider       ports.LocationProvider
		deliveryRepo   ports.DeliveryRepository
		cacheRepo      ports.CacheRepository
		gate           ports.ReportGate
		trackingConfig config.TrackingConfig
		deliveryConfig config.DeliveryConfig
		logger         infrastructure.Logger
		metrics        infrastructure.Metrics

		mu     sync.Mutex
		cancel context.CancelFunc
		done   chan struct{}
	}
)

func NewCollectorService(
	provider ports.LocationProvider,
	deliveryRepo ports.DeliveryRepository,
	cacheRepo ports.CacheRepository,
	gate ports.ReportGate,
	trackingConfig config.TrackingConfig,
	deliveryConfig config.DeliveryConfig,
	logger infrastructure.Logger,
	metrics infrastructure.Metrics,
) *CollectorService {
	return &CollectorService{
		provider:       provider,
		deliveryRepo:   deliveryRepo,
		cacheRepo:      cacheRepo,
		gate:           gate,
		trackingConfig: trackingConfig,
		deliveryConfig: deliveryConfig,
		logger:         logger,
		metrics:        metrics,
	}
}

// Run starts the collection loop for the session. A running loop is halted
// first, so Run doubles as replace-and-restart.
func (c *CollectorService) Run(session *domain.TrackingSession) {
	c.Halt()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	c.mu.Lock()
	c.cancel = cancel
	c.done = done
	c.mu.Unlock()

	go c.loop(ctx, session, done)
}

// Halt stops the collection loop and waits for it to exit. Halting a stopped
// collector is a no-op.
func (c *CollectorService) Halt() {
	c.mu.Lock()
	cancel, done := c.cancel, c.done
	c.cancel, c.done = nil, nil
	c.mu.Unlock()

	if cancel == nil {
		return
	}

	cancel()
	<-done
}

// Running reports whether the collection loop is active.
func (c *CollectorService) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.cancel != nil
}

func (c *CollectorService) loop(ctx context.Context, session *domain.TrackingSession, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(session.ReportInterval)
	defer ticker.Stop()

	c.logger.Info().
		Str("session_id", session.ID.String()).
		Dur("report_interval", session.ReportInterval).
		Msg("collector started")

	// Collect immediately so a fix goes out without waiting a full interval.
	c.collectOnce(ctx, session)

	for {
		select {
		case <-ctx.Done():
			c.logger.Info().Str("session_id", session.ID.String()).Msg("collector stopped")

			return
		case <-ticker.C:
			c.collectOnce(ctx, session)
		}
	}
}

func (c *CollectorService) collectOnce(ctx context.Context, session *domain.TrackingSession) {
	allowed, retryIn, err := c.gate.Allow()
	if err != nil {
		c.logger.Error().Err(err).Msg("report gate check failed")

		return
	}

	if !allowed {
		c.logger.Debug().Dur("retry_in", retryIn).Msg("report gated, skipping tick")

		return
	}

	fix, err := c.provider.Current(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrFixUnavailable) {
			c.logger.Debug().Msg("no fix available yet")
		} else {
			c.logger.Error().Err(err).Msg("failed to read location fix")
		}

		c.metrics.RecordFixCollected(ctx, c.trackingConfig.Provider, false)

		return
	}

	delivery := &domain.FixDelivery{
		SessionID:  session.ID,
		Fix:        *fix,
		Status:     domain.DeliveryStatusPending,
		MaxRetries: c.deliveryConfig.MaxRetries,
		CreatedAt:  time.Now().UTC(),
	}

	if err := c.deliveryRepo.Enqueue(ctx, delivery); err != nil {
		c.logger.Error().Err(err).Msg("failed to enqueue fix delivery")
		c.metrics.RecordFixCollected(ctx, string(fix.Source), false)

		return
	}

	// Fire-and-forget; the cache only serves status reads.
	if cacheErr := c.cacheRepo.SetLastFix(ctx, fix); cacheErr != nil {
		c.logger.Warn().Err(cacheErr).Msg("failed to cache fix")
	}

	c.metrics.RecordFixCollected(ctx, string(fix.Source), true)

	c.logger.Debug().
		Str("fix_id", fix.ID.String()).
		Float64("lat", fix.Latitude).
		Float64("lon", fix.Longitude).
		Msg("fix collected")
}
