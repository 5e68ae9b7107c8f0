package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/geofleet/svc-location-tracker/internal/domain"
	"github.com/geofleet/svc-location-tracker/internal/infrastructure"
	"github.com/geofleet/svc-location-tracker/internal/ports"
	"github.com/geofleet/svc-location-tracker/internal/shared/backoff"
)

type (
	// DispatcherService drains the fix delivery queue, pushing each fix
	// through the uplink matching the session's transport.
	DispatcherService interface {
		FetchPendingDeliveries(ctx context.Context, batchSize int) ([]*domain.FixDelivery, error)
		FetchRetryableDeliveries(ctx context.Context, batchSize int) ([]*domain.FixDelivery, error)
		DeliverFix(ctx context.Context, delivery *domain.FixDelivery) (*domain.DeliverFixResult, error)
	}

	dispatcherService struct {
		deliveryRepo    ports.DeliveryRepository
		sessionRepo     ports.SessionRepository
		uplinkSelector  ports.UplinkSelector
		backoffStrategy backoff.Strategy
		logger          infrastructure.Logger
		metrics         infrastructure.Metrics
	}
)

func NewDispatcherService(
	deliveryRepo ports.DeliveryRepository,
	sessionRepo ports.SessionRepository,
	uplinkSelector ports.UplinkSelector,
	backoffStrategy backoff.Strategy,
	logger infrastructure.Logger,
	metrics infrastructure.Metrics,
) DispatcherService {
	return dispatcherService{
		deliveryRepo:    deliveryRepo,
		sessionRepo:     sessionRepo,
		uplinkSelector:  uplinkSelector,
		backoffStrategy: backoffStrategy,
		logger:          logger,
		metrics:         metrics,
	}
}

func (s dispatcherService) FetchPendingDeliveries(ctx context.Context, batchSize int) ([]*domain.FixDelivery, error) {
	return s.deliveryRepo.FindPending(ctx, batchSize)
}

func (s dispatcherService) FetchRetryableDeliveries(ctx context.Context, batchSize int) ([]*domain.FixDelivery, error) {
	return s.deliveryRepo.FindRetryable(ctx, batchSize)
}

func (s dispatcherService) DeliverFix(ctx context.Context, delivery *domain.FixDelivery) (*domain.DeliverFixResult, error) {
	claimed, err := s.deliveryRepo.ClaimForDelivery(ctx, delivery.ID.String())
	if err != nil {
		s.logger.Debug().
			Str("delivery_id", delivery.ID.String()).
			Msg("failed to claim delivery")

		return &domain.DeliverFixResult{
			Delivered: false,
			Error:     fmt.Sprintf("failed to claim delivery: %v", err),
		}, nil
	}

	session, err := s.sessionRepo.Find(ctx)
	if err != nil {
		// The session was stopped while this fix sat in the queue; there is
		// no destination to deliver to anymore.
		if errors.Is(err, domain.ErrSessionNotFound) {
			if markErr := s.deliveryRepo.MarkPermanentlyFailed(ctx, claimed.ID.String(), "session stopped"); markErr != nil {
				return nil, markErr
			}

			return &domain.DeliverFixResult{Delivered: false, Error: "session stopped"}, nil
		}

		return nil, err
	}

	// A Start while fixes sat in the queue replaced the session. Those fixes
	// belong to the old endpoint and must not leak to the new one.
	if session.ID != claimed.SessionID {
		if markErr := s.deliveryRepo.MarkPermanentlyFailed(ctx, claimed.ID.String(), "session replaced"); markErr != nil {
			return nil, markErr
		}

		return &domain.DeliverFixResult{Delivered: false, Error: "session replaced"}, nil
	}

	uplink, err := s.uplinkSelector.Select(session.Transport)
	if err != nil {
		return nil, err
	}

	startTime := time.Now()

	if err := uplink.Deliver(ctx, session, &claimed.Fix); err != nil {
		s.metrics.RecordDelivery(ctx, string(session.Transport), time.Since(startTime), false)

		if handleErr := s.handleDeliveryFailure(ctx, claimed, err); handleErr != nil {
			s.logger.Error().
				Err(handleErr).
				Str("delivery_id", claimed.ID.String()).
				Msg("failed to handle delivery failure")
		}

		return &domain.DeliverFixResult{
			Delivered: false,
			Error:     fmt.Sprintf("failed to deliver fix: %v", err),
		}, nil
	}

	if err := s.deliveryRepo.MarkDelivered(ctx, claimed.ID.String()); err != nil {
		return &domain.DeliverFixResult{
			Delivered: false,
			Error:     fmt.Sprintf("failed to mark as delivered: %v", err),
		}, nil
	}

	s.metrics.RecordDelivery(ctx, string(session.Transport), time.Since(startTime), true)

	s.logger.Debug().
		Str("delivery_id", claimed.ID.String()).
		Str("fix_id", claimed.Fix.ID.String()).
		Str("transport", string(session.Transport)).
		Msg("fix delivered")

	return &domain.DeliverFixResult{Delivered: true}, nil
}

func (s dispatcherService) handleDeliveryFailure(ctx context.Context, delivery *domain.FixDelivery, deliverErr error) error {
	errorDetails := deliverErr.Error()

	if delivery.RetryCount >= delivery.MaxRetries {
		if err := s.deliveryRepo.MarkPermanentlyFailed(ctx, delivery.ID.String(), errorDetails); err != nil {
			return fmt.Errorf("failed to mark delivery as permanently failed: %w", err)
		}

		s.logger.Warn().
			Str("delivery_id", delivery.ID.String()).
			Int("retry_count", delivery.RetryCount).
			Msg("delivery permanently failed after max retries")

		return nil
	}

	backoffDuration := s.backoffStrategy.Backoff(delivery.RetryCount)
	nextRetryAt := time.Now().UTC().Add(backoffDuration)

	if err := s.deliveryRepo.MarkFailed(ctx, delivery.ID.String(), errorDetails, &nextRetryAt); err != nil {
		return fmt.Errorf("failed to mark delivery as failed: %w", err)
	}

	s.logger.Debug().
		Str("delivery_id", delivery.ID.String()).
		Int("retry_count", delivery.RetryCount+1).
		Time("next_retry_at", nextRetryAt).
		Msg("delivery scheduled for retry")

	return nil
}
