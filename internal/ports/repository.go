package ports

import (
	"context"
	"time"

	"github.com/geofleet/svc-location-tracker/internal/domain"
)

type (
	// SessionRepository persists the current tracking session so that
	// tracking can be resumed after a process restart.
	SessionRepository interface {
		// Save stores the session, replacing any previously stored one.
		Save(ctx context.Context, session *domain.TrackingSession) error

		// Find returns the stored session, or domain.ErrSessionNotFound.
		Find(ctx context.Context) (*domain.TrackingSession, error)

		// MarkResumed records the time tracking was resumed after a restart.
		MarkResumed(ctx context.Context, sessionID string, resumedAt time.Time) error

		// Clear removes the stored session. Clearing an empty store is not an error.
		Clear(ctx context.Context) error
	}

	// DeliveryRepository is the durable queue of fixes awaiting uplink delivery.
	DeliveryRepository interface {
		// Enqueue stores a fix for delivery.
		Enqueue(ctx context.Context, delivery *domain.FixDelivery) error

		// FindPending finds pending deliveries ordered by creation time.
		FindPending(ctx context.Context, limit int) ([]*domain.FixDelivery, error)

		// FindRetryable finds failed deliveries that are ready for retry.
		FindRetryable(ctx context.Context, limit int) ([]*domain.FixDelivery, error)

		// ClaimForDelivery atomically claims a delivery for processing.
		ClaimForDelivery(ctx context.Context, deliveryID string) (*domain.FixDelivery, error)

		// MarkDelivered marks a delivery as successfully sent.
		MarkDelivered(ctx context.Context, deliveryID string) error

		// MarkFailed marks a delivery as failed with error details and retry timing.
		MarkFailed(ctx context.Context, deliveryID string, errorDetails string, nextRetryAt *time.Time) error

		// MarkPermanentlyFailed marks a delivery as failed with no further retries.
		MarkPermanentlyFailed(ctx context.Context, deliveryID string, errorDetails string) error

		// CountUndelivered returns the number of deliveries not yet delivered.
		CountUndelivered(ctx context.Context) (int, error)

		// PurgeDelivered removes delivered rows older than the retention period.
		PurgeDelivered(ctx context.Context, olderThan time.Time) (int64, error)

		// Purge removes every queued delivery. Used when tracking stops.
		Purge(ctx context.Context) error
	}
)
