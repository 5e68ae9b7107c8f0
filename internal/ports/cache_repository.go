package ports

import (
	"context"

	"github.com/geofleet/svc-location-tracker/internal/domain"
)

type (
	// CacheRepository keeps the last known fix for fast status reads.
	CacheRepository interface {
		SetLastFix(ctx context.Context, fix *domain.LocationFix) error
		LastFix(ctx context.Context) (*domain.LocationFix, error)
		Delete(ctx context.Context) error
	}
)
