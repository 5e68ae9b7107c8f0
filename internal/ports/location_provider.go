package ports

import (
	"context"

	"github.com/geofleet/svc-location-tracker/internal/domain"
)

// LocationProvider supplies position fixes from a location source.
type LocationProvider interface {
	// Current returns the most recent fix, or domain.ErrFixUnavailable when
	// the source has not produced one yet.
	Current(ctx context.Context) (*domain.LocationFix, error)

	// Close releases the underlying source.
	Close() error
}
