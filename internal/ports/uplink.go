package ports

import (
	"context"

	"github.com/geofleet/svc-location-tracker/internal/domain"
)

type (
	// Uplink delivers a fix to the destination configured in the session.
	Uplink interface {
		Deliver(ctx context.Context, session *domain.TrackingSession, fix *domain.LocationFix) error
	}

	// UplinkSelector picks the uplink matching the session's transport.
	UplinkSelector interface {
		Select(transport domain.Transport) (Uplink, error)
	}
)
