package adapters

import (
	"context"
	"time"

	"github.com/geofleet/svc-location-tracker/internal/adapters/repos"
	"github.com/geofleet/svc-location-tracker/internal/config"
	"github.com/geofleet/svc-location-tracker/internal/domain"
)

// StaticProvider reports a fixed position. It backs installations without a
// GPS receiver, such as stationary assets that still check in periodically.
type StaticProvider struct {
	cfg config.TrackingConfig
}

func NewStaticProvider(cfg config.TrackingConfig) *StaticProvider {
	return &StaticProvider{cfg: cfg}
}

func (p *StaticProvider) Current(_ context.Context) (*domain.LocationFix, error) {
	now := time.Now().UTC()

	return &domain.LocationFix{
		ID:         repos.NewFixID(p.cfg.DeviceID, now),
		DeviceID:   p.cfg.DeviceID,
		Latitude:   p.cfg.StaticLatitude,
		Longitude:  p.cfg.StaticLongitude,
		Source:     domain.FixSourceStatic,
		RecordedAt: now,
	}, nil
}

func (p *StaticProvider) Close() error {
	return nil
}
