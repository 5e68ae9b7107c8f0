package adapters

import (
	"context"
	"testing"

	"github.com/geofleet/svc-location-tracker/internal/config"
	"github.com/geofleet/svc-location-tracker/internal/domain"
	"github.com/geofleet/svc-location-tracker/internal/infrastructure"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gpsdProviderForTest() *GpsdProvider {
	return &GpsdProvider{
		cfg:    config.TrackingConfig{DeviceID: "unit-042"},
		logger: infrastructure.NewTestLogger(),
		closed: make(chan struct{}),
	}
}

func TestGpsdHandleReport(t *testing.T) {
	t.Parallel()

	t.Run("no fix before a TPV report", func(t *testing.T) {
		t.Parallel()

		provider := gpsdProviderForTest()

		_, err := provider.Current(context.Background())
		assert.ErrorIs(t, err, domain.ErrFixUnavailable)
	})

	t.Run("3D TPV report becomes the current fix", func(t *testing.T) {
		t.Parallel()

		provider := gpsdProviderForTest()

		provider.handleReport([]byte(`{"class":"SKY","satellites":[{"used":true},{"used":true},{"used":false}]}`))
		provider.handleReport([]byte(`{"class":"TPV","mode":3,"time":"2026-08-24T10:15:00.000Z","lat":48.1374,"lon":11.5755,"alt":519.1,"speed":13.9,"track":271.5,"eph":4.2}`))

		fix, err := provider.Current(context.Background())
		require.NoError(t, err)

		assert.Equal(t, "unit-042", fix.DeviceID)
		assert.InDelta(t, 48.1374, fix.Latitude, 1e-9)
		assert.InDelta(t, 11.5755, fix.Longitude, 1e-9)
		assert.InDelta(t, 519.1, fix.Altitude, 1e-9)
		assert.InDelta(t, 13.9, fix.Speed, 1e-9)
		assert.InDelta(t, 271.5, fix.Heading, 1e-9)
		assert.InDelta(t, 4.2, fix.Accuracy, 1e-9)
		assert.Equal(t, 2, fix.Satellites)
		assert.Equal(t, domain.FixSourceGpsd, fix.Source)
		assert.Equal(t, "2026-08-24T10:15:00Z", fix.RecordedAt.Format("2006-01-02T15:04:05Z07:00"))
	})

	t.Run("TPV without a fix is ignored", func(t *testing.T) {
		t.Parallel()

		provider := gpsdProviderForTest()

		provider.handleReport([]byte(`{"class":"TPV","mode":1}`))

		_, err := provider.Current(context.Background())
		assert.ErrorIs(t, err, domain.ErrFixUnavailable)
	})

	t.Run("malformed lines are skipped", func(t *testing.T) {
		t.Parallel()

		provider := gpsdProviderForTest()

		provider.handleReport([]byte(`{not json`))

		_, err := provider.Current(context.Background())
		assert.ErrorIs(t, err, domain.ErrFixUnavailable)
	})

	t.Run("non TPV classes do not produce fixes", func(t *testing.T) {
		t.Parallel()

		provider := gpsdProviderForTest()

		provider.handleReport([]byte(`{"class":"VERSION","release":"3.25"}`))

		_, err := provider.Current(context.Background())
		assert.ErrorIs(t, err, domain.ErrFixUnavailable)
	})
}
