package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/geofleet/svc-location-tracker/internal/config"
	"github.com/geofleet/svc-location-tracker/internal/domain"
	"github.com/geofleet/svc-location-tracker/internal/infrastructure"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSessionRepo struct {
	stored   *domain.TrackingSession
	saveErr  error
	findErr  error
	resumed  map[string]time.Time
	clearErr error
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{resumed: make(map[string]time.Time)}
}

func (r *fakeSessionRepo) Save(_ context.Context, session *domain.TrackingSession) error {
	if r.saveErr != nil {
		return r.saveErr
	}

	if session.ID == uuid.Nil {
		session.ID = uuid.New()
	}

	copied := *session
	r.stored = &copied

	return nil
}

func (r *fakeSessionRepo) Find(_ context.Context) (*domain.TrackingSession, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}

	if r.stored == nil {
		return nil, domain.ErrSessionNotFound
	}

	copied := *r.stored

	return &copied, nil
}

func (r *fakeSessionRepo) MarkResumed(_ context.Context, sessionID string, resumedAt time.Time) error {
	if r.stored == nil || r.stored.ID.String() != sessionID {
		return domain.ErrSessionNotFound
	}

	r.resumed[sessionID] = resumedAt
	r.stored.ResumedAt = &resumedAt

	return nil
}

func (r *fakeSessionRepo) Clear(_ context.Context) error {
	if r.clearErr != nil {
		return r.clearErr
	}

	r.stored = nil

	return nil
}

type fakeDeliveryRepo struct {
	queued      []*domain.FixDelivery
	purgeCalls  int
	undelivered int
}

func (r *fakeDeliveryRepo) Enqueue(_ context.Context, delivery *domain.FixDelivery) error {
	r.queued = append(r.queued, delivery)

	return nil
}

func (r *fakeDeliveryRepo) FindPending(_ context.Context, _ int) ([]*domain.FixDelivery, error) {
	return nil, nil
}

func (r *fakeDeliveryRepo) FindRetryable(_ context.Context, _ int) ([]*domain.FixDelivery, error) {
	return nil, nil
}

func (r *fakeDeliveryRepo) ClaimForDelivery(_ context.Context, _ string) (*domain.FixDelivery, error) {
	return nil, domain.ErrDeliveryNotFound
}

func (r *fakeDeliveryRepo) MarkDelivered(_ context.Context, _ string) error { return nil }

func (r *fakeDeliveryRepo) MarkFailed(_ context.Context, _ string, _ string, _ *time.Time) error {
	return nil
}

func (r *fakeDeliveryRepo) MarkPermanentlyFailed(_ context.Context, _ string, _ string) error {
	return nil
}

func (r *fakeDeliveryRepo) CountUndelivered(_ context.Context) (int, error) {
	return r.undelivered, nil
}

func (r *fakeDeliveryRepo) PurgeDelivered(_ context.Context, _ time.Time) (int64, error) {
	return 0, nil
}

func (r *fakeDeliveryRepo) Purge(_ context.Context) error {
	r.purgeCalls++
	r.queued = nil

	return nil
}

type fakeCacheRepo struct {
	lastFix   *domain.LocationFix
	deleteErr error
}

func (r *fakeCacheRepo) SetLastFix(_ context.Context, fix *domain.LocationFix) error {
	copied := *fix
	r.lastFix = &copied

	return nil
}

func (r *fakeCacheRepo) LastFix(_ context.Context) (*domain.LocationFix, error) {
	if r.lastFix == nil {
		return nil, domain.ErrFixUnavailable
	}

	copied := *r.lastFix

	return &copied, nil
}

func (r *fakeCacheRepo) Delete(_ context.Context) error {
	if r.deleteErr != nil {
		return r.deleteErr
	}

	r.lastFix = nil

	return nil
}

type fakeCollector struct {
	running   bool
	runCalls  int
	haltCalls int
	session   *domain.TrackingSession
}

func (c *fakeCollector) Run(session *domain.TrackingSession) {
	c.runCalls++
	c.running = true
	c.session = session
}

func (c *fakeCollector) Halt() {
	c.haltCalls++
	c.running = false
}

func (c *fakeCollector) Running() bool { return c.running }

func newTrackerServiceForTest(
	sessionRepo *fakeSessionRepo,
	deliveryRepo *fakeDeliveryRepo,
	cacheRepo *fakeCacheRepo,
	collector *fakeCollector,
) TrackerService {
	return NewTrackerService(
		sessionRepo,
		deliveryRepo,
		cacheRepo,
		nil,
		collector,
		config.TrackingConfig{DeviceID: "unit-007"},
		infrastructure.NewTestLogger(),
		&infrastructure.NoOpMetrics{},
	)
}

func TestStartTracking(t *testing.T) {
	t.Parallel()

	t.Run("rejects non positive interval", func(t *testing.T) {
		t.Parallel()

		svc := newTrackerServiceForTest(newFakeSessionRepo(), &fakeDeliveryRepo{}, &fakeCacheRepo{}, &fakeCollector{})

		_, err := svc.StartTracking(context.Background(), StartTrackingParams{
			ReportInterval: 0,
			EndpointURL:    "https://fleet.example.com/fixes",
		})

		var domainErr *domain.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_INTERVAL", domainErr.Code)
	})

	t.Run("rejects invalid endpoint URL", func(t *testing.T) {
		t.Parallel()

		svc := newTrackerServiceForTest(newFakeSessionRepo(), &fakeDeliveryRepo{}, &fakeCacheRepo{}, &fakeCollector{})

		_, err := svc.StartTracking(context.Background(), StartTrackingParams{
			ReportInterval: time.Minute,
			EndpointURL:    "not a url",
		})

		var domainErr *domain.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_ENDPOINT", domainErr.Code)
	})

	t.Run("persists the session and starts the collector", func(t *testing.T) {
		t.Parallel()

		sessionRepo := newFakeSessionRepo()
		collector := &fakeCollector{}
		svc := newTrackerServiceForTest(sessionRepo, &fakeDeliveryRepo{}, &fakeCacheRepo{}, collector)

		session, err := svc.StartTracking(context.Background(), StartTrackingParams{
			ReportInterval: 30 * time.Second,
			EndpointURL:    "https://fleet.example.com/fixes",
			HTTPHeaders:    map[string]string{"Authorization": "Bearer token"},
		})

		require.NoError(t, err)
		require.NotNil(t, sessionRepo.stored)
		assert.NotEqual(t, uuid.Nil, session.ID)
		assert.Equal(t, "unit-007", session.DeviceID)
		assert.Equal(t, domain.TransportHTTP, session.Transport)
		assert.Equal(t, 1, collector.runCalls)
		assert.True(t, collector.Running())
	})

	t.Run("copies headers so caller mutations do not leak", func(t *testing.T) {
		t.Parallel()

		sessionRepo := newFakeSessionRepo()
		svc := newTrackerServiceForTest(sessionRepo, &fakeDeliveryRepo{}, &fakeCacheRepo{}, &fakeCollector{})

		headers := map[string]string{"Authorization": "Bearer before"}

		_, err := svc.StartTracking(context.Background(), StartTrackingParams{
			ReportInterval: time.Minute,
			EndpointURL:    "https://fleet.example.com/fixes",
			HTTPHeaders:    headers,
		})
		require.NoError(t, err)

		headers["Authorization"] = "Bearer after"

		assert.Equal(t, "Bearer before", sessionRepo.stored.HTTPHeaders["Authorization"])
	})

	t.Run("replaces an active session", func(t *testing.T) {
		t.Parallel()

		sessionRepo := newFakeSessionRepo()
		collector := &fakeCollector{}
		svc := newTrackerServiceForTest(sessionRepo, &fakeDeliveryRepo{}, &fakeCacheRepo{}, collector)

		first, err := svc.StartTracking(context.Background(), StartTrackingParams{
			ReportInterval: time.Minute,
			EndpointURL:    "https://fleet.example.com/fixes",
		})
		require.NoError(t, err)

		second, err := svc.StartTracking(context.Background(), StartTrackingParams{
			ReportInterval: 10 * time.Second,
			EndpointURL:    "https://fleet.example.com/v2/fixes",
		})
		require.NoError(t, err)

		assert.NotEqual(t, first.ID, second.ID)
		assert.Equal(t, 1, collector.haltCalls)
		assert.Equal(t, 2, collector.runCalls)
		assert.Equal(t, "https://fleet.example.com/v2/fixes", sessionRepo.stored.EndpointURL)
	})
}

func TestContinueIfAppropriate(t *testing.T) {
	t.Parallel()

	t.Run("does nothing without a persisted session", func(t *testing.T) {
		t.Parallel()

		collector := &fakeCollector{}
		svc := newTrackerServiceForTest(newFakeSessionRepo(), &fakeDeliveryRepo{}, &fakeCacheRepo{}, collector)

		session, err := svc.ContinueIfAppropriate(context.Background())

		require.NoError(t, err)
		assert.Nil(t, session)
		assert.Zero(t, collector.runCalls)
		assert.False(t, collector.Running())
	})

	t.Run("does nothing while already running", func(t *testing.T) {
		t.Parallel()

		collector := &fakeCollector{running: true}
		svc := newTrackerServiceForTest(newFakeSessionRepo(), &fakeDeliveryRepo{}, &fakeCacheRepo{}, collector)

		session, err := svc.ContinueIfAppropriate(context.Background())

		require.NoError(t, err)
		assert.Nil(t, session)
		assert.Zero(t, collector.runCalls)
	})

	t.Run("resumes with the persisted configuration", func(t *testing.T) {
		t.Parallel()

		sessionRepo := newFakeSessionRepo()
		collector := &fakeCollector{}
		svc := newTrackerServiceForTest(sessionRepo, &fakeDeliveryRepo{}, &fakeCacheRepo{}, collector)

		started, err := svc.StartTracking(context.Background(), StartTrackingParams{
			ReportInterval: 45 * time.Second,
			EndpointURL:    "https://fleet.example.com/fixes",
			HTTPHeaders:    map[string]string{"X-Fleet-Key": "k1"},
			Transport:      domain.TransportAMQP,
		})
		require.NoError(t, err)

		// Simulate a process restart by halting the collector only. The
		// session stays persisted.
		collector.Halt()

		resumed, err := svc.ContinueIfAppropriate(context.Background())

		require.NoError(t, err)
		require.NotNil(t, resumed)
		assert.Equal(t, started.ID, resumed.ID)
		assert.Equal(t, started.ReportInterval, resumed.ReportInterval)
		assert.Equal(t, started.EndpointURL, resumed.EndpointURL)
		assert.Equal(t, started.HTTPHeaders, resumed.HTTPHeaders)
		assert.Equal(t, started.Transport, resumed.Transport)
		require.NotNil(t, resumed.ResumedAt)
		assert.True(t, collector.Running())
	})
}

func TestStopTracking(t *testing.T) {
	t.Parallel()

	t.Run("halts the collector and clears persisted state", func(t *testing.T) {
		t.Parallel()

		sessionRepo := newFakeSessionRepo()
		deliveryRepo := &fakeDeliveryRepo{}
		cacheRepo := &fakeCacheRepo{lastFix: &domain.LocationFix{ID: uuid.New()}}
		collector := &fakeCollector{}
		svc := newTrackerServiceForTest(sessionRepo, deliveryRepo, cacheRepo, collector)

		_, err := svc.StartTracking(context.Background(), StartTrackingParams{
			ReportInterval: time.Minute,
			EndpointURL:    "https://fleet.example.com/fixes",
		})
		require.NoError(t, err)

		require.NoError(t, svc.StopTracking(context.Background()))

		assert.False(t, collector.Running())
		assert.Nil(t, sessionRepo.stored)
		assert.Equal(t, 1, deliveryRepo.purgeCalls)
		assert.Nil(t, cacheRepo.lastFix)
	})

	t.Run("is idempotent", func(t *testing.T) {
		t.Parallel()

		svc := newTrackerServiceForTest(newFakeSessionRepo(), &fakeDeliveryRepo{}, &fakeCacheRepo{}, &fakeCollector{})

		require.NoError(t, svc.StopTracking(context.Background()))
		require.NoError(t, svc.StopTracking(context.Background()))
	})

	t.Run("cache failures do not fail the stop", func(t *testing.T) {
		t.Parallel()

		cacheRepo := &fakeCacheRepo{deleteErr: errors.New("cache down")}
		svc := newTrackerServiceForTest(newFakeSessionRepo(), &fakeDeliveryRepo{}, cacheRepo, &fakeCollector{})

		require.NoError(t, svc.StopTracking(context.Background()))
	})

	t.Run("start works again after stop", func(t *testing.T) {
		t.Parallel()

		sessionRepo := newFakeSessionRepo()
		collector := &fakeCollector{}
		svc := newTrackerServiceForTest(sessionRepo, &fakeDeliveryRepo{}, &fakeCacheRepo{}, collector)

		_, err := svc.StartTracking(context.Background(), StartTrackingParams{
			ReportInterval: time.Minute,
			EndpointURL:    "https://fleet.example.com/fixes",
		})
		require.NoError(t, err)
		require.NoError(t, svc.StopTracking(context.Background()))

		session, err := svc.ContinueIfAppropriate(context.Background())
		require.NoError(t, err)
		assert.Nil(t, session)

		_, err = svc.StartTracking(context.Background(), StartTrackingParams{
			ReportInterval: time.Minute,
			EndpointURL:    "https://fleet.example.com/fixes",
		})
		require.NoError(t, err)
		assert.True(t, collector.Running())
	})
}

func TestFetchStatus(t *testing.T) {
	t.Parallel()

	t.Run("reports inactive with empty store", func(t *testing.T) {
		t.Parallel()

		svc := newTrackerServiceForTest(newFakeSessionRepo(), &fakeDeliveryRepo{}, &fakeCacheRepo{}, &fakeCollector{})

		status, err := svc.FetchStatus(context.Background())

		require.NoError(t, err)
		assert.False(t, status.Active)
		assert.Nil(t, status.Session)
		assert.Nil(t, status.LastFix)
		assert.Zero(t, status.PendingDeliveries)
	})

	t.Run("aggregates session, cached fix and queue depth", func(t *testing.T) {
		t.Parallel()

		sessionRepo := newFakeSessionRepo()
		deliveryRepo := &fakeDeliveryRepo{undelivered: 3}
		cacheRepo := &fakeCacheRepo{}
		collector := &fakeCollector{}
		svc := newTrackerServiceForTest(sessionRepo, deliveryRepo, cacheRepo, collector)

		started, err := svc.StartTracking(context.Background(), StartTrackingParams{
			ReportInterval: time.Minute,
			EndpointURL:    "https://fleet.example.com/fixes",
		})
		require.NoError(t, err)

		fix := &domain.LocationFix{ID: uuid.New(), Latitude: 52.52, Longitude: 13.405}
		require.NoError(t, cacheRepo.SetLastFix(context.Background(), fix))

		status, err := svc.FetchStatus(context.Background())

		require.NoError(t, err)
		assert.True(t, status.Active)
		require.NotNil(t, status.Session)
		assert.Equal(t, started.ID, status.Session.ID)
		require.NotNil(t, status.LastFix)
		assert.Equal(t, fix.ID, status.LastFix.ID)
		assert.Equal(t, 3, status.PendingDeliveries)
	})
}
