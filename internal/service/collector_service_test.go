package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/geofleet/svc-location-tracker/internal/config"
	"github.com/geofleet/svc-location-tracker/internal/domain"
	"github.com/geofleet/svc-location-tracker/internal/infrastructure"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	mu  sync.Mutex
	fix *domain.LocationFix
	err error
}

func (p *fakeProvider) Current(_ context.Context) (*domain.LocationFix, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.err != nil {
		return nil, p.err
	}

	copied := *p.fix

	return &copied, nil
}

func (p *fakeProvider) Close() error { return nil }

type openGate struct{}

func (openGate) Allow() (bool, time.Duration, error) { return true, 0, nil }

type closedGate struct{}

func (closedGate) Allow() (bool, time.Duration, error) { return false, time.Second, nil }

type countingDeliveryRepo struct {
	fakeDeliveryRepo

	mu sync.Mutex
}

func (r *countingDeliveryRepo) Enqueue(ctx context.Context, delivery *domain.FixDelivery) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.fakeDeliveryRepo.Enqueue(ctx, delivery)
}

func (r *countingDeliveryRepo) queuedCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.queued)
}

type syncCacheRepo struct {
	fakeCacheRepo

	mu sync.Mutex
}

func (r *syncCacheRepo) SetLastFix(ctx context.Context, fix *domain.LocationFix) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.fakeCacheRepo.SetLastFix(ctx, fix)
}

type recordingMetrics struct {
	infrastructure.NoOpMetrics

	mu      sync.Mutex
	sources []string
}

func (m *recordingMetrics) RecordFixCollected(_ context.Context, source string, success bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !success {
		m.sources = append(m.sources, source)
	}
}

func (m *recordingMetrics) failureSources() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]string(nil), m.sources...)
}

func testCollector(provider *fakeProvider, deliveryRepo *countingDeliveryRepo, cacheRepo *syncCacheRepo) *CollectorService {
	return NewCollectorService(
		provider,
		deliveryRepo,
		cacheRepo,
		openGate{},
		config.TrackingConfig{Provider: "static"},
		config.DeliveryConfig{MaxRetries: 3},
		infrastructure.NewTestLogger(),
		&infrastructure.NoOpMetrics{},
	)
}

func sessionWithInterval(interval time.Duration) *domain.TrackingSession {
	return &domain.TrackingSession{
		ID:             uuid.New(),
		DeviceID:       "unit-042",
		ReportInterval: interval,
		EndpointURL:    "https://fleet.example.com/fixes",
		StartedAt:      time.Now().UTC(),
	}
}

func TestCollectorLifecycle(t *testing.T) {
	t.Parallel()

	provider := &fakeProvider{fix: &domain.LocationFix{ID: uuid.New(), Source: domain.FixSourceStatic}}
	deliveryRepo := &countingDeliveryRepo{}
	collector := testCollector(provider, deliveryRepo, &syncCacheRepo{})

	assert.False(t, collector.Running())

	collector.Run(sessionWithInterval(time.Hour))
	assert.True(t, collector.Running())

	collector.Halt()
	assert.False(t, collector.Running())

	// Halting a stopped collector is a no-op.
	collector.Halt()
}

func TestCollectorCollectsImmediately(t *testing.T) {
	t.Parallel()

	provider := &fakeProvider{fix: &domain.LocationFix{ID: uuid.New(), Source: domain.FixSourceStatic}}
	deliveryRepo := &countingDeliveryRepo{}
	cacheRepo := &syncCacheRepo{}
	collector := testCollector(provider, deliveryRepo, cacheRepo)

	session := sessionWithInterval(time.Hour)
	collector.Run(session)
	defer collector.Halt()

	require.Eventually(t, func() bool {
		return deliveryRepo.queuedCount() == 1
	}, time.Second, 10*time.Millisecond)

	deliveryRepo.mu.Lock()
	queued := deliveryRepo.queued[0]
	deliveryRepo.mu.Unlock()

	assert.Equal(t, session.ID, queued.SessionID)
	assert.Equal(t, domain.DeliveryStatusPending, queued.Status)
	assert.Equal(t, 3, queued.MaxRetries)
}

func TestCollectorSkipsWhenGated(t *testing.T) {
	t.Parallel()

	provider := &fakeProvider{fix: &domain.LocationFix{ID: uuid.New(), Source: domain.FixSourceStatic}}
	deliveryRepo := &countingDeliveryRepo{}
	collector := NewCollectorService(
		provider,
		deliveryRepo,
		&syncCacheRepo{},
		closedGate{},
		config.TrackingConfig{Provider: "static"},
		config.DeliveryConfig{MaxRetries: 3},
		infrastructure.NewTestLogger(),
		&infrastructure.NoOpMetrics{},
	)

	collector.Run(sessionWithInterval(10 * time.Millisecond))
	defer collector.Halt()

	time.Sleep(100 * time.Millisecond)

	assert.Zero(t, deliveryRepo.queuedCount())
}

func TestCollectorToleratesMissingFix(t *testing.T) {
	t.Parallel()

	provider := &fakeProvider{err: domain.ErrFixUnavailable}
	deliveryRepo := &countingDeliveryRepo{}
	collector := testCollector(provider, deliveryRepo, &syncCacheRepo{})

	collector.Run(sessionWithInterval(10 * time.Millisecond))

	time.Sleep(50 * time.Millisecond)

	// The loop keeps running even though the provider has no fix yet.
	assert.True(t, collector.Running())
	assert.Zero(t, deliveryRepo.queuedCount())

	collector.Halt()
}

func TestCollectorFailureMetricCarriesConfiguredProvider(t *testing.T) {
	t.Parallel()

	provider := &fakeProvider{err: domain.ErrFixUnavailable}
	metrics := &recordingMetrics{}
	collector := NewCollectorService(
		provider,
		&countingDeliveryRepo{},
		&syncCacheRepo{},
		openGate{},
		config.TrackingConfig{Provider: "static"},
		config.DeliveryConfig{MaxRetries: 3},
		infrastructure.NewTestLogger(),
		metrics,
	)

	collector.Run(sessionWithInterval(time.Hour))
	defer collector.Halt()

	require.Eventually(t, func() bool {
		return len(metrics.failureSources()) == 1
	}, time.Second, 10*time.Millisecond)

	assert.Equal(t, []string{"static"}, metrics.failureSources())
}

func TestCollectorRunReplacesPreviousLoop(t *testing.T) {
	t.Parallel()

	provider := &fakeProvider{fix: &domain.LocationFix{ID: uuid.New(), Source: domain.FixSourceStatic}}
	deliveryRepo := &countingDeliveryRepo{}
	collector := testCollector(provider, deliveryRepo, &syncCacheRepo{})

	collector.Run(sessionWithInterval(time.Hour))
	collector.Run(sessionWithInterval(time.Hour))
	defer collector.Halt()

	assert.True(t, collector.Running())
}
