package service

import (
	"context"
	"errors"
	"time"

	"github.com/geofleet/svc-location-tracker/internal/config"
	"github.com/geofleet/svc-location-tracker/internal/domain"
	"github.com/geofleet/svc-location-tracker/internal/infrastructure"
	"github.com/geofleet/svc-location-tracker/internal/ports"
	"github.com/google/uuid"
)

type (
	// StartTrackingParams carries the caller-supplied tracking configuration.
	StartTrackingParams struct {
		ReportInterval time.Duration
		EndpointURL    string
		HTTPHeaders    map[string]string
		Transport      domain.Transport
	}

	// TrackerService is the tracking facade. Start begins reporting and
	// persists the configuration, ContinueIfAppropriate resumes a persisted
	// session after a process restart, and Stop halts reporting and clears
	// the stored state.
	TrackerService interface {
		StartTracking(ctx context.Context, params StartTrackingParams) (*domain.TrackingSession, error)
		ContinueIfAppropriate(ctx context.Context) (*domain.TrackingSession, error)
		StopTracking(ctx context.Context) error
		FetchStatus(ctx context.Context) (*domain.TrackingStatus, error)
		FetchReadinessReport(ctx context.Context) (*domain.ReadinessResult, error)
		FetchLivenessReport(ctx context.Context) (*domain.LivenessResult, error)
		FetchHealthReport(ctx context.Context) (*domain.HealthResult, error)
	}

	// Collector runs the periodic fix collection loop for a session.
	Collector interface {
		Run(session *domain.TrackingSession)
		Halt()
		Running() bool
	}

	trackerService struct {
		sessionRepo    ports.SessionRepository
		deliveryRepo   ports.DeliveryRepository
		cacheRepo      ports.CacheRepository
		healthChecker  ports.HealthChecker
		collector      Collector
		trackingConfig config.TrackingConfig
		logger         infrastructure.Logger
		metrics        infrastructure.Metrics
	}
)

func NewTrackerService(
	sessionRepo ports.SessionRepository,
	deliveryRepo ports.DeliveryRepository,
	cacheRepo ports.CacheRepository,
	healthChecker ports.HealthChecker,
	collector Collector,
	trackingConfig config.TrackingConfig,
	logger infrastructure.Logger,
	metrics infrastructure.Metrics,
) TrackerService {
	return &trackerService{
		sessionRepo:    sessionRepo,
		deliveryRepo:   deliveryRepo,
		cacheRepo:      cacheRepo,
		healthChecker:  healthChecker,
		collector:      collector,
		trackingConfig: trackingConfig,
		logger:         logger,
		metrics:        metrics,
	}
}

// StartTracking validates the configuration, persists it and begins the
// reporting loop. Starting while a session is active replaces that session.
func (s *trackerService) StartTracking(ctx context.Context, params StartTrackingParams) (*domain.TrackingSession, error) {
	if params.ReportInterval <= 0 {
		return nil, domain.NewInvalidIntervalError(params.ReportInterval)
	}

	endpoint, err := domain.NewReportEndpoint(params.EndpointURL)
	if err != nil {
		return nil, domain.NewInvalidEndpointError(params.EndpointURL, err)
	}

	transport := params.Transport
	if transport == "" {
		transport = domain.TransportHTTP
	}

	// Headers are copied at start time so later mutations by the caller do
	// not leak into the persisted session.
	session := &domain.TrackingSession{
		ID:             uuid.Nil,
		DeviceID:       s.trackingConfig.DeviceID,
		ReportInterval: params.ReportInterval,
		EndpointURL:    endpoint.String(),
		HTTPHeaders:    copyHeaders(params.HTTPHeaders),
		Transport:      transport,
		StartedAt:      time.Now().UTC(),
	}

	if s.collector.Running() {
		s.logger.Info().Msg("tracking already active, replacing session")
		s.collector.Halt()
	}

	if err := s.sessionRepo.Save(ctx, session); err != nil {
		return nil, err
	}

	s.collector.Run(session)

	s.metrics.RecordSessionEvent(ctx, "started")

	s.logger.Info().
		Str("session_id", session.ID.String()).
		Dur("report_interval", session.ReportInterval).
		Str("endpoint", session.EndpointURL).
		Str("transport", string(session.Transport)).
		Msg("tracking started")

	return session, nil
}

// ContinueIfAppropriate resumes reporting when a persisted session exists.
// When tracking was never started, or was stopped, it does nothing and
// returns a nil session.
func (s *trackerService) ContinueIfAppropriate(ctx context.Context) (*domain.TrackingSession, error) {
	if s.collector.Running() {
		return nil, nil
	}

	session, err := s.sessionRepo.Find(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			s.logger.Info().Msg("no persisted session, tracking stays off")

			return nil, nil
		}

		return nil, err
	}

	resumedAt := time.Now().UTC()
	if err := s.sessionRepo.MarkResumed(ctx, session.ID.String(), resumedAt); err != nil {
		return nil, err
	}
	session.ResumedAt = &resumedAt

	s.collector.Run(session)

	s.metrics.RecordSessionEvent(ctx, "resumed")

	s.logger.Info().
		Str("session_id", session.ID.String()).
		Dur("report_interval", session.ReportInterval).
		Str("endpoint", session.EndpointURL).
		Msg("tracking resumed")

	return session, nil
}

// StopTracking halts the reporting loop and clears the persisted state.
// Stopping an inactive tracker is not an error.
func (s *trackerService) StopTracking(ctx context.Context) error {
	s.collector.Halt()

	if err := s.sessionRepo.Clear(ctx); err != nil {
		return err
	}

	if err := s.deliveryRepo.Purge(ctx); err != nil {
		return err
	}

	if err := s.cacheRepo.Delete(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("failed to drop cached fix")
	}

	s.metrics.RecordSessionEvent(ctx, "stopped")

	s.logger.Info().Msg("tracking stopped")

	return nil
}

func (s *trackerService) FetchStatus(ctx context.Context) (*domain.TrackingStatus, error) {
	status := &domain.TrackingStatus{
		Active: s.collector.Running(),
	}

	session, err := s.sessionRepo.Find(ctx)
	if err != nil && !errors.Is(err, domain.ErrSessionNotFound) {
		return nil, err
	}
	status.Session = session

	lastFix, err := s.cacheRepo.LastFix(ctx)
	if err != nil && !errors.Is(err, domain.ErrFixUnavailable) {
		s.logger.Warn().Err(err).Msg("failed to read cached fix")
	}
	status.LastFix = lastFix

	pending, err := s.deliveryRepo.CountUndelivered(ctx)
	if err != nil {
		return nil, err
	}
	status.PendingDeliveries = pending

	return status, nil
}

func (s *trackerService) FetchReadinessReport(ctx context.Context) (*domain.ReadinessResult, error) {
	return s.healthChecker.CheckReadiness(ctx), nil
}

func (s *trackerService) FetchLivenessReport(ctx context.Context) (*domain.LivenessResult, error) {
	return s.healthChecker.CheckLiveness(ctx), nil
}

func (s *trackerService) FetchHealthReport(ctx context.Context) (*domain.HealthResult, error) {
	return s.healthChecker.CheckHealth(ctx), nil
}

func copyHeaders(headers map[string]string) map[string]string {
	if headers == nil {
		return nil
	}

	copied := make(map[string]string, len(headers))
	for k, v := range headers {
		copied[k] = v
	}

	return copied
}
