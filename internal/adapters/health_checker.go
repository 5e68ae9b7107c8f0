package adapters

import (
	"context"
	"time"

	"github.com/geofleet/svc-location-tracker/internal/domain"
	"github.com/geofleet/svc-location-tracker/internal/ports"
)

type (
	// PingFunc checks a single dependency.
	PingFunc func(ctx context.Context) error

	// HealthChecker probes the tracker's dependencies: the embedded storage,
	// the last-fix cache and the uplink destination.
	HealthChecker struct {
		startTime  time.Time
		pingStore  PingFunc
		pingCache  PingFunc
		pingUplink PingFunc
	}
)

func NewHealthChecker(pingStore, pingCache, pingUplink PingFunc) ports.HealthChecker {
	return &HealthChecker{
		startTime:  time.Now(),
		pingStore:  pingStore,
		pingCache:  pingCache,
		pingUplink: pingUplink,
	}
}

func (h *HealthChecker) CheckReadiness(ctx context.Context) *domain.ReadinessResult {
	storageStatus := h.checkDependency(ctx, h.pingStore)
	cacheStatus := h.checkDependency(ctx, h.pingCache)
	uplinkStatus := h.checkDependency(ctx, h.pingUplink)

	// Only storage gates readiness: the tracker queues fixes locally and can
	// run through cache or uplink outages.
	overallStatus := domain.ReadinessResponseStatusReady
	if storageStatus.Status == domain.DependencyCheckStatusUnhealthy {
		overallStatus = domain.ReadinessResponseStatusNotReady
	}

	return &domain.ReadinessResult{
		OverallStatus: overallStatus,
		Storage:       storageStatus,
		Cache:         cacheStatus,
		Uplink:        uplinkStatus,
	}
}

func (h *HealthChecker) CheckLiveness(ctx context.Context) *domain.LivenessResult {
	storageStatus := h.checkDependency(ctx, h.pingStore)
	cacheStatus := h.checkDependency(ctx, h.pingCache)
	uplinkStatus := h.checkDependency(ctx, h.pingUplink)

	overallStatus := domain.LivenessResponseStatusAlive
	if storageStatus.Status == domain.DependencyCheckStatusUnhealthy {
		overallStatus = domain.LivenessResponseStatusDead
	}

	return &domain.LivenessResult{
		OverallStatus: overallStatus,
		Storage:       storageStatus,
		Cache:         cacheStatus,
		Uplink:        uplinkStatus,
	}
}

func (h *HealthChecker) CheckHealth(ctx context.Context) *domain.HealthResult {
	storageStatus := h.checkDependency(ctx, h.pingStore)
	cacheStatus := h.checkDependency(ctx, h.pingCache)
	uplinkStatus := h.checkDependency(ctx, h.pingUplink)

	overallStatus := h.calculateOverallHealthStatus(storageStatus, cacheStatus, uplinkStatus)

	return &domain.HealthResult{
		OverallStatus: overallStatus,
		Storage:       storageStatus,
		Cache:         cacheStatus,
		Uplink:        uplinkStatus,
		Uptime:        float32(time.Since(h.startTime).Seconds()),
	}
}

func (h *HealthChecker) calculateOverallHealthStatus(storage, cache, uplink domain.DependencyStatus) domain.HealthResponseStatus {
	// Storage is critical; without it the tracker cannot persist the session
	// or queue fixes.
	if storage.Status == domain.DependencyCheckStatusUnhealthy {
		return domain.HealthResponseStatusUnhealthy
	}

	// An unreachable uplink or cache degrades the service but fixes keep
	// accumulating locally.
	if cache.Status == domain.DependencyCheckStatusUnhealthy ||
		uplink.Status == domain.DependencyCheckStatusUnhealthy {
		return domain.HealthResponseStatusDegraded
	}

	return domain.HealthResponseStatusHealthy
}

func (h *HealthChecker) checkDependency(ctx context.Context, ping PingFunc) domain.DependencyStatus {
	start := time.Now()

	if ping == nil {
		// Dependency not configured; report healthy so it does not mask
		// real failures.
		return domain.DependencyStatus{
			Status:      domain.DependencyCheckStatusHealthy,
			LastChecked: time.Now(),
		}
	}

	err := ping(ctx)

	status := domain.DependencyStatus{
		Status:       domain.DependencyCheckStatusHealthy,
		ResponseTime: float32(time.Since(start).Milliseconds()),
		LastChecked:  time.Now(),
	}

	if err != nil {
		status.Status = domain.DependencyCheckStatusUnhealthy
		status.Error = err.Error()
	}

	return status
}
