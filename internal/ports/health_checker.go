package ports

import (
	"context"

	"github.com/geofleet/svc-location-tracker/internal/domain"
)

// HealthChecker reports the agent's dependency health.
type HealthChecker interface {
	CheckReadiness(ctx context.Context) *domain.ReadinessResult
	CheckLiveness(ctx context.Context) *domain.LivenessResult
	CheckHealth(ctx context.Context) *domain.HealthResult
}
