package repos

import (
	"context"
	"sync"

	"github.com/geofleet/svc-location-tracker/internal/domain"
)

// MemoryCacheRepository is the in-process fallback used when KeyDB is
// disabled or unreachable. Trackers on constrained hardware run this way.
type MemoryCacheRepository struct {
	mu      sync.RWMutex
	lastFix *domain.LocationFix
}

func NewMemoryCacheRepository() *MemoryCacheRepository {
	return &MemoryCacheRepository{}
}

func (r *MemoryCacheRepository) SetLastFix(_ context.Context, fix *domain.LocationFix) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	copied := *fix
	r.lastFix = &copied

	return nil
}

func (r *MemoryCacheRepository) LastFix(_ context.Context) (*domain.LocationFix, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.lastFix == nil {
		return nil, domain.ErrFixUnavailable
	}

	fix := *r.lastFix

	return &fix, nil
}

func (r *MemoryCacheRepository) Delete(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.lastFix = nil

	return nil
}
