package repos

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/geofleet/svc-location-tracker/internal/domain"
	"github.com/redis/go-redis/v9"
)

const lastFixKey = "tracker:last_fix"

type (
	// CacheRepository keeps the most recent fix in KeyDB so that status reads
	// do not touch the location provider.
	CacheRepository struct {
		client *redis.Client
		expiry time.Duration
	}
)

func NewCacheRepository(client *redis.Client, expiry time.Duration) *CacheRepository {
	return &CacheRepository{
		client: client,
		expiry: expiry,
	}
}

func (r *CacheRepository) SetLastFix(ctx context.Context, fix *domain.LocationFix) error {
	payload, err := json.Marshal(fix)
	if err != nil {
		return fmt.Errorf("failed to marshal fix: %w", err)
	}

	if err := r.client.Set(ctx, lastFixKey, payload, r.expiry).Err(); err != nil {
		return fmt.Errorf("failed to cache fix: %w", err)
	}

	return nil
}

func (r *CacheRepository) LastFix(ctx context.Context) (*domain.LocationFix, error) {
	payload, err := r.client.Get(ctx, lastFixKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrFixUnavailable
		}

		return nil, fmt.Errorf("failed to read cached fix: %w", err)
	}

	var fix domain.LocationFix
	if err := json.Unmarshal(payload, &fix); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached fix: %w", err)
	}

	return &fix, nil
}

func (r *CacheRepository) Delete(ctx context.Context) error {
	if err := r.client.Del(ctx, lastFixKey).Err(); err != nil {
		return fmt.Errorf("failed to delete cached fix: %w", err)
	}

	return nil
}
