package adapters

import (
	"fmt"
	"time"

	"github.com/throttled/throttled/v2"
	"github.com/throttled/throttled/v2/store/memstore"
)

const reportGateKey = "report"

// GCRAReportGate enforces the minimum spacing between tracking actions using
// the generic cell rate algorithm, so that a misconfigured session interval
// cannot flood the fix queue.
type GCRAReportGate struct {
	limiter *throttled.GCRARateLimiterCtx
}

func NewGCRAReportGate(minSpacing time.Duration) (*GCRAReportGate, error) {
	store, err := memstore.New(64)
	if err != nil {
		return nil, fmt.Errorf("failed to create rate limit store: %w", err)
	}

	quota := throttled.RateQuota{
		MaxRate:  throttled.PerDuration(1, minSpacing),
		MaxBurst: 0,
	}

	limiter, err := throttled.NewGCRARateLimiter(store, quota)
	if err != nil {
		return nil, fmt.Errorf("failed to create rate limiter: %w", err)
	}

	return &GCRAReportGate{limiter: limiter}, nil
}

// Allow reports whether an action may happen now; when limited, the returned
// duration says how long to wait before retrying.
func (g *GCRAReportGate) Allow() (bool, time.Duration, error) {
	limited, result, err := g.limiter.RateLimit(reportGateKey, 1)
	if err != nil {
		return false, 0, err
	}

	if limited {
		return false, result.RetryAfter, nil
	}

	return true, 0, nil
}
