package adapters

import (
	"context"
	"strings"

	"github.com/geofleet/svc-location-tracker/internal/infrastructure"
	"github.com/geofleet/svc-location-tracker/internal/shared/decorator"
)

type MetricsAdapter struct {
	metrics infrastructure.Metrics
}

func NewMetricsAdapter(metrics infrastructure.Metrics) decorator.MetricsClient {
	return &MetricsAdapter{
		metrics: metrics,
	}
}

// Inc maps decorator counter keys onto session event metrics. Keys look like
// "commands.<name>.success"; the middle segment becomes the event label.
func (m *MetricsAdapter) Inc(key string, value int) {
	parts := strings.Split(key, ".")
	if len(parts) < 3 {
		return
	}

	outcome := parts[len(parts)-1]
	if outcome != "success" && outcome != "failure" {
		return
	}

	m.metrics.RecordSessionEvent(context.Background(), strings.Join(parts[1:len(parts)-1], "."))
}
