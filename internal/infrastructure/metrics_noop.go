package infrastructure

import (
	"context"
	"net/http"
	"time"
)

type (
	NoOpMetrics struct{}
)

func (n *NoOpMetrics) RecordHTTPRequest(_ context.Context, _, _ string, _ int, _ time.Duration, _, _ int64) {
}

func (n *NoOpMetrics) RecordFixCollected(_ context.Context, _ string, _ bool) {
}

func (n *NoOpMetrics) RecordDelivery(_ context.Context, _ string, _ time.Duration, _ bool) {
}

func (n *NoOpMetrics) RecordQueueDepth(_ context.Context, _ int64) {
}

func (n *NoOpMetrics) RecordSessionEvent(_ context.Context, _ string) {
}

func (n *NoOpMetrics) Handler() http.Handler {
	return http.NotFoundHandler()
}

func (n *NoOpMetrics) Shutdown(_ context.Context) error {
	return nil
}
