package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	TransportHTTP Transport = "http"
	TransportAMQP Transport = "amqp"

	DeliveryStatusPending    DeliveryStatus = "pending"
	DeliveryStatusDelivering DeliveryStatus = "delivering"
	DeliveryStatusDelivered  DeliveryStatus = "delivered"
	DeliveryStatusFailed     DeliveryStatus = "failed"

	FixSourceGpsd   FixSource = "gpsd"
	FixSourceStatic FixSource = "static"
)

type (
	Transport      string
	DeliveryStatus string
	FixSource      string

	// TrackingSession is the persisted configuration of a started tracker.
	// It is written on Start, read back by ContinueIfAppropriate after a
	// process restart, and removed by Stop.
	TrackingSession struct {
		ID             uuid.UUID         `json:"session_id"`
		DeviceID       string            `json:"device_id"`
		ReportInterval time.Duration     `json:"report_interval"`
		EndpointURL    string            `json:"endpoint_url"`
		HTTPHeaders    map[string]string `json:"http_headers,omitempty"`
		Transport      Transport         `json:"transport"`
		StartedAt      time.Time         `json:"started_at"`
		ResumedAt      *time.Time        `json:"resumed_at,omitempty"`
	}

	// LocationFix is a single position report produced by a location provider.
	LocationFix struct {
		ID         uuid.UUID `json:"fix_id"`
		DeviceID   string    `json:"device_id"`
		Latitude   float64   `json:"latitude"`
		Longitude  float64   `json:"longitude"`
		Altitude   float64   `json:"altitude,omitempty"`
		Speed      float64   `json:"speed,omitempty"`
		Heading    float64   `json:"heading,omitempty"`
		Accuracy   float64   `json:"accuracy,omitempty"`
		Satellites int       `json:"satellites,omitempty"`
		Source     FixSource `json:"source"`
		RecordedAt time.Time `json:"recorded_at"`
	}

	// FixDelivery wraps a fix queued for uplink delivery.
	FixDelivery struct {
		ID           uuid.UUID      `json:"delivery_id"`
		SessionID    uuid.UUID      `json:"session_id"`
		Fix          LocationFix    `json:"fix"`
		Status       DeliveryStatus `json:"status"`
		RetryCount   int            `json:"retry_count"`
		MaxRetries   int            `json:"max_retries"`
		ErrorDetails *string        `json:"error_details,omitempty"`
		CreatedAt    time.Time      `json:"created_at"`
		DeliveredAt  *time.Time     `json:"delivered_at,omitempty"`
		NextRetryAt  *time.Time     `json:"next_retry_at,omitempty"`
	}

	// StopTrackingResult reports the outcome of a stop request.
	StopTrackingResult struct {
		Stopped bool `json:"stopped"`
	}

	// DeliverFixResult reports the outcome of a single delivery attempt.
	DeliverFixResult struct {
		Delivered bool   `json:"delivered"`
		Error     string `json:"error,omitempty"`
	}

	// TrackingStatus is the control API view of the tracker.
	TrackingStatus struct {
		Active            bool             `json:"active"`
		Session           *TrackingSession `json:"session,omitempty"`
		LastFix           *LocationFix     `json:"last_fix,omitempty"`
		PendingDeliveries int              `json:"pending_deliveries"`
	}
)

// CanRetry reports whether the delivery has retry budget left.
func (d *FixDelivery) CanRetry() bool {
	return d.RetryCount < d.MaxRetries
}

// HeadersCopy returns a detached copy of the session's HTTP headers, so that
// callers mutating the returned map cannot alter the persisted session.
func (s *TrackingSession) HeadersCopy() map[string]string {
	if s.HTTPHeaders == nil {
		return nil
	}

	headers := make(map[string]string, len(s.HTTPHeaders))
	for k, v := range s.HTTPHeaders {
		headers[k] = v
	}

	return headers
}
