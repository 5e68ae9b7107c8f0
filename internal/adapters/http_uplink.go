package adapters

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/geofleet/svc-location-tracker/internal/config"
	"github.com/geofleet/svc-location-tracker/internal/domain"
	"github.com/geofleet/svc-location-tracker/internal/infrastructure"
	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type HTTPUplink struct {
	client         *resty.Client
	circuitBreaker *gobreaker.CircuitBreaker
	logger         infrastructure.Logger
	config         config.UplinkConfig
}

func NewHTTPUplink(config config.UplinkConfig, logger infrastructure.Logger) *HTTPUplink {
	client := resty.New()

	// Propagate trace context on outgoing fix posts.
	client.SetTransport(otelhttp.NewTransport(http.DefaultTransport))

	client.SetTimeout(config.Timeout).
		SetRetryCount(config.MaxRetries).
		SetRetryWaitTime(config.RetryWaitTime).
		SetRetryMaxWaitTime(config.MaxRetryWaitTime)

	if config.UserAgent != "" {
		client.SetHeader("User-Agent", config.UserAgent)
	} else {
		client.SetHeader("User-Agent", "LocationTracker/1.0")
	}

	cbSettings := gobreaker.Settings{
		Name:        "http-uplink",
		MaxRequests: config.CircuitBreaker.MaxRequests,
		Interval:    config.CircuitBreaker.Interval,
		Timeout:     config.CircuitBreaker.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Info().
				Str("name", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit breaker state changed")
		},
	}

	circuitBreaker := gobreaker.NewCircuitBreaker(cbSettings)

	return &HTTPUplink{
		client:         client,
		circuitBreaker: circuitBreaker,
		logger:         logger,
		config:         config,
	}
}

// Deliver posts the fix as JSON to the session's endpoint, carrying the
// headers captured when tracking was started.
func (u *HTTPUplink) Deliver(ctx context.Context, session *domain.TrackingSession, fix *domain.LocationFix) error {
	_, err := u.circuitBreaker.Execute(func() (any, error) {
		return nil, u.postFix(ctx, session, fix)
	})

	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) {
			u.logger.Warn().Str("endpoint", session.EndpointURL).Msg("circuit breaker is open")

			return domain.ErrCircuitBreakerOpen
		}

		return err
	}

	return nil
}

func (u *HTTPUplink) postFix(ctx context.Context, session *domain.TrackingSession, fix *domain.LocationFix) error {
	startTime := time.Now()

	resp, err := u.client.R().
		SetContext(ctx).
		SetHeaders(session.HeadersCopy()).
		SetHeader("Content-Type", "application/json").
		SetBody(fix).
		Post(session.EndpointURL)

	if err != nil {
		u.logger.Error().
			Err(err).
			Str("endpoint", session.EndpointURL).
			Msg("failed to post fix")

		return domain.NewEndpointNotReachableError(session.EndpointURL, 0, err)
	}

	duration := time.Since(startTime)

	u.logger.Debug().
		Str("endpoint", session.EndpointURL).
		Int("status_code", resp.StatusCode()).
		Int64("duration_ms", duration.Milliseconds()).
		Msg("fix delivery request completed")

	if resp.StatusCode() < http.StatusOK || resp.StatusCode() >= http.StatusMultipleChoices {
		u.logger.Warn().
			Str("endpoint", session.EndpointURL).
			Int("status_code", resp.StatusCode()).
			Msg("fix delivery returned non-success status code")

		return domain.NewEndpointNotReachableError(
			session.EndpointURL,
			resp.StatusCode(),
			fmt.Errorf("HTTP %d: %s", resp.StatusCode(), resp.Status()),
		)
	}

	return nil
}
