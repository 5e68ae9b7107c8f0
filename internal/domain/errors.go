package domain

import (
	"errors"
	"fmt"
)

var (
	ErrTrackingNotStarted   = errors.New("tracking not started")
	ErrSessionNotFound      = errors.New("tracking session not found")
	ErrInvalidInterval      = errors.New("invalid report interval")
	ErrInvalidEndpoint      = errors.New("invalid endpoint URL")
	ErrFixUnavailable       = errors.New("no location fix available")
	ErrDeliveryNotFound     = errors.New("fix delivery not found")
	ErrEndpointNotReachable = errors.New("endpoint not reachable")
	ErrCircuitBreakerOpen   = errors.New("circuit breaker open")
	ErrCacheUnavailable     = errors.New("cache service unavailable")
	ErrUnauthorized         = errors.New("unauthorized")
	ErrInternalServerError  = errors.New("internal server error")
)

type (
	DomainError struct {
		Code       string
		Message    string
		StatusCode int
		Cause      error
		Details    map[string]any
	}

	MaxRetriesExceededError struct {
		DeliveryID string
		RetryCount int
		MaxRetries int
	}
)

func (e *DomainError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s", e.Message, e.Cause.Error())
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Cause
}

func NewDomainError(code, message string, statusCode int, cause error) *DomainError {
	return &DomainError{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
		Cause:      cause,
		Details:    make(map[string]any),
	}
}

func (e *DomainError) WithDetails(key string, value any) *DomainError {
	e.Details[key] = value
	return e
}

func NewInvalidIntervalError(interval any) *DomainError {
	return NewDomainError(
		"INVALID_INTERVAL",
		fmt.Sprintf("report interval must be positive, got %v", interval),
		400,
		ErrInvalidInterval,
	).WithDetails("interval", interval)
}

func NewInvalidEndpointError(url string, cause error) *DomainError {
	return NewDomainError(
		"INVALID_ENDPOINT",
		fmt.Sprintf("invalid endpoint URL: %s", url),
		400,
		cause,
	).WithDetails("url", url)
}

func NewEndpointNotReachableError(url string, statusCode int, cause error) *DomainError {
	return NewDomainError(
		"ENDPOINT_NOT_REACHABLE",
		fmt.Sprintf("endpoint %s is not reachable", url),
		statusCode,
		cause,
	).WithDetails("url", url).WithDetails("status_code", statusCode)
}

func NewUnauthorizedError(message string) *DomainError {
	return NewDomainError(
		"UNAUTHORIZED",
		message,
		401,
		ErrUnauthorized,
	)
}

func NewInternalServerError(message string, cause error) *DomainError {
	return NewDomainError(
		"INTERNAL_SERVER_ERROR",
		message,
		500,
		cause,
	)
}

func (e *MaxRetriesExceededError) Error() string {
	return fmt.Sprintf("max retries exceeded for delivery %s: %d/%d", e.DeliveryID, e.RetryCount, e.MaxRetries)
}
