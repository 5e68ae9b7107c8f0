package domain

import (
	"time"
)

type (
	// DependencyStatus represents the health status of a dependency.
	DependencyStatus struct {
		Status       DependencyCheckStatus `json:"status"`
		ResponseTime float32               `json:"response_time_ms"`
		LastChecked  time.Time             `json:"last_checked"`
		Error        string                `json:"error,omitempty"`
	}

	// LivenessResult contains liveness check results.
	LivenessResult struct {
		OverallStatus LivenessResponseStatus `json:"status"`
		Storage       DependencyStatus       `json:"storage"`
		Cache         DependencyStatus       `json:"cache"`
		Uplink        DependencyStatus       `json:"uplink"`
	}

	// ReadinessResult contains readiness check results.
	ReadinessResult struct {
		OverallStatus ReadinessResponseStatus `json:"status"`
		Storage       DependencyStatus        `json:"storage"`
		Cache         DependencyStatus        `json:"cache"`
		Uplink        DependencyStatus        `json:"uplink"`
	}

	// HealthResult contains comprehensive health check results.
	HealthResult struct {
		OverallStatus HealthResponseStatus `json:"status"`
		Storage       DependencyStatus     `json:"storage"`
		Cache         DependencyStatus     `json:"cache"`
		Uplink        DependencyStatus     `json:"uplink"`
		Uptime        float32              `json:"uptime_seconds"`
	}
)
