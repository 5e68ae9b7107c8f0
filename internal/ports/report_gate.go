package ports

import "time"

// ReportGate enforces the minimum spacing between tracking actions.
type ReportGate interface {
	// Allow reports whether an action may happen now; when it may not, the
	// returned duration says how long to wait.
	Allow() (bool, time.Duration, error)
}
