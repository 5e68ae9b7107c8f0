package ports

import "context"

// BackgroundProcessor defines the interface for background task processing.
// Start blocks until ctx is canceled.
type BackgroundProcessor interface {
	Start(ctx context.Context) error
}
