package repos

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	// SessionNamespace is the UUID V5 namespace for tracking sessions
	// Generated via: uuid_generate_v5('6ba7b811-9dad-11d1-80b4-00c04fd430c8', 'svc-location-tracker:session')
	SessionNamespace = uuid.MustParse("c1d7e7f2-9f5b-5a3c-d0e6-a0bebc3d5e60")

	// FixNamespace is the UUID V5 namespace for location fixes
	// Generated via: uuid_generate_v5('6ba7b811-9dad-11d1-80b4-00c04fd430c8', 'svc-location-tracker:fix')
	FixNamespace = uuid.MustParse("d2e8f803-a06c-5b4d-e1f7-b1cfcd4e6f71")
)

// NewSessionID derives a stable session ID from the device and start time so
// that restarted agents do not mint a fresh identity for the same session.
func NewSessionID(deviceID string, startedAt time.Time) uuid.UUID {
	return uuid.NewSHA1(SessionNamespace, []byte(fmt.Sprintf("%s:%d", deviceID, startedAt.UnixNano())))
}

// NewFixID derives a fix ID from the device and the fix timestamp.
func NewFixID(deviceID string, recordedAt time.Time) uuid.UUID {
	return uuid.NewSHA1(FixNamespace, []byte(fmt.Sprintf("%s:%d", deviceID, recordedAt.UnixNano())))
}
