package event

import (
	"fmt"
	"time"

	"github.com/nerrad567/smarthome-core/internal/auth"
	"github.com/nerrad567/smarthome-core/internal/device"
)

// Event sources.
const (
	SourceManual = "manual"
	SourceSystem = "system"
)

// Query limits.
const (
	DefaultDeviceLimit = 50
	DefaultUserLimit   = 50
	DefaultRecentLimit = 100
	DefaultRangeLimit  = 100
	MaxLimit           = 1000
)

// Event is an entry in the event log. Device and User are nil when the
// event has no such reference or the referenced row no longer exists.
type Event struct {
	ID          int64
	Time        time.Time
	Description string
	Source      string
	Device      *device.Device
	User        *auth.User
}

// LogLine renders the event as a single log line.
func (e *Event) LogLine() string {
	user := "System"
	if e.User != nil {
		user = e.User.Email
	}
	dev := "N/A"
	if e.Device != nil {
		dev = e.Device.Name
	}
	return fmt.Sprintf("[%s] %s | User: %s | Device: %s | Source: %s",
		e.Time.Format(time.DateTime), e.Description, user, dev, e.Source)
}

// Filter selects events. Zero fields do not filter.
type Filter struct {
	DeviceID  int64
	UserEmail string
	Start     time.Time // inclusive
	End       time.Time // inclusive
	Limit     int       // <= 0 means DefaultRecentLimit; capped at MaxLimit
}

// clampLimit applies the default and the MaxLimit cap.
func clampLimit(limit, def int) int {
	if limit <= 0 {
		return def
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}
