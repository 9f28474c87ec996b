package mqtt

import (
	"fmt"
	"strings"
)

// DefaultTopicPrefix is used when the configuration leaves the prefix empty.
const DefaultTopicPrefix = "smarthome"

// Topics builds topic names under one prefix.
//
//	topics := mqtt.NewTopics("smarthome")
//	topics.DeviceState(4) // "smarthome/device/4/state"
type Topics struct {
	prefix string
}

// NewTopics returns a topic builder. Surrounding slashes are trimmed from
// prefix; an empty prefix falls back to DefaultTopicPrefix.
func NewTopics(prefix string) Topics {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		prefix = DefaultTopicPrefix
	}
	return Topics{prefix: prefix}
}

// Prefix returns the root of every topic.
func (t Topics) Prefix() string {
	return t.prefix
}

// DeviceState returns the retained state topic of one device.
func (t Topics) DeviceState(deviceID int64) string {
	return fmt.Sprintf("%s/device/%d/state", t.prefix, deviceID)
}

// AllDeviceStates matches every device state topic.
func (t Topics) AllDeviceStates() string {
	return t.prefix + "/device/+/state"
}

// Event returns the topic recorded events are published on.
func (t Topics) Event() string {
	return t.prefix + "/event"
}

// SystemStatus returns the retained online/offline topic.
func (t Topics) SystemStatus() string {
	return t.prefix + "/system/status"
}
