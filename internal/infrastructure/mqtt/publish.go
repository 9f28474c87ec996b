package mqtt

import (
	"encoding/json"
	"fmt"
	"time"
)

// Maximum payload size for MQTT messages (1MB).
const maxPayloadSize = 1 << 20

// DeviceState is the retained payload of a device state topic.
type DeviceState struct {
	DeviceID  int64     `json:"device_id"`
	Device    string    `json:"device"`
	HomeID    int64     `json:"home_id"`
	State     string    `json:"state"`
	Timestamp time.Time `json:"timestamp"`
}

// EventMessage is the payload published for each recorded event.
type EventMessage struct {
	ID          int64     `json:"id"`
	Timestamp   time.Time `json:"timestamp"`
	Description string    `json:"description"`
	Source      string    `json:"source"`
	DeviceID    *int64    `json:"device_id,omitempty"`
	UserEmail   string    `json:"user_email,omitempty"`
}

// Publish sends payload to topic.
//
// QoS 0 is fire and forget, 1 at least once, 2 exactly once. Retained
// messages are kept by the broker for new subscribers; use them for state,
// not for events.
func (c *Client) Publish(topic string, payload []byte, qos byte, retained bool) error {
	if topic == "" {
		return ErrInvalidTopic
	}
	if qos > maxQoS {
		return ErrInvalidQoS
	}
	if len(payload) > maxPayloadSize {
		return fmt.Errorf("%w: payload size %d exceeds maximum %d bytes", ErrPublishFailed, len(payload), maxPayloadSize)
	}
	if !c.IsConnected() {
		return ErrNotConnected
	}

	token := c.conn.Publish(topic, qos, retained, payload)
	if !token.WaitTimeout(defaultPublishTimeout) {
		return fmt.Errorf("%w: timeout after %v", ErrPublishFailed, defaultPublishTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %w", ErrPublishFailed, err)
	}
	return nil
}

// PublishDeviceState publishes s as the retained state of its device.
func (c *Client) PublishDeviceState(s DeviceState) error {
	payload, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encoding device state: %w", err)
	}
	return c.Publish(c.topics.DeviceState(s.DeviceID), payload, c.qos(), true)
}

// PublishEvent publishes e on the event topic.
func (c *Client) PublishEvent(e EventMessage) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encoding event: %w", err)
	}
	return c.Publish(c.topics.Event(), payload, c.qos(), false)
}
