package mqtt

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/nerrad567/smarthome-core/internal/infrastructure/config"
)

// fakeToken completes immediately with err.
type fakeToken struct{ err error }

func (t fakeToken) Wait() bool                     { return true }
func (t fakeToken) WaitTimeout(time.Duration) bool { return true }
func (t fakeToken) Error() error                   { return t.err }

func (t fakeToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}

type published struct {
	topic    string
	qos      byte
	retained bool
	payload  []byte
}

// fakeConn records publishes instead of talking to a broker.
type fakeConn struct {
	mu           sync.Mutex
	up           bool
	err          error
	messages     []published
	disconnected bool
}

func (f *fakeConn) IsConnected() bool { return f.up }

func (f *fakeConn) Publish(topic string, qos byte, retained bool, payload interface{}) pahomqtt.Token {
	f.mu.Lock()
	defer f.mu.Unlock()
	var data []byte
	switch p := payload.(type) {
	case []byte:
		data = p
	case string:
		data = []byte(p)
	}
	f.messages = append(f.messages, published{topic: topic, qos: qos, retained: retained, payload: data})
	return fakeToken{err: f.err}
}

func (f *fakeConn) Disconnect(uint) {
	f.disconnected = true
	f.up = false
}

func newTestClient(t *testing.T) (*Client, *fakeConn) {
	t.Helper()
	fc := &fakeConn{up: true}
	c := &Client{
		conn:      fc,
		cfg:       config.MQTTConfig{QoS: 1, Broker: config.MQTTBrokerConfig{ClientID: "smarthome-test"}},
		topics:    NewTopics("smarthome"),
		connected: true,
	}
	return c, fc
}

func TestTopics(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"device state", NewTopics("smarthome").DeviceState(4), "smarthome/device/4/state"},
		{"all states", NewTopics("smarthome").AllDeviceStates(), "smarthome/device/+/state"},
		{"event", NewTopics("smarthome").Event(), "smarthome/event"},
		{"status", NewTopics("smarthome").SystemStatus(), "smarthome/system/status"},
		{"custom prefix", NewTopics("/lab/house/").Event(), "lab/house/event"},
		{"empty prefix", NewTopics("").SystemStatus(), "smarthome/system/status"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}
}

func TestPublishDeviceState(t *testing.T) {
	c, fc := newTestClient(t)
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	err := c.PublishDeviceState(DeviceState{DeviceID: 4, Device: "Ceiling Light", HomeID: 1, State: "Encendido", Timestamp: at})
	if err != nil {
		t.Fatalf("PublishDeviceState() error = %v", err)
	}
	if len(fc.messages) != 1 {
		t.Fatalf("published %d messages, want 1", len(fc.messages))
	}
	msg := fc.messages[0]
	if msg.topic != "smarthome/device/4/state" || !msg.retained || msg.qos != 1 {
		t.Errorf("message = %+v, want retained QoS 1 on device topic", msg)
	}

	var got DeviceState
	if err := json.Unmarshal(msg.payload, &got); err != nil {
		t.Fatalf("payload is not JSON: %v", err)
	}
	if got.State != "Encendido" || got.HomeID != 1 || !got.Timestamp.Equal(at) {
		t.Errorf("payload = %+v", got)
	}
}

func TestPublishEvent(t *testing.T) {
	c, fc := newTestClient(t)
	id := int64(4)

	if err := c.PublishEvent(EventMessage{ID: 9, Description: "Device changed", Source: "manual", DeviceID: &id}); err != nil {
		t.Fatalf("PublishEvent() error = %v", err)
	}
	msg := fc.messages[0]
	if msg.topic != "smarthome/event" || msg.retained {
		t.Errorf("message = %+v, want non-retained on event topic", msg)
	}

	var raw map[string]any
	if err := json.Unmarshal(msg.payload, &raw); err != nil {
		t.Fatalf("payload is not JSON: %v", err)
	}
	if _, ok := raw["user_email"]; ok {
		t.Error("empty user_email should be omitted")
	}
	if raw["device_id"] != float64(4) {
		t.Errorf("device_id = %v, want 4", raw["device_id"])
	}
}

func TestPublish_Errors(t *testing.T) {
	tests := []struct {
		name    string
		topic   string
		qos     byte
		payload []byte
		setup   func(*Client, *fakeConn)
		wantErr error
	}{
		{"empty topic", "", 1, nil, nil, ErrInvalidTopic},
		{"bad qos", "smarthome/event", 3, nil, nil, ErrInvalidQoS},
		{"too large", "smarthome/event", 1, make([]byte, maxPayloadSize+1), nil, ErrPublishFailed},
		{"disconnected", "smarthome/event", 1, nil, func(_ *Client, f *fakeConn) { f.up = false }, ErrNotConnected},
		{"broker error", "smarthome/event", 1, nil, func(_ *Client, f *fakeConn) { f.err = errors.New("denied") }, ErrPublishFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, fc := newTestClient(t)
			if tt.setup != nil {
				tt.setup(c, fc)
			}
			if err := c.Publish(tt.topic, tt.payload, tt.qos, false); !errors.Is(err, tt.wantErr) {
				t.Errorf("Publish() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestHandleConnect_PublishesOnline(t *testing.T) {
	c, fc := newTestClient(t)
	c.setConnected(false)

	c.handleConnect()

	if !c.IsConnected() {
		t.Error("IsConnected() = false after handleConnect")
	}
	var s Status
	if err := json.Unmarshal(fc.messages[0].payload, &s); err != nil {
		t.Fatalf("status payload: %v", err)
	}
	if fc.messages[0].topic != "smarthome/system/status" || s.Status != StatusOnline || s.ClientID != "smarthome-test" {
		t.Errorf("status = %+v on %s", s, fc.messages[0].topic)
	}
}

func TestClose(t *testing.T) {
	c, fc := newTestClient(t)

	if err := c.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if !fc.disconnected || c.IsConnected() {
		t.Error("Close() should disconnect")
	}
	var s Status
	if err := json.Unmarshal(fc.messages[0].payload, &s); err != nil {
		t.Fatalf("status payload: %v", err)
	}
	if s.Status != StatusOffline || s.Reason != "graceful_shutdown" {
		t.Errorf("status = %+v, want graceful offline", s)
	}

	if err := (&Client{}).Close(); err != nil {
		t.Errorf("Close() on unconnected client error = %v", err)
	}
}

func TestHealthCheck(t *testing.T) {
	c, fc := newTestClient(t)

	if err := c.HealthCheck(context.Background()); err != nil {
		t.Errorf("HealthCheck() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := c.HealthCheck(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("HealthCheck(cancelled) error = %v, want context.Canceled", err)
	}

	fc.up = false
	if err := c.HealthCheck(context.Background()); !errors.Is(err, ErrNotConnected) {
		t.Errorf("HealthCheck(disconnected) error = %v, want ErrNotConnected", err)
	}
}

func TestConnect_BrokerRefused(t *testing.T) {
	cfg := config.MQTTConfig{
		Broker:    config.MQTTBrokerConfig{Host: "127.0.0.1", Port: 1, ClientID: "smarthome-test"},
		QoS:       1,
		Reconnect: config.MQTTReconnectConfig{InitialDelay: 1, MaxDelay: 1},
	}
	if _, err := Connect(cfg); !errors.Is(err, ErrConnectionFailed) {
		t.Errorf("Connect() error = %v, want ErrConnectionFailed", err)
	}
}
