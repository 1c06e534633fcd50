package mqtt

import (
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/limbx/limbx-core/internal/infrastructure/config"
)

// Unit tests in this file run without a broker. Broker-backed tests live
// in integration_test.go behind the integration build tag.

// testConfig returns a valid MQTT configuration for testing.
func testConfig() config.MQTTConfig {
	return config.MQTTConfig{
		Broker: config.MQTTBrokerConfig{
			Host:     "127.0.0.1",
			Port:     1883,
			ClientID: "limbx-test",
			TLS:      false,
		},
		QoS: 0,
		Reconnect: config.MQTTReconnectConfig{
			InitialDelay: 1,
			MaxDelay:     5,
		},
	}
}

// disconnectedClient returns a Client that was never connected.
func disconnectedClient() *Client {
	return &Client{
		cfg:           testConfig(),
		subscriptions: make(map[string]subscription),
	}
}

// ─── Mock Dependencies ──────────────────────────────────────────────

// mockLogger implements Logger for testing.
type mockLogger struct {
	errors []string
	warns  []string
	mu     sync.Mutex
}

func (l *mockLogger) Error(msg string, _ ...any) {
	l.mu.Lock()
	l.errors = append(l.errors, msg)
	l.mu.Unlock()
}

func (l *mockLogger) Warn(msg string, _ ...any) {
	l.mu.Lock()
	l.warns = append(l.warns, msg)
	l.mu.Unlock()
}

func (l *mockLogger) counts() (errs, warns int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.errors), len(l.warns)
}

// fakeMessage implements pahomqtt.Message.
type fakeMessage struct {
	topic   string
	payload []byte
}

func (m fakeMessage) Duplicate() bool   { return false }
func (m fakeMessage) Qos() byte         { return 0 }
func (m fakeMessage) Retained() bool    { return false }
func (m fakeMessage) Topic() string     { return m.topic }
func (m fakeMessage) MessageID() uint16 { return 1 }
func (m fakeMessage) Payload() []byte   { return m.payload }
func (m fakeMessage) Ack()              {}

var _ pahomqtt.Message = fakeMessage{}

// =============================================================================
// Connection State Tests
// =============================================================================

func TestCloseNil(t *testing.T) {
	client := &Client{}
	if err := client.Close(); err != nil {
		t.Errorf("Close() on nil client error = %v, want nil", err)
	}
}

func TestIsConnected_InitialState(t *testing.T) {
	client := &Client{}
	if client.IsConnected() {
		t.Error("IsConnected() should be false for uninitialised client")
	}
}

// =============================================================================
// Publish Validation Tests
// =============================================================================

func TestPublishValidation(t *testing.T) {
	tests := []struct {
		name    string
		topic   string
		payload []byte
		qos     byte
		wantErr error
	}{
		{"empty topic", "", []byte("x"), 0, ErrInvalidTopic},
		{"invalid qos", "devices/tag1/light/circular_leds/command", []byte("x"), 3, ErrInvalidQoS},
		{"payload too large", "devices/tag1/light/circular_leds/command", make([]byte, maxPayloadSize+1), 0, ErrPublishFailed},
		{"not connected", "devices/tag1/light/circular_leds/command", []byte(`{"state":"OFF"}`), 0, ErrNotConnected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := disconnectedClient()

			if err := client.Publish(tt.topic, tt.payload, tt.qos, false); !errors.Is(err, tt.wantErr) {
				t.Errorf("Publish() error = %v, want %v", err, tt.wantErr)
			}
			if err := client.PublishAsync(tt.topic, tt.payload, tt.qos, false); !errors.Is(err, tt.wantErr) {
				t.Errorf("PublishAsync() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestPublishRetained_NotConnected(t *testing.T) {
	client := disconnectedClient()
	if err := client.PublishRetained(Topics{}.SystemStatus(), []byte("{}")); !errors.Is(err, ErrNotConnected) {
		t.Errorf("PublishRetained() error = %v, want ErrNotConnected", err)
	}
}

// =============================================================================
// Subscribe Validation Tests
// =============================================================================

func TestSubscribeValidation(t *testing.T) {
	handler := func(string, []byte) error { return nil }

	tests := []struct {
		name    string
		topic   string
		qos     byte
		handler MessageHandler
		wantErr error
	}{
		{"empty topic", "", 0, handler, ErrInvalidTopic},
		{"invalid qos", "devices/+/msa3xx/accelsensor/tap", 5, handler, ErrInvalidQoS},
		{"nil handler", "devices/+/msa3xx/accelsensor/tap", 0, nil, ErrSubscribeFailed},
		{"not connected", "devices/+/msa3xx/accelsensor/tap", 0, handler, ErrNotConnected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := disconnectedClient()
			err := client.Subscribe(tt.topic, tt.qos, tt.handler)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Subscribe() error = %v, want %v", err, tt.wantErr)
			}
			if client.SubscriptionCount() != 0 {
				t.Errorf("SubscriptionCount() = %d after failed Subscribe, want 0", client.SubscriptionCount())
			}
		})
	}
}

func TestUnsubscribeValidation(t *testing.T) {
	client := disconnectedClient()

	if err := client.Unsubscribe(""); !errors.Is(err, ErrInvalidTopic) {
		t.Errorf("Unsubscribe(\"\") error = %v, want ErrInvalidTopic", err)
	}
	if err := client.Unsubscribe("devices/tag1/msa3xx/accelsensor/tap"); !errors.Is(err, ErrNotConnected) {
		t.Errorf("Unsubscribe() error = %v, want ErrNotConnected", err)
	}
}

func TestHasSubscription_NotSubscribed(t *testing.T) {
	client := disconnectedClient()
	if client.HasSubscription("nonexistent/topic") {
		t.Error("HasSubscription() should be false for unsubscribed topic")
	}
}

// =============================================================================
// Handler Wrapping Tests
// =============================================================================

func TestWrapHandler_PassesTopicAndPayload(t *testing.T) {
	client := disconnectedClient()

	var gotTopic string
	var gotPayload []byte
	wrapped := client.wrapHandler(func(topic string, payload []byte) error {
		gotTopic = topic
		gotPayload = payload
		return nil
	})

	wrapped(nil, fakeMessage{topic: "devices/tag1/msa3xx/accelsensor/tap", payload: []byte("1")})

	if gotTopic != "devices/tag1/msa3xx/accelsensor/tap" {
		t.Errorf("handler topic = %q", gotTopic)
	}
	if string(gotPayload) != "1" {
		t.Errorf("handler payload = %q, want %q", gotPayload, "1")
	}
}

func TestWrapHandler_LogsError(t *testing.T) {
	client := disconnectedClient()
	logger := &mockLogger{}
	client.SetLogger(logger)

	wrapped := client.wrapHandler(func(string, []byte) error {
		return errors.New("handler error")
	})
	wrapped(nil, fakeMessage{topic: "t"})

	if _, warns := logger.counts(); warns != 1 {
		t.Errorf("warn count = %d, want 1", warns)
	}
}

func TestWrapHandler_RecoversPanic(t *testing.T) {
	client := disconnectedClient()
	logger := &mockLogger{}
	client.SetLogger(logger)

	wrapped := client.wrapHandler(func(string, []byte) error {
		panic("boom")
	})
	wrapped(nil, fakeMessage{topic: "t"})

	if errs, _ := logger.counts(); errs != 1 {
		t.Errorf("error count = %d, want 1", errs)
	}
}

func TestWrapHandler_NoLoggerDoesNotPanic(t *testing.T) {
	client := disconnectedClient()

	wrapped := client.wrapHandler(func(string, []byte) error {
		panic("boom")
	})
	wrapped(nil, fakeMessage{topic: "t"})
}

func TestSetLogger(t *testing.T) {
	client := disconnectedClient()

	client.SetLogger(&mockLogger{})
	if client.getLogger() == nil {
		t.Error("getLogger() = nil after SetLogger()")
	}

	client.SetLogger(nil)
	if client.getLogger() != nil {
		t.Error("getLogger() should be nil after SetLogger(nil)")
	}
}

// =============================================================================
// Options Tests
// =============================================================================

func TestBuildClientOptions(t *testing.T) {
	cfg := testConfig()
	cfg.Auth.Username = "station"
	cfg.Auth.Password = "secret"

	opts := buildClientOptions(cfg)

	if len(opts.Servers) != 1 || opts.Servers[0].String() != "tcp://127.0.0.1:1883" {
		t.Errorf("Servers = %v, want [tcp://127.0.0.1:1883]", opts.Servers)
	}
	if opts.ClientID != "limbx-test" {
		t.Errorf("ClientID = %q, want %q", opts.ClientID, "limbx-test")
	}
	if opts.Username != "station" {
		t.Errorf("Username = %q, want %q", opts.Username, "station")
	}
	if !opts.AutoReconnect {
		t.Error("AutoReconnect = false, want true")
	}
	if opts.TLSConfig != nil && opts.TLSConfig.MinVersion != 0 {
		t.Error("TLSConfig set for plain tcp broker")
	}
}

func TestBuildClientOptions_TLS(t *testing.T) {
	cfg := testConfig()
	cfg.Broker.TLS = true
	cfg.Broker.Port = 8883

	opts := buildClientOptions(cfg)

	if opts.Servers[0].Scheme != "ssl" {
		t.Errorf("scheme = %q, want ssl", opts.Servers[0].Scheme)
	}
	if opts.TLSConfig == nil || opts.TLSConfig.MinVersion != tlsMinVersion {
		t.Error("TLSConfig.MinVersion not set to TLS 1.2")
	}
}

func TestConfigureLWT(t *testing.T) {
	opts := pahomqtt.NewClientOptions()
	configureLWT(opts, "limbx-test")

	if !opts.WillEnabled {
		t.Fatal("WillEnabled = false, want true")
	}
	if opts.WillTopic != "limbx/system/status" {
		t.Errorf("WillTopic = %q, want limbx/system/status", opts.WillTopic)
	}
	if !opts.WillRetained {
		t.Error("WillRetained = false, want true")
	}
	if !strings.Contains(string(opts.WillPayload), `"reason":"unexpected_disconnect"`) {
		t.Errorf("WillPayload = %s, want unexpected_disconnect reason", opts.WillPayload)
	}
}

func TestStatusPayload(t *testing.T) {
	now := time.Date(2026, 5, 1, 18, 0, 0, 500, time.UTC)

	var online StatusMessage
	if err := json.Unmarshal(statusPayload(StatusOnline, "", "limbx-core", 14, now), &online); err != nil {
		t.Fatalf("decode online: %v", err)
	}
	if !online.Timestamp.Equal(now.Truncate(time.Second)) {
		t.Errorf("Timestamp = %v, want %v", online.Timestamp, now.Truncate(time.Second))
	}
	online.Timestamp = time.Time{}
	want := StatusMessage{
		Service:  "limbx-core",
		Status:   StatusOnline,
		ClientID: "limbx-core",
		Stations: 14,
	}
	if online != want {
		t.Errorf("online = %+v, want %+v", online, want)
	}

	offline := string(statusPayload(StatusOffline, ReasonShutdown, "limbx-core", 0, now))
	if !strings.Contains(offline, `"reason":"graceful_shutdown"`) {
		t.Errorf("offline payload = %s", offline)
	}
	if strings.Contains(offline, "station_topics") {
		t.Errorf("offline payload = %s, want station_topics omitted", offline)
	}
}

func TestSubscribeStations(t *testing.T) {
	handler := func(string, []byte) error { return nil }
	client := disconnectedClient()

	n, err := client.SubscribeStations([]string{"", ""}, 0, handler)
	if err != nil || n != 0 {
		t.Errorf("SubscribeStations(empty) = %d, %v; want 0, nil", n, err)
	}

	n, err = client.SubscribeStations([]string{"", "devices/tag1/msa3xx/accelsensor/tap"}, 0, handler)
	if !errors.Is(err, ErrNotConnected) || n != 0 {
		t.Errorf("SubscribeStations() = %d, %v; want 0, ErrNotConnected", n, err)
	}
	if client.SubscriptionCount() != 0 {
		t.Errorf("SubscriptionCount() = %d, want 0", client.SubscriptionCount())
	}
}

// =============================================================================
// Topics Tests
// =============================================================================

func TestTopicBuilders(t *testing.T) {
	tests := []struct {
		name     string
		builder  func() string
		expected string
	}{
		{
			name:     "SystemStatus",
			builder:  func() string { return Topics{}.SystemStatus() },
			expected: "limbx/system/status",
		},
		{
			name:     "CoreEvent",
			builder:  func() string { return Topics{}.CoreEvent("circuit.completed") },
			expected: "limbx/core/event/circuit.completed",
		},
		{
			name:     "AllCoreEvents",
			builder:  func() string { return Topics{}.AllCoreEvents() },
			expected: "limbx/core/event/+",
		},
		{
			name: "DeviceTopic tag tap",
			builder: func() string {
				return Topics{}.DeviceTopic("devices/{name}/msa3xx/accelsensor/tap", "koala1")
			},
			expected: "devices/koala1/msa3xx/accelsensor/tap",
		},
		{
			name: "DeviceTopic without placeholder",
			builder: func() string {
				return Topics{}.DeviceTopic("fixed/topic", "koala1")
			},
			expected: "fixed/topic",
		},
		{
			name:     "DeviceTopic empty template",
			builder:  func() string { return Topics{}.DeviceTopic("", "koala1") },
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.builder(); got != tt.expected {
				t.Errorf("%s = %q, want %q", tt.name, got, tt.expected)
			}
		})
	}
}
