package mqtt

import (
	"crypto/tls"
	"encoding/json"
	"fmt"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/limbx/limbx-core/internal/infrastructure/config"
)

// Connection constants.
const (
	// defaultConnectTimeout bounds the first connection to the station broker.
	defaultConnectTimeout = 10 * time.Second

	// defaultPublishTimeout bounds blocking publishes and subscribe acks.
	defaultPublishTimeout = 5 * time.Second

	// defaultDisconnectQuiesce lets queued light commands drain on Close (ms).
	defaultDisconnectQuiesce = 1000

	// defaultKeepAlive is the keepalive interval for the connection.
	defaultKeepAlive = 60 * time.Second

	// maxQoS is the maximum QoS level supported.
	maxQoS = 2

	// tlsMinVersion is the minimum TLS version for secure connections.
	tlsMinVersion = tls.VersionTLS12

	// statusQoS is used for the retained core status and the LWT.
	statusQoS = 1
)

// Core status values published on Topics.SystemStatus.
const (
	StatusOnline  = "online"
	StatusOffline = "offline"

	// ReasonShutdown marks a clean stop; ReasonLost is carried by the LWT.
	ReasonShutdown = "graceful_shutdown"
	ReasonLost     = "unexpected_disconnect"
)

// StatusMessage is the retained document on limbx/system/status. Station
// firmware and scoreboards watch it to tell whether the engine is up.
type StatusMessage struct {
	Service   string    `json:"service"`
	Status    string    `json:"status"`
	ClientID  string    `json:"client_id"`
	Reason    string    `json:"reason,omitempty"`
	Stations  int       `json:"station_topics,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// serviceName identifies the core in status messages.
const serviceName = "limbx-core"

// statusPayload encodes a status message. stations is the number of station
// topics the core listens on; zero leaves the field out.
func statusPayload(status, reason, clientID string, stations int, now time.Time) []byte {
	msg := StatusMessage{
		Service:   serviceName,
		Status:    status,
		ClientID:  clientID,
		Reason:    reason,
		Stations:  stations,
		Timestamp: now.UTC().Truncate(time.Second),
	}
	data, _ := json.Marshal(msg) //nolint:errcheck // plain struct, cannot fail
	return data
}

// buildClientOptions creates paho options from the mqtt config section:
// broker URL (tcp or ssl), client id, credentials, clean session,
// auto-reconnect with the configured backoff, and TLS when enabled.
func buildClientOptions(cfg config.MQTTConfig) *pahomqtt.ClientOptions {
	opts := pahomqtt.NewClientOptions()

	scheme := "tcp"
	if cfg.Broker.TLS {
		scheme = "ssl"
	}
	opts.AddBroker(fmt.Sprintf("%s://%s:%d", scheme, cfg.Broker.Host, cfg.Broker.Port))
	opts.SetClientID(cfg.Broker.ClientID)

	if cfg.Auth.Username != "" {
		opts.SetUsername(cfg.Auth.Username)
		opts.SetPassword(cfg.Auth.Password)
	}

	// Station subscriptions are restored by the client itself after a
	// reconnect, so the broker keeps no session for us.
	opts.SetCleanSession(true)

	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(time.Duration(cfg.Reconnect.InitialDelay) * time.Second)
	opts.SetMaxReconnectInterval(time.Duration(cfg.Reconnect.MaxDelay) * time.Second)
	opts.SetConnectTimeout(defaultConnectTimeout)
	opts.SetKeepAlive(defaultKeepAlive)

	if cfg.Broker.TLS {
		opts.SetTLSConfig(&tls.Config{MinVersion: tlsMinVersion})
	}

	return opts
}

// configureLWT registers the retained offline message the broker publishes
// if the core drops off the network mid-game.
func configureLWT(opts *pahomqtt.ClientOptions, clientID string) {
	payload := statusPayload(StatusOffline, ReasonLost, clientID, 0, time.Now())
	opts.SetBinaryWill(Topics{}.SystemStatus(), payload, statusQoS, true)
}
