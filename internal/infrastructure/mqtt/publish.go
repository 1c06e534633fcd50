package mqtt

import (
	"fmt"
)

// Maximum payload size for MQTT messages (1MB).
const maxPayloadSize = 1 << 20 // 1MB

// Publish sends a message to the specified MQTT topic and waits for the
// broker acknowledgement (bounded by defaultPublishTimeout).
//
// Parameters:
//   - topic: The topic to publish to (e.g., "devices/tag1/light/circular_leds/command")
//   - payload: The message payload (typically JSON, max 1MB)
//   - qos: Quality of Service level (0, 1, or 2)
//   - retained: Whether the broker should retain the message for new subscribers
//
// Returns:
//   - error: nil on success, or wrapped error describing the failure
func (c *Client) Publish(topic string, payload []byte, qos byte, retained bool) error {
	if err := c.validatePublish(topic, payload, qos); err != nil {
		return err
	}

	token := c.client.Publish(topic, qos, retained, payload)
	if !token.WaitTimeout(defaultPublishTimeout) {
		return fmt.Errorf("%w: timeout after %v", ErrPublishFailed, defaultPublishTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %w", ErrPublishFailed, err)
	}

	return nil
}

// PublishAsync enqueues a message without waiting for the broker.
//
// Light commands go through here: the engine holds its lock while it
// derives and sends LED state, so it must never block on the network.
// Delivery failures are reported to the logger from a background goroutine.
//
// Returns:
//   - error: only for invalid input or a disconnected client
func (c *Client) PublishAsync(topic string, payload []byte, qos byte, retained bool) error {
	if err := c.validatePublish(topic, payload, qos); err != nil {
		return err
	}

	token := c.client.Publish(topic, qos, retained, payload)
	go func() {
		<-token.Done()
		if err := token.Error(); err != nil {
			if logger := c.getLogger(); logger != nil {
				logger.Warn("MQTT async publish failed", "topic", topic, "error", err)
			}
		}
	}()

	return nil
}

// PublishRetained publishes a retained message with the configured default QoS.
func (c *Client) PublishRetained(topic string, payload []byte) error {
	return c.Publish(topic, payload, byte(c.cfg.QoS), true)
}

// validatePublish checks arguments and connection state shared by both publish paths.
func (c *Client) validatePublish(topic string, payload []byte, qos byte) error {
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
	return nil
}
