package mqtt

import (
	"fmt"
)

// Subscribe registers a handler for one station topic.
//
// Wildcards are allowed ("devices/+/msa3xx/accelsensor/tap" matches every
// tag). The topic is remembered and subscribed again after a reconnect;
// if the broker rejects it, it is forgotten.
//
// Parameters:
//   - topic: The topic or pattern to subscribe to
//   - qos: Maximum QoS for delivered messages (0, 1, or 2)
//   - handler: Called for each message, from paho's goroutines
//
// Returns:
//   - error: nil on success, or wrapped error describing the failure
func (c *Client) Subscribe(topic string, qos byte, handler MessageHandler) error {
	if err := validateSubscribe(topic, qos, handler); err != nil {
		return err
	}
	if !c.IsConnected() {
		return ErrNotConnected
	}

	c.subMu.Lock()
	c.subscriptions[topic] = subscription{topic: topic, qos: qos, handler: handler}
	c.subMu.Unlock()

	token := c.client.Subscribe(topic, qos, c.wrapHandler(handler))
	var err error
	switch {
	case !token.WaitTimeout(defaultPublishTimeout):
		err = fmt.Errorf("%w: %s: timeout after %v", ErrSubscribeFailed, topic, defaultPublishTimeout)
	case token.Error() != nil:
		err = fmt.Errorf("%w: %s: %w", ErrSubscribeFailed, topic, token.Error())
	}
	if err != nil {
		c.forget(topic)
		return err
	}
	return nil
}

// SubscribeStations subscribes one handler to every station topic in
// topics, skipping empty entries (devices without that channel) and
// duplicates. It stops at the first failure.
//
// Returns:
//   - int: Number of topics subscribed
//   - error: The first failure, naming the topic
//
// Example:
//
//	n, err := client.SubscribeStations(devices.GestureTopics(), 0, eng.HandleMessage)
func (c *Client) SubscribeStations(topics []string, qos byte, handler MessageHandler) (int, error) {
	seen := make(map[string]struct{}, len(topics))
	n := 0
	for _, topic := range topics {
		if topic == "" {
			continue
		}
		if _, dup := seen[topic]; dup {
			continue
		}
		seen[topic] = struct{}{}
		if err := c.Subscribe(topic, qos, handler); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

// Unsubscribe stops delivery for a topic and forgets it. Messages already
// in flight may still arrive.
func (c *Client) Unsubscribe(topic string) error {
	if topic == "" {
		return ErrInvalidTopic
	}
	if !c.IsConnected() {
		return ErrNotConnected
	}

	c.forget(topic)

	token := c.client.Unsubscribe(topic)
	if !token.WaitTimeout(defaultPublishTimeout) {
		return fmt.Errorf("%w: %s: timeout after %v", ErrUnsubscribeFailed, topic, defaultPublishTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrUnsubscribeFailed, topic, err)
	}
	return nil
}

// SubscriptionCount returns the number of station topics being tracked.
func (c *Client) SubscriptionCount() int {
	c.subMu.RLock()
	defer c.subMu.RUnlock()
	return len(c.subscriptions)
}

// HasSubscription reports whether exactly topic is tracked. Patterns are
// not matched.
func (c *Client) HasSubscription(topic string) bool {
	c.subMu.RLock()
	defer c.subMu.RUnlock()
	_, exists := c.subscriptions[topic]
	return exists
}

func (c *Client) forget(topic string) {
	c.subMu.Lock()
	delete(c.subscriptions, topic)
	c.subMu.Unlock()
}

func validateSubscribe(topic string, qos byte, handler MessageHandler) error {
	if topic == "" {
		return ErrInvalidTopic
	}
	if qos > maxQoS {
		return ErrInvalidQoS
	}
	if handler == nil {
		return fmt.Errorf("%w: handler cannot be nil", ErrSubscribeFailed)
	}
	return nil
}
