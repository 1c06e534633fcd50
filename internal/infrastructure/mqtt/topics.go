package mqtt

import (
	"fmt"
	"strings"
)

// Topic prefixes owned by the core. Station topics (devices/...) are
// owned by the firmware and configured as templates, see DeviceTopic.
const (
	// TopicPrefixCore is the base for events the engine emits.
	TopicPrefixCore = "limbx/core"

	// TopicPrefixSystem is the base for system topics.
	TopicPrefixSystem = "limbx/system"

	// DeviceNamePlaceholder is replaced with the device name in station templates.
	DeviceNamePlaceholder = "{name}"
)

// Topics provides builders for Limbx MQTT topics.
//
//	topics := mqtt.Topics{}
//	status := topics.SystemStatus()
//	// Returns: "limbx/system/status"
type Topics struct{}

// SystemStatus returns the system status topic carrying online/offline
// announcements and the LWT.
//
// Example: limbx/system/status
func (Topics) SystemStatus() string {
	return fmt.Sprintf("%s/status", TopicPrefixSystem)
}

// CoreEvent returns the topic a circuit lifecycle event is mirrored to.
//
// Example: limbx/core/event/circuit.completed
func (Topics) CoreEvent(eventType string) string {
	return fmt.Sprintf("%s/event/%s", TopicPrefixCore, eventType)
}

// AllCoreEvents returns a pattern matching every mirrored lifecycle event.
//
// Pattern: limbx/core/event/+
func (Topics) AllCoreEvents() string {
	return fmt.Sprintf("%s/event/+", TopicPrefixCore)
}

// DeviceTopic expands a station topic template for one device.
// Templates without the placeholder are returned unchanged; an empty
// template yields an empty topic (the device has no such channel).
//
// Example: DeviceTopic("devices/{name}/light/leds/command", "t1")
// returns "devices/t1/light/leds/command".
func (Topics) DeviceTopic(template, name string) string {
	if template == "" {
		return ""
	}
	return strings.ReplaceAll(template, DeviceNamePlaceholder, name)
}
