// Package device provides the station Registry for Limbx Core.
//
// A station is a physical device on the course: an accelerometer tag that
// reports tap and double tap gestures, or a load-cell floor tile. Each has
// a light actuator driven by JSON commands.
//
// # Channels
//
// Channels are derived from the topics section of the configuration by
// substituting the device name into each template:
//
//	tag:  devices/{name}/msa3xx/accelsensor/tap
//	      devices/{name}/msa3xx/accelsensor/double_tap
//	      devices/{name}/light/circular_leds/command
//	tile: devices/{name}/sensor/loadcell/state
//	      devices/{name}/light/leds/command
//
// The Registry keeps the reverse map from gesture topic to (device,
// gesture), which is how inbound MQTT messages are routed.
//
// # Usage
//
//	reg, err := device.NewRegistry(cfg.Devices, cfg.Topics)
//	if err != nil {
//	    return err
//	}
//	name, gesture, ok := reg.Resolve("devices/tag1/msa3xx/accelsensor/tap")
//
// The Registry is immutable after construction and safe for concurrent use.
package device
