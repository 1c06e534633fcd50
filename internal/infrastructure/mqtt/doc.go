// Package mqtt provides MQTT client connectivity for Limbx Core.
//
// This package manages:
//   - Connection to the station broker with auto-reconnect
//   - Blocking and fire-and-forget publishing
//   - Topic subscriptions restored on reconnect
//   - A retained core status document plus LWT on limbx/system/status
//   - Station topic template expansion
//
// # Architecture
//
// Every station (tag or tile) runs firmware that publishes gestures and
// subscribes to a light command topic on the same broker as the core:
//
//	Stations ↔ MQTT Broker ↔ Limbx Core
//
// Gesture payloads are ignored; the topic alone identifies the device and
// the gesture. Light commands are JSON documents built by the light package.
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	n, err := client.SubscribeStations(devices.GestureTopics(), 0, eng.HandleMessage)
//
//	client.PublishAsync("devices/tag1/light/circular_leds/command", cmd, 0, false)
package mqtt
