// Package engine runs the live circuits of the installation.
//
// The Engine sits between the MQTT transport and the circuit instances:
//
//	MQTT gesture ─► Devices.Resolve ─► gate.Gate ─► every live Instance
//	                                                   │
//	             light commands ◄── Engine.Send ◄──────┘
//
// It keeps exactly one playable instance per desired circuit id
// (Reconcile, Respawn), archives every finished run in an Archive, and
// plays the completion and timeout animations in background goroutines
// before replacing the finished instance with a fresh one.
//
// Events such as circuit.started or circuit.completed are broadcast
// through a Notifier, normally the API WebSocket hub. Run outcomes and
// gesture counts go to an optional Telemetry sink (InfluxDB).
//
// Usage:
//
//	eng, err := engine.New(engine.Deps{
//	    Catalog: catalog,
//	    Devices: registry,
//	    Gate:    g,
//	    MQTT:    mqttClient,
//	    Logger:  log.With("component", "engine"),
//	}, engine.DefaultConfig())
//	eng.Reconcile(cfg.ActiveCircuits)
//	defer eng.Close()
package engine
