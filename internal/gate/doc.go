// Package gate filters duplicate gesture events.
//
// Accelerometer tags occasionally report one physical tap two or three
// times within a few tens of milliseconds. A Gate drops repeats that
// arrive inside a short window (100 ms by default) before they reach any
// circuit.
//
// Two policies exist:
//
//   - Global (default): one timestamp per gesture kind, shared by all
//     devices.
//   - PerDevice: one timestamp per (device, gesture) pair.
//
// Select with game.debounce in config.yaml.
package gate
