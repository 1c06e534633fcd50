// Package influxdb provides InfluxDB connectivity for Limbx Core.
//
// It wraps the official influxdb-client-go v2 library for connection
// management, batched point writing, and health monitoring.
//
// # Purpose
//
// Outcome telemetry for the installation:
//   - circuit_outcome: one point per completed or timed-out run
//   - gesture: one point per station gesture (admitted or filtered)
//
// Nothing is read back; the archive served by the API is in memory.
//
// # Usage
//
//	client, err := influxdb.Connect(cfg.InfluxDB)
//	if errors.Is(err, influxdb.ErrDisabled) {
//	    // telemetry off
//	}
//	defer client.Close()
//
//	client.WriteCircuitOutcome("rockfit_1", "a1b2c3d4", "completed", d, 5, nil, time.Now())
//
// # Thread Safety
//
// All methods are safe for concurrent use from multiple goroutines.
// The underlying write API uses non-blocking batched writes; batch errors
// are delivered through SetOnError.
package influxdb
