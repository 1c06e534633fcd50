// Package circuit models playable courses and their live runs.
//
// A Definition describes a course: an ordered list of steps, each one a
// gesture (tap or double tap) expected on a named station, plus the
// lighting and timing rules of the course. Definitions are loaded from a
// YAML file with LoadDefinitions and validated against the device
// registry; the competition ordering mode is rejected with
// ErrNotImplemented.
//
// An Instance is one run of a Definition. It consumes gesture topics
// through HandleEvent and moves through the states:
//
//	waiting ──start──► in_progress ──last step──► completed
//	   ▲                    │
//	   │                    └──time limit──► timeout
//	   └──────Restart────── disabled ◄──Deactivate (any state)
//
// Instances drive station lights through an Output and are not safe for
// concurrent use; the engine package serializes all access.
package circuit
