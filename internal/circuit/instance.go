package circuit

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/limbx/limbx-core/internal/device"
	"github.com/limbx/limbx-core/internal/light"
)

// State is the lifecycle position of an Instance.
type State string

// Instance states.
const (
	StateWaiting    State = "waiting"
	StateReady      State = "ready"
	StateInProgress State = "in_progress"
	StateCompleted  State = "completed"
	StateTimeout    State = "timeout"
	StateDisabled   State = "disabled"
)

// Terminal reports whether an instance in this state ignores gestures.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateTimeout || s == StateDisabled
}

// Idle reports whether the instance is armed but not started.
func (s State) Idle() bool {
	return s == StateWaiting || s == StateReady
}

// Event log kinds besides the gestures themselves.
const (
	EventAdvance  = "advance"
	EventSkipStep = "skip_step"
)

// EventRecord is one entry of an instance's event log.
type EventRecord struct {
	Kind   string    `json:"event"`
	Device string    `json:"device"`
	At     time.Time `json:"at"`
}

// Output sends light commands to stations by device name.
// Implementations must not block.
type Output interface {
	Send(deviceName string, cmd light.Command)
}

// Logger defines the logging interface used by instances.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

type topicRoute struct {
	device  string
	gesture device.Gesture
}

// Instance is one live play-through of a Definition.
//
// Instance is not safe for concurrent use; the engine serializes every
// call under its own lock.
type Instance struct {
	def    *Definition
	id     string
	routes map[string]topicRoute

	state     State
	index     int
	startedAt time.Time
	events    []EventRecord
	color     light.Color
	players   []string
	total     time.Duration

	out    Output
	logger Logger
	now    func() time.Time
}

// Option configures an Instance.
type Option func(*Instance)

// WithLogger sets the instance logger.
func WithLogger(l Logger) Option {
	return func(i *Instance) { i.logger = l }
}

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(i *Instance) { i.now = now }
}

// NewInstance creates a waiting instance of def with a fresh 8-character id.
// No light commands are sent until Render is called.
//
// Returns ErrNotImplemented for the competition ordering mode and
// ErrUnknownDevice when a step device is missing from the registry.
func NewInstance(def *Definition, devices DeviceLookup, out Output, opts ...Option) (*Instance, error) {
	switch def.OrderMode {
	case OrderStrict, OrderFlexible:
	case OrderCompetition:
		return nil, fmt.Errorf("circuit %q: %w", def.ID, ErrNotImplemented)
	default:
		return nil, fmt.Errorf("circuit %q: %w: unknown order_mode %q", def.ID, ErrInvalidDefinition, def.OrderMode)
	}

	routes := make(map[string]topicRoute)
	for _, step := range def.Steps {
		dev, err := devices.Get(step.Device)
		if err != nil {
			return nil, fmt.Errorf("circuit %q: %w: %q", def.ID, ErrUnknownDevice, step.Device)
		}
		for _, g := range device.AllGestures() {
			if topic := dev.GestureTopic(g); topic != "" {
				routes[topic] = topicRoute{device: dev.Name, gesture: g}
			}
		}
	}

	inst := &Instance{
		def:    def,
		id:     newInstanceID(),
		routes: routes,
		state:  StateWaiting,
		color:  def.InitialColor,
		out:    out,
		logger: noopLogger{},
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(inst)
	}
	return inst, nil
}

// ─── Accessors ──────────────────────────────────────────────────────

// ID returns the instance id.
func (i *Instance) ID() string { return i.id }

// CircuitID returns the definition id.
func (i *Instance) CircuitID() string { return i.def.ID }

// Name returns the definition name.
func (i *Instance) Name() string { return i.def.Name }

// Definition returns the definition this instance plays.
func (i *Instance) Definition() *Definition { return i.def }

// State returns the current state.
func (i *Instance) State() State { return i.state }

// Index returns the number of steps satisfied so far.
func (i *Instance) Index() int { return i.index }

// StartedAt returns the start time, zero before start.
func (i *Instance) StartedAt() time.Time { return i.startedAt }

// TotalTime returns the run duration once completed or timed out.
func (i *Instance) TotalTime() time.Duration { return i.total }

// Events returns a copy of the event log.
func (i *Instance) Events() []EventRecord {
	out := make([]EventRecord, len(i.events))
	copy(out, i.events)
	return out
}

// Players returns a copy of the assigned player names.
func (i *Instance) Players() []string {
	out := make([]string, len(i.players))
	copy(out, i.players)
	return out
}

// Color returns the color the instance currently renders in.
func (i *Instance) Color() light.Color {
	if i.def.ColorMode == ColorFixed {
		return i.def.InitialColor
	}
	return i.color
}

// Expected returns the step the instance is waiting for, if any.
func (i *Instance) Expected() (Step, bool) {
	if i.index >= len(i.def.Steps) {
		return Step{}, false
	}
	return i.def.Steps[i.index], true
}

// ─── Event Handling ─────────────────────────────────────────────────

// HandleEvent processes a gesture arriving on topic and reports whether
// this instance consumed it. Topics outside the instance's course return
// false without side effects.
func (i *Instance) HandleEvent(topic string) bool {
	rt, ok := i.routes[topic]
	if !ok {
		return false
	}
	i.record(string(rt.gesture), rt.device)

	if i.state.Terminal() {
		return false
	}

	if rt.device == i.def.ControlDevice {
		return i.handleControl(rt.gesture)
	}

	if i.state != StateInProgress {
		return false
	}
	return i.matchExpected(rt.device, rt.gesture)
}

func (i *Instance) handleControl(g device.Gesture) bool {
	switch {
	case i.state.Idle():
		first := i.def.Steps[0].Gesture
		if first == device.GestureDoubleTap {
			if g == device.GestureTap {
				if i.def.ColorMode == ColorVariable {
					i.changeColor()
				} else {
					i.logger.Info("tap on control ignored, double tap starts", "circuit", i.def.Name)
				}
				return true
			}
			i.start()
			return true
		}
		if g == device.GestureTap {
			i.start()
			return true
		}
		i.resetArmed()
		return true

	case i.state == StateInProgress:
		return i.matchExpected(i.def.ControlDevice, g)
	}
	return false
}

// matchExpected advances when dev is the expected station and g the
// expected gesture. A wrong gesture on the expected station is logged.
func (i *Instance) matchExpected(dev string, g device.Gesture) bool {
	step, ok := i.Expected()
	if !ok || step.Device != dev {
		return false
	}
	if step.Gesture != g {
		i.logger.Info("wrong gesture",
			"circuit", i.def.Name,
			"device", dev,
			"expected", step.Gesture,
			"got", g,
		)
		return false
	}
	i.advance(EventAdvance)
	return true
}

// ─── Transitions ────────────────────────────────────────────────────

func (i *Instance) record(kind, dev string) {
	i.events = append(i.events, EventRecord{Kind: kind, Device: dev, At: i.now()})
}

func (i *Instance) start() {
	i.send(i.def.ControlDevice, light.Off())
	i.startedAt = i.now()
	i.state = StateInProgress
	i.index = 1
	i.Render()

	if i.index >= len(i.def.Steps) {
		i.complete()
		return
	}
	next := i.def.Steps[i.index]
	i.logger.Info("circuit started",
		"circuit", i.def.Name,
		"instance_id", i.id,
		"next_device", next.Device,
		"next_gesture", next.Gesture,
	)
}

func (i *Instance) advance(kind string) {
	from := i.def.Steps[i.index].Device
	i.record(kind, from)
	i.index++
	i.Render()

	if i.index >= len(i.def.Steps) {
		i.complete()
		return
	}
	next := i.def.Steps[i.index]
	i.logger.Info("circuit advanced",
		"circuit", i.def.Name,
		"step", fmt.Sprintf("%d/%d", i.index, len(i.def.Steps)),
		"via", kind,
		"next_device", next.Device,
		"next_gesture", next.Gesture,
		"elapsed", i.elapsed().Round(time.Millisecond),
	)
}

func (i *Instance) complete() {
	i.state = StateCompleted
	i.total = i.elapsed()
	i.logger.Info("circuit completed",
		"circuit", i.def.Name,
		"instance_id", i.id,
		"total", i.total.Round(time.Millisecond),
	)
}

func (i *Instance) resetArmed() {
	i.renewIfArchived()
	i.state = StateWaiting
	i.index = 0
	i.events = nil
	i.startedAt = time.Time{}
	i.total = 0
	for _, dev := range i.def.Sequence() {
		i.send(dev, light.Off())
	}
	i.color = i.def.InitialColor
	i.send(i.def.ControlDevice, light.FastPulse(i.Color()))
	i.logger.Info("circuit armed",
		"circuit", i.def.Name,
		"instance_id", i.id,
		"control", i.def.ControlDevice,
		"color", i.Color(),
	)
}

// renewIfArchived gives a completed or timed-out instance a fresh id so
// the archived outcome keeps sole ownership of the old one.
func (i *Instance) renewIfArchived() {
	if i.state != StateCompleted && i.state != StateTimeout {
		return
	}
	old := i.id
	i.id = newInstanceID()
	i.logger.Debug("instance id renewed", "circuit", i.def.Name, "old_id", old, "instance_id", i.id)
}

func newInstanceID() string {
	return uuid.New().String()[:8]
}

func (i *Instance) changeColor() {
	i.color = light.NextInCycle(i.color)
	i.logger.Info("color changed", "circuit", i.def.Name, "color", i.color)

	switch {
	case i.state == StateWaiting:
		i.Render()
	case i.state == StateInProgress:
		i.send(i.def.ControlDevice, light.On(i.Color(), light.DefaultBrightness))
	}
}

func (i *Instance) elapsed() time.Duration {
	if i.startedAt.IsZero() {
		return 0
	}
	return i.now().Sub(i.startedAt)
}

// ─── Manual Operations ──────────────────────────────────────────────

// SkipStep satisfies the current step without its gesture. On a waiting
// instance that has not started it starts the circuit instead.
//
// Returns ErrInvalidState when the instance is terminal or past its last step.
func (i *Instance) SkipStep() error {
	if i.state == StateWaiting && i.index == 0 {
		i.record(EventSkipStep, i.def.ControlDevice)
		i.start()
		return nil
	}
	if (i.state != StateWaiting && i.state != StateInProgress) || i.index >= len(i.def.Steps) {
		i.logger.Info("skip step ignored", "circuit", i.def.Name, "state", i.state, "index", i.index)
		return fmt.Errorf("%w: skip in state %s at step %d", ErrInvalidState, i.state, i.index)
	}
	i.advance(EventSkipStep)
	return nil
}

// Complete forces completion, as an operator finishing a run by hand.
//
// Returns ErrInvalidState when the instance is already terminal.
func (i *Instance) Complete() error {
	if i.state.Terminal() {
		i.logger.Info("complete ignored", "circuit", i.def.Name, "state", i.state)
		return fmt.Errorf("%w: complete in state %s", ErrInvalidState, i.state)
	}
	i.index = len(i.def.Steps)
	i.complete()
	return nil
}

// Deactivate switches every station of the course off and parks the
// instance in the disabled state until Restart. Any running animation
// stops at its next step. A run that was already archived leaves with its
// old id and the disabled instance gets a new one.
func (i *Instance) Deactivate() {
	i.renewIfArchived()
	i.state = StateDisabled
	for _, dev := range i.def.Sequence() {
		i.send(dev, light.Off())
	}
	i.logger.Info("circuit disabled", "circuit", i.def.Name, "instance_id", i.id)
}

// Restart returns the instance to waiting with its initial color, an
// empty event log and the control station pulsing.
func (i *Instance) Restart() {
	i.resetArmed()
}

// AssignPlayers replaces the player names attached to the run.
func (i *Instance) AssignPlayers(names []string) {
	i.players = append([]string(nil), names...)
}

// CheckTimeout moves an in-progress instance to timeout once its time
// limit has elapsed. It reports whether the transition happened.
func (i *Instance) CheckTimeout() bool {
	limit := i.def.MaxDuration()
	if i.state != StateInProgress || limit <= 0 || i.startedAt.IsZero() {
		return false
	}
	elapsed := i.elapsed()
	if elapsed < limit {
		return false
	}
	i.state = StateTimeout
	i.total = elapsed
	i.logger.Info("circuit timed out",
		"circuit", i.def.Name,
		"instance_id", i.id,
		"elapsed", elapsed.Round(time.Millisecond),
	)
	return true
}
