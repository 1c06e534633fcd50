package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/limbx/limbx-core/internal/circuit"
	"github.com/limbx/limbx-core/internal/gate"
	"github.com/limbx/limbx-core/internal/infrastructure/config"
	"github.com/limbx/limbx-core/internal/light"
)

// Deps holds the collaborators of an Engine. Catalog, Devices and Gate are
// required; the rest may be nil.
type Deps struct {
	Catalog   *circuit.Catalog
	Devices   Devices
	Gate      gate.Gate
	MQTT      MQTTClient
	Notifier  Notifier
	Telemetry Telemetry
	Logger    Logger

	// Clock overrides time.Now, for tests.
	Clock func() time.Time
}

// Config holds engine tuning.
type Config struct {
	// QoS used for light commands.
	QoS byte

	Animation config.AnimationConfig
}

// DefaultConfig returns the shipped timings: 3 s animations with a
// 0.5 s step.
func DefaultConfig() Config {
	return Config{
		Animation: config.AnimationConfig{
			CelebrationDuration: 3 * time.Second,
			CelebrationInterval: 500 * time.Millisecond,
			FailureDuration:     3 * time.Second,
			FailureInterval:     500 * time.Millisecond,
		},
	}
}

// Engine owns the live circuit instances.
//
// It routes gesture messages through the duplicate gate to every live
// instance, keeps one waiting instance per desired circuit, archives
// finished runs and plays the completion and timeout animations.
//
// Thread Safety: all methods are safe for concurrent use. A single mutex
// guards the live set, the desired set and every instance; animations
// take it only to check state, publish a frame, or finalize.
type Engine struct {
	mu      sync.Mutex
	live    []*circuit.Instance
	desired []string
	closed  bool

	catalog   *circuit.Catalog
	devices   Devices
	gate      gate.Gate
	mqtt      MQTTClient
	notifier  Notifier
	telemetry Telemetry
	logger    Logger
	now       func() time.Time
	cfg       Config
	archive   *Archive

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates an engine with no desired circuits. Call Reconcile to arm
// circuits.
//
// Parameters:
//   - deps: Collaborators; Catalog, Devices and Gate must be set
//   - cfg: Animation timings and publish QoS
//
// Returns:
//   - *Engine: Ready-to-use engine
//   - error: If a required dependency is missing
func New(deps Deps, cfg Config) (*Engine, error) {
	if deps.Catalog == nil || deps.Devices == nil || deps.Gate == nil {
		return nil, errors.New("engine: catalog, devices and gate are required")
	}
	if deps.Logger == nil {
		deps.Logger = noopLogger{}
	}
	if deps.Clock == nil {
		deps.Clock = time.Now
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Engine{
		catalog:   deps.Catalog,
		devices:   deps.Devices,
		gate:      deps.Gate,
		mqtt:      deps.MQTT,
		notifier:  deps.Notifier,
		telemetry: deps.Telemetry,
		logger:    deps.Logger,
		now:       deps.Clock,
		cfg:       cfg,
		archive:   NewArchive(),
		ctx:       ctx,
		cancel:    cancel,
	}, nil
}

// Catalog returns the loaded definitions.
func (e *Engine) Catalog() *circuit.Catalog { return e.catalog }

// Archive returns the finished-run archive.
func (e *Engine) Archive() *Archive { return e.archive }

// Close stops running animations and waits for them to exit. Pending
// finalizations are dropped. Close is idempotent.
func (e *Engine) Close() {
	e.mu.Lock()
	e.closed = true
	e.mu.Unlock()

	e.cancel()
	e.wg.Wait()
}

// ─── Message Dispatch ───────────────────────────────────────────────

// HandleMessage routes one MQTT message to the live instances.
//
// Messages on topics that are not gesture channels are logged and
// ignored. Gestures rejected by the duplicate gate never reach an
// instance. After dispatch every running instance is checked for its
// time limit.
//
// It always returns nil; the signature matches mqtt.MessageHandler.
func (e *Engine) HandleMessage(topic string, payload []byte) error {
	name, gesture, ok := e.devices.Resolve(topic)
	if !ok {
		e.logger.Debug("message on non-gesture topic", "topic", topic, "payload", string(payload))
		return nil
	}

	now := e.now()
	admitted := e.gate.Admit(name, gesture, now)
	if e.telemetry != nil {
		e.telemetry.WriteGesture(name, string(gesture), admitted)
	}
	if !admitted {
		e.logger.Debug("duplicate gesture dropped", "device", name, "gesture", gesture)
		return nil
	}
	e.logger.Info("gesture", "device", name, "gesture", gesture)

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil
	}

	for _, inst := range e.snapshotLive() {
		e.dispatch(inst, topic)
	}
	e.checkTimeoutsLocked()
	return nil
}

// dispatch delivers one gesture to one instance. A panic inside the
// instance is logged and does not affect the others.
func (e *Engine) dispatch(inst *circuit.Instance, topic string) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("circuit panic recovered",
				"circuit", inst.CircuitID(),
				"instance_id", inst.ID(),
				"panic", r,
			)
		}
	}()

	if !e.isLive(inst) {
		return
	}
	prev := observe(inst)
	if inst.HandleEvent(topic) {
		e.afterChange(inst, prev)
	}
}

func (e *Engine) checkTimeoutsLocked() {
	for _, inst := range e.snapshotLive() {
		if inst.State() != circuit.StateInProgress {
			continue
		}
		prev := observe(inst)
		if inst.CheckTimeout() {
			e.afterChange(inst, prev)
		}
	}
}

// afterChange emits events and starts terminal handling for whatever
// transition an instance just made. Caller holds e.mu.
func (e *Engine) afterChange(inst *circuit.Instance, prev observed) {
	cur := observe(inst)
	switch {
	case cur.state == circuit.StateCompleted && prev.state != circuit.StateCompleted:
		e.onFinished(inst, OutcomeCompleted)
	case cur.state == circuit.StateTimeout && prev.state != circuit.StateTimeout:
		e.onFinished(inst, OutcomeTimeout)
	case cur.state == circuit.StateDisabled:
		e.broadcast(EventCircuitDisabled, inst.Snapshot())
	case cur.state == circuit.StateInProgress && prev.state.Idle():
		e.broadcast(EventCircuitStarted, inst.Snapshot())
	case cur.state == circuit.StateInProgress && cur.index > prev.index:
		e.broadcast(EventCircuitAdvanced, inst.Snapshot())
	case cur.state.Idle():
		e.broadcast(EventCircuitArmed, inst.Snapshot())
	}
}

func (e *Engine) broadcast(channel string, payload any) {
	if e.notifier != nil {
		e.notifier.Broadcast(channel, payload)
	}
}

// ─── Light Output ───────────────────────────────────────────────────

// Send publishes a light command to a station. Stations without a light
// channel are skipped with a warning by the device registry.
func (e *Engine) Send(deviceName string, cmd light.Command) {
	if e.mqtt == nil {
		return
	}
	topic, ok := e.devices.LightTopic(deviceName)
	if !ok {
		return
	}
	payload, err := cmd.Marshal()
	if err != nil {
		e.logger.Error("encoding light command", "device", deviceName, "error", err)
		return
	}
	if err := e.mqtt.PublishAsync(topic, payload, e.cfg.QoS, false); err != nil {
		e.logger.Warn("light command not sent", "device", deviceName, "topic", topic, "error", err)
	}
}

// ─── Live Set ───────────────────────────────────────────────────────

func (e *Engine) snapshotLive() []*circuit.Instance {
	out := make([]*circuit.Instance, len(e.live))
	copy(out, e.live)
	return out
}

func (e *Engine) isLive(inst *circuit.Instance) bool {
	for _, l := range e.live {
		if l == inst {
			return true
		}
	}
	return false
}

func (e *Engine) removeLive(inst *circuit.Instance) bool {
	for i, l := range e.live {
		if l == inst {
			e.live = append(e.live[:i], e.live[i+1:]...)
			return true
		}
	}
	return false
}

func (e *Engine) isDesired(id string) bool {
	for _, d := range e.desired {
		if d == id {
			return true
		}
	}
	return false
}

func (e *Engine) findLocked(instanceID string) (*circuit.Instance, error) {
	for _, inst := range e.live {
		if inst.ID() == instanceID {
			return inst, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrInstanceNotFound, instanceID)
}

// spawnLocked creates, renders and adds a waiting instance of id.
func (e *Engine) spawnLocked(id string) (*circuit.Instance, error) {
	def, err := e.catalog.Get(id)
	if err != nil {
		return nil, err
	}
	inst, err := circuit.NewInstance(def, e.devices, e,
		circuit.WithLogger(e.logger),
		circuit.WithClock(e.now),
	)
	if err != nil {
		return nil, err
	}
	e.live = append(e.live, inst)
	inst.Render()

	first := def.Steps[0]
	e.logger.Info("circuit armed",
		"circuit", def.Name,
		"instance_id", inst.ID(),
		"control", def.ControlDevice,
		"color", inst.Color(),
		"start_gesture", first.Gesture,
	)
	return inst, nil
}
