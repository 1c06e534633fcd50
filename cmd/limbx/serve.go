package main

import (
	"context"
	"encoding/json"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/limbx/limbx-core/internal/api"
	"github.com/limbx/limbx-core/internal/engine"
	"github.com/limbx/limbx-core/internal/gate"
	"github.com/limbx/limbx-core/internal/infrastructure/config"
	"github.com/limbx/limbx-core/internal/infrastructure/influxdb"
	"github.com/limbx/limbx-core/internal/infrastructure/logging"
	"github.com/limbx/limbx-core/internal/infrastructure/mqtt"
	"github.com/limbx/limbx-core/internal/roster"
)

// run is the server lifecycle, separated from the command for testability.
// Returning an error allows main to handle exit codes consistently.
//
// Parameters:
//   - ctx: Context for cancellation and shutdown signals
//   - configPath: Path of the YAML configuration file
//
// Returns:
//   - error: nil on clean shutdown, or error describing failure
func run(ctx context.Context, configPath string) error { //nolint:gocognit,gocyclo // linear startup sequence
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting Limbx Core",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	st, err := loadSetup(configPath)
	if err != nil {
		return err
	}
	cfg := st.cfg
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	st.devices.SetLogger(log.Component("devices"))
	log.Info("device registry initialised", "devices", st.devices.Count())

	// Invalid definitions are reported and skipped; the rest still play.
	if st.defErr != nil {
		for _, msg := range splitJoined(st.defErr) {
			log.Error("circuit definition rejected", "error", msg)
		}
	}
	log.Info("circuits loaded", "path", cfg.CircuitsFile, "valid", st.catalog.Len())

	dupGate, err := gate.New(cfg.Game.Debounce, cfg.Game.DuplicateWindow)
	if err != nil {
		return fmt.Errorf("creating duplicate gate: %w", err)
	}

	// Connect to MQTT broker
	mqttClient, err := mqtt.Connect(cfg.MQTT)
	if err != nil {
		return fmt.Errorf("connecting to MQTT: %w", err)
	}
	defer func() {
		log.Info("disconnecting from MQTT")
		if closeErr := mqttClient.Close(); closeErr != nil {
			log.Error("error closing MQTT", "error", closeErr)
		}
	}()
	mqttClient.SetLogger(log.Component("mqtt"))
	mqttClient.SetOnConnect(func(restored int) {
		log.Info("MQTT reconnected", "station_topics", restored)
	})
	mqttClient.SetOnDisconnect(func(err error) {
		log.Warn("MQTT disconnected", "error", err)
	})
	log.Info("MQTT connected",
		"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
		"client_id", cfg.MQTT.Broker.ClientID,
	)

	// Connect to InfluxDB (optional)
	var influxClient *influxdb.Client
	var telemetry engine.Telemetry
	if cfg.InfluxDB.Enabled {
		influxClient, err = influxdb.Connect(cfg.InfluxDB)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
		telemetry = influxClient
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)
	} else {
		log.Info("InfluxDB disabled")
	}

	hub := api.NewHub(cfg.WebSocket, log.Component("websocket"))

	eng, err := engine.New(engine.Deps{
		Catalog:   st.catalog,
		Devices:   st.devices,
		Gate:      dupGate,
		MQTT:      mqttClient,
		Notifier:  engine.Notifiers{hub, &eventMirror{client: mqttClient, qos: byte(cfg.MQTT.QoS), log: log}},
		Telemetry: telemetry,
		Logger:    log.Component("engine"),
	}, engineConfig(cfg))
	if err != nil {
		return fmt.Errorf("creating engine: %w", err)
	}
	// Stops animations before MQTT and InfluxDB close.
	defer eng.Close()

	if unknown := eng.Reconcile(cfg.ActiveCircuits); len(unknown) > 0 {
		log.Warn("active circuits without a valid definition", "circuits", unknown)
	}

	subscribed, err := subscribeStations(mqttClient, st.devices.GestureTopics(), st.devices.LoadcellTopics(), byte(cfg.MQTT.QoS), eng)
	if err != nil {
		return err
	}
	log.Info("station topics subscribed", "count", subscribed)
	eng.LogSummary()

	players, err := roster.Open(cfg.PlayersFile)
	if err != nil {
		return fmt.Errorf("opening players file: %w", err)
	}
	players.SetLogger(log.Component("roster"))
	log.Info("players loaded", "path", players.Path(), "count", len(players.List()))

	if err := healthCheck(ctx, mqttClient, influxClient); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		hub.Run(gctx)
		return nil
	})
	g.Go(func() error {
		// A roster that cannot be watched still works; edits need a restart.
		if err := players.Watch(gctx); err != nil {
			log.Warn("players file not watched", "error", err)
		}
		return nil
	})

	if cfg.API.Enabled {
		srv, err := api.New(api.Deps{
			Config:  cfg.API,
			WS:      cfg.WebSocket,
			Logger:  log.Component("api"),
			Engine:  eng,
			Roster:  players,
			Hub:     hub,
			Version: version,
		})
		if err != nil {
			return fmt.Errorf("creating API server: %w", err)
		}
		if err := srv.Start(gctx); err != nil {
			return fmt.Errorf("starting API server: %w", err)
		}
		g.Go(func() error {
			<-gctx.Done()
			return srv.Close()
		})
	} else {
		log.Info("API disabled")
	}

	log.Info("initialisation complete, waiting for shutdown signal")

	if err := g.Wait(); err != nil {
		return err
	}

	// Deferred Close() calls run in reverse order:
	// 1. Engine (animations)
	// 2. InfluxDB (if enabled)
	// 3. MQTT
	log.Info("shutdown signal received, cleaning up")
	log.Info("Limbx Core stopped")
	return nil
}

// engineConfig maps the game section onto the engine settings.
func engineConfig(cfg *config.Config) engine.Config {
	ec := engine.DefaultConfig()
	ec.QoS = byte(cfg.MQTT.QoS)
	ec.Animation = cfg.Game.Animation
	return ec
}

// subscribeStations subscribes the engine to every gesture channel.
// Load-cell channels are subscribed too; the engine logs and ignores them.
func subscribeStations(client *mqtt.Client, gestures, loadcells []string, qos byte, eng *engine.Engine) (int, error) {
	topics := append(append([]string(nil), gestures...), loadcells...)
	n, err := client.SubscribeStations(topics, qos, eng.HandleMessage)
	if err != nil {
		return n, fmt.Errorf("subscribing station topics: %w", err)
	}
	return n, nil
}

// healthCheck verifies all infrastructure connections are healthy.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//   - mqttClient: MQTT client to check
//   - influxClient: InfluxDB client to check (may be nil if disabled)
//
// Returns:
//   - error: First health check failure, or nil if all healthy
func healthCheck(ctx context.Context, mqttClient *mqtt.Client, influxClient *influxdb.Client) error {
	if err := mqttClient.HealthCheck(ctx); err != nil {
		return fmt.Errorf("mqtt: %w", err)
	}

	if influxClient != nil {
		if err := influxClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("influxdb: %w", err)
		}
	}

	return nil
}

// eventMirror republishes engine events on limbx/core/event/{channel} so
// other services on the bus can follow the game without the HTTP API.
type eventMirror struct {
	client *mqtt.Client
	qos    byte
	log    *logging.Logger
}

// Broadcast implements engine.Notifier.
func (m *eventMirror) Broadcast(channel string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		m.log.Error("encoding mirrored event", "channel", channel, "error", err)
		return
	}
	if err := m.client.PublishAsync(mqtt.Topics{}.CoreEvent(channel), data, m.qos, false); err != nil {
		m.log.Debug("event not mirrored", "channel", channel, "error", err)
	}
}
