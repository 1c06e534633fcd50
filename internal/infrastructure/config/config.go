package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for Limbx Core.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Site      SiteConfig      `yaml:"site"`
	MQTT      MQTTConfig      `yaml:"mqtt"`
	API       APIConfig       `yaml:"api"`
	WebSocket WebSocketConfig `yaml:"websocket"`
	InfluxDB  InfluxDBConfig  `yaml:"influxdb"`
	Logging   LoggingConfig   `yaml:"logging"`
	Game      GameConfig      `yaml:"game"`
	Topics    TopicsConfig    `yaml:"topics"`

	// Devices is the static device table. Channel names are derived from
	// the Topics templates.
	Devices []DeviceConfig `yaml:"devices"`

	// CircuitsFile points at the YAML file holding circuit definitions.
	CircuitsFile string `yaml:"circuits_file" env:"LIMBX_CIRCUITS_FILE"`

	// PlayersFile points at the editable player roster. Optional.
	PlayersFile string `yaml:"players_file" env:"LIMBX_PLAYERS_FILE"`

	// ActiveCircuits is the initial desired-active set of circuit IDs.
	ActiveCircuits []string `yaml:"active_circuits" env:"LIMBX_ACTIVE_CIRCUITS" envSeparator:","`
}

// SiteConfig contains installation-specific information.
type SiteConfig struct {
	ID   string `yaml:"id" env:"LIMBX_SITE_ID"`
	Name string `yaml:"name"`
}

// MQTTConfig contains MQTT broker connection settings.
type MQTTConfig struct {
	Broker    MQTTBrokerConfig    `yaml:"broker"`
	Auth      MQTTAuthConfig      `yaml:"auth"`
	QoS       int                 `yaml:"qos"`
	Reconnect MQTTReconnectConfig `yaml:"reconnect"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host" env:"LIMBX_MQTT_HOST"`
	Port     int    `yaml:"port" env:"LIMBX_MQTT_PORT"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id" env:"LIMBX_MQTT_CLIENT_ID"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username" env:"LIMBX_MQTT_USERNAME"`
	Password string `yaml:"password" env:"LIMBX_MQTT_PASSWORD"`
}

// MQTTReconnectConfig contains MQTT reconnection settings.
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
}

// APIConfig contains operator HTTP API settings.
type APIConfig struct {
	Enabled  bool             `yaml:"enabled"`
	Host     string           `yaml:"host" env:"LIMBX_API_HOST"`
	Port     int              `yaml:"port" env:"LIMBX_API_PORT"`
	Timeouts APITimeoutConfig `yaml:"timeouts"`
	CORS     CORSConfig       `yaml:"cors"`
	Auth     APIAuthConfig    `yaml:"auth"`
}

// APITimeoutConfig contains HTTP timeout settings in seconds.
type APITimeoutConfig struct {
	Read  int `yaml:"read"`
	Write int `yaml:"write"`
	Idle  int `yaml:"idle"`
}

// CORSConfig contains Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
	AllowedMethods []string `yaml:"allowed_methods"`
	AllowedHeaders []string `yaml:"allowed_headers"`
}

// APIAuthConfig contains operator authentication settings.
// When JWTSecret is empty the API is open (kiosk on a private network).
type APIAuthConfig struct {
	JWTSecret string `yaml:"jwt_secret" env:"LIMBX_JWT_SECRET"`
}

// WebSocketConfig contains WebSocket event feed settings.
type WebSocketConfig struct {
	Path           string `yaml:"path"`
	MaxMessageSize int    `yaml:"max_message_size"`
	PingInterval   int    `yaml:"ping_interval"`
	PongTimeout    int    `yaml:"pong_timeout"`
}

// InfluxDBConfig contains InfluxDB connection settings for outcome telemetry.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled" env:"LIMBX_INFLUXDB_ENABLED"`
	URL           string `yaml:"url" env:"LIMBX_INFLUXDB_URL"`
	Token         string `yaml:"token" env:"LIMBX_INFLUXDB_TOKEN"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level" env:"LIMBX_LOG_LEVEL"`
	Format string `yaml:"format" env:"LIMBX_LOG_FORMAT"`
	Output string `yaml:"output"`
}

// GameConfig contains circuit engine tuning.
type GameConfig struct {
	// DuplicateWindow is the anti-bounce window for repeated gestures.
	DuplicateWindow time.Duration `yaml:"duplicate_window" env:"LIMBX_DUPLICATE_WINDOW"`

	// Debounce selects the duplicate filter policy: "global" keys on the
	// gesture kind only, "per_device" keys on device and gesture.
	Debounce string `yaml:"debounce" env:"LIMBX_DEBOUNCE"`

	Animation AnimationConfig `yaml:"animation"`
}

// AnimationConfig contains win/lose light sequence timings.
type AnimationConfig struct {
	CelebrationDuration time.Duration `yaml:"celebration_duration"`
	CelebrationInterval time.Duration `yaml:"celebration_interval"`
	FailureDuration     time.Duration `yaml:"failure_duration"`
	FailureInterval     time.Duration `yaml:"failure_interval"`
}

// TopicsConfig holds per-device channel templates. "{name}" is replaced
// with the device name.
type TopicsConfig struct {
	TagTap       string `yaml:"tag_tap"`
	TagDoubleTap string `yaml:"tag_double_tap"`
	TagLight     string `yaml:"tag_light"`
	TileLoadcell string `yaml:"tile_loadcell"`
	TileLight    string `yaml:"tile_light"`
}

// DeviceConfig describes one physical station.
type DeviceConfig struct {
	Name      string  `yaml:"name"`
	Type      string  `yaml:"type"` // tag, tile
	Threshold float64 `yaml:"threshold,omitempty"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern LIMBX_SECTION_KEY, declared
// on the struct fields with env tags.
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If file cannot be read, parsed, or validation fails
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with the values the installation ships with.
func defaultConfig() *Config {
	return &Config{
		Site: SiteConfig{
			ID:   "site-001",
			Name: "Limbx",
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "limbx-core",
			},
			QoS: 0,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
			},
		},
		API: APIConfig{
			Enabled: true,
			Host:    "0.0.0.0",
			Port:    8080,
			Timeouts: APITimeoutConfig{
				Read:  30,
				Write: 30,
				Idle:  60,
			},
		},
		WebSocket: WebSocketConfig{
			Path:           "/ws",
			MaxMessageSize: 8192,
			PingInterval:   30,
			PongTimeout:    10,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
		Game: GameConfig{
			DuplicateWindow: 100 * time.Millisecond,
			Debounce:        DebounceGlobal,
			Animation: AnimationConfig{
				CelebrationDuration: 3 * time.Second,
				CelebrationInterval: 500 * time.Millisecond,
				FailureDuration:     3 * time.Second,
				FailureInterval:     500 * time.Millisecond,
			},
		},
		Topics: TopicsConfig{
			TagTap:       "devices/{name}/msa3xx/accelsensor/tap",
			TagDoubleTap: "devices/{name}/msa3xx/accelsensor/double_tap",
			TagLight:     "devices/{name}/light/circular_leds/command",
			TileLoadcell: "devices/{name}/sensor/loadcell/state",
			TileLight:    "devices/{name}/light/leds/command",
		},
		CircuitsFile: "configs/circuits.yaml",
	}
}

// Debounce policies accepted in game.debounce.
const (
	DebounceGlobal    = "global"
	DebouncePerDevice = "per_device"
)

// applyEnvOverrides applies LIMBX_* environment variables on top of the file values.
// Fields whose variable is unset keep their file or default value.
func applyEnvOverrides(cfg *Config) error {
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("parsing environment overrides: %w", err)
	}
	return nil
}

// Validate checks the configuration for errors.
//
// Returns:
//   - error: Description of every validation failure, or nil if valid
func (c *Config) Validate() error { //nolint:gocognit,gocyclo // flat list of independent checks
	var errs []string

	if c.Site.ID == "" {
		errs = append(errs, "site.id is required")
	}

	if c.MQTT.Broker.Host == "" {
		errs = append(errs, "mqtt.broker.host is required")
	}
	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}

	if c.API.Enabled && (c.API.Port < 1 || c.API.Port > 65535) {
		errs = append(errs, "api.port must be between 1 and 65535")
	}

	if c.CircuitsFile == "" {
		errs = append(errs, "circuits_file is required")
	}

	if c.Game.DuplicateWindow < 0 {
		errs = append(errs, "game.duplicate_window must not be negative")
	}
	switch c.Game.Debounce {
	case DebounceGlobal, DebouncePerDevice:
	default:
		errs = append(errs, fmt.Sprintf("game.debounce must be %q or %q", DebounceGlobal, DebouncePerDevice))
	}
	anim := c.Game.Animation
	if anim.CelebrationDuration < 0 || anim.FailureDuration < 0 {
		errs = append(errs, "game.animation durations must not be negative")
	}
	if anim.CelebrationInterval <= 0 || anim.FailureInterval <= 0 {
		errs = append(errs, "game.animation intervals must be positive")
	}

	seen := make(map[string]bool, len(c.Devices))
	for i, d := range c.Devices {
		if d.Name == "" {
			errs = append(errs, fmt.Sprintf("devices[%d].name is required", i))
			continue
		}
		if seen[d.Name] {
			errs = append(errs, fmt.Sprintf("devices[%d]: duplicate name %q", i, d.Name))
		}
		seen[d.Name] = true
		if d.Type != "tag" && d.Type != "tile" {
			errs = append(errs, fmt.Sprintf("devices[%d]: type must be tag or tile, got %q", i, d.Type))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// GetReadTimeout returns the API read timeout as a Duration.
func (c *Config) GetReadTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Read) * time.Second
}

// GetWriteTimeout returns the API write timeout as a Duration.
func (c *Config) GetWriteTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Write) * time.Second
}

// GetIdleTimeout returns the API idle timeout as a Duration.
func (c *Config) GetIdleTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Idle) * time.Second
}
