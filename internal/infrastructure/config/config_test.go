package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return configPath
}

// validConfig returns a config that passes validation.
func validConfig() *Config {
	cfg := defaultConfig()
	cfg.Devices = []DeviceConfig{
		{Name: "tag1", Type: "tag"},
		{Name: "t1", Type: "tile"},
	}
	return cfg
}

func TestLoad_ValidConfig(t *testing.T) {
	configPath := writeConfig(t, `
site:
  id: "rockfit"
mqtt:
  broker:
    host: "192.168.8.163"
    port: 1883
    client_id: "test-client"
  qos: 0
game:
  duplicate_window: 150ms
  debounce: per_device
  animation:
    celebration_duration: 2s
devices:
  - name: tag1
    type: tag
  - name: koala1
    type: tag
  - name: t1
    type: tile
    threshold: 0.5
circuits_file: "configs/circuits.yaml"
active_circuits: ["rockfit_1", "rockfit_2"]
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Site.ID != "rockfit" {
		t.Errorf("Site.ID = %q, want %q", cfg.Site.ID, "rockfit")
	}
	if cfg.MQTT.Broker.Host != "192.168.8.163" {
		t.Errorf("MQTT.Broker.Host = %q, want %q", cfg.MQTT.Broker.Host, "192.168.8.163")
	}
	if cfg.Game.DuplicateWindow != 150*time.Millisecond {
		t.Errorf("Game.DuplicateWindow = %v, want 150ms", cfg.Game.DuplicateWindow)
	}
	if cfg.Game.Debounce != DebouncePerDevice {
		t.Errorf("Game.Debounce = %q, want %q", cfg.Game.Debounce, DebouncePerDevice)
	}
	if cfg.Game.Animation.CelebrationDuration != 2*time.Second {
		t.Errorf("CelebrationDuration = %v, want 2s", cfg.Game.Animation.CelebrationDuration)
	}
	// Untouched animation fields keep their defaults.
	if cfg.Game.Animation.FailureInterval != 500*time.Millisecond {
		t.Errorf("FailureInterval = %v, want 500ms", cfg.Game.Animation.FailureInterval)
	}
	if len(cfg.Devices) != 3 {
		t.Fatalf("len(Devices) = %d, want 3", len(cfg.Devices))
	}
	if cfg.Devices[2].Threshold != 0.5 {
		t.Errorf("Devices[2].Threshold = %v, want 0.5", cfg.Devices[2].Threshold)
	}
	if len(cfg.ActiveCircuits) != 2 || cfg.ActiveCircuits[1] != "rockfit_2" {
		t.Errorf("ActiveCircuits = %v, want [rockfit_1 rockfit_2]", cfg.ActiveCircuits)
	}
	if cfg.Topics.TagTap != "devices/{name}/msa3xx/accelsensor/tap" {
		t.Errorf("Topics.TagTap = %q, want default template", cfg.Topics.TagTap)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("Load() expected error for missing file, got nil")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	configPath := writeConfig(t, "invalid: [yaml: content")

	_, err := Load(configPath)
	if err == nil {
		t.Error("Load() expected error for invalid YAML, got nil")
	}
}

func TestLoad_ValidationFailure(t *testing.T) {
	configPath := writeConfig(t, `
site:
  id: ""
`)

	_, err := Load(configPath)
	if err == nil {
		t.Error("Load() expected validation error for empty site.id, got nil")
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{
			name:   "valid config",
			mutate: func(*Config) {},
		},
		{
			name:    "missing site ID",
			mutate:  func(c *Config) { c.Site.ID = "" },
			wantErr: "site.id",
		},
		{
			name:    "missing broker host",
			mutate:  func(c *Config) { c.MQTT.Broker.Host = "" },
			wantErr: "mqtt.broker.host",
		},
		{
			name:    "invalid QoS",
			mutate:  func(c *Config) { c.MQTT.QoS = 3 },
			wantErr: "mqtt.qos",
		},
		{
			name:    "invalid port",
			mutate:  func(c *Config) { c.API.Port = 70000 },
			wantErr: "api.port",
		},
		{
			name: "port ignored when API disabled",
			mutate: func(c *Config) {
				c.API.Enabled = false
				c.API.Port = 0
			},
		},
		{
			name:    "missing circuits file",
			mutate:  func(c *Config) { c.CircuitsFile = "" },
			wantErr: "circuits_file",
		},
		{
			name:    "negative duplicate window",
			mutate:  func(c *Config) { c.Game.DuplicateWindow = -time.Millisecond },
			wantErr: "duplicate_window",
		},
		{
			name:    "unknown debounce policy",
			mutate:  func(c *Config) { c.Game.Debounce = "per_circuit" },
			wantErr: "game.debounce",
		},
		{
			name:    "zero animation interval",
			mutate:  func(c *Config) { c.Game.Animation.CelebrationInterval = 0 },
			wantErr: "intervals",
		},
		{
			name: "duplicate device name",
			mutate: func(c *Config) {
				c.Devices = append(c.Devices, DeviceConfig{Name: "tag1", Type: "tag"})
			},
			wantErr: "duplicate name",
		},
		{
			name: "unknown device type",
			mutate: func(c *Config) {
				c.Devices = append(c.Devices, DeviceConfig{Name: "b1", Type: "button"})
			},
			wantErr: "type must be tag or tile",
		},
		{
			name: "unnamed device",
			mutate: func(c *Config) {
				c.Devices = append(c.Devices, DeviceConfig{Type: "tag"})
			},
			wantErr: "name is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() error = nil, want error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_GetTimeouts(t *testing.T) {
	cfg := &Config{
		API: APIConfig{
			Timeouts: APITimeoutConfig{
				Read:  30,
				Write: 45,
				Idle:  60,
			},
		},
	}

	if got := cfg.GetReadTimeout().Seconds(); got != 30 {
		t.Errorf("GetReadTimeout() = %v, want 30", got)
	}

	if got := cfg.GetWriteTimeout().Seconds(); got != 45 {
		t.Errorf("GetWriteTimeout() = %v, want 45", got)
	}

	if got := cfg.GetIdleTimeout().Seconds(); got != 60 {
		t.Errorf("GetIdleTimeout() = %v, want 60", got)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	cfg := defaultConfig()

	t.Setenv("LIMBX_MQTT_HOST", "mqtt.example.com")
	t.Setenv("LIMBX_MQTT_PORT", "8883")
	t.Setenv("LIMBX_MQTT_USERNAME", "testuser")
	t.Setenv("LIMBX_MQTT_PASSWORD", "testpass")
	t.Setenv("LIMBX_API_HOST", "192.168.1.1")
	t.Setenv("LIMBX_INFLUXDB_TOKEN", "secret-token")
	t.Setenv("LIMBX_JWT_SECRET", "jwt-secret")
	t.Setenv("LIMBX_DUPLICATE_WINDOW", "250ms")
	t.Setenv("LIMBX_ACTIVE_CIRCUITS", "rockfit_1,rockfit_mix")

	if err := applyEnvOverrides(cfg); err != nil {
		t.Fatalf("applyEnvOverrides() error = %v", err)
	}

	if cfg.MQTT.Broker.Host != "mqtt.example.com" {
		t.Errorf("MQTT.Broker.Host = %q, want %q", cfg.MQTT.Broker.Host, "mqtt.example.com")
	}
	if cfg.MQTT.Broker.Port != 8883 {
		t.Errorf("MQTT.Broker.Port = %d, want 8883", cfg.MQTT.Broker.Port)
	}
	if cfg.MQTT.Auth.Username != "testuser" {
		t.Errorf("MQTT.Auth.Username = %q, want %q", cfg.MQTT.Auth.Username, "testuser")
	}
	if cfg.MQTT.Auth.Password != "testpass" {
		t.Errorf("MQTT.Auth.Password = %q, want %q", cfg.MQTT.Auth.Password, "testpass")
	}
	if cfg.API.Host != "192.168.1.1" {
		t.Errorf("API.Host = %q, want %q", cfg.API.Host, "192.168.1.1")
	}
	if cfg.InfluxDB.Token != "secret-token" {
		t.Errorf("InfluxDB.Token = %q, want %q", cfg.InfluxDB.Token, "secret-token")
	}
	if cfg.API.Auth.JWTSecret != "jwt-secret" {
		t.Errorf("API.Auth.JWTSecret = %q, want %q", cfg.API.Auth.JWTSecret, "jwt-secret")
	}
	if cfg.Game.DuplicateWindow != 250*time.Millisecond {
		t.Errorf("Game.DuplicateWindow = %v, want 250ms", cfg.Game.DuplicateWindow)
	}
	if len(cfg.ActiveCircuits) != 2 || cfg.ActiveCircuits[1] != "rockfit_mix" {
		t.Errorf("ActiveCircuits = %v, want [rockfit_1 rockfit_mix]", cfg.ActiveCircuits)
	}
}

func TestApplyEnvOverrides_UnsetKeepsValues(t *testing.T) {
	cfg := defaultConfig()
	cfg.MQTT.Broker.Host = "from-file"

	if err := applyEnvOverrides(cfg); err != nil {
		t.Fatalf("applyEnvOverrides() error = %v", err)
	}

	if cfg.MQTT.Broker.Host != "from-file" {
		t.Errorf("MQTT.Broker.Host = %q, want %q", cfg.MQTT.Broker.Host, "from-file")
	}
	if cfg.Game.DuplicateWindow != 100*time.Millisecond {
		t.Errorf("Game.DuplicateWindow = %v, want 100ms", cfg.Game.DuplicateWindow)
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Site.ID == "" {
		t.Error("defaultConfig should have non-empty Site.ID")
	}
	if cfg.MQTT.Broker.Port != 1883 {
		t.Errorf("defaultConfig MQTT.Broker.Port = %d, want 1883", cfg.MQTT.Broker.Port)
	}
	if cfg.API.Port != 8080 {
		t.Errorf("defaultConfig API.Port = %d, want 8080", cfg.API.Port)
	}
	if cfg.Game.DuplicateWindow != 100*time.Millisecond {
		t.Errorf("defaultConfig Game.DuplicateWindow = %v, want 100ms", cfg.Game.DuplicateWindow)
	}
	if cfg.Game.Animation.CelebrationDuration != 3*time.Second {
		t.Errorf("defaultConfig CelebrationDuration = %v, want 3s", cfg.Game.Animation.CelebrationDuration)
	}
}
