package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const testCircuitsYAML = `
circuits:
  - id: warmup
    name: Warm Up
    max_time: 30
    steps:
      - {order: 1, device: tag1, event: tap}
      - {order: 2, device: tag2, event: double_tap}
  - id: race
    order_mode: competition
    steps:
      - {order: 1, device: tag1, event: tap}
`

// writeTestConfig writes a config and circuits file into a temp dir and
// returns the config path.
func writeTestConfig(t *testing.T, active, secret string) string {
	t.Helper()
	dir := t.TempDir()

	circuitsPath := filepath.Join(dir, "circuits.yaml")
	if err := os.WriteFile(circuitsPath, []byte(testCircuitsYAML), 0o600); err != nil {
		t.Fatalf("write circuits: %v", err)
	}

	cfg := `
site:
  id: test-site
mqtt:
  broker:
    host: "127.0.0.1"
    port: 19999
    client_id: "test-client"
logging:
  level: error
  format: text
api:
  auth:
    jwt_secret: "` + secret + `"
devices:
  - {name: tag1, type: tag}
  - {name: tag2, type: tag}
  - {name: tile1, type: tile}
circuits_file: "` + circuitsPath + `"
active_circuits: [` + active + `]
`
	configPath := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(cfg), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return configPath
}

// execute runs the command tree with args and returns stdout, stderr and the error.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

// ─── Config Path ────────────────────────────────────────────────────

func TestResolveConfigPath_Default(t *testing.T) {
	t.Setenv(configEnvVar, "")

	opts := &rootOptions{}
	if got := opts.resolveConfigPath(); got != defaultConfigPath {
		t.Errorf("resolveConfigPath() = %q, want %q", got, defaultConfigPath)
	}
}

func TestResolveConfigPath_EnvOverride(t *testing.T) {
	t.Setenv(configEnvVar, "/custom/path/config.yaml")

	opts := &rootOptions{}
	if got := opts.resolveConfigPath(); got != "/custom/path/config.yaml" {
		t.Errorf("resolveConfigPath() = %q, want env value", got)
	}
}

func TestResolveConfigPath_FlagWins(t *testing.T) {
	t.Setenv(configEnvVar, "/custom/path/config.yaml")

	opts := &rootOptions{configPath: "flag.yaml"}
	if got := opts.resolveConfigPath(); got != "flag.yaml" {
		t.Errorf("resolveConfigPath() = %q, want %q", got, "flag.yaml")
	}
}

// ─── Run ────────────────────────────────────────────────────────────

func TestRun_InvalidConfig(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := run(ctx, "/nonexistent/path/config.yaml"); err == nil {
		t.Fatal("run() should fail with invalid config path")
	}
}

func TestRun_MissingCircuitsFile(t *testing.T) {
	configPath := writeTestConfig(t, "", "")
	if err := os.Remove(filepath.Join(filepath.Dir(configPath), "circuits.yaml")); err != nil {
		t.Fatalf("remove: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := run(ctx, configPath)
	if err == nil || !strings.Contains(err.Error(), "loading circuits") {
		t.Fatalf("run() error = %v, want circuits load failure", err)
	}
}

// ─── Commands ───────────────────────────────────────────────────────

func TestValidate_ReportsRejectedDefinitions(t *testing.T) {
	configPath := writeTestConfig(t, "warmup, ghost", "")

	stdout, stderr, err := execute(t, "validate", "--config", configPath)
	if err == nil {
		t.Fatal("validate should fail when a definition is rejected")
	}
	if !strings.Contains(stdout, "circuits: 1 valid") {
		t.Errorf("stdout = %q, want one valid circuit", stdout)
	}
	if !strings.Contains(stderr, "race") {
		t.Errorf("stderr = %q, want the competition circuit reported", stderr)
	}
	if !strings.Contains(stderr, `"ghost"`) {
		t.Errorf("stderr = %q, want the unknown active circuit reported", stderr)
	}
}

func TestCircuits_ListsValidDefinitions(t *testing.T) {
	configPath := writeTestConfig(t, "warmup", "")

	stdout, _, err := execute(t, "circuits", "-c", configPath)
	if err != nil {
		t.Fatalf("circuits: %v", err)
	}
	if !strings.Contains(stdout, "warmup") || !strings.Contains(stdout, "Warm Up") {
		t.Errorf("stdout = %q, want the warmup circuit", stdout)
	}
	if !strings.Contains(stdout, "30s") || !strings.Contains(stdout, "yes") {
		t.Errorf("stdout = %q, want max time and active marker", stdout)
	}
	if strings.Contains(stdout, "race") {
		t.Errorf("stdout = %q, rejected circuit should not be listed", stdout)
	}
}

func TestToken_RequiresSecret(t *testing.T) {
	configPath := writeTestConfig(t, "", "")

	if _, _, err := execute(t, "token", "--config", configPath); err == nil {
		t.Fatal("token should fail without api.auth.jwt_secret")
	}
}

func TestToken_Issues(t *testing.T) {
	configPath := writeTestConfig(t, "", "test-secret-for-development-only")

	stdout, _, err := execute(t, "token", "--config", configPath, "--subject", "front-desk", "--ttl", "1h")
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	if parts := strings.Split(strings.TrimSpace(stdout), "."); len(parts) != 3 {
		t.Errorf("token = %q, want a three-part JWT", stdout)
	}
}

func TestVersion(t *testing.T) {
	stdout, _, err := execute(t, "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.Contains(stdout, version) {
		t.Errorf("stdout = %q, want version %q", stdout, version)
	}
}
