package config

import (
	"os"
	"path/filepath"
	"testing"
)

// writeConfig writes a YAML config file into a temp dir and returns its path.
func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("writing config file: %v", err)
	}
	return path
}

const validConfig = `
mqtt:
  broker:
    host: broker.local
  auth:
    username: core
    password: secret
`

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, validConfig))
	if err != nil {
		t.Fatalf("loading config: %v", err)
	}

	if cfg.Database.Path != "./data/iothome.db" {
		t.Errorf("database.path = %q", cfg.Database.Path)
	}
	if cfg.MQTT.Broker.Port != 1883 {
		t.Errorf("mqtt.broker.port = %d, want 1883", cfg.MQTT.Broker.Port)
	}
	if cfg.MQTT.QoS != 1 {
		t.Errorf("mqtt.qos = %d, want 1", cfg.MQTT.QoS)
	}
	if cfg.Stream.QueueCapacity != 100 {
		t.Errorf("stream.queue_capacity = %d, want 100", cfg.Stream.QueueCapacity)
	}
	if cfg.API.Port != 8080 {
		t.Errorf("api.port = %d, want 8080", cfg.API.Port)
	}
}

func TestLoadMissingBrokerFails(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"no broker host", `
mqtt:
  auth:
    username: core
    password: secret
`},
		{"no username", `
mqtt:
  broker:
    host: broker.local
  auth:
    password: secret
`},
		{"no password", `
mqtt:
  broker:
    host: broker.local
  auth:
    username: core
`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, tt.content)); err == nil {
				t.Error("expected validation error, got nil")
			}
		})
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("IOTHOME_MQTT_HOST", "env.broker")
	t.Setenv("IOTHOME_MQTT_PORT", "8883")
	t.Setenv("IOTHOME_MQTT_USERNAME", "envuser")
	t.Setenv("IOTHOME_MQTT_PASSWORD", "envpass")
	t.Setenv("IOTHOME_DATABASE_PATH", "/tmp/env.db")

	cfg, err := Load(writeConfig(t, validConfig))
	if err != nil {
		t.Fatalf("loading config: %v", err)
	}

	if cfg.MQTT.Broker.Host != "env.broker" {
		t.Errorf("host = %q, want env.broker", cfg.MQTT.Broker.Host)
	}
	if cfg.MQTT.Broker.Port != 8883 {
		t.Errorf("port = %d, want 8883", cfg.MQTT.Broker.Port)
	}
	if cfg.MQTT.Auth.Username != "envuser" || cfg.MQTT.Auth.Password != "envpass" {
		t.Errorf("auth = %q/%q, want env values", cfg.MQTT.Auth.Username, cfg.MQTT.Auth.Password)
	}
	if cfg.Database.Path != "/tmp/env.db" {
		t.Errorf("database.path = %q", cfg.Database.Path)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad qos", func(c *Config) { c.MQTT.QoS = 3 }},
		{"bad broker port", func(c *Config) { c.MQTT.Broker.Port = 0 }},
		{"bad api port", func(c *Config) { c.API.Port = 70000 }},
		{"zero queue capacity", func(c *Config) { c.Stream.QueueCapacity = 0 }},
		{"empty database path", func(c *Config) { c.Database.Path = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			cfg.MQTT.Broker.Host = "broker.local"
			cfg.MQTT.Auth.Username = "core"
			cfg.MQTT.Auth.Password = "secret"
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error, got nil")
			}
		})
	}
}
