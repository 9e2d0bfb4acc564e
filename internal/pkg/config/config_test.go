package config

import (
	"strings"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir()) // no config.yaml

	cfg, err := Load("missionplanner-test")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("expected port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Telemetry.ServiceName != "missionplanner-test" {
		t.Errorf("expected service name from argument, got %q", cfg.Telemetry.ServiceName)
	}
	if !cfg.NATS.Enabled || cfg.Valkey.Enabled {
		t.Errorf("expected nats on and valkey off by default, got %+v %+v", cfg.NATS, cfg.Valkey)
	}
	if cfg.Log.Format != "json" {
		t.Errorf("expected json log format, got %q", cfg.Log.Format)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("MISSIONPLANNER_SERVER_PORT", "9090")
	t.Setenv("MISSIONPLANNER_NATS_URL", "nats://broker:4222")
	t.Setenv("MISSIONPLANNER_LOG_LEVEL", "debug")

	cfg, err := Load("api")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.Server.Port)
	}
	if cfg.NATS.URL != "nats://broker:4222" {
		t.Errorf("expected env nats url, got %q", cfg.NATS.URL)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("expected debug level, got %q", cfg.Log.Level)
	}
}

func TestLoad_InvalidEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("MISSIONPLANNER_SERVER_PORT", "70000")

	if _, err := Load("api"); err == nil {
		t.Fatal("expected validation error for port 70000")
	}
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := &Config{
		Server: ServerConfig{Port: 0, ReadTimeout: 10, WriteTimeout: 10, BodyLimit: 1, RateLimit: -1},
		NATS:   NATSConfig{Enabled: true},
		Valkey: ValkeyConfig{Enabled: true},
		Log:    LogConfig{Format: "xml"},
	}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{"server.port", "server.rate_limit", "nats.url", "valkey.addr", "log.format"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("expected error to mention %s, got:\n%s", want, err)
		}
	}
}

func TestValidate_DisabledDepsNeedNoAddress(t *testing.T) {
	cfg := &Config{
		Server: ServerConfig{Port: 8080, ReadTimeout: 10, WriteTimeout: 10, BodyLimit: 1024},
		Log:    LogConfig{Format: "text"},
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
