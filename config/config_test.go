package config

import (
	"testing"
	"time"
)

func TestLoadEnvDefaults(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("STORE_TIMEOUT", "250ms")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")

	cfg := LoadEnv()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if cfg.Server.StoreDriver != StoreDriverMemory {
		t.Errorf("StoreDriver = %q", cfg.Server.StoreDriver)
	}
	if cfg.Server.StoreTimeout != 250*time.Millisecond {
		t.Errorf("StoreTimeout = %s", cfg.Server.StoreTimeout)
	}
	if len(cfg.Kafka.Brokers) != 2 || cfg.Kafka.Brokers[1] != "k2:9092" {
		t.Errorf("Brokers = %v", cfg.Kafka.Brokers)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"ok", func(c *Config) {}, false},
		{"empty port", func(c *Config) { c.Server.HTTPPort = " " }, true},
		{"bad driver", func(c *Config) { c.Server.StoreDriver = "sqlite" }, true},
		{"zero timeout", func(c *Config) { c.Server.StoreTimeout = 0 }, true},
		{"bad timezone", func(c *Config) { c.Server.DefaultTimezone = "Mars/Olympus" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := LoadEnv()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestShowErrorDetail(t *testing.T) {
	cfg := LoadEnv()
	cfg.Server.AppEnv = "production"
	cfg.Server.DiagnosticErrors = false
	if cfg.ShowErrorDetail() {
		t.Error("production without diagnostics must hide detail")
	}
	cfg.Server.DiagnosticErrors = true
	if !cfg.ShowErrorDetail() {
		t.Error("diagnostic flag must expose detail")
	}
}
