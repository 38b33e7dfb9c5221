package config

import (
	"os"
	"testing"
	"time"
)

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()

	tmpFile, err := os.CreateTemp("", "config_*.yaml")
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	t.Cleanup(func() { os.Remove(tmpFile.Name()) })

	if _, err := tmpFile.Write([]byte(content)); err != nil {
		t.Fatalf("Failed to write to temp file: %v", err)
	}
	tmpFile.Close()

	return tmpFile.Name()
}

func TestLoad_Defaults(t *testing.T) {
	path := writeTempConfig(t, `
probe:
  target: localhost:50051
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("Expected default port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Probe.Interval != 10*time.Second {
		t.Errorf("Expected default interval 10s, got %s", cfg.Probe.Interval)
	}
	if cfg.Probe.DialTimeout != 10*time.Second {
		t.Errorf("Expected default dial timeout 10s, got %s", cfg.Probe.DialTimeout)
	}
	if got := cfg.Retry.MaxCount(); got != 2 {
		t.Errorf("Expected default retry max 2, got %d", got)
	}
}

func TestLoad_ExplicitZeroRetries(t *testing.T) {
	path := writeTempConfig(t, `
retry:
  internal_error_retry_max_count: 0
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if got := cfg.Retry.MaxCount(); got != 0 {
		t.Errorf("Expected retry max 0, got %d", got)
	}
}

func TestLoad_NegativeRetriesRejected(t *testing.T) {
	path := writeTempConfig(t, `
retry:
  internal_error_retry_max_count: -1
`)

	if _, err := Load(path); err == nil {
		t.Fatal("Expected error for negative retry count, got nil")
	}
}

func TestLoad_EnvSubstitution(t *testing.T) {
	os.Setenv("TEST_PROBE_TARGET", "https://rpc.example.com:443")
	defer os.Unsetenv("TEST_PROBE_TARGET")

	path := writeTempConfig(t, `
probe:
  target: ${TEST_PROBE_TARGET}
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Probe.Target != "https://rpc.example.com:443" {
		t.Errorf("Expected target https://rpc.example.com:443, got %s", cfg.Probe.Target)
	}
}
