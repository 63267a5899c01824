package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
environment: test
data:
  source: synthetic
`)
	c, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Server.Port != 8080 {
		t.Fatalf("default port not applied, got %d", c.Server.Port)
	}
	if c.Data.Symbol != "USDJPY" {
		t.Fatalf("default symbol not applied, got %q", c.Data.Symbol)
	}
	if c.Walkforward.TradingThreshold != 0.72 {
		t.Fatalf("default trading threshold not applied, got %v", c.Walkforward.TradingThreshold)
	}
	if c.Features.TenkanPeriod != 9 || c.Features.KijunPeriod != 26 || c.Features.SenkouBPeriod != 52 {
		t.Fatalf("default indicator periods not applied: %+v", c.Features)
	}
}

func TestLoadRejectsUnknownSource(t *testing.T) {
	path := writeConfig(t, `
environment: test
data:
  source: postgres
`)
	if _, err := Load(path); err == nil {
		t.Fatalf("expected error for unknown data source")
	}
}

func TestLoadRequiresCSVPath(t *testing.T) {
	path := writeConfig(t, `
environment: test
data:
  source: csv
`)
	if _, err := Load(path); err == nil {
		t.Fatalf("expected error for missing csv path")
	}
}

func TestLoadWithEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
environment: test
data:
  source: synthetic
`)
	t.Setenv("SYMBOL", "EURUSD")
	t.Setenv("KAFKA_BROKERS", "a:9092,b:9092")
	t.Setenv("SYNTHETIC_SEED", "7")

	c, err := LoadWithEnv(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Data.Symbol != "EURUSD" {
		t.Fatalf("symbol override not applied, got %q", c.Data.Symbol)
	}
	if len(c.Kafka.Brokers) != 2 || c.Kafka.Brokers[0] != "a:9092" {
		t.Fatalf("broker override not applied, got %v", c.Kafka.Brokers)
	}
	if c.Data.Synthetic.Seed != 7 {
		t.Fatalf("seed override not applied, got %d", c.Data.Synthetic.Seed)
	}
}

func TestValidateSimulationMode(t *testing.T) {
	path := writeConfig(t, `
environment: test
data:
  source: synthetic
walkforward:
  simulation: martingale
`)
	if _, err := Load(path); err == nil {
		t.Fatalf("expected error for unknown simulation mode")
	}
}
