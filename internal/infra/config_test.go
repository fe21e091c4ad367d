package infra

import (
	"os"
	"path/filepath"
	"testing"
)

const validYAML = `
api:
  ftx:
    key: "k"
    secret: "s"
trading:
  market: "BTC-PERP"
  order_size: "0.001"
  step_rate: "0.002"
  trigger_rate: "0.005"
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, validYAML))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Trading.MaxOpenRungs != DefaultMaxOpenRungs {
		t.Errorf("expected default max open rungs %d, got %d", DefaultMaxOpenRungs, cfg.Trading.MaxOpenRungs)
	}
	if cfg.Trading.PollIntervalSec != DefaultPollIntervalSec {
		t.Errorf("expected default poll interval %d, got %d", DefaultPollIntervalSec, cfg.Trading.PollIntervalSec)
	}
	if cfg.Trading.HedgeMaxAttempts != DefaultHedgeMaxAttempts {
		t.Errorf("expected default hedge attempts %d, got %d", DefaultHedgeMaxAttempts, cfg.Trading.HedgeMaxAttempts)
	}
	if cfg.Trading.Mode != "sell" {
		t.Errorf("expected default mode sell, got %q", cfg.Trading.Mode)
	}
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	t.Setenv("GRID_FTX_KEY", "env-key")
	t.Setenv("GRID_FTX_SECRET", "env-secret")

	cfg, err := LoadConfig(writeConfig(t, validYAML))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.API.FTX.Key != "env-key" {
		t.Errorf("expected env override for key, got %q", cfg.API.FTX.Key)
	}
	if cfg.API.FTX.Secret != "env-secret" {
		t.Errorf("expected env override for secret, got %q", cfg.API.FTX.Secret)
	}
}

func TestLoadConfig_Invalid(t *testing.T) {
	cases := []struct {
		name string
		yaml string
	}{
		{"missing key", `
api:
  ftx:
    secret: "s"
trading:
  market: "BTC-PERP"
  order_size: "0.001"
  step_rate: "0.002"
  trigger_rate: "0.005"
`},
		{"missing market", `
api:
  ftx:
    key: "k"
    secret: "s"
trading:
  order_size: "0.001"
  step_rate: "0.002"
  trigger_rate: "0.005"
`},
		{"bad mode", `
api:
  ftx:
    key: "k"
    secret: "s"
trading:
  market: "BTC-PERP"
  mode: "hold"
  order_size: "0.001"
  step_rate: "0.002"
  trigger_rate: "0.005"
`},
		{"zero order size", `
api:
  ftx:
    key: "k"
    secret: "s"
trading:
  market: "BTC-PERP"
  order_size: "0"
  step_rate: "0.002"
  trigger_rate: "0.005"
`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := LoadConfig(writeConfig(t, tc.yaml)); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}
