package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/arbitrage/core/optimizer"
)

func writeConfig(t *testing.T, name, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, "config.yaml", `optimizer:
  population_size: 40
  generations: 200
  required_buy_sell: 3
  battery:
    capacity_min: 0
    capacity_max: 100
    capacity_step: 20
    starting_capacity: 40
window:
  size: 24
  policy: pad
input:
  path: "input/raw.csv"
  format: raw
  delimiter: ","
  column: 1
  header_rows: 1
report:
  format: json
run:
  workers: 2
  seed: 5
logging:
  level: debug
metrics:
  generation_interval: 10
  sinks:
    - type: "nop"
publisher:
  type: mqtt
  conf:
    broker: "tcp://localhost:1883"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	checks := []struct {
		name string
		got  any
		want any
	}{
		{"population_size", cfg.Optimizer.PopulationSize, 40},
		{"generations", cfg.Optimizer.Generations, 200},
		{"mutation_rate default", cfg.Optimizer.MutationRate, 0.1},
		{"required_buy_sell", cfg.Optimizer.RequiredBuySell, 3},
		{"capacity_step", cfg.Optimizer.Battery.CapacityStep, 20.0},
		{"starting_capacity", cfg.Optimizer.Battery.StartingCapacity, 40.0},
		{"window.size", cfg.Window.Size, 24},
		{"window.policy", cfg.Window.Policy, "pad"},
		{"input.format", cfg.Input.Format, "raw"},
		{"input.delimiter", cfg.Input.ExtractOptions().Delimiter, ','},
		{"input.column", cfg.Input.Column, 1},
		{"input.header_rows", cfg.Input.HeaderRows, 1},
		{"report.path default", cfg.Report.Path, "output/tradingStrategy.json"},
		{"run.workers", cfg.Run.Workers, 2},
		{"logging.level", cfg.Logging.Level, "debug"},
		{"metrics.generation_interval", cfg.Metrics.GenerationInterval, 10},
		{"metrics_sink", len(cfg.Metrics.Sinks) == 1 && cfg.Metrics.Sinks[0].Type == "nop", true},
		{"publisher.type", cfg.Publisher.Type, "mqtt"},
		{"publisher.broker", cfg.Publisher.Conf["broker"], "tcp://localhost:1883"},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s mismatch: %v", c.name, c.got)
		}
	}
	require.NotNil(t, cfg.Run.Seed)
	assert.Equal(t, uint64(5), *cfg.Run.Seed)
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, optimizer.DefaultConfig(), cfg.Optimizer)
	assert.Equal(t, 96, cfg.Window.Size)
	assert.Equal(t, "partial", cfg.Window.Policy)
	assert.Equal(t, "prices", cfg.Input.Format)
	assert.Equal(t, ';', cfg.Input.ExtractOptions().Delimiter)
	assert.Equal(t, 2, cfg.Input.Column)
	assert.Equal(t, "output/tradingStrategy.csv", cfg.Report.Path)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Nil(t, cfg.Run.Seed)
}

func TestLoad_EnvOverride(t *testing.T) {
	path := writeConfig(t, "config.json", `{"optimizer": {"population_size": 10}, "run": {"workers": 1}}`)
	t.Setenv("K_OPTIMIZER__POPULATION_SIZE", "20")
	t.Setenv("K_RUN__SEED", "42")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 20, cfg.Optimizer.PopulationSize)
	assert.Equal(t, 1, cfg.Run.Workers)
	require.NotNil(t, cfg.Run.Seed)
	assert.Equal(t, uint64(42), *cfg.Run.Seed)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
		is   error
	}{
		{"odd population", "optimizer:\n  population_size: 7\n", optimizer.ErrInvalidConfiguration},
		{"window below 2K", "window:\n  size: 10\n", optimizer.ErrInvalidConfiguration},
		{"bad policy", "window:\n  policy: wrap\n", nil},
		{"bad input format", "input:\n  format: xlsx\n", nil},
		{"bad delimiter", "input:\n  delimiter: ';;'\n", nil},
		{"bad report format", "report:\n  format: xml\n", nil},
		{"negative workers", "run:\n  workers: -1\n", nil},
		{"bad level", "logging:\n  level: loud\n", nil},
		{"negative interval", "metrics:\n  generation_interval: -5\n", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, "config.yml", tt.data))
			require.Error(t, err)
			if tt.is != nil {
				assert.True(t, errors.Is(err, tt.is), "expected %v, got %v", tt.is, err)
			}
		})
	}
}

func TestLoad_UnsupportedExtension(t *testing.T) {
	_, err := Load(writeConfig(t, "config.toml", "x = 1"))
	assert.ErrorContains(t, err, "unsupported config format")
}
