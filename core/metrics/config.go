package metrics

import (
	"fmt"

	"github.com/kilianp07/arbitrage/core/factory"
)

// Config defines settings for metrics sinks.
type Config struct {
	Sinks []factory.ModuleConfig `json:"sinks"`
	// PrometheusAddr, when set, exposes /metrics on that address for the
	// lifetime of the run.
	PrometheusAddr string `json:"prometheus_addr"`
	// GenerationInterval samples one GenerationEvent every N generations.
	// Zero disables generation events.
	GenerationInterval int `json:"generation_interval"`
}

// Validate checks the metrics configuration.
func (c Config) Validate() error {
	if c.GenerationInterval < 0 {
		return fmt.Errorf("metrics: generation_interval must be >= 0, got %d", c.GenerationInterval)
	}
	for i, s := range c.Sinks {
		if s.Type == "" {
			return fmt.Errorf("metrics: sink %d has no type", i)
		}
	}
	return nil
}
