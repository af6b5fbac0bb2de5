package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/arbitrage/core/factory"
	"github.com/kilianp07/arbitrage/core/metrics"
	"github.com/kilianp07/arbitrage/core/optimizer"
	"github.com/kilianp07/arbitrage/core/window"
)

// EnvPrefix marks environment variables that override file settings.
// Nested keys are separated by a double underscore, e.g.
// K_OPTIMIZER__POPULATION_SIZE=200.
const EnvPrefix = "K_"

type Config struct {
	Optimizer optimizer.Config     `json:"optimizer"`
	Window    window.Config        `json:"window"`
	Input     InputConfig          `json:"input"`
	Report    ReportConfig         `json:"report"`
	Run       RunConfig            `json:"run"`
	Logging   LoggingConfig        `json:"logging"`
	Metrics   metrics.Config       `json:"metrics"`
	Publisher factory.ModuleConfig `json:"publisher"`
}

// Load reads the configuration file at path, applies environment overrides,
// fills defaults and validates every section. An empty path loads defaults
// and environment overrides only.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	if path != "" {
		ext := strings.ToLower(filepath.Ext(path))
		var parser koanf.Parser
		switch ext {
		case ".yaml", ".yml":
			parser = yaml.Parser()
		case ".json":
			parser = json.Parser()
		default:
			return nil, fmt.Errorf("unsupported config format: %s", ext)
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, err
		}
	}
	// Optional environment overrides
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SetDefaults fills unset values in every section.
func (c *Config) SetDefaults() {
	c.Optimizer.SetDefaults()
	c.Window.SetDefaults()
	c.Input.SetDefaults()
	c.Report.SetDefaults()
	c.Logging.SetDefaults()
}

// Validate checks every section. The optimizer is checked against a full
// window; a shorter trailing window is rejected per window at run time.
func (c Config) Validate() error {
	if err := c.Window.Validate(); err != nil {
		return err
	}
	if err := c.Optimizer.Validate(c.Window.Size); err != nil {
		return err
	}
	if err := c.Input.Validate(); err != nil {
		return err
	}
	if err := c.Report.Validate(); err != nil {
		return err
	}
	if err := c.Run.Validate(); err != nil {
		return err
	}
	if err := c.Logging.Validate(); err != nil {
		return err
	}
	return c.Metrics.Validate()
}
