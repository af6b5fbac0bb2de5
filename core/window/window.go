// Package window splits a price series into fixed-size optimisation windows.
package window

import (
	"errors"
	"fmt"
	"slices"

	"github.com/kilianp07/arbitrage/core/model"
)

// Policies applied to a final window shorter than Size.
const (
	PolicyPartial = "partial"
	PolicyDrop    = "drop"
	PolicyPad     = "pad"
)

// ErrEmptySeries is returned when there is nothing to split.
var ErrEmptySeries = errors.New("empty price series")

// Config controls window size and the short-window policy.
type Config struct {
	Size   int    `json:"size"`
	Policy string `json:"policy"`
}

// SetDefaults uses one day of quarter-hour slots and keeps short windows.
func (c *Config) SetDefaults() {
	if c.Size == 0 {
		c.Size = 96
	}
	if c.Policy == "" {
		c.Policy = PolicyPartial
	}
}

// Validate checks mandatory fields.
func (c Config) Validate() error {
	if c.Size <= 0 {
		return fmt.Errorf("window size must be > 0, got %d", c.Size)
	}
	switch c.Policy {
	case PolicyPartial, PolicyDrop, PolicyPad:
		return nil
	}
	return fmt.Errorf("unknown window policy %s", c.Policy)
}

// Window is a contiguous slice of the series. Start is the offset of its
// first slot in the full series.
type Window struct {
	Index  int
	Start  int
	Prices model.PriceSeries
}

// Split cuts prices into consecutive windows of cfg.Size slots. Every window
// owns a copy of its prices. A padded window repeats the last observed price.
func Split(prices model.PriceSeries, cfg Config) ([]Window, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(prices) == 0 {
		return nil, ErrEmptySeries
	}
	windows := make([]Window, 0, (len(prices)+cfg.Size-1)/cfg.Size)
	for start := 0; start < len(prices); start += cfg.Size {
		end := min(start+cfg.Size, len(prices))
		w := Window{Index: len(windows), Start: start, Prices: slices.Clone(prices[start:end])}
		if len(w.Prices) < cfg.Size {
			switch cfg.Policy {
			case PolicyDrop:
				continue
			case PolicyPad:
				last := w.Prices[len(w.Prices)-1]
				for len(w.Prices) < cfg.Size {
					w.Prices = append(w.Prices, last)
				}
			}
		}
		windows = append(windows, w)
	}
	return windows, nil
}
