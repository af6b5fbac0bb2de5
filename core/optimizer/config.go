package optimizer

import "math"

// BatteryConfig describes the storage asset being traded. Capacity values
// share one arbitrary unit (typically percent of nameplate).
type BatteryConfig struct {
	CapacityMin      float64 `json:"capacity_min"`
	CapacityMax      float64 `json:"capacity_max"`
	CapacityStep     float64 `json:"capacity_step"`
	StartingCapacity float64 `json:"starting_capacity"`
	FeePerBuy        float64 `json:"fee_per_buy"`
}

// Config holds the search parameters for one Engine. Workers bounds the
// goroutines used by the default evaluator: 1 selects sequential evaluation,
// 0 uses GOMAXPROCS.
type Config struct {
	PopulationSize  int           `json:"population_size"`
	Generations     int           `json:"generations"`
	MutationRate    float64       `json:"mutation_rate"`
	RequiredBuySell int           `json:"required_buy_sell"`
	Workers         int           `json:"workers"`
	Battery         BatteryConfig `json:"battery"`
}

// DefaultBattery returns a 0..100 battery moving 10 units per order and
// starting at 30.
func DefaultBattery() BatteryConfig {
	return BatteryConfig{CapacityMin: 0, CapacityMax: 100, CapacityStep: 10, StartingCapacity: 30}
}

// DefaultConfig returns the parameters the optimizer was tuned with.
func DefaultConfig() Config {
	return Config{
		PopulationSize:  100,
		Generations:     500,
		MutationRate:    0.1,
		RequiredBuySell: 14,
		Battery:         DefaultBattery(),
	}
}

// SetDefaults replaces zero values with DefaultConfig values. The battery is
// only defaulted as a whole, when neither its maximum nor its step is set.
func (c *Config) SetDefaults() {
	d := DefaultConfig()
	if c.PopulationSize == 0 {
		c.PopulationSize = d.PopulationSize
	}
	if c.Generations == 0 {
		c.Generations = d.Generations
	}
	if c.MutationRate == 0 {
		c.MutationRate = d.MutationRate
	}
	if c.RequiredBuySell == 0 {
		c.RequiredBuySell = d.RequiredBuySell
	}
	if c.Battery.CapacityMax == 0 && c.Battery.CapacityStep == 0 {
		fee := c.Battery.FeePerBuy
		c.Battery = d.Battery
		c.Battery.FeePerBuy = fee
	}
}

// Validate checks the parameters against a window of the given length.
func (c Config) Validate(length int) error {
	if c.PopulationSize < 2 || c.PopulationSize%2 != 0 {
		return invalidf("population_size must be even and >= 2, got %d", c.PopulationSize)
	}
	if c.Generations < 0 {
		return invalidf("generations must be >= 0, got %d", c.Generations)
	}
	if math.IsNaN(c.MutationRate) || c.MutationRate < 0 || c.MutationRate > 1 {
		return invalidf("mutation_rate must be in [0,1], got %v", c.MutationRate)
	}
	if c.RequiredBuySell < 0 {
		return invalidf("required_buy_sell must be >= 0, got %d", c.RequiredBuySell)
	}
	if length < 2*c.RequiredBuySell {
		return invalidf("window length %d cannot hold %d buys and %d sells", length, c.RequiredBuySell, c.RequiredBuySell)
	}
	if c.Workers < 0 {
		return invalidf("workers must be >= 0, got %d", c.Workers)
	}
	return c.Battery.Validate()
}

// Validate checks the capacity bounds.
func (b BatteryConfig) Validate() error {
	if b.CapacityStep <= 0 {
		return invalidf("capacity_step must be > 0, got %v", b.CapacityStep)
	}
	if b.CapacityMin >= b.CapacityMax {
		return invalidf("capacity_min %v must be below capacity_max %v", b.CapacityMin, b.CapacityMax)
	}
	if b.StartingCapacity < b.CapacityMin || b.StartingCapacity > b.CapacityMax {
		return invalidf("starting_capacity %v outside [%v, %v]", b.StartingCapacity, b.CapacityMin, b.CapacityMax)
	}
	if b.FeePerBuy < 0 {
		return invalidf("fee_per_buy must be >= 0, got %v", b.FeePerBuy)
	}
	return nil
}
