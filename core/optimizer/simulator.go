package optimizer

import "github.com/kilianp07/arbitrage/core/model"

// Simulator replays schedules against prices while tracking battery capacity.
// It holds no mutable state and is safe for concurrent use.
type Simulator struct {
	battery BatteryConfig
}

// NewSimulator returns a Simulator for the given battery.
func NewSimulator(b BatteryConfig) Simulator {
	return Simulator{battery: b}
}

// Profit returns the total profit of the schedule. prices must be at least as
// long as the schedule. It performs no allocation and is used as the fitness
// function.
func (s Simulator) Profit(schedule model.Schedule, prices model.PriceSeries) float64 {
	b := s.battery
	buyLimit := b.CapacityMax - b.CapacityStep
	sellLimit := b.CapacityMin + b.CapacityStep
	capacity := b.StartingCapacity
	profit := 0.0
	for i, a := range schedule {
		if a == model.ActionBuy && capacity <= buyLimit {
			capacity += b.CapacityStep
			profit -= prices[i] + b.FeePerBuy
		} else if a == model.ActionSell && capacity >= sellLimit {
			capacity -= b.CapacityStep
			profit += prices[i]
		}
	}
	return profit
}

// Simulate replays the schedule and records the battery state after every
// slot. An action that would leave the capacity bounds is kept in the
// transcript but has no effect.
func (s Simulator) Simulate(schedule model.Schedule, prices model.PriceSeries) model.SimulationResult {
	b := s.battery
	buyLimit := b.CapacityMax - b.CapacityStep
	sellLimit := b.CapacityMin + b.CapacityStep
	capacity := b.StartingCapacity
	profit := 0.0
	transcript := make([]model.SlotRecord, len(schedule))
	for i, a := range schedule {
		if a == model.ActionBuy && capacity <= buyLimit {
			capacity += b.CapacityStep
			profit -= prices[i] + b.FeePerBuy
		} else if a == model.ActionSell && capacity >= sellLimit {
			capacity -= b.CapacityStep
			profit += prices[i]
		}
		transcript[i] = model.SlotRecord{Price: prices[i], Action: a, Capacity: capacity, Profit: profit}
	}
	return model.SimulationResult{Profit: profit, Transcript: transcript}
}
