package model

import "time"

// SlotRecord is the battery state observed after one slot was simulated.
// Action is the action that was requested, whether or not it took effect.
type SlotRecord struct {
	Price    float64 `json:"price"`
	Action   Action  `json:"action"`
	Capacity float64 `json:"capacity"`
	Profit   float64 `json:"profit"`
}

// SimulationResult is the outcome of replaying a schedule against prices.
type SimulationResult struct {
	Profit     float64      `json:"profit"`
	Transcript []SlotRecord `json:"transcript"`
}

// WindowResult captures the optimisation outcome of one price window.
type WindowResult struct {
	RunID       string        `json:"run_id"`
	Index       int           `json:"window"`
	Start       int           `json:"start"`
	Length      int           `json:"length"`
	Profit      float64       `json:"profit"`
	Buys        int           `json:"buys"`
	Sells       int           `json:"sells"`
	Baseline    float64       `json:"baseline"`
	Generations int           `json:"generations"`
	Schedule    Schedule      `json:"schedule,omitempty"`
	Transcript  []SlotRecord  `json:"transcript,omitempty"`
	Duration    time.Duration `json:"duration"`
	Err         string        `json:"error,omitempty"`
	Time        time.Time     `json:"time"`
}

// Failed reports whether the window could not be optimised.
func (r WindowResult) Failed() bool { return r.Err != "" }
