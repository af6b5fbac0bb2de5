package optimizer

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// GenerationStats summarises the fitness of one evaluated generation.
type GenerationStats struct {
	Generation int     `json:"generation"`
	Best       float64 `json:"best"`
	Mean       float64 `json:"mean"`
	Worst      float64 `json:"worst"`
	StdDev     float64 `json:"std_dev"`
}

// Observer receives generation statistics while an Engine runs. It is called
// on the goroutine running the Engine, between generations.
type Observer interface {
	OnGeneration(GenerationStats)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(GenerationStats)

// OnGeneration calls f.
func (f ObserverFunc) OnGeneration(s GenerationStats) { f(s) }

func summarize(gen int, fitness []float64) GenerationStats {
	st := GenerationStats{
		Generation: gen,
		Best:       floats.Max(fitness),
		Worst:      floats.Min(fitness),
		Mean:       stat.Mean(fitness, nil),
	}
	if len(fitness) > 1 {
		st.StdDev = stat.StdDev(fitness, nil)
	}
	return st
}
