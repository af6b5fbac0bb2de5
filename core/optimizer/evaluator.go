package optimizer

import (
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/kilianp07/arbitrage/core/model"
)

// Evaluator computes the fitness of every schedule in a population. The
// returned slice is index-aligned with pop.
type Evaluator interface {
	Evaluate(pop []model.Schedule, prices model.PriceSeries) []float64
}

// SequentialEvaluator scores schedules one after another.
type SequentialEvaluator struct {
	Sim Simulator
}

// NewSequentialEvaluator returns an evaluator running on the caller's goroutine.
func NewSequentialEvaluator(sim Simulator) *SequentialEvaluator {
	return &SequentialEvaluator{Sim: sim}
}

// Evaluate implements Evaluator.
func (e *SequentialEvaluator) Evaluate(pop []model.Schedule, prices model.PriceSeries) []float64 {
	fitness := make([]float64, len(pop))
	for i, s := range pop {
		fitness[i] = e.Sim.Profit(s, prices)
	}
	return fitness
}

// ParallelEvaluator splits the population into contiguous chunks scored on
// separate goroutines. Each goroutine writes only its own indices, so no
// locking is needed.
type ParallelEvaluator struct {
	Sim     Simulator
	Workers int
}

// NewParallelEvaluator returns an evaluator using up to workers goroutines.
// A non-positive value selects GOMAXPROCS.
func NewParallelEvaluator(sim Simulator, workers int) *ParallelEvaluator {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &ParallelEvaluator{Sim: sim, Workers: workers}
}

// Evaluate implements Evaluator.
func (e *ParallelEvaluator) Evaluate(pop []model.Schedule, prices model.PriceSeries) []float64 {
	fitness := make([]float64, len(pop))
	workers := e.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > len(pop) {
		workers = len(pop)
	}
	if workers <= 1 {
		for i, s := range pop {
			fitness[i] = e.Sim.Profit(s, prices)
		}
		return fitness
	}
	chunk := (len(pop) + workers - 1) / workers
	var g errgroup.Group
	for start := 0; start < len(pop); start += chunk {
		end := min(start+chunk, len(pop))
		g.Go(func() error {
			for i := start; i < end; i++ {
				fitness[i] = e.Sim.Profit(pop[i], prices)
			}
			return nil
		})
	}
	_ = g.Wait()
	return fitness
}
