package optimizer

import (
	"cmp"
	"context"
	"math/rand/v2"
	"slices"

	"github.com/kilianp07/arbitrage/core/model"
)

// Engine runs the generational search over one price window.
type Engine struct {
	cfg      Config
	prices   model.PriceSeries
	sim      Simulator
	eval     Evaluator
	rng      *rand.Rand
	observer Observer
}

// Option customises an Engine.
type Option func(*Engine)

// WithRand sets the random source. The Engine takes ownership of r.
func WithRand(r *rand.Rand) Option {
	return func(e *Engine) { e.rng = r }
}

// WithSeed seeds a dedicated PCG source so runs are reproducible.
func WithSeed(seed uint64) Option {
	return func(e *Engine) { e.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)) }
}

// WithEvaluator replaces the evaluator chosen from Config.Workers.
func WithEvaluator(ev Evaluator) Option {
	return func(e *Engine) { e.eval = ev }
}

// WithObserver registers a callback fed after every Evaluate step.
func WithObserver(o Observer) Option {
	return func(e *Engine) { e.observer = o }
}

// Result is the best schedule found and its replay.
type Result struct {
	Best       model.Schedule
	Profit     float64
	Transcript []model.SlotRecord
	Buys       int
	Sells      int
	History    []GenerationStats
}

// New validates cfg against the window and builds an Engine. Configuration
// problems are reported here, before any generation runs, as errors wrapping
// ErrInvalidConfiguration.
func New(cfg Config, prices model.PriceSeries, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(len(prices)); err != nil {
		return nil, err
	}
	e := &Engine{
		cfg:    cfg,
		prices: slices.Clone(prices),
		sim:    NewSimulator(cfg.Battery),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.rng == nil {
		e.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if e.eval == nil {
		if cfg.Workers == 1 {
			e.eval = NewSequentialEvaluator(e.sim)
		} else {
			e.eval = NewParallelEvaluator(e.sim, cfg.Workers)
		}
	}
	return e, nil
}

// Simulator returns the simulator used as fitness function.
func (e *Engine) Simulator() Simulator { return e.sim }

// Run executes exactly Config.Generations generations and returns the best
// schedule of the final population. ctx is only checked between generations.
func (e *Engine) Run(ctx context.Context) (*Result, error) {
	pop, err := e.initialPopulation()
	if err != nil {
		return nil, err
	}
	history := make([]GenerationStats, 0, e.cfg.Generations)
	for gen := 0; gen < e.cfg.Generations; gen++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		fitness := e.eval.Evaluate(pop, e.prices)
		st := summarize(gen, fitness)
		history = append(history, st)
		if e.observer != nil {
			e.observer.OnGeneration(st)
		}
		pop = e.reproduce(pop, rank(fitness))
	}

	fitness := e.eval.Evaluate(pop, e.prices)
	best := 0
	for i, f := range fitness {
		if f > fitness[best] {
			best = i
		}
	}
	res := e.sim.Simulate(pop[best], e.prices)
	return &Result{
		Best:       pop[best].Clone(),
		Profit:     res.Profit,
		Transcript: res.Transcript,
		Buys:       pop[best].Count(model.ActionBuy),
		Sells:      pop[best].Count(model.ActionSell),
		History:    history,
	}, nil
}

func (e *Engine) initialPopulation() ([]model.Schedule, error) {
	pop := make([]model.Schedule, e.cfg.PopulationSize)
	for i := range pop {
		s, err := NewSchedule(e.rng, len(e.prices), e.cfg.RequiredBuySell)
		if err != nil {
			return nil, err
		}
		pop[i] = s
	}
	return pop, nil
}

// rank returns population indices ordered by descending fitness. The sort is
// stable: equal fitness keeps the previous order.
func rank(fitness []float64) []int {
	order := make([]int, len(fitness))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		return cmp.Compare(fitness[b], fitness[a])
	})
	return order
}

// reproduce keeps the top half verbatim and fills the rest with mutated
// children of parents drawn with replacement from that half.
func (e *Engine) reproduce(pop []model.Schedule, order []int) []model.Schedule {
	n := len(pop)
	elite := n / 2
	k := e.cfg.RequiredBuySell
	next := make([]model.Schedule, 0, n)
	for _, i := range order[:elite] {
		next = append(next, pop[i])
	}
	for len(next) < n {
		p1 := next[e.rng.IntN(elite)]
		p2 := next[e.rng.IntN(elite)]
		a, b := Crossover(e.rng, p1, p2, k)
		next = append(next, Mutate(e.rng, a, e.cfg.MutationRate, k))
		if len(next) < n {
			next = append(next, Mutate(e.rng, b, e.cfg.MutationRate, k))
		}
	}
	return next
}
