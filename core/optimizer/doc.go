// Package optimizer searches for a battery buy/sell schedule that maximises
// trading profit over a window of spot prices.
//
// The search is a generational genetic algorithm. A schedule holds one action
// per slot and always carries exactly K buys and K sells; every operator that
// can break that count (crossover, mutation) hands its output to Repair before
// returning it. Fitness is the profit reported by Simulator, which replays the
// schedule against the prices while tracking battery capacity, so an action
// that would push capacity out of bounds silently has no effect.
//
// An Engine owns its random source and population. Independent engines may
// run concurrently; a single engine must not be shared between goroutines.
package optimizer
