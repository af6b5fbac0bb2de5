package optimizer

import "github.com/kilianp07/arbitrage/core/model"

// Baseline returns the naive schedule that buys on even slots and sells on
// the following odd slot for the first k pairs, leaving the rest idle. Its
// profit is a reference point for the searched schedule.
func Baseline(length, k int) (model.Schedule, error) {
	if k < 0 || length < 2*k {
		return nil, invalidf("cannot place %d buys and %d sells in %d slots", k, k, length)
	}
	s := make(model.Schedule, length)
	for i := 0; i < k; i++ {
		s[2*i] = model.ActionBuy
		s[2*i+1] = model.ActionSell
	}
	return s, nil
}
