package optimizer

import (
	"math/rand/v2"

	"github.com/kilianp07/arbitrage/core/model"
)

// NewSchedule draws a random schedule of the given length holding exactly k
// buys and k sells. Buy slots are drawn uniformly without replacement, sell
// slots likewise from the remaining positions.
func NewSchedule(rng *rand.Rand, length, k int) (model.Schedule, error) {
	if k < 0 || length < 2*k {
		return nil, invalidf("cannot place %d buys and %d sells in %d slots", k, k, length)
	}
	s := make(model.Schedule, length)
	perm := rng.Perm(length)
	for _, i := range perm[:k] {
		s[i] = model.ActionBuy
	}
	for _, i := range perm[k : 2*k] {
		s[i] = model.ActionSell
	}
	return s, nil
}
