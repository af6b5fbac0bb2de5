package optimizer

import (
	"math/rand/v2"

	"github.com/kilianp07/arbitrage/core/model"
)

// Mutate moves, with probability rate, one randomly chosen buy or sell to a
// random idle slot. The move is skipped when the schedule has no idle slot.
// The result always goes through Repair. s is modified in place and returned.
func Mutate(rng *rand.Rand, s model.Schedule, rate float64, k int) model.Schedule {
	if rng.Float64() < rate {
		idle := s.Indices(model.ActionNone)
		if len(idle) > 0 {
			kind := model.ActionBuy
			if rng.IntN(2) == 1 {
				kind = model.ActionSell
			}
			if held := s.Indices(kind); len(held) > 0 {
				to := idle[rng.IntN(len(idle))]
				s[held[rng.IntN(len(held))]] = model.ActionNone
				s[to] = kind
			}
		}
	}
	return Repair(rng, s, k)
}
