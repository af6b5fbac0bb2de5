package optimizer

import (
	"fmt"
	"math/rand/v2"

	"github.com/kilianp07/arbitrage/core/model"
)

// Repair restores exactly k buys and k sells in s and returns it. Surplus
// actions are cleared first, then missing ones are placed on random idle
// slots, so a schedule of length 2k always has enough idle slots to fill. A
// schedule that already holds the right counts is returned untouched.
//
// Repair panics with *InvariantViolation when the counts cannot be reached,
// which only happens when len(s) < 2k.
func Repair(rng *rand.Rand, s model.Schedule, k int) model.Schedule {
	buys := s.Indices(model.ActionBuy)
	sells := s.Indices(model.ActionSell)
	if len(buys) == k && len(sells) == k {
		return s
	}
	buys = trim(rng, s, buys, k)
	sells = trim(rng, s, sells, k)
	idle := s.Indices(model.ActionNone)
	idle = fill(rng, s, model.ActionBuy, len(buys), k, idle)
	fill(rng, s, model.ActionSell, len(sells), k, idle)
	return s
}

// trim clears random entries of held until k remain.
func trim(rng *rand.Rand, s model.Schedule, held []int, k int) []int {
	for n := 0; len(held) > k; n++ {
		if n >= len(s) {
			panic(&InvariantViolation{Op: "repair", Detail: fmt.Sprintf("%d actions left after %d removals", len(held), n)})
		}
		j := rng.IntN(len(held))
		s[held[j]] = model.ActionNone
		held[j] = held[len(held)-1]
		held = held[:len(held)-1]
	}
	return held
}

// fill places action a on random idle slots until have reaches k and returns
// the idle slots still free.
func fill(rng *rand.Rand, s model.Schedule, a model.Action, have, k int, idle []int) []int {
	for n := 0; have < k; n++ {
		if n >= len(s) || len(idle) == 0 {
			panic(&InvariantViolation{Op: "repair", Detail: fmt.Sprintf("%s count %d of %d with no idle slot left", a, have, k)})
		}
		j := rng.IntN(len(idle))
		s[idle[j]] = a
		idle[j] = idle[len(idle)-1]
		idle = idle[:len(idle)-1]
		have++
	}
	return idle
}
