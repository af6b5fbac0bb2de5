package optimizer

import (
	"fmt"
	"math/rand/v2"

	"github.com/kilianp07/arbitrage/core/model"
)

// Crossover performs single-point recombination at a random cut c in
// [0, len). The first child takes p1[:c] and p2[c:], the second p2[:c] and
// p1[c:]. Both children are freshly allocated and repaired; the parents are
// left untouched.
func Crossover(rng *rand.Rand, p1, p2 model.Schedule, k int) (model.Schedule, model.Schedule) {
	n := len(p1)
	if len(p2) != n {
		panic(&InvariantViolation{Op: "crossover", Detail: fmt.Sprintf("parent lengths differ: %d and %d", n, len(p2))})
	}
	c := 0
	if n > 0 {
		c = rng.IntN(n)
	}
	a := make(model.Schedule, n)
	b := make(model.Schedule, n)
	copy(a, p1[:c])
	copy(a[c:], p2[c:])
	copy(b, p2[:c])
	copy(b[c:], p1[c:])
	return Repair(rng, a, k), Repair(rng, b, k)
}
