package optimizer

import (
	"math/rand/v2"
	"testing"

	"github.com/kilianp07/arbitrage/core/model"
)

func newRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed+1))
}

// randomSchedule returns a schedule with arbitrary action counts.
func randomSchedule(rng *rand.Rand, length int) model.Schedule {
	s := make(model.Schedule, length)
	for i := range s {
		s[i] = model.Action(rng.IntN(3))
	}
	return s
}

func assertValid(t *testing.T, s model.Schedule, length, k int) {
	t.Helper()
	if len(s) != length {
		t.Fatalf("length %d, want %d", len(s), length)
	}
	if b, sl := s.Count(model.ActionBuy), s.Count(model.ActionSell); b != k || sl != k {
		t.Fatalf("got %d buys and %d sells, want %d each", b, sl, k)
	}
}
