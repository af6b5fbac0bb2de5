package model

// Schedule holds one action per time slot.
type Schedule []Action

// Count returns the number of slots carrying the given action.
func (s Schedule) Count(a Action) int {
	n := 0
	for _, v := range s {
		if v == a {
			n++
		}
	}
	return n
}

// Indices returns the slots carrying the given action, in slot order.
func (s Schedule) Indices(a Action) []int {
	idx := make([]int, 0, len(s))
	for i, v := range s {
		if v == a {
			idx = append(idx, i)
		}
	}
	return idx
}

// Clone returns a copy that shares no storage with s.
func (s Schedule) Clone() Schedule {
	if s == nil {
		return nil
	}
	cp := make(Schedule, len(s))
	copy(cp, s)
	return cp
}

// Valid reports whether the schedule holds exactly k buys and k sells.
func (s Schedule) Valid(k int) bool {
	return s.Count(ActionBuy) == k && s.Count(ActionSell) == k
}

// PriceSeries is an ordered list of spot prices aligned slot for slot with a
// Schedule.
type PriceSeries []float64
