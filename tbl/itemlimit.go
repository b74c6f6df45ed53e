package tbl

import (
	"math"
	"strconv"
)

// Unlimited the terminal step of the item limit ladder
const Unlimited = math.MaxInt32

// itemLimitLadder the enumerated "show more" steps. Clicking the control
// raises the limit to the next step, never to an arbitrary count.
var itemLimitLadder = []int{50, 500, Unlimited}

// ItemLimitConfig enables the item-limiting sub-protocol on a table. The
// current limit is a component state item held server-side and round-tripped
// with the page; the "show more" control is an intermediate post-back wired
// into the item-limiting tail update region, so only the newly revealed rows
// plus the control are replaced.
type ItemLimitConfig struct {
	// Default the starting limit, normally a ladder step
	Default int
}

// nextLimit the smallest ladder step above current
func nextLimit(current int) int {
	for _, step := range itemLimitLadder {
		if step > current {
			return step
		}
	}
	return Unlimited
}

// limitFromState a state item value arrives as a JSON number
func limitFromState(value interface{}) int {
	switch v := value.(type) {
	case int:
		return v
	case float64:
		return int(v)
	case string:
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return Unlimited
}

// validLimit rejects snapshot values outside the ladder
func validLimit(value interface{}) bool {
	limit := limitFromState(value)
	for _, step := range itemLimitLadder {
		if limit == step {
			return true
		}
	}
	return false
}
