package bill

import "math"

// SplitResult is the outcome of allocating a bill across people.
//
// Total is Subtotal+Tax+Tip and is computed independently of Results.
// When items with an empty assignment set exist their cost is dropped from
// every person's share, so the sum of Results falls short of Total. Both
// figures are exposed deliberately; conflating them hides the orphaned
// cost.
type SplitResult struct {
	Results  map[string]float64 `json:"results"`
	Subtotal float64            `json:"subtotal"`
	Tax      float64            `json:"tax"`
	Tip      float64            `json:"tip"`
	Total    float64            `json:"total"`
}

// CalculateSplit computes how much each person owes. It is a pure
// function of its arguments.
//
// Each item with a non-empty assignment set is divided equally among its
// assigned people. Tax and tip are then distributed in proportion to each
// person's share of the item subtotal. Internal computation keeps full
// float precision; rounding happens only at presentation time.
func CalculateSplit(items []Item, assignments map[string][]string, people []string, tax, tip float64) SplitResult {
	subtotals := make(map[string]float64)
	for _, item := range items {
		assigned := assignments[item.ID]
		if len(assigned) == 0 {
			// Orphaned item: its cost reaches nobody's share.
			continue
		}
		share := item.Price / float64(len(assigned))
		for _, person := range assigned {
			subtotals[person] += share
		}
	}

	var subtotalSum float64
	for _, subtotal := range subtotals {
		subtotalSum += subtotal
	}

	results := make(map[string]float64, len(people))
	for _, person := range people {
		subtotal := subtotals[person]
		var taxShare, tipShare float64
		if subtotalSum > 0 {
			taxShare = subtotal / subtotalSum * tax
			tipShare = subtotal / subtotalSum * tip
		}
		results[person] = subtotal + taxShare + tipShare
	}

	return SplitResult{
		Results:  results,
		Subtotal: subtotalSum,
		Tax:      tax,
		Tip:      tip,
		Total:    subtotalSum + tax + tip,
	}
}

// Round2 rounds to two decimals for display.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
