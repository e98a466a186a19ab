package sheet

import "math"

// Recompute refreshes the derived totals from the raw cells, in place.
// Daily totals are reset to zero first, then each day sums across all
// work types in fixed order. Missing work types, missing day keys and
// NaN cells contribute zero rather than failing; callers that care
// about shape run Validate first.
//
// Idempotent: recomputing unchanged raw data yields identical totals.
func Recompute(e *Entry) {
	totals := zeroTotals()
	for _, d := range Days {
		var sum float64
		for _, wt := range WorkTypes {
			v := e.WorkTypes[wt][d]
			if math.IsNaN(v) {
				continue
			}
			sum += v
		}
		totals.Daily[d] = sum
		totals.Week += sum
	}
	e.Totals = totals
}
