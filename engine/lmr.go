package engine

import "math"

// lmrReduction[n] is the depth reduction for the n-th move searched at a
// node, floor(sqrt(n-1)). It never decreases as n grows.
var lmrReduction = func() (r [256]int) {
	for n := 2; n < len(r); n++ {
		r[n] = int(math.Sqrt(float64(n - 1)))
	}
	return r
}()

// lateMoveReduction returns the reduction for moveNumber (1-based) at depth,
// clamped so the reduced child is searched at depth 1 or more.
func lateMoveReduction(depth, moveNumber int) int {
	r := lmrReduction[Min(moveNumber, len(lmrReduction)-1)]
	return Clamp(r, 0, Max(depth-2, 0))
}
