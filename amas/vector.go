package amas

import (
	"cmp"
	"slices"
)

// CompareVectors orders two criticality bags by the lex-min-max rule: both
// are viewed in descending order and compared element-wise, so the first
// difference between the largest criticalities decides, then the next
// largest, and so on. Returns <0 when u is preferable to v, >0 when worse,
// 0 when equal.
//
// If one bag exhausts before a difference is found the bags compare equal.
// In practice both bags always describe the same neighborhood and therefore
// have the same length; the lenient rule keeps the comparison total instead
// of guessing at shorter-vs-longer semantics.
func CompareVectors[C cmp.Ordered](u, v []C) int {
	du := descending(u)
	dv := descending(v)

	n := len(du)
	if len(dv) < n {
		n = len(dv)
	}
	for i := 0; i < n; i++ {
		if c := cmp.Compare(du[i], dv[i]); c != 0 {
			return c
		}
	}
	return 0
}

// descending returns a sorted copy, largest first. The input is not touched;
// callers hand over bags they may still be using.
func descending[C cmp.Ordered](vals []C) []C {
	sorted := make([]C, len(vals))
	copy(sorted, vals)
	slices.SortFunc(sorted, func(a, b C) int { return cmp.Compare(b, a) })
	return sorted
}
