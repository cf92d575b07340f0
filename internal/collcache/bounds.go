package collcache

import "math"

// Bounds is a half-open window [Start, End) of positions.
type Bounds struct {
	Start int
	End   int
}

// Invalid is the window that contains no position, not even after being
// shifted by reconciliation.
var Invalid = Bounds{Start: math.MaxInt, End: -1}

// Contains reports whether pos lies in the window.
func (b Bounds) Contains(pos int) bool {
	return pos >= b.Start && pos < b.End
}

// Valid reports whether the window is materialized.
func (b Bounds) Valid() bool {
	return b.Start <= b.End
}

// Len returns the number of positions in the window.
func (b Bounds) Len() int {
	if !b.Valid() {
		return 0
	}
	return b.End - b.Start
}

// around returns the window of radius r centred on pos, clamped to [0, n).
func around(pos, r, n int) Bounds {
	return Bounds{Start: max(pos-r, 0), End: min(pos+r, n)}
}
