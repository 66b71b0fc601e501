// Package dice provides the randomness abstraction shared by gem generation,
// crafting rolls, and battle resolution.
package dice

// Source is the randomness provider for every draw in the game core.
//
// Implementations used by a single battle or crafting session need not be safe
// for concurrent use; the crypto source is.
type Source interface {
	// Intn returns a non-negative random int in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int
}

// Between returns a uniformly drawn int in [min, max).
//
// Precondition: max > min.
// Postcondition: min <= result < max.
func Between(src Source, min, max int) int {
	return min + src.Intn(max-min)
}

// Percent returns a roll in [0, 100).
//
// Postcondition: 0 <= result < 100.
func Percent(src Source) int {
	return src.Intn(100)
}

// Chance reports whether a roll in [0, 100) lands below pct.
// A pct of 100 or more always succeeds; 0 or less never does.
func Chance(src Source, pct float64) bool {
	if pct >= 100 {
		return true
	}
	if pct <= 0 {
		return false
	}
	return float64(Percent(src)) < pct
}

// Pick returns a uniformly chosen index into a collection of length n.
//
// Precondition: n > 0.
func Pick(src Source, n int) int {
	return src.Intn(n)
}
