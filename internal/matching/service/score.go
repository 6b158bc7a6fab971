package service

import "github.com/pmezard/go-difflib/difflib"

// Scorer rates two normalized keys in [0, 1].
type Scorer func(a, b string) float64

// Ratio is 2*M/T where M is the number of runes in the matching blocks found by
// longest-block matching and T is the total rune count of both keys.
// The pair is ordered before matching so Ratio(a, b) == Ratio(b, a).
func Ratio(a, b string) float64 {
	if a == b {
		return 1
	}
	if b < a {
		a, b = b, a
	}
	m := difflib.NewMatcherWithJunk(splitRunes(a), splitRunes(b), false, nil)
	return m.Ratio()
}

func splitRunes(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}
