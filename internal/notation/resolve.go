// Package notation finds the shortest tied spelling of an arbitrary tick
// duration using the note lengths a player can write.
package notation

import (
	"sort"

	"github.com/cbegin/mmlfix/internal/mml"
)

// Fragment is one tied piece of a resolved duration.
type Fragment struct {
	Length   int
	Dotted   bool
	Ticks    int
	Priority int
	Notation string
}

// Priority 2 for lengths that divide a whole note into a power of two, 1 for
// other divisors of WholeTicks, 0 for everything else.
func priority(n int) int {
	if n&(n-1) == 0 {
		return 2
	}
	if mml.WholeTicks%n == 0 {
		return 1
	}
	return 0
}

// candidates holds one Fragment per distinct tick value, sorted by tick
// descending. Colliding lengths keep the highest priority, then the shortest
// notation, then the larger denominator.
var candidates = buildCandidates()

func buildCandidates() []Fragment {
	byTicks := map[int]Fragment{}
	for n := 1; n <= mml.MaxDenominator; n++ {
		for _, dotted := range []bool{false, true} {
			f := Fragment{
				Length:   n,
				Dotted:   dotted,
				Ticks:    mml.Ticks(n, dotted),
				Priority: priority(n),
				Notation: mml.LengthKey(n, dotted),
			}
			cur, ok := byTicks[f.Ticks]
			if !ok || preferFragment(f, cur) {
				byTicks[f.Ticks] = f
			}
		}
	}
	out := make([]Fragment, 0, len(byTicks))
	for _, f := range byTicks {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Ticks > out[j].Ticks })
	return out
}

func preferFragment(a, b Fragment) bool {
	if a.Priority != b.Priority {
		return a.Priority > b.Priority
	}
	if len(a.Notation) != len(b.Notation) {
		return len(a.Notation) < len(b.Notation)
	}
	return a.Length > b.Length
}

type solution struct {
	ok       bool
	count    int
	priority int
	text     int
	hi, lo   int
	prev     int
	frag     int
}

func (s solution) spread() int {
	if s.count < 2 {
		return 0
	}
	return s.hi - s.lo
}

// better reports whether a is strictly better than b: fewer fragments,
// then higher priority sum, then shorter notation, then a narrower spread of
// denominators.
func better(a, b solution) bool {
	if !b.ok {
		return true
	}
	if a.count != b.count {
		return a.count < b.count
	}
	if a.priority != b.priority {
		return a.priority > b.priority
	}
	if a.text != b.text {
		return a.text < b.text
	}
	return a.spread() < b.spread()
}

// Resolve splits ticks into fragments whose durations sum exactly to ticks.
// It reports false when no combination exists (ticks 1 to 5) or ticks <= 0.
func Resolve(ticks int) ([]Fragment, bool) {
	if ticks <= 0 {
		return nil, false
	}
	dp := make([]solution, ticks+1)
	dp[0] = solution{ok: true, prev: -1, frag: -1}
	for i := 1; i <= ticks; i++ {
		for k, f := range candidates {
			if f.Ticks > i || !dp[i-f.Ticks].ok {
				continue
			}
			p := dp[i-f.Ticks]
			next := solution{
				ok:       true,
				count:    p.count + 1,
				priority: p.priority + f.Priority,
				text:     p.text + len(f.Notation),
				hi:       f.Length,
				lo:       f.Length,
				prev:     i - f.Ticks,
				frag:     k,
			}
			if p.count > 0 {
				next.hi = max(p.hi, f.Length)
				next.lo = min(p.lo, f.Length)
			}
			if better(next, dp[i]) {
				dp[i] = next
			}
		}
	}
	if !dp[ticks].ok {
		return nil, false
	}
	out := make([]Fragment, dp[ticks].count)
	for i, at := len(out)-1, ticks; at > 0; i, at = i-1, dp[at].prev {
		out[i] = candidates[dp[at].frag]
	}
	return out, true
}

// Notation joins the fragment lengths for display, e.g. "4&16".
func Notation(frags []Fragment) string {
	s := ""
	for i, f := range frags {
		if i > 0 {
			s += "&"
		}
		s += f.Notation
	}
	return s
}
