package equalize

import (
	"sort"

	"github.com/cbegin/mmlfix/internal/diag"
	"github.com/cbegin/mmlfix/internal/mml"
	"github.com/cbegin/mmlfix/internal/tempo"
)

// Exponential raises short tracks by repeatedly halving one event at a
// time (c4 -> c8&c8 -> c16&c16&c16&c16) while the doubled count still fits.
// It leaves every other token of the track as written.
func Exponential(tracks []mml.Track, segments []tempo.Segment, opts Options, log *diag.Log) ([]mml.Track, Report) {
	if opts.MaxIterations <= 0 {
		opts = DefaultOptions()
	}
	out := make([]mml.Track, len(tracks))
	copy(out, tracks)
	var rep Report
	for si, seg := range equalizable(segments) {
		target := seg.Target()
		for ti := range out {
			out[ti] = exponentialTrack(out[ti], ti, si, seg, target, opts, &rep, log)
		}
	}
	return out, rep
}

func exponentialTrack(tr mml.Track, ti, si int, seg tempo.Segment, target int, opts Options, rep *Report, log *diag.Log) mml.Track {
	current := tr.CountSounding(seg.Start, seg.End)
	for iter := 0; current < target; iter++ {
		if iter >= opts.MaxIterations {
			log.Errorf("track %d, segment %d: gave up after %d iterations (%d of %d)", ti+1, si+1, iter, current, target)
			rep.short(ti, si, seg, current)
			return tr
		}
		pool := splittableIn(tr, seg)
		if len(pool) == 0 {
			log.Warnf("track %d, segment %d: no splittable notes left (%d of %d)", ti+1, si+1, current, target)
			rep.short(ti, si, seg, current)
			return tr
		}
		at := pickExponential(tr, pool)

		group := []mml.Token{tr[at]}
		added := 0
		for {
			events := countSounding(group)
			if current+added+events > target || !Splittable(group[0]) {
				break
			}
			next := make([]mml.Token, 0, 2*len(group))
			for _, tok := range group {
				if tok.Kind == mml.TokenTie {
					next = append(next, tok)
					continue
				}
				parts, _ := Split(tok)
				next = append(next, parts...)
			}
			group = mml.Annotate(next)
			added += events
			rep.Splits += events
		}
		tr = tr.Splice(at, 1, group...)
		current = tr.CountSounding(seg.Start, seg.End)
	}
	return tr
}

// pickExponential prefers rests, then natural notes, then notes with an
// accidental, longest first within each class.
func pickExponential(tr mml.Track, pool []int) int {
	class := func(tok mml.Token) int {
		switch {
		case tok.Kind == mml.TokenRest:
			return 0
		case !tok.HasAccidental():
			return 1
		default:
			return 2
		}
	}
	ordered := make([]int, len(pool))
	copy(ordered, pool)
	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := tr[ordered[i]], tr[ordered[j]]
		if class(a) != class(b) {
			return class(a) < class(b)
		}
		return a.Duration > b.Duration
	})
	return ordered[0]
}

func countSounding(tokens []mml.Token) int {
	n := 0
	for _, tok := range tokens {
		if tok.Sounding() {
			n++
		}
	}
	return n
}
