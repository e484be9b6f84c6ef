package equalize

import (
	"github.com/cbegin/mmlfix/internal/diag"
	"github.com/cbegin/mmlfix/internal/mml"
	"github.com/cbegin/mmlfix/internal/tempo"
)

// Group raises short tracks by splitting runs of same-length events
// together, so the split notes can later share one l command. Tracks should
// have their default lengths expanded first.
func Group(tracks []mml.Track, segments []tempo.Segment, log *diag.Log) ([]mml.Track, Report) {
	out := make([]mml.Track, len(tracks))
	copy(out, tracks)
	var rep Report
	for si, seg := range equalizable(segments) {
		target := seg.Target()
		for ti := range out {
			out[ti] = groupTrack(out[ti], ti, si, seg, target, &rep, log)
		}
	}
	return out, rep
}

func groupTrack(tr mml.Track, ti, si int, seg tempo.Segment, target int, rep *Report, log *diag.Log) mml.Track {
	current := tr.CountSounding(seg.Start, seg.End)
	for current < target {
		pool := splittableIn(tr, seg)
		if len(pool) == 0 {
			log.Warnf("track %d, segment %d: no splittable notes left (%d of %d)", ti+1, si+1, current, target)
			rep.short(ti, si, seg, current)
			return tr
		}
		pool = preferRests(tr, pool)
		need := target - current

		if best := pickGroup(tr, runs(tr, pool), need); best != nil {
			for k := len(best) - 1; k >= 0; k-- {
				parts, _ := Split(tr[best[k]])
				tr = tr.Splice(best[k], 1, parts...)
			}
			current = tr.CountSounding(seg.Start, seg.End)
			rep.Splits += len(best)
			log.Debugf("track %d, segment %d: split a group of %d", ti+1, si+1, len(best))
			continue
		}

		parts, _ := Split(tr[pool[0]])
		tr = tr.Splice(pool[0], 1, parts...)
		current = tr.CountSounding(seg.Start, seg.End)
		rep.Splits++
	}
	return tr
}

// preferRests narrows the pool to rests when there are any.
func preferRests(tr mml.Track, pool []int) []int {
	var rests []int
	for _, i := range pool {
		if tr[i].Kind == mml.TokenRest {
			rests = append(rests, i)
		}
	}
	if len(rests) > 0 {
		return rests
	}
	return pool
}

// runs splits pool indices into stretches with no other timed token or l
// command between neighbours.
func runs(tr mml.Track, pool []int) [][]int {
	var out [][]int
	var cur []int
	for k, i := range pool {
		if k > 0 && !adjacent(tr, pool[k-1], i) {
			out = append(out, cur)
			cur = nil
		}
		cur = append(cur, i)
	}
	if len(cur) > 0 {
		out = append(out, cur)
	}
	return out
}

func adjacent(tr mml.Track, a, b int) bool {
	for i := a + 1; i < b; i++ {
		if tr[i].Timed() || tr[i].IsLength() {
			return false
		}
	}
	return true
}

// pickGroup chooses the same-length group whose split lands exactly on need,
// or failing that the largest group that stays under it. Groups keep the
// order their length first appears in a run.
func pickGroup(tr mml.Track, runs [][]int, need int) []int {
	var groups [][]int
	for _, run := range runs {
		byKey := map[string]int{}
		for _, i := range run {
			key := tr[i].LengthKey()
			g, ok := byKey[key]
			if !ok {
				g = len(groups)
				byKey[key] = g
				groups = append(groups, nil)
			}
			groups[g] = append(groups[g], i)
		}
	}
	for _, g := range groups {
		if len(g) == need {
			return g
		}
	}
	var best []int
	for _, g := range groups {
		if len(g) < need && len(g) > len(best) {
			best = g
		}
	}
	return best
}
