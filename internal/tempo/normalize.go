package tempo

import (
	"github.com/cbegin/mmlfix/internal/diag"
	"github.com/cbegin/mmlfix/internal/mml"
)

// Normalize gives every non-empty track a leading tempo and drops a
// trailing tempo change that all tracks share after their last note, since
// nothing plays under it.
func Normalize(tracks []mml.Track, log *diag.Log) []mml.Track {
	out := make([]mml.Track, len(tracks))
	for i, tr := range tracks {
		if len(tr) > 0 && !tr[0].IsTempo() {
			tr = tr.Splice(0, 0, mml.NewTempo(mml.DefaultTempo))
			log.Infof("track %d: added starting tempo t%d", i+1, mml.DefaultTempo)
		}
		out[i] = tr
	}

	trailing := make([]int, len(out))
	text := ""
	for i, tr := range out {
		at := trailingTempo(tr)
		if at < 0 {
			return out
		}
		if i == 0 {
			text = tr[at].Text
		} else if tr[at].Text != text {
			return out
		}
		trailing[i] = at
	}
	if len(out) == 0 {
		return out
	}
	for i, tr := range out {
		out[i] = tr.Splice(trailing[i], 1)
	}
	log.Infof("removed trailing %s shared by all tracks", text)
	return out
}

// trailingTempo returns the index of the first tempo command after the last
// timed token, -1 if there is none.
func trailingTempo(tr mml.Track) int {
	last := -1
	for i, tok := range tr {
		if tok.Timed() {
			last = i
		}
	}
	for i := last + 1; i < len(tr); i++ {
		if tr[i].IsTempo() {
			return i
		}
	}
	return -1
}
