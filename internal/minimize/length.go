// Package minimize shortens track text without changing what plays.
package minimize

import (
	"github.com/cbegin/mmlfix/internal/mml"
)

var defaultLengthKey = mml.LengthKey(mml.DefaultLength, false)

// lengthValue returns the LengthKey an l command sets, false for anything
// else or for an l the engine ignores.
func lengthValue(tok mml.Token) (string, bool) {
	if !tok.IsLength() || tok.Value() <= 0 {
		return "", false
	}
	return tok.LengthValue(), true
}

// activeLengths returns, for every index, the default length in force
// before that token.
func activeLengths(tr mml.Track) []string {
	out := make([]string, len(tr))
	cur := defaultLengthKey
	for i, tok := range tr {
		out[i] = cur
		if v, ok := lengthValue(tok); ok {
			cur = v
		}
	}
	return out
}

// bare drops a written length so the note inherits the default.
func bare(tok mml.Token) mml.Token {
	if tok.ExplicitLength() {
		tok.Text = tok.Pitch()
	}
	return tok
}

// introduceLengths finds runs of notes sharing one length and writes an l
// command before them when that saves characters, restoring the previous
// default afterwards. Pitch notes end a run since they take the default
// length themselves.
func introduceLengths(tr mml.Track) mml.Track {
	before := activeLengths(tr)
	out := make([]mml.Token, 0, len(tr))
	for i := 0; i < len(tr); {
		tok := tr[i]
		if !tok.Sounding() {
			out = append(out, tok)
			i++
			continue
		}
		key := tok.LengthKey()
		end, notes := i, 0
		for j := i; j < len(tr); j++ {
			t := tr[j]
			if t.Sounding() {
				if t.LengthKey() != key {
					break
				}
				notes++
			} else if t.IsLength() || t.Kind == mml.TokenPitchNote {
				break
			}
			end = j + 1
		}
		if notes > 1 {
			prev := before[i]
			orig, opt := 0, 0
			for _, t := range tr[i:end] {
				if t.Sounding() {
					orig += len(t.Text)
					opt += len(bare(t).Text)
				}
			}
			cost := 0
			if key != prev {
				cost += 1 + len(key)
			}
			restore := key != prev && !(end < len(tr) && tr[end].IsLength())
			if restore {
				cost += 1 + len(prev)
			}
			if orig-(opt+cost) > 0 {
				if key != prev {
					out = append(out, mml.NewLength(key))
				}
				for _, t := range tr[i:end] {
					if t.Sounding() {
						t = bare(t)
					}
					out = append(out, t)
				}
				if restore {
					out = append(out, mml.NewLength(prev))
				}
				i = end
				continue
			}
		}
		out = append(out, tok)
		i++
	}
	return mml.Annotate(out)
}

// stripDefaultLengths removes written lengths equal to the default in force.
func stripDefaultLengths(tr mml.Track) mml.Track {
	out := make([]mml.Token, len(tr))
	cur := defaultLengthKey
	for i, tok := range tr {
		if v, ok := lengthValue(tok); ok {
			cur = v
		}
		if tok.Sounding() && tok.LengthKey() == cur {
			tok = bare(tok)
		}
		out[i] = tok
	}
	return mml.Annotate(out)
}

// dropLengths removes l commands that cost more than writing the affected
// lengths out, one per pass until nothing changes.
func dropLengths(tr mml.Track, maxPasses int) mml.Track {
	for pass := 0; pass < maxPasses; pass++ {
		next, ok := dropOneLength(tr)
		if !ok {
			break
		}
		tr = mml.Reparse(next)
	}
	return tr
}

func dropOneLength(tr mml.Track) (mml.Track, bool) {
	type lpos struct {
		index int
		value string
	}
	hist := []lpos{{-1, defaultLengthKey}}
	for i, tok := range tr {
		if v, ok := lengthValue(tok); ok {
			hist = append(hist, lpos{i, v})
		}
	}
	for h := 1; h < len(hist); h++ {
		at, prev := hist[h].index, hist[h-1].value
		end := len(tr)
		if h+1 < len(hist) {
			end = hist[h+1].index
		}
		orig, sim := len(tr[at].Text), 0
		repl := make([]mml.Token, 0, end-at-1)
		ok := true
		for _, t := range tr[at+1 : end] {
			orig += len(t.Text)
			switch {
			case t.Sounding():
				text := t.Pitch()
				if key := t.LengthKey(); key != prev {
					text += key
				}
				t.Text = text
			case t.Kind == mml.TokenPitchNote && t.LengthKey() != prev:
				ok = false
			}
			sim += len(t.Text)
			repl = append(repl, t)
		}
		if !ok || orig <= sim {
			continue
		}
		out := make(mml.Track, 0, len(tr)-1)
		out = append(out, tr[:at]...)
		out = append(out, repl...)
		out = append(out, tr[end:]...)
		return out, true
	}
	return tr, false
}
