// Package tempo makes every track carry the same tempo changes at the same
// ticks and measures how many events each track plays between them.
package tempo

import (
	"sort"

	"github.com/cbegin/mmlfix/internal/diag"
	"github.com/cbegin/mmlfix/internal/mml"
	"github.com/cbegin/mmlfix/internal/notation"
)

// Point is a tempo change at an absolute tick.
type Point struct {
	Tick  int
	Value int
}

// Points collects the distinct tempo changes of all tracks, ordered by tick.
// Points sharing a tick keep the order in which they were first seen.
func Points(tracks []mml.Track) []Point {
	seen := map[Point]bool{}
	var out []Point
	for _, tr := range tracks {
		for _, tok := range tr {
			if !tok.IsTempo() {
				continue
			}
			p := Point{Tick: tok.Start, Value: tok.Value()}
			if seen[p] {
				continue
			}
			seen[p] = true
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Tick < out[j].Tick })
	return out
}

// Synchronize inserts every point into every track that lacks it. Tracks
// are returned as new slices; the input is not modified.
func Synchronize(tracks []mml.Track, points []Point, log *diag.Log) []mml.Track {
	desc := make([]Point, len(points))
	copy(desc, points)
	sort.SliceStable(desc, func(i, j int) bool { return desc[i].Tick > desc[j].Tick })

	out := make([]mml.Track, len(tracks))
	for ti, tr := range tracks {
		for _, p := range desc {
			tr = insertPoint(tr, p, ti, log)
		}
		out[ti] = tr
	}
	return out
}

func insertPoint(tr mml.Track, p Point, track int, log *diag.Log) mml.Track {
	tempo := mml.NewTempo(p.Value)
	exact := -1
	for i, tok := range tr {
		if tok.Start != p.Tick {
			continue
		}
		if tok.IsTempo() && tok.Value() == p.Value {
			return tr
		}
		if exact < 0 {
			exact = i
		}
	}
	if exact >= 0 {
		return tr.Splice(exact, 0, tempo)
	}

	for i, tok := range tr {
		if tok.Start >= p.Tick || tok.End() <= p.Tick {
			continue
		}
		if !tok.Sounding() {
			log.Warnf("track %d: %s at tick %d falls inside %q, inserted after it", track+1, tempo.Text, p.Tick, tok.Text)
			return tr.Splice(i+1, 0, tempo)
		}
		parts, ok := splitAt(tok, p.Tick, tempo)
		if !ok {
			log.Warnf("track %d: cannot split %q at tick %d, %s inserted after it", track+1, tok.Text, p.Tick, tempo.Text)
			return tr.Splice(i+1, 0, tempo)
		}
		log.Debugf("track %d: split %q at tick %d for %s", track+1, tok.Text, p.Tick, tempo.Text)
		return tr.Splice(i, 1, parts...)
	}

	for i, tok := range tr {
		if tok.Start > p.Tick {
			return tr.Splice(i, 0, tempo)
		}
	}
	return tr.Splice(len(tr), 0, tempo)
}

// splitAt rewrites a note straddling tick as tied fragments with the tempo
// change between them (c8&c16t150&c16). Rests are split the same way
// without ties.
func splitAt(tok mml.Token, tick int, tempo mml.Token) ([]mml.Token, bool) {
	before, ok := notation.Resolve(tick - tok.Start)
	if !ok {
		return nil, false
	}
	after, ok := notation.Resolve(tok.End() - tick)
	if !ok {
		return nil, false
	}
	tied := tok.Kind == mml.TokenNote
	out := fragments(tok.Pitch(), before, tied)
	out = append(out, tempo)
	if tied {
		out = append(out, mml.NewTie())
	}
	return append(out, fragments(tok.Pitch(), after, tied)...), true
}

func fragments(pitch string, frags []notation.Fragment, tied bool) []mml.Token {
	out := make([]mml.Token, 0, 2*len(frags))
	for i, f := range frags {
		if i > 0 && tied {
			out = append(out, mml.NewTie())
		}
		out = append(out, mml.NewNote(pitch, f.Length, f.Dotted))
	}
	return out
}
