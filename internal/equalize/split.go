// Package equalize splits notes and rests until every track plays the same
// number of events in each tempo segment.
package equalize

import (
	"github.com/cbegin/mmlfix/internal/mml"
	"github.com/cbegin/mmlfix/internal/tempo"
)

// Splittable reports whether a note or rest can be halved without losing a
// tick and without exceeding the engine's shortest length.
func Splittable(tok mml.Token) bool {
	if !tok.Sounding() || tok.Length <= 0 || tok.Length >= mml.MaxDenominator {
		return false
	}
	return 2*mml.Ticks(2*tok.Length, tok.Dotted) == tok.Duration
}

// Split halves a note or rest. Notes are tied so the pitch keeps sounding;
// rests are simply repeated.
func Split(tok mml.Token) ([]mml.Token, bool) {
	if !Splittable(tok) {
		return nil, false
	}
	half := mml.NewNote(tok.Pitch(), 2*tok.Length, tok.Dotted)
	if tok.Kind == mml.TokenRest {
		return []mml.Token{half, half}, true
	}
	return []mml.Token{half, mml.NewTie(), half}, true
}

// Shortfall records a segment where a track could not reach its target.
type Shortfall struct {
	Track   int
	Segment int
	Start   int
	Have    int
	Target  int
}

// Report summarizes one equalization run.
type Report struct {
	Splits     int
	Shortfalls []Shortfall
}

func (r *Report) short(track, seg int, s tempo.Segment, have int) {
	r.Shortfalls = append(r.Shortfalls, Shortfall{Track: track, Segment: seg, Start: s.Start, Have: have, Target: s.Target()})
}

// Options tune the equalizers.
type Options struct {
	// MaxIterations bounds the exponential strategy's outer loop per segment.
	MaxIterations int
}

func DefaultOptions() Options { return Options{MaxIterations: 1000} }

// splittableIn returns the indices of splittable tokens lying wholly inside s.
func splittableIn(tr mml.Track, s tempo.Segment) []int {
	var out []int
	for i, tok := range tr {
		if tok.Start >= s.Start && tok.End() <= s.End && Splittable(tok) {
			out = append(out, i)
		}
	}
	return out
}

// equalizable returns the segments the engine needs aligned: all but the
// last one analyzed.
func equalizable(segments []tempo.Segment) []tempo.Segment {
	if len(segments) < 2 {
		return nil
	}
	return segments[:len(segments)-1]
}
