package mml

import "strings"

type annotateState struct {
	length int
	dotted bool
	octave int
	tick   int
}

// Annotate walks tokens once and fills in Length, Dotted, Duration, Start
// and Octave from the running state. Derived fields already present on the
// input are ignored, so Annotate can be rerun after any edit.
func Annotate(tokens []Token) Track {
	out := make(Track, len(tokens))
	st := annotateState{length: DefaultLength, octave: DefaultOctave}
	for i, tok := range tokens {
		tok.Length, tok.Dotted, tok.Duration = 0, false, 0
		switch tok.Kind {
		case TokenCommand:
			switch tok.Command() {
			case 'o':
				if v := tok.Value(); v >= 0 {
					st.octave = v
				}
			case 'l':
				if v := tok.Value(); v > 0 {
					st.length = v
					st.dotted = strings.HasSuffix(tok.Text, ".")
				}
			}
		case TokenOctaveShift:
			st.octave += tok.Shift()
		case TokenNote, TokenRest:
			n := tok.NotatedLength()
			dotted := tok.ExplicitDot()
			if n > 0 {
				tok.Length, tok.Dotted = n, dotted
			} else {
				tok.Length, tok.Dotted = st.length, dotted || st.dotted
			}
			tok.Duration = Ticks(tok.Length, tok.Dotted)
		case TokenPitchNote:
			tok.Length, tok.Dotted = st.length, st.dotted
			tok.Duration = Ticks(tok.Length, tok.Dotted)
		}
		tok.Octave = st.octave
		if tok.Kind == TokenPitchNote {
			if v := tok.Value(); v >= 0 {
				tok.Octave = v / 12
			}
		}
		tok.Start = st.tick
		st.tick += tok.Duration
		out[i] = tok
	}
	return out
}

// Reparse re-lexes the serialized track. Used after edits that change text
// in ways the token boundaries alone do not capture.
func Reparse(tr Track) Track { return ParseTrack(tr.String()) }

// ExpandPitchNotes replaces every n-note with octave shifts, an explicit
// note letter and the shifts back, so later stages only see letter notes.
func ExpandPitchNotes(tr Track) Track {
	out := make([]Token, 0, len(tr))
	octave := DefaultOctave
	changed := false
	for _, tok := range tr {
		if tok.Kind != TokenPitchNote {
			octave = tok.Octave
			out = append(out, tok)
			continue
		}
		changed = true
		name, target := PitchName(tok.Value())
		shift := target - octave
		for k := 0; k < abs(shift); k++ {
			out = append(out, NewOctaveShift(shift > 0))
		}
		out = append(out, NewNote(name, tok.Length, tok.Dotted))
		for k := 0; k < abs(shift); k++ {
			out = append(out, NewOctaveShift(shift < 0))
		}
	}
	if !changed {
		return tr
	}
	return Annotate(out)
}

// ExpandDefaultLengths removes l commands and writes every note and rest
// length out explicitly. Pitch notes are expanded first since they depend on
// the default length.
func ExpandDefaultLengths(tr Track) Track {
	tr = ExpandPitchNotes(tr)
	out := make([]Token, 0, len(tr))
	for _, tok := range tr {
		switch {
		case tok.IsLength():
			continue
		case tok.Sounding() && !tok.ExplicitLength():
			out = append(out, NewNote(tok.Pitch(), tok.Length, tok.Dotted))
		default:
			out = append(out, tok)
		}
	}
	return Annotate(out)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
