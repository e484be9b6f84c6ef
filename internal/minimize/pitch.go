package minimize

import (
	"github.com/cbegin/mmlfix/internal/mml"
)

// foldOctaveTrips replaces ">>c<<"-style excursions around a single note
// with the equivalent n-note when that is shorter. Only notes without a
// written length qualify, since an n-note always takes the default.
func foldOctaveTrips(tr mml.Track) mml.Track {
	out := make([]mml.Token, 0, len(tr))
	for i := 0; i < len(tr); {
		first, shift := i, 0
		for i < len(tr) && tr[i].Kind == mml.TokenOctaveShift {
			shift += tr[i].Shift()
			i++
		}
		if shift == 0 || i >= len(tr) || tr[i].Kind != mml.TokenNote || tr[i].LengthSuffix() != "" {
			out = append(out, tr[first])
			i = first + 1
			continue
		}
		note := tr[i]
		i++
		back := 0
		for i < len(tr) && tr[i].Kind == mml.TokenOctaveShift {
			back += tr[i].Shift()
			i++
		}
		if shift+back == 0 {
			if n, ok := mml.PitchNumber(note.Pitch(), note.Octave); ok && n >= 0 {
				pn := mml.NewPitchNote(n)
				if mml.Track(tr[first:i]).Len()-len(pn.Text) >= 1 {
					out = append(out, pn)
					continue
				}
			}
		}
		out = append(out, tr[first:i]...)
	}
	return mml.Annotate(out)
}

// useEnharmonics rewrites ">c<" as "b+" and "<b>" as "c-".
func useEnharmonics(tr mml.Track) mml.Track {
	out := make([]mml.Token, 0, len(tr))
	for i := 0; i < len(tr); {
		if i+2 < len(tr) && tr[i+1].Kind == mml.TokenNote {
			up, note, down := tr[i], tr[i+1], tr[i+2]
			switch {
			case up.Text == ">" && note.Pitch() == "c" && down.Text == "<":
				note.Text = "b+" + note.LengthSuffix()
				out = append(out, note)
				i += 3
				continue
			case up.Text == "<" && note.Pitch() == "b" && down.Text == ">":
				note.Text = "c-" + note.LengthSuffix()
				out = append(out, note)
				i += 3
				continue
			}
		}
		out = append(out, tr[i])
		i++
	}
	return mml.Annotate(out)
}
