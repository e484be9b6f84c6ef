// Package sequencer turns annotated tracks into timed note and tempo events.
package sequencer

import (
	"math"
	"time"

	"github.com/cbegin/mmlfix/internal/mml"
)

const (
	// TicksPerQuarter is the tick resolution of a quarter note.
	TicksPerQuarter = mml.WholeTicks / 4
	DefaultVolume   = 8
	MaxVolume       = 15
)

// Note is one sounding key, with ties already merged.
type Note struct {
	Start    int
	End      int
	Key      int
	Velocity int
}

type TempoChange struct {
	Tick int
	BPM  int
}

type Schedule struct {
	Notes  []Note
	Tempos []TempoChange
	// End is the tick at which the track stops consuming time.
	End int
}

type trackCursor struct {
	volume int
	open   int
	tied   bool
}

// Build schedules one track. A note tied to the same key extends the
// previous note; anything else closes it.
func Build(tr mml.Track) Schedule {
	tr = mml.ExpandPitchNotes(tr)
	s := Schedule{End: tr.EndTick()}
	tc := trackCursor{volume: DefaultVolume, open: -1}
	for _, tok := range tr {
		switch tok.Kind {
		case mml.TokenCommand:
			switch tok.Command() {
			case 't':
				if v := tok.Value(); v > 0 {
					s.Tempos = append(s.Tempos, TempoChange{Tick: tok.Start, BPM: v})
				}
			case 'v':
				if v := tok.Value(); v >= 0 {
					tc.volume = clampInt(v, 0, MaxVolume)
				}
			}
		case mml.TokenTie:
			tc.tied = true
		case mml.TokenRest:
			tc.open, tc.tied = -1, false
		case mml.TokenNote:
			n, ok := mml.PitchNumber(tok.Pitch(), tok.Octave)
			key := MIDIKey(n)
			if !ok || key < 0 || key > 127 {
				tc.open, tc.tied = -1, false
				continue
			}
			if tc.tied && tc.open >= 0 && s.Notes[tc.open].Key == key {
				s.Notes[tc.open].End = tok.End()
				tc.tied = false
				continue
			}
			tc.open, tc.tied = -1, false
			vel := velocity(tc.volume)
			if vel == 0 {
				continue
			}
			s.Notes = append(s.Notes, Note{Start: tok.Start, End: tok.End(), Key: key, Velocity: vel})
			tc.open = len(s.Notes) - 1
		}
	}
	return s
}

// MIDIKey converts an n-number to a MIDI key, placing o4c on middle C.
func MIDIKey(n int) int { return n + 12 }

func velocity(volume int) int {
	return clampInt(volume*127/MaxVolume, 0, 127)
}

// Duration is the playback time of the schedule under its own tempo
// changes, starting at the default tempo.
func (s Schedule) Duration() time.Duration {
	var total float64
	tick, bpm := 0, mml.DefaultTempo
	for _, tc := range s.Tempos {
		if tc.Tick > s.End {
			break
		}
		total += seconds(tc.Tick-tick, bpm)
		tick, bpm = tc.Tick, tc.BPM
	}
	total += seconds(s.End-tick, bpm)
	return time.Duration(math.Round(total * float64(time.Second)))
}

func seconds(ticks, bpm int) float64 {
	if ticks <= 0 || bpm <= 0 {
		return 0
	}
	return float64(ticks) / TicksPerQuarter * 60 / float64(bpm)
}

// BuildDocument schedules every track of doc.
func BuildDocument(doc *mml.Document) []Schedule {
	out := make([]Schedule, len(doc.Tracks))
	for i, tr := range doc.Tracks {
		out[i] = Build(tr)
	}
	return out
}

// Duration is the longest track playback time.
func Duration(schedules []Schedule) time.Duration {
	var d time.Duration
	for _, s := range schedules {
		d = max(d, s.Duration())
	}
	return d
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
