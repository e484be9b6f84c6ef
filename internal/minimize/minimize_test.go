package minimize

import (
	"fmt"
	"strings"
	"testing"

	"github.com/cbegin/mmlfix/internal/diag"
	"github.com/cbegin/mmlfix/internal/mml"
)

func run(src string) string {
	return Run(mml.ParseTrack(src), DefaultOptions(), nil).String()
}

func TestRun(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want string
	}{
		{"drops redundant l", "t120l4cdefg", "t120cdefg"},
		{"introduces l", "c8d8e8f8g8", "l8cdefg"},
		{"introduces and restores", "c4c16d16e16f16g4", "cl16cdefg4"},
		{"strips default lengths", "t120c4d4r4", "t120cdr"},
		{"keeps short runs", "c8d8e8f8", "c8d8e8f8"},
		{"folds octave trip", "l8>>c<<d", "l8n72d"},
		{"uses enharmonic", "o5<b>c", "o5c-c"},
		{"pitch note keeps its length", "l8n60c4d4e4", "l8n60c4d4e4"},
		{"unknown passes through", "c8?d8", "c8?d8"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := run(c.src); got != c.want {
				t.Fatalf("expected %s, got %s", c.want, got)
			}
		})
	}
}

func TestRunIdempotent(t *testing.T) {
	for _, src := range []string{"t120l4cdefg", "c8d8e8f8g8", "c4c16d16e16f16g4", "l8>>c<<d"} {
		once := run(src)
		if twice := run(once); twice != once {
			t.Fatalf("%s: second run changed %s to %s", src, once, twice)
		}
	}
}

func TestRunPreservesTiming(t *testing.T) {
	inputs := []string{
		"t120c8&c8&c8&c8t150c4",
		"t100l16cdef8.g8.a8.b4r2>c<n50l3ccc",
		"o3l8.cdefl8gabl16>cdefgab<<b>r1",
		"t120c64c64c64c32c32c16c8c4",
	}
	for _, src := range inputs {
		in := mml.ParseTrack(src)
		out := mml.ParseTrack(run(src))
		if out.EndTick() != in.EndTick() {
			t.Fatalf("%s: end tick %d became %d", src, in.EndTick(), out.EndTick())
		}
		if out.Len() > in.Len() {
			t.Fatalf("%s: grew from %d to %d chars", src, in.Len(), out.Len())
		}
		if pitches(out) != pitches(in) {
			t.Fatalf("%s: pitch sequence changed", src)
		}
	}
}

// pitches lists the absolute pitch and start of every sounding event.
func pitches(tr mml.Track) string {
	var b strings.Builder
	for _, tok := range mml.ExpandPitchNotes(tr) {
		switch tok.Kind {
		case mml.TokenNote:
			n, _ := mml.PitchNumber(tok.Pitch(), tok.Octave)
			fmt.Fprintf(&b, "%d@%d ", n, tok.Start)
		case mml.TokenRest:
			fmt.Fprintf(&b, "r@%d ", tok.Start)
		}
	}
	return b.String()
}

func TestEnharmonics(t *testing.T) {
	cases := map[string]string{
		"l8>c4<":  "l8b+4",
		"<b8.>":   "c-8.",
		">c+<":    ">c+<",
		"<b-4>":   "<b-4>",
		">c":      ">c",
		"c>c<c>c": "cb+c>c",
	}
	for src, want := range cases {
		if got := useEnharmonics(mml.ParseTrack(src)).String(); got != want {
			t.Fatalf("%s: expected %s, got %s", src, want, got)
		}
	}
}

func TestFoldOctaveTripsSkipsExplicitLengths(t *testing.T) {
	tr := foldOctaveTrips(mml.ParseTrack(">>c8<<>>d.<<"))
	if got := tr.String(); got != ">>c8<<>>d.<<" {
		t.Fatalf("expected unchanged track, got %s", got)
	}
}

func TestRunZeroOptionsUsesDefaults(t *testing.T) {
	l := diag.New(nil, false)
	tr := mml.ParseTrack("t120cdefg")
	if got := Run(tr, Options{}, l).String(); got != "t120cdefg" {
		t.Fatalf("expected t120cdefg, got %s", got)
	}
	if l.Count(diag.LevelError) != 0 {
		t.Fatalf("unexpected errors: %v", l.Lines())
	}
}
