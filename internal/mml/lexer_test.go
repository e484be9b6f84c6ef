package mml

import (
	"errors"
	"testing"
)

func TestLexKinds(t *testing.T) {
	tokens := Lex("t120L8.o5v10c+4&c#8.>r<n60l x")
	want := []struct {
		kind TokenKind
		text string
	}{
		{TokenCommand, "t120"},
		{TokenCommand, "l8."},
		{TokenCommand, "o5"},
		{TokenCommand, "v10"},
		{TokenNote, "c+4"},
		{TokenTie, "&"},
		{TokenNote, "c#8."},
		{TokenOctaveShift, ">"},
		{TokenRest, "r"},
		{TokenOctaveShift, "<"},
		{TokenPitchNote, "n60"},
		{TokenUnknown, "l"},
		{TokenUnknown, "x"},
	}
	if len(tokens) != len(want) {
		t.Fatalf("expected %d tokens, got %d", len(want), len(tokens))
	}
	for i, w := range want {
		if tokens[i].Kind != w.kind || tokens[i].Text != w.text {
			t.Fatalf("token %d: expected %s %q, got %s %q", i, w.kind, w.text, tokens[i].Kind, tokens[i].Text)
		}
	}
}

func TestLexUnknownMultibyte(t *testing.T) {
	tokens := Lex("c음d")
	if len(tokens) != 3 {
		t.Fatalf("expected 3 tokens, got %d", len(tokens))
	}
	if tokens[1].Kind != TokenUnknown || tokens[1].Text != "음" {
		t.Fatalf("expected verbatim unknown rune, got %s %q", tokens[1].Kind, tokens[1].Text)
	}
}

func TestAnnotateTicks(t *testing.T) {
	tr := ParseTrack("l8cd4.r>e<n50&c")
	wantStart := []int{0, 0, 48, 192, 240, 240, 288, 288, 336, 336}
	wantDur := []int{0, 48, 144, 48, 0, 48, 0, 48, 0, 48}
	if len(tr) != len(wantStart) {
		t.Fatalf("expected %d tokens, got %d", len(wantStart), len(tr))
	}
	for i := range tr {
		if tr[i].Start != wantStart[i] || tr[i].Duration != wantDur[i] {
			t.Fatalf("token %d %q: expected start=%d dur=%d, got start=%d dur=%d",
				i, tr[i].Text, wantStart[i], wantDur[i], tr[i].Start, tr[i].Duration)
		}
	}
	if tr[5].Octave != 5 {
		t.Fatalf("expected e at octave 5, got %d", tr[5].Octave)
	}
	if tr[7].Octave != 4 {
		t.Fatalf("expected n50 at octave 4, got %d", tr[7].Octave)
	}
}

func TestAnnotateStartsAreCumulative(t *testing.T) {
	tr := ParseTrack("t100l16cdefl4.gab2r1&r32o3c-6")
	tick := 0
	for i, tok := range tr {
		if tok.Start != tick {
			t.Fatalf("token %d %q: expected start %d, got %d", i, tok.Text, tick, tok.Start)
		}
		tick += tok.Duration
	}
}

func TestAnnotateDottedDefault(t *testing.T) {
	tr := ParseTrack("l4.cc8")
	if tr[1].Duration != 144 || !tr[1].Dotted {
		t.Fatalf("expected dotted quarter from l4., got %d dotted=%v", tr[1].Duration, tr[1].Dotted)
	}
	if tr[2].Duration != 48 || tr[2].Dotted {
		t.Fatalf("explicit length must not inherit default dot, got %d dotted=%v", tr[2].Duration, tr[2].Dotted)
	}
}

func TestSerializeRoundTrip(t *testing.T) {
	cases := []string{
		"t120l8cdefgab>c",
		"o3c+4.&c+16r2n40v12",
		"",
		"c?d",
	}
	for _, src := range cases {
		t.Run(src, func(t *testing.T) {
			tr := ParseTrack(src)
			again := ParseTrack(tr.String())
			if len(again) != len(tr) {
				t.Fatalf("expected %d tokens, got %d", len(tr), len(again))
			}
			for i := range tr {
				if tr[i] != again[i] {
					t.Fatalf("token %d differs: %+v vs %+v", i, tr[i], again[i])
				}
			}
		})
	}
}

func TestExpandPitchNotes(t *testing.T) {
	tr := ExpandPitchNotes(ParseTrack("l8n62c"))
	if got := tr.String(); got != "l8>d8<c" {
		t.Fatalf("expected l8>d8<c, got %s", got)
	}
	if tr[2].Octave != 5 || tr[2].Duration != 48 {
		t.Fatalf("expected d at octave 5 lasting 48, got %d/%d", tr[2].Octave, tr[2].Duration)
	}
	if tr.EndTick() != 96 {
		t.Fatalf("expected end tick 96, got %d", tr.EndTick())
	}
}

func TestExpandDefaultLengths(t *testing.T) {
	src := ParseTrack("l8cd4l16.er.>n48")
	tr := ExpandDefaultLengths(src)
	if got := tr.String(); got != "c8d4e16.r16.><c16.>" {
		t.Fatalf("unexpected expansion %s", got)
	}
	if tr.EndTick() != src.EndTick() {
		t.Fatalf("expected end tick %d, got %d", src.EndTick(), tr.EndTick())
	}
}

func TestParseDocument(t *testing.T) {
	doc, err := Parse("MML@T120CDE,l8ab  ;MML@ r;")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(doc.Tracks) != 3 {
		t.Fatalf("expected 3 tracks, got %d", len(doc.Tracks))
	}
	if got := doc.String(); got != "MML@t120cde,l8ab,r;" {
		t.Fatalf("unexpected document %s", got)
	}
}

func TestParseFullWidth(t *testing.T) {
	doc, err := Parse("ＭＭＬ＠ｃｄｅ；")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if got := doc.Tracks[0].String(); got != "cde" {
		t.Fatalf("expected cde, got %s", got)
	}
}

func TestParseErrors(t *testing.T) {
	if _, err := Parse("  \n"); !errors.Is(err, ErrEmptyInput) {
		t.Fatalf("expected ErrEmptyInput, got %v", err)
	}
	for _, src := range []string{"cde;", "MML@cde", "MML@"} {
		if _, err := Parse(src); !errors.Is(err, ErrMalformedInput) {
			t.Fatalf("%q: expected ErrMalformedInput, got %v", src, err)
		}
	}
}

func TestValidate(t *testing.T) {
	if err := Validate("MML@t120l8c+d-e#,r4;"); err != nil {
		t.Fatalf("expected valid input, got %v", err)
	}
	err := Validate("MML@cdxq,y;")
	var ice *InvalidCharsError
	if !errors.As(err, &ice) {
		t.Fatalf("expected InvalidCharsError, got %v", err)
	}
	if string(ice.Chars) != "qxy" {
		t.Fatalf("expected qxy, got %q", string(ice.Chars))
	}
}

func TestPitchNumber(t *testing.T) {
	cases := []struct {
		pitch  string
		octave int
		want   int
	}{
		{"c", 4, 48},
		{"c+", 4, 49},
		{"c#", 4, 49},
		{"b", 3, 47},
		{"c-", 5, 59},
	}
	for _, c := range cases {
		got, ok := PitchNumber(c.pitch, c.octave)
		if !ok || got != c.want {
			t.Fatalf("%s%d: expected %d, got %d (%v)", c.pitch, c.octave, c.want, got, ok)
		}
	}
	name, oct := PitchName(61)
	if name != "c+" || oct != 5 {
		t.Fatalf("expected c+ octave 5, got %s %d", name, oct)
	}
}
