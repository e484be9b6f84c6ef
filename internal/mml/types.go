package mml

import (
	"strconv"
	"strings"
)

const (
	WholeTicks     = 384
	MaxDenominator = 64
	DefaultLength  = 4
	DefaultOctave  = 4
	DefaultTempo   = 120
)

type TokenKind int

const (
	TokenCommand TokenKind = iota + 1
	TokenTie
	TokenOctaveShift
	TokenNote
	TokenRest
	TokenPitchNote
	TokenUnknown
)

func (k TokenKind) String() string {
	switch k {
	case TokenCommand:
		return "command"
	case TokenTie:
		return "tie"
	case TokenOctaveShift:
		return "octave_shift"
	case TokenNote:
		return "note"
	case TokenRest:
		return "rest"
	case TokenPitchNote:
		return "pitch_note"
	case TokenUnknown:
		return "unknown"
	default:
		return "invalid"
	}
}

// Token is one lexical unit of a track. Text is what gets serialized; the
// remaining fields are derived by Annotate and are never edited in place.
type Token struct {
	Kind     TokenKind
	Text     string
	Length   int
	Dotted   bool
	Duration int
	Start    int
	Octave   int
}

// Ticks returns the duration of a note with denominator n.
func Ticks(n int, dotted bool) int {
	if n <= 0 {
		return 0
	}
	base := WholeTicks / n
	if dotted {
		base += base / 2
	}
	return base
}

// LengthKey formats a length the way it is notated, e.g. "8" or "4.".
func LengthKey(n int, dotted bool) string {
	if dotted {
		return strconv.Itoa(n) + "."
	}
	return strconv.Itoa(n)
}

func (t Token) End() int { return t.Start + t.Duration }

// Sounding reports whether the token is a Note or Rest, the events the
// engine counts per tempo segment.
func (t Token) Sounding() bool { return t.Kind == TokenNote || t.Kind == TokenRest }

// Timed reports whether the token consumes ticks.
func (t Token) Timed() bool { return t.Sounding() || t.Kind == TokenPitchNote }

// Command returns the command letter, or 0 for non-command tokens.
func (t Token) Command() byte {
	if t.Kind != TokenCommand || t.Text == "" {
		return 0
	}
	return lower(t.Text[0])
}

func (t Token) IsTempo() bool  { return t.Command() == 't' }
func (t Token) IsLength() bool { return t.Command() == 'l' }

// Value returns the number carried by a command or pitch note, -1 if absent.
func (t Token) Value() int {
	if t.Kind != TokenCommand && t.Kind != TokenPitchNote {
		return -1
	}
	v, _ := parseNumberOptional(t.Text, 1)
	return v
}

// Shift returns +1 for '>' and -1 for '<'.
func (t Token) Shift() int {
	if t.Kind != TokenOctaveShift {
		return 0
	}
	if t.Text == ">" {
		return 1
	}
	return -1
}

// Pitch returns the pitch part of a note or rest: the letter plus an
// optional accidental ("c", "f+", "r").
func (t Token) Pitch() string {
	if !t.Sounding() || t.Text == "" {
		return ""
	}
	if len(t.Text) > 1 && isAccidental(t.Text[1]) {
		return t.Text[:2]
	}
	return t.Text[:1]
}

func (t Token) HasAccidental() bool { return len(t.Pitch()) == 2 }

// NotatedLength returns the digits written after the pitch, -1 if none.
func (t Token) NotatedLength() int {
	if !t.Sounding() {
		return -1
	}
	n, _ := parseNumberOptional(t.Text, len(t.Pitch()))
	return n
}

// ExplicitLength reports whether the note or rest carries its own usable
// length. A written zero falls back to the default and does not count.
func (t Token) ExplicitLength() bool { return t.NotatedLength() > 0 }

// ExplicitDot reports whether the note or rest text carries a dot.
func (t Token) ExplicitDot() bool {
	return t.Sounding() && strings.HasSuffix(t.Text, ".")
}

// LengthSuffix returns the digits and dots after the pitch, verbatim.
func (t Token) LengthSuffix() string {
	return t.Text[len(t.Pitch()):]
}

func (t Token) LengthKey() string { return LengthKey(t.Length, t.Dotted) }

// LengthValue returns the default length carried by an l command as a
// LengthKey string, e.g. "8." for "l8.".
func (t Token) LengthValue() string {
	if !t.IsLength() {
		return ""
	}
	return t.Text[1:]
}

func NewNote(pitch string, n int, dotted bool) Token {
	kind := TokenNote
	if pitch == "r" {
		kind = TokenRest
	}
	return Token{Kind: kind, Text: pitch + LengthKey(n, dotted), Length: n, Dotted: dotted, Duration: Ticks(n, dotted)}
}

func NewTie() Token { return Token{Kind: TokenTie, Text: "&"} }

func NewTempo(value int) Token {
	return Token{Kind: TokenCommand, Text: "t" + strconv.Itoa(value)}
}

// NewLength builds an l command from a LengthKey such as "8.".
func NewLength(key string) Token {
	return Token{Kind: TokenCommand, Text: "l" + key}
}

func NewPitchNote(midi int) Token {
	return Token{Kind: TokenPitchNote, Text: "n" + strconv.Itoa(midi)}
}

func NewOctaveShift(up bool) Token {
	if up {
		return Token{Kind: TokenOctaveShift, Text: ">"}
	}
	return Token{Kind: TokenOctaveShift, Text: "<"}
}

// Track is an annotated token sequence for one instrument voice.
type Track []Token

func (tr Track) Clone() Track {
	out := make(Track, len(tr))
	copy(out, tr)
	return out
}

func (tr Track) String() string {
	var b strings.Builder
	for _, tok := range tr {
		b.WriteString(tok.Text)
	}
	return b.String()
}

// Len is the serialized character length.
func (tr Track) Len() int {
	n := 0
	for _, tok := range tr {
		n += len(tok.Text)
	}
	return n
}

func (tr Track) EndTick() int {
	if len(tr) == 0 {
		return 0
	}
	return tr[len(tr)-1].End()
}

// SoundingEnd returns the end tick of the last Note or Rest, 0 if none.
func (tr Track) SoundingEnd() int {
	for i := len(tr) - 1; i >= 0; i-- {
		if tr[i].Sounding() {
			return tr[i].End()
		}
	}
	return 0
}

// CountSounding counts Notes and Rests starting in [start, end).
func (tr Track) CountSounding(start, end int) int {
	n := 0
	for _, tok := range tr {
		if tok.Sounding() && tok.Start >= start && tok.Start < end {
			n++
		}
	}
	return n
}

// Splice returns a new track with del tokens at i replaced by ins,
// re-annotated from the result.
func (tr Track) Splice(i, del int, ins ...Token) Track {
	out := make([]Token, 0, len(tr)-del+len(ins))
	out = append(out, tr[:i]...)
	out = append(out, ins...)
	out = append(out, tr[i+del:]...)
	return Annotate(out)
}

type Document struct {
	Tracks []Track
}

func (d *Document) String() string {
	parts := make([]string, len(d.Tracks))
	for i, tr := range d.Tracks {
		parts[i] = tr.String()
	}
	return "MML@" + strings.Join(parts, ",") + ";"
}

func (d *Document) Clone() *Document {
	out := &Document{Tracks: make([]Track, len(d.Tracks))}
	for i, tr := range d.Tracks {
		out.Tracks[i] = tr.Clone()
	}
	return out
}
