package mmlfix

import (
	"errors"

	intdiag "github.com/cbegin/mmlfix/internal/diag"
	intmml "github.com/cbegin/mmlfix/internal/mml"
)

type SegmentInfo struct {
	Start  int
	End    int
	Tempo  int
	Counts []int
	Target int
	// Final segments are not equalized.
	Final bool
}

// Aligned reports whether every track already plays Target events.
func (s SegmentInfo) Aligned() bool {
	for _, c := range s.Counts {
		if c != s.Target {
			return false
		}
	}
	return true
}

type Analysis struct {
	Lengths     []int
	TempoPoints int
	Segments    []SegmentInfo
	Invalid     []rune
	Entries     []LogEntry
}

// NeedsFix reports whether any equalized segment is misaligned.
func (a *Analysis) NeedsFix() bool {
	for _, s := range a.Segments {
		if !s.Final && !s.Aligned() {
			return true
		}
	}
	return false
}

// Analyze reports per-segment event counts without rewriting anything.
// Unsupported characters are listed in Invalid rather than failing.
func Analyze(input string, opts ...Option) (*Analysis, error) {
	cfg := defaultFixConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	log := intdiag.New(cfg.sink, cfg.verbose)
	a := &Analysis{}
	var ice *intmml.InvalidCharsError
	if err := intmml.Validate(input); errors.As(err, &ice) {
		a.Invalid = ice.Chars
	}
	p, err := prepare(input, log)
	if err != nil {
		return nil, err
	}
	a.Lengths = p.before
	a.TempoPoints = len(p.points)
	for i, s := range p.segments {
		a.Segments = append(a.Segments, SegmentInfo{
			Start:  s.Start,
			End:    s.End,
			Tempo:  s.Tempo,
			Counts: s.Counts,
			Target: s.Target(),
			Final:  i == len(p.segments)-1,
		})
	}
	a.Entries = log.Entries()
	return a, nil
}
