package mmlfix

import (
	"errors"
	"strings"
	"testing"

	intmml "github.com/cbegin/mmlfix/internal/mml"
)

func TestFixAddsStartingTempo(t *testing.T) {
	res, err := Fix("MML@l4cdefg,l4cdefgr;")
	if err != nil {
		t.Fatalf("fix failed: %v", err)
	}
	if res.MML != "MML@t120cdefg,t120cdefgr;" {
		t.Fatalf("unexpected result %s", res.MML)
	}
	if len(res.Tracks) != 2 || res.Tracks[1].Before != 8 || res.Tracks[1].After != 10 {
		t.Fatalf("unexpected track results %+v", res.Tracks)
	}
}

func TestFixEqualizesSegments(t *testing.T) {
	res, err := Fix("MML@t120l8cdeft150c,t120c2t150c;")
	if err != nil {
		t.Fatalf("fix failed: %v", err)
	}
	if res.MML != "MML@t120l8cdeft150c,t120c8&c8&c8&c8t150c;" {
		t.Fatalf("unexpected result %s", res.MML)
	}
	if res.TempoPoints != 2 || res.Segments != 2 {
		t.Fatalf("expected 2 points and 2 segments, got %d/%d", res.TempoPoints, res.Segments)
	}
	for _, tr := range res.Tracks {
		if tr.Strategy != StrategyExponential {
			t.Fatalf("track %d: ties must go to the exponential strategy, got %s", tr.Index+1, tr.Strategy)
		}
	}
}

func TestFixTempoAfterLongNote(t *testing.T) {
	res, err := Fix("MML@t120c1,l4cccct150c;")
	if err != nil {
		t.Fatalf("fix failed: %v", err)
	}
	if res.MML != "MML@t120c&c&c&ct150,t120cccct150c;" {
		t.Fatalf("unexpected result %s", res.MML)
	}
}

func TestFixSplitsRestsWithoutTies(t *testing.T) {
	res, err := Fix("MML@t120c2t150c2,r1;")
	if err != nil {
		t.Fatalf("fix failed: %v", err)
	}
	tracks := strings.Split(strings.TrimSuffix(strings.TrimPrefix(res.MML, "MML@"), ";"), ",")
	if len(tracks) != 2 || strings.Contains(tracks[1], "&") {
		t.Fatalf("rest split must not carry ties: %s", res.MML)
	}
	if !strings.Contains(tracks[1], "t150") {
		t.Fatalf("tempo change missing from track 2: %s", res.MML)
	}
}

func TestFixDoesNotCountSplitsPastSegment(t *testing.T) {
	res, err := Fix("MML@c8c12c48c32t150c,c4c4;")
	if err != nil {
		t.Fatalf("fix failed: %v", err)
	}
	doc, err := intmml.Parse(res.MML)
	if err != nil {
		t.Fatalf("result does not parse: %v", err)
	}
	got := doc.Tracks[1].CountSounding(0, 100)
	if got != 4 && res.Tracks[1].Shortfalls == 0 {
		t.Fatalf("track 2 has %d events before tick 100 and no shortfall: %s", got, res.MML)
	}
}

func TestFixExpandsPitchNotes(t *testing.T) {
	res, err := Fix("MML@n60,c;")
	if err != nil {
		t.Fatalf("fix failed: %v", err)
	}
	if res.MML != "MML@t120b+,t120c;" {
		t.Fatalf("unexpected result %s", res.MML)
	}
}

func TestFixResultReparses(t *testing.T) {
	inputs := []string{
		"MML@t120l8cdefgab>c<t150l4ccr2t90c,t120c1t150c2.t90c,r1r1r1;",
		"MML@t120c4c4c4c4t200c4c4c4c4,t120r1t200r1,t120c2.r4t200c+2d-2;",
	}
	for _, in := range inputs {
		res, err := Fix(in)
		if err != nil {
			t.Fatalf("fix failed: %v", err)
		}
		doc, err := Parse(res.MML)
		if err != nil {
			t.Fatalf("result does not parse: %v", err)
		}
		if got := doc.String(); got != res.MML {
			t.Fatalf("serialization is not stable: %s vs %s", got, res.MML)
		}
		a, err := Analyze(res.MML)
		if err != nil {
			t.Fatalf("analyze failed: %v", err)
		}
		if a.NeedsFix() {
			t.Fatalf("%s: result still misaligned: %+v", in, a.Segments)
		}
	}
}

func TestFixErrors(t *testing.T) {
	if _, err := Fix(" "); !errors.Is(err, ErrEmptyInput) {
		t.Fatalf("expected ErrEmptyInput, got %v", err)
	}
	if _, err := Fix("cdef"); !errors.Is(err, ErrMalformedInput) {
		t.Fatalf("expected ErrMalformedInput, got %v", err)
	}
}

func TestFixStrict(t *testing.T) {
	res, err := Fix("MML@cdx;")
	if err != nil {
		t.Fatalf("fix failed: %v", err)
	}
	if res.MML != "MML@t120cdx;" {
		t.Fatalf("unknown characters must pass through, got %s", res.MML)
	}
	_, err = Fix("MML@cdx;", WithStrict(true))
	var ice *intmml.InvalidCharsError
	if !errors.As(err, &ice) {
		t.Fatalf("expected InvalidCharsError, got %v", err)
	}
}

func TestFixParallelMatchesSequential(t *testing.T) {
	in := "MML@t120l8cdefgab>c<t150l4ccr2t90c,t120c1t150c2.t90c,r1r1r1;"
	seq, err := Fix(in)
	if err != nil {
		t.Fatalf("fix failed: %v", err)
	}
	par, err := Fix(in, WithParallel(true))
	if err != nil {
		t.Fatalf("parallel fix failed: %v", err)
	}
	if seq.MML != par.MML {
		t.Fatalf("results differ: %s vs %s", seq.MML, par.MML)
	}
	if strings.Join(seq.Log(), "\n") != strings.Join(par.Log(), "\n") {
		t.Fatalf("logs differ:\n%s\nvs\n%s", strings.Join(seq.Log(), "\n"), strings.Join(par.Log(), "\n"))
	}
}

func TestFixSingleStrategy(t *testing.T) {
	res, err := Fix("MML@t120l8cdeft150c,t120c2t150c;", WithStrategies(StrategyGroup))
	if err != nil {
		t.Fatalf("fix failed: %v", err)
	}
	for _, tr := range res.Tracks {
		if tr.Strategy != StrategyGroup || len(tr.Lengths) != 1 {
			t.Fatalf("unexpected track result %+v", tr)
		}
	}
}

func TestFixLogSinkAndLengthWarning(t *testing.T) {
	var warnings []string
	sink := func(e LogEntry) {
		if e.Level == LevelWarn {
			warnings = append(warnings, e.String())
		}
	}
	_, err := Fix("MML@l4cdefgab,c;", WithLogSink(sink), WithLengthWarning(5))
	if err != nil {
		t.Fatalf("fix failed: %v", err)
	}
	if len(warnings) != 1 || !strings.HasPrefix(warnings[0], "warning: track 1 length") {
		t.Fatalf("expected one length warning for track 1, got %v", warnings)
	}
}

func TestAnalyzeReportsMisalignment(t *testing.T) {
	a, err := Analyze("MML@t120l8cdeft150c,t120c2t150c?;")
	if err != nil {
		t.Fatalf("analyze failed: %v", err)
	}
	if !a.NeedsFix() {
		t.Fatalf("expected misalignment to be reported")
	}
	if len(a.Segments) != 2 || a.Segments[0].Target != 4 || !a.Segments[1].Final {
		t.Fatalf("unexpected segments %+v", a.Segments)
	}
	if string(a.Invalid) != "?" {
		t.Fatalf("expected ? as invalid, got %q", string(a.Invalid))
	}
}

func TestParseStrategy(t *testing.T) {
	if s, err := ParseStrategy("group"); err != nil || s != StrategyGroup {
		t.Fatalf("expected group, got %s %v", s, err)
	}
	if _, err := ParseStrategy("fast"); err == nil {
		t.Fatalf("expected error for unknown strategy")
	}
}
