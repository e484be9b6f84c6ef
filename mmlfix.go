// Package mmlfix rewrites multi-track MML so every track carries the same
// tempo changes after the same number of notes, then shortens the result.
package mmlfix

import (
	"errors"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/sync/errgroup"

	intdiag "github.com/cbegin/mmlfix/internal/diag"
	inteq "github.com/cbegin/mmlfix/internal/equalize"
	intmin "github.com/cbegin/mmlfix/internal/minimize"
	intmml "github.com/cbegin/mmlfix/internal/mml"
	inttempo "github.com/cbegin/mmlfix/internal/tempo"
)

type Strategy string

const (
	// StrategyGroup expands default lengths and splits same-length runs.
	StrategyGroup Strategy = "group"
	// StrategyExponential halves single events and keeps the rest as written.
	StrategyExponential Strategy = "exponential"
)

func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case StrategyGroup, StrategyExponential:
		return Strategy(s), nil
	}
	return "", fmt.Errorf("unknown strategy %q", s)
}

var (
	ErrEmptyInput     = intmml.ErrEmptyInput
	ErrMalformedInput = intmml.ErrMalformedInput
	ErrUnexpected     = errors.New("mmlfix: unexpected failure")
)

type (
	LogEntry = intdiag.Entry
	LogLevel = intdiag.Level
)

const (
	LevelDebug = intdiag.LevelDebug
	LevelInfo  = intdiag.LevelInfo
	LevelWarn  = intdiag.LevelWarn
	LevelError = intdiag.LevelError
)

type Option func(*fixConfig)

type fixConfig struct {
	sink          intdiag.Sink
	verbose       bool
	parallel      bool
	strict        bool
	strategies    []Strategy
	splitGuard    int
	maxPasses     int
	lengthWarning int
}

func defaultFixConfig() fixConfig {
	return fixConfig{
		strategies:    []Strategy{StrategyGroup, StrategyExponential},
		splitGuard:    inteq.DefaultOptions().MaxIterations,
		maxPasses:     intmin.DefaultOptions().MaxPasses,
		lengthWarning: 1200,
	}
}

// WithLogSink installs a callback invoked with each log entry as it is
// written. With WithParallel, strategy entries arrive once both finish.
func WithLogSink(sink func(LogEntry)) Option {
	return func(cfg *fixConfig) {
		cfg.sink = sink
	}
}

func WithVerbose(enabled bool) Option {
	return func(cfg *fixConfig) {
		cfg.verbose = enabled
	}
}

// WithParallel runs the equalization strategies concurrently.
func WithParallel(enabled bool) Option {
	return func(cfg *fixConfig) {
		cfg.parallel = enabled
	}
}

// WithStrict rejects input containing characters outside the MML alphabet.
func WithStrict(enabled bool) Option {
	return func(cfg *fixConfig) {
		cfg.strict = enabled
	}
}

// WithStrategies restricts the candidate strategies. On equal length the
// later strategy wins.
func WithStrategies(strategies ...Strategy) Option {
	return func(cfg *fixConfig) {
		if len(strategies) > 0 {
			cfg.strategies = strategies
		}
	}
}

func WithSplitGuard(iterations int) Option {
	return func(cfg *fixConfig) {
		cfg.splitGuard = iterations
	}
}

// WithLengthWarning sets the track length above which a warning is logged.
func WithLengthWarning(chars int) Option {
	return func(cfg *fixConfig) {
		cfg.lengthWarning = chars
	}
}

type TrackResult struct {
	Index      int
	Before     int
	After      int
	Strategy   Strategy
	Lengths    map[Strategy]int
	Shortfalls int
}

type Result struct {
	MML         string
	Tracks      []TrackResult
	TempoPoints int
	Segments    int
	Entries     []LogEntry
	Elapsed     time.Duration
}

// Log returns the log lines with warning and error prefixes.
func (r *Result) Log() []string {
	out := make([]string, len(r.Entries))
	for i, e := range r.Entries {
		out[i] = e.String()
	}
	return out
}

type Fixer struct {
	cfg fixConfig
}

func New(opts ...Option) *Fixer {
	cfg := defaultFixConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Fixer{cfg: cfg}
}

// Fix is shorthand for New(opts...).Fix(input).
func Fix(input string, opts ...Option) (*Result, error) {
	return New(opts...).Fix(input)
}

// Parse reads an MML@...; document into annotated tracks.
func Parse(input string) (*intmml.Document, error) {
	return intmml.Parse(input)
}

type prepared struct {
	doc      *intmml.Document
	before   []int
	tracks   []intmml.Track
	points   []inttempo.Point
	segments []inttempo.Segment
}

func prepare(input string, log *intdiag.Log) (*prepared, error) {
	doc, err := intmml.Parse(input)
	if err != nil {
		log.Errorf("%v", err)
		return nil, err
	}
	log.Infof("found %d tracks", len(doc.Tracks))
	p := &prepared{doc: doc, before: make([]int, len(doc.Tracks)), tracks: make([]intmml.Track, len(doc.Tracks))}
	for i, tr := range doc.Tracks {
		p.before[i] = tr.Len()
		p.tracks[i] = intmml.ExpandPitchNotes(tr)
	}
	p.points = inttempo.Points(p.tracks)
	log.Infof("found %d distinct tempo changes", len(p.points))
	p.tracks = inttempo.Normalize(inttempo.Synchronize(p.tracks, p.points, log), log)
	p.segments = inttempo.Analyze(p.tracks, inttempo.WithStart(p.points), log)
	return p, nil
}

type candidate struct {
	strategy Strategy
	tracks   []intmml.Track
	report   inteq.Report
}

func (f *Fixer) Fix(input string) (res *Result, err error) {
	start := time.Now()
	log := intdiag.New(f.cfg.sink, f.cfg.verbose)
	defer func() {
		if r := recover(); r != nil {
			log.Errorf("unexpected failure: %v", r)
			res, err = nil, fmt.Errorf("%w: %v", ErrUnexpected, r)
		}
	}()

	log.Infof("processing started")
	if f.cfg.strict {
		if err := intmml.Validate(input); err != nil {
			log.Errorf("%v", err)
			return nil, err
		}
	}
	p, err := prepare(input, log)
	if err != nil {
		return nil, err
	}

	cands, err := f.runStrategies(p, log)
	if err != nil {
		return nil, err
	}

	res = &Result{TempoPoints: len(p.points), Segments: len(p.segments)}
	out := &intmml.Document{Tracks: make([]intmml.Track, len(p.tracks))}
	for ti := range p.tracks {
		tr := TrackResult{Index: ti, Before: p.before[ti], Lengths: map[Strategy]int{}}
		best := len(cands) - 1
		for ci, c := range cands {
			tr.Lengths[c.strategy] = c.tracks[ti].Len()
			if c.tracks[ti].Len() < cands[best].tracks[ti].Len() {
				best = ci
			}
		}
		chosen := cands[best]
		out.Tracks[ti] = chosen.tracks[ti]
		tr.Strategy = chosen.strategy
		tr.After = chosen.tracks[ti].Len()
		for _, sf := range chosen.report.Shortfalls {
			if sf.Track == ti {
				tr.Shortfalls++
			}
		}
		if len(cands) > 1 {
			log.Infof("track %d: %s strategy chosen (%d chars)", ti+1, chosen.strategy, tr.After)
		}
		res.Tracks = append(res.Tracks, tr)
	}

	res.MML = out.String()
	log.Infof("fix complete")
	for _, tr := range res.Tracks {
		msg := fmt.Sprintf("track %d length: %s -> %s", tr.Index+1, humanize.Comma(int64(tr.Before)), humanize.Comma(int64(tr.After)))
		if f.cfg.lengthWarning > 0 && tr.After > f.cfg.lengthWarning {
			log.Warnf("%s (over %s characters, further shortening may be needed)", msg, humanize.Comma(int64(f.cfg.lengthWarning)))
		} else {
			log.Infof("%s", msg)
		}
	}
	res.Entries = log.Entries()
	res.Elapsed = time.Since(start)
	return res, nil
}

func (f *Fixer) runStrategies(p *prepared, log *intdiag.Log) ([]candidate, error) {
	cands := make([]candidate, len(f.cfg.strategies))
	if !f.cfg.parallel {
		for i, s := range f.cfg.strategies {
			c, err := f.runStrategy(s, p, log)
			if err != nil {
				return nil, err
			}
			cands[i] = c
		}
		return cands, nil
	}

	logs := make([]*intdiag.Log, len(f.cfg.strategies))
	var g errgroup.Group
	for i, s := range f.cfg.strategies {
		i, s := i, s
		logs[i] = log.Child()
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("%w: %s strategy: %v", ErrUnexpected, s, r)
				}
			}()
			cands[i], err = f.runStrategy(s, p, logs[i])
			return err
		})
	}
	err := g.Wait()
	for _, l := range logs {
		log.Append(l)
	}
	if err != nil {
		log.Errorf("%v", err)
		return nil, err
	}
	return cands, nil
}

func (f *Fixer) runStrategy(s Strategy, p *prepared, log *intdiag.Log) (candidate, error) {
	log.Infof("--- %s strategy ---", s)
	c := candidate{strategy: s}
	switch s {
	case StrategyGroup:
		expanded := make([]intmml.Track, len(p.tracks))
		for i, tr := range p.tracks {
			expanded[i] = intmml.ExpandDefaultLengths(tr)
		}
		c.tracks, c.report = inteq.Group(expanded, p.segments, log)
	case StrategyExponential:
		c.tracks, c.report = inteq.Exponential(p.tracks, p.segments, inteq.Options{MaxIterations: f.cfg.splitGuard}, log)
	default:
		return c, fmt.Errorf("unknown strategy %q", s)
	}
	log.Infof("equalized tempo segments with %d splits", c.report.Splits)

	opts := intmin.Options{MaxPasses: f.cfg.maxPasses}
	for i, tr := range c.tracks {
		c.tracks[i] = intmin.Run(tr, opts, log)
	}
	log.Infof("--- %s strategy done ---", s)
	return c, nil
}
