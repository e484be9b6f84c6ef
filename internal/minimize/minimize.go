package minimize

import (
	"github.com/cbegin/mmlfix/internal/diag"
	"github.com/cbegin/mmlfix/internal/mml"
)

type Options struct {
	// MaxPasses bounds the l command removal loop.
	MaxPasses int
}

func DefaultOptions() Options { return Options{MaxPasses: 10000} }

// Run applies every rewrite in order: l command introduction, redundant
// length removal, l command removal, octave folding and enharmonics. The
// result plays the same notes for the same ticks and is never longer.
func Run(tr mml.Track, opts Options, log *diag.Log) mml.Track {
	if opts.MaxPasses <= 0 {
		opts = DefaultOptions()
	}
	out := introduceLengths(tr)
	out = stripDefaultLengths(out)
	out = dropLengths(out, opts.MaxPasses)
	out = foldOctaveTrips(out)
	out = useEnharmonics(out)
	out = mml.Reparse(out)
	if out.EndTick() != tr.EndTick() || out.Len() > tr.Len() {
		log.Errorf("minimizer changed %d ticks/%d chars into %d/%d, keeping input", tr.EndTick(), tr.Len(), out.EndTick(), out.Len())
		return tr
	}
	log.Debugf("minimized %d -> %d chars", tr.Len(), out.Len())
	return out
}
