package tempo

import (
	"golang.org/x/exp/constraints"

	"github.com/cbegin/mmlfix/internal/diag"
	"github.com/cbegin/mmlfix/internal/mml"
)

// Segment is the span [Start, End) between two tempo changes with the
// number of Notes and Rests each track starts inside it.
type Segment struct {
	Start  int
	End    int
	Tempo  int
	Counts []int
}

// Target is the count every track must reach in this segment.
func (s Segment) Target() int { return maxOf(s.Counts) }

func maxOf[T constraints.Integer](vals []T) T {
	var m T
	for i, v := range vals {
		if i == 0 || v > m {
			m = v
		}
	}
	return m
}

// WithStart prepends the default tempo at tick 0 when no change starts
// there, matching the leading tempo Normalize adds to every track.
func WithStart(points []Point) []Point {
	if len(points) > 0 && points[0].Tick == 0 {
		return points
	}
	return append([]Point{{Tick: 0, Value: mml.DefaultTempo}}, points...)
}

// Analyze builds segments between consecutive points. The final segment is
// dropped when no track sounds at or after its start.
func Analyze(tracks []mml.Track, points []Point, log *diag.Log) []Segment {
	if len(points) == 0 {
		return nil
	}
	lastTick, lastSound := 0, 0
	for _, tr := range tracks {
		lastTick = max(lastTick, tr.EndTick())
		lastSound = max(lastSound, tr.SoundingEnd())
	}

	segments := make([]Segment, 0, len(points))
	for i, p := range points {
		end := lastTick
		if i+1 < len(points) {
			end = points[i+1].Tick
		}
		if i == len(points)-1 && p.Tick >= lastSound {
			log.Debugf("skipping final tempo segment at tick %d: nothing sounds after it", p.Tick)
			continue
		}
		seg := Segment{Start: p.Tick, End: end, Tempo: p.Value, Counts: make([]int, len(tracks))}
		for ti, tr := range tracks {
			seg.Counts[ti] = tr.CountSounding(seg.Start, seg.End)
		}
		segments = append(segments, seg)
	}
	log.Infof("analyzed %d tempo segments", len(segments))
	return segments
}
