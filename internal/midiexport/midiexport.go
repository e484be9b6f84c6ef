// Package midiexport writes MML documents as Standard MIDI Files so a fixed
// score can be auditioned in any MIDI player.
package midiexport

import (
	"errors"
	"fmt"
	"io"
	"sort"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/cbegin/mmlfix/internal/mml"
	"github.com/cbegin/mmlfix/internal/sequencer"
)

var ErrTooManyTracks = errors.New("midiexport: more tracks than MIDI channels")

const drumChannel = 9

type eventKind int

// Order of simultaneous events: releases first, then tempo, then attacks.
const (
	eventNoteOff eventKind = iota
	eventTempo
	eventNoteOn
)

type event struct {
	tick int
	kind eventKind
	msg  smf.Message
}

// Channel maps a track index to a MIDI channel, skipping the drum channel.
func Channel(track int) (uint8, bool) {
	ch := track
	if ch >= drumChannel {
		ch++
	}
	if ch > 15 {
		return 0, false
	}
	return uint8(ch), true
}

// Encode builds a format 1 SMF with one MIDI track per MML track. Tick
// positions are copied unchanged at sequencer.TicksPerQuarter resolution.
func Encode(doc *mml.Document) (*smf.SMF, error) {
	var s smf.SMF
	s.TimeFormat = smf.MetricTicks(sequencer.TicksPerQuarter)
	for i, sched := range sequencer.BuildDocument(doc) {
		ch, ok := Channel(i)
		if !ok {
			return nil, fmt.Errorf("%w: track %d", ErrTooManyTracks, i+1)
		}
		s.Tracks = append(s.Tracks, encodeTrack(sched, ch))
	}
	return &s, nil
}

func encodeTrack(sched sequencer.Schedule, ch uint8) smf.Track {
	events := make([]event, 0, len(sched.Tempos)+2*len(sched.Notes))
	for _, tc := range sched.Tempos {
		events = append(events, event{tick: tc.Tick, kind: eventTempo, msg: smf.MetaTempo(float64(tc.BPM))})
	}
	for _, n := range sched.Notes {
		events = append(events,
			event{tick: n.Start, kind: eventNoteOn, msg: smf.Message(midi.NoteOn(ch, uint8(n.Key), uint8(n.Velocity)))},
			event{tick: n.End, kind: eventNoteOff, msg: smf.Message(midi.NoteOff(ch, uint8(n.Key)))},
		)
	}
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].tick != events[j].tick {
			return events[i].tick < events[j].tick
		}
		return events[i].kind < events[j].kind
	})

	var tr smf.Track
	last := 0
	for _, ev := range events {
		tr = append(tr, smf.Event{Delta: uint32(ev.tick - last), Message: ev.msg})
		last = ev.tick
	}
	end := sched.End - last
	if end < 0 {
		end = 0
	}
	tr.Close(uint32(end))
	return tr
}

// Write encodes doc and writes it to w.
func Write(w io.Writer, doc *mml.Document) (int64, error) {
	s, err := Encode(doc)
	if err != nil {
		return 0, err
	}
	return s.WriteTo(w)
}
