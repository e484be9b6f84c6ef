// Package diag collects the processing log shown to the user. Every stage
// writes to a *Log; a nil *Log discards everything.
package diag

import (
	"fmt"
	"log"
	"sync"
)

type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warning"
	case LevelError:
		return "error"
	default:
		return "unknown"
	}
}

type Entry struct {
	Level   Level
	Message string
}

func (e Entry) String() string {
	switch e.Level {
	case LevelWarn, LevelError:
		return e.Level.String() + ": " + e.Message
	default:
		return e.Message
	}
}

// Sink receives entries as they are written.
type Sink func(Entry)

// StdSink forwards entries to a standard library logger.
func StdSink(l *log.Logger) Sink {
	return func(e Entry) { l.Print(e.String()) }
}

type Log struct {
	mu      sync.Mutex
	entries []Entry
	sink    Sink
	verbose bool
}

// New returns a Log. Debug entries are kept only when verbose is set.
func New(sink Sink, verbose bool) *Log {
	return &Log{sink: sink, verbose: verbose}
}

// Child returns a buffered Log with the same verbosity and no sink. Merge
// it back with Append once the work it records is done.
func (l *Log) Child() *Log {
	if l == nil {
		return nil
	}
	return &Log{verbose: l.verbose}
}

// Append copies a child's entries in order, forwarding each to the sink.
func (l *Log) Append(child *Log) {
	if l == nil || child == nil {
		return
	}
	for _, e := range child.Entries() {
		l.add(e)
	}
}

func (l *Log) add(e Entry) {
	l.mu.Lock()
	l.entries = append(l.entries, e)
	sink := l.sink
	l.mu.Unlock()
	if sink != nil {
		sink(e)
	}
}

func (l *Log) logf(level Level, format string, v ...any) {
	if l == nil || (level == LevelDebug && !l.verbose) {
		return
	}
	l.add(Entry{Level: level, Message: fmt.Sprintf(format, v...)})
}

func (l *Log) Debugf(format string, v ...any) { l.logf(LevelDebug, format, v...) }
func (l *Log) Infof(format string, v ...any)  { l.logf(LevelInfo, format, v...) }
func (l *Log) Warnf(format string, v ...any)  { l.logf(LevelWarn, format, v...) }
func (l *Log) Errorf(format string, v ...any) { l.logf(LevelError, format, v...) }

func (l *Log) Entries() []Entry {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

func (l *Log) Lines() []string {
	entries := l.Entries()
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.String()
	}
	return out
}

// Count returns how many entries were written at the given level.
func (l *Log) Count(level Level) int {
	n := 0
	for _, e := range l.Entries() {
		if e.Level == level {
			n++
		}
	}
	return n
}
