package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/hako/durafmt"

	"github.com/cbegin/mmlfix"
)

var shortUnits, _ = durafmt.DefaultUnitsCoder.Decode("y:yrs,wk:wks,d:d,h:h,m:m,s:s,ms:ms,us:us")

func formatDuration(d time.Duration) string {
	if d < time.Millisecond {
		d = time.Millisecond
	}
	return durafmt.Parse(d).LimitFirstN(2).Format(shortUnits)
}

// resolveMMLInput prefers inline text, then the file at path ("-" is
// stdin), then stdin when nothing was given.
func resolveMMLInput(path string, inline string, stdin io.Reader) (string, error) {
	if strings.TrimSpace(inline) != "" {
		return inline, nil
	}
	if path == "" || path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// logSink prints pipeline entries to l, prefixed with name when set.
func logSink(l *log.Logger, name string, quiet bool) func(mmlfix.LogEntry) {
	return func(e mmlfix.LogEntry) {
		if quiet && e.Level < mmlfix.LevelWarn {
			return
		}
		if name != "" {
			l.Printf("%s: %s", name, e.String())
			return
		}
		l.Print(e.String())
	}
}

func parseStrategies(names []string) ([]mmlfix.Strategy, error) {
	out := make([]mmlfix.Strategy, 0, len(names))
	for _, name := range names {
		s, err := mmlfix.ParseStrategy(strings.ToLower(strings.TrimSpace(name)))
		if err != nil {
			return nil, fmt.Errorf("invalid --strategy %q (expected group|exponential)", name)
		}
		out = append(out, s)
	}
	return out, nil
}
