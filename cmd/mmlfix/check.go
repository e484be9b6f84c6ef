package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/cbegin/mmlfix"
	"github.com/cbegin/mmlfix/internal/mml"
	"github.com/cbegin/mmlfix/internal/sequencer"
)

var errNeedsFix = errors.New("tempo segments are misaligned")

var checkOpts struct {
	inline string
}

func init() {
	checkCmd.Flags().StringVar(&checkOpts.inline, "mml", "", "inline MML string")
	rootCmd.AddCommand(checkCmd)
}

var checkCmd = &cobra.Command{
	Use:   "check [file]",
	Short: "Report per-segment note counts without rewriting",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := ""
		if len(args) == 1 {
			path = args[0]
		}
		text, err := resolveMMLInput(path, checkOpts.inline, cmd.InOrStdin())
		if err != nil {
			return err
		}
		needsFix, err := check(cmd.OutOrStdout(), text)
		if err != nil {
			return err
		}
		if needsFix {
			return errNeedsFix
		}
		return nil
	},
}

func check(w io.Writer, text string) (bool, error) {
	a, err := mmlfix.Analyze(text)
	if err != nil {
		return false, err
	}
	doc, err := mml.Parse(text)
	if err != nil {
		return false, err
	}
	for i, n := range a.Lengths {
		fmt.Fprintf(w, "track %d: %s chars\n", i+1, humanize.Comma(int64(n)))
	}
	fmt.Fprintf(w, "tempo changes: %d\n", a.TempoPoints)
	for _, s := range a.Segments {
		counts := make([]string, len(s.Counts))
		for i, c := range s.Counts {
			counts[i] = fmt.Sprint(c)
		}
		status := "ok"
		switch {
		case s.Final:
			status = "final"
		case !s.Aligned():
			status = fmt.Sprintf("misaligned, target %d", s.Target)
		}
		fmt.Fprintf(w, "  ticks %d-%d t%d: [%s] %s\n", s.Start, s.End, s.Tempo, strings.Join(counts, " "), status)
	}
	if len(a.Invalid) > 0 {
		fmt.Fprintf(w, "unsupported characters: %s\n", string(a.Invalid))
	}
	fmt.Fprintf(w, "duration: %s\n", formatDuration(sequencer.Duration(sequencer.BuildDocument(doc))))
	return a.NeedsFix(), nil
}
