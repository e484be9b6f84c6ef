package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/remeh/sizedwaitgroup"
	"github.com/spf13/cobra"
	"golang.design/x/clipboard"

	"github.com/cbegin/mmlfix"
)

type fixFlags struct {
	inline     string
	strict     bool
	parallel   bool
	verbose    bool
	quiet      bool
	strategies []string
}

func (f *fixFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.inline, "mml", "", "inline MML string")
	cmd.Flags().BoolVar(&f.strict, "strict", false, "reject characters outside the MML alphabet")
	cmd.Flags().BoolVar(&f.parallel, "parallel", false, "run equalization strategies concurrently")
	cmd.Flags().BoolVarP(&f.verbose, "verbose", "v", false, "include per-split trace lines")
	cmd.Flags().BoolVarP(&f.quiet, "quiet", "q", false, "only print warnings and errors")
	cmd.Flags().StringSliceVar(&f.strategies, "strategy", nil, "strategies to try: group,exponential (default both)")
}

func (f *fixFlags) options(l *log.Logger, name string) ([]mmlfix.Option, error) {
	opts := []mmlfix.Option{
		mmlfix.WithStrict(f.strict),
		mmlfix.WithParallel(f.parallel),
		mmlfix.WithVerbose(f.verbose),
		mmlfix.WithLogSink(logSink(l, name, f.quiet)),
	}
	if len(f.strategies) > 0 {
		strategies, err := parseStrategies(f.strategies)
		if err != nil {
			return nil, err
		}
		opts = append(opts, mmlfix.WithStrategies(strategies...))
	}
	return opts, nil
}

var fixOpts struct {
	fixFlags
	out    string
	suffix string
	jobs   int
	copy   bool
}

func init() {
	fixOpts.register(fixCmd)
	fixCmd.Flags().StringVarP(&fixOpts.out, "out", "o", "", "output file for a single input (default stdout)")
	fixCmd.Flags().StringVar(&fixOpts.suffix, "suffix", ".fixed", "suffix added before the extension when fixing several files")
	fixCmd.Flags().IntVarP(&fixOpts.jobs, "jobs", "j", runtime.NumCPU(), "files fixed concurrently")
	fixCmd.Flags().BoolVar(&fixOpts.copy, "copy", false, "copy the fixed MML to the clipboard")
	rootCmd.AddCommand(fixCmd)
}

var fixCmd = &cobra.Command{
	Use:   "fix [file...]",
	Short: "Synchronize tempo changes and shorten the result",
	Long: `Fix reads MML from --mml, the given files, or stdin. With one input the
result goes to --out or stdout; with several, each result is written next to
its input with --suffix added.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := log.New(cmd.ErrOrStderr(), "", 0)
		if len(args) > 1 {
			return fixBatch(logger, args)
		}
		path := ""
		if len(args) == 1 {
			path = args[0]
		}
		text, err := resolveMMLInput(path, fixOpts.inline, cmd.InOrStdin())
		if err != nil {
			return err
		}
		opts, err := fixOpts.options(logger, "")
		if err != nil {
			return err
		}
		res, err := mmlfix.Fix(text, opts...)
		if err != nil {
			return err
		}
		if fixOpts.out != "" {
			if err := os.WriteFile(fixOpts.out, []byte(res.MML+"\n"), 0o644); err != nil {
				return err
			}
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), res.MML)
		}
		if fixOpts.copy {
			copyToClipboard(logger, res.MML)
		}
		logger.Printf("fixed %d tracks in %s", len(res.Tracks), formatDuration(res.Elapsed))
		return nil
	},
}

func fixBatch(logger *log.Logger, paths []string) error {
	start := time.Now()
	var (
		mu            sync.Mutex
		failed        []string
		before, after int
	)
	wg := sizedwaitgroup.New(max(fixOpts.jobs, 1))
	for _, path := range paths {
		wg.Add()
		go func(path string) {
			defer wg.Done()
			b, a, err := fixFile(logger, path)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				logger.Printf("%s: error: %v", path, err)
				failed = append(failed, path)
				return
			}
			before += b
			after += a
		}(path)
	}
	wg.Wait()

	logger.Printf("fixed %d of %d files in %s (%s -> %s)",
		len(paths)-len(failed), len(paths), formatDuration(time.Since(start)),
		humanize.Bytes(uint64(before)), humanize.Bytes(uint64(after)))
	if len(failed) > 0 {
		return fmt.Errorf("%d files failed: %s", len(failed), strings.Join(failed, ", "))
	}
	return nil
}

func fixFile(logger *log.Logger, path string) (int, int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, 0, err
	}
	opts, err := fixOpts.options(logger, filepath.Base(path))
	if err != nil {
		return 0, 0, err
	}
	res, err := mmlfix.Fix(string(data), opts...)
	if err != nil {
		return 0, 0, err
	}
	if err := os.WriteFile(outputPath(path, fixOpts.suffix), []byte(res.MML+"\n"), 0o644); err != nil {
		return 0, 0, err
	}
	return len(data), len(res.MML) + 1, nil
}

// outputPath inserts suffix before the extension: song.mml -> song.fixed.mml.
func outputPath(path, suffix string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + suffix + ext
}

var (
	clipboardOnce sync.Once
	clipboardErr  error
)

func copyToClipboard(logger *log.Logger, text string) {
	clipboardOnce.Do(func() { clipboardErr = clipboard.Init() })
	if clipboardErr != nil {
		logger.Printf("clipboard init: %v", clipboardErr)
		return
	}
	clipboard.Write(clipboard.FmtText, []byte(text))
	logger.Printf("copied %s to the clipboard", humanize.Bytes(uint64(len(text))))
}
