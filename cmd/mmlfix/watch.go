package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/bep/debounce"
	"github.com/spf13/cobra"

	"github.com/cbegin/mmlfix"
)

var watchOpts struct {
	fixFlags
	out      string
	interval time.Duration
	settle   time.Duration
	notify   bool
	copy     bool
}

func init() {
	watchOpts.register(watchCmd)
	watchCmd.Flags().StringVarP(&watchOpts.out, "out", "o", "", "output file (default: input name with .fixed)")
	watchCmd.Flags().DurationVar(&watchOpts.interval, "interval", 500*time.Millisecond, "how often the file is polled")
	watchCmd.Flags().DurationVar(&watchOpts.settle, "settle", 300*time.Millisecond, "quiet period before a change is fixed")
	watchCmd.Flags().BoolVar(&watchOpts.notify, "notify", false, "show a desktop notification after each fix")
	watchCmd.Flags().BoolVar(&watchOpts.copy, "copy", false, "copy each result to the clipboard")
	rootCmd.AddCommand(watchCmd)
}

var watchCmd = &cobra.Command{
	Use:   "watch file",
	Short: "Fix a file every time it changes",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := log.New(cmd.ErrOrStderr(), "", log.LstdFlags)
		path := args[0]
		out := watchOpts.out
		if out == "" {
			out = outputPath(path, ".fixed")
		}
		if filepath.Clean(out) == filepath.Clean(path) {
			return fmt.Errorf("output %s would overwrite the watched file", out)
		}

		runner := newFixRunner(watchOpts.settle)
		defer runner.Stop()
		run := func() { watchFix(logger, path, out) }
		runner.Run(run)

		last := modTime(path)
		ticker := time.NewTicker(watchOpts.interval)
		defer ticker.Stop()
		logger.Printf("watching %s", path)
		for {
			select {
			case <-cmd.Context().Done():
				return nil
			case <-ticker.C:
				if mt := modTime(path); !mt.Equal(last) {
					last = mt
					runner.Trigger(run)
				}
			}
		}
	},
}

// fixRunner runs one fix at a time. Fixes triggered before Stop but firing
// after it are dropped.
type fixRunner struct {
	mu        sync.Mutex
	stopped   bool
	debounced func(func())
}

func newFixRunner(settle time.Duration) *fixRunner {
	return &fixRunner{debounced: debounce.New(settle)}
}

// Trigger schedules f once the settle period passes without another trigger.
func (r *fixRunner) Trigger(f func()) {
	r.debounced(func() { r.Run(f) })
}

func (r *fixRunner) Run(f func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stopped {
		return
	}
	f()
}

// Stop cancels the pending trigger and waits for a running fix to finish.
func (r *fixRunner) Stop() {
	r.debounced(func() {})
	r.mu.Lock()
	r.stopped = true
	r.mu.Unlock()
}

func modTime(path string) time.Time {
	fi, err := os.Stat(path)
	if err != nil {
		return time.Time{}
	}
	return fi.ModTime()
}

func watchFix(logger *log.Logger, path, out string) {
	name := filepath.Base(path)
	data, err := os.ReadFile(path)
	if err != nil {
		logger.Printf("%s: error: %v", name, err)
		return
	}
	opts, err := watchOpts.options(logger, name)
	if err != nil {
		logger.Printf("%s: error: %v", name, err)
		return
	}
	res, err := mmlfix.Fix(string(data), opts...)
	if err != nil {
		if watchOpts.notify {
			notifyDesktop("mmlfix", fmt.Sprintf("%s: %v", name, err))
		}
		return
	}
	if err := os.WriteFile(out, []byte(res.MML+"\n"), 0o644); err != nil {
		logger.Printf("%s: error: %v", name, err)
		return
	}
	if watchOpts.copy {
		copyToClipboard(logger, res.MML)
	}
	msg := fmt.Sprintf("%s fixed in %s", name, formatDuration(res.Elapsed))
	logger.Print(msg)
	if watchOpts.notify {
		notifyDesktop("mmlfix", msg)
	}
}
