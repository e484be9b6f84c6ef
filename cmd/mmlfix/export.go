package main

import (
	"bytes"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/cbegin/mmlfix"
	"github.com/cbegin/mmlfix/internal/midiexport"
	"github.com/cbegin/mmlfix/internal/mml"
)

var exportOpts struct {
	fixFlags
	out string
	raw bool
}

func init() {
	exportOpts.register(exportCmd)
	exportCmd.Flags().StringVarP(&exportOpts.out, "out", "o", "", "output .mid file (default: input name with .mid)")
	exportCmd.Flags().BoolVar(&exportOpts.raw, "raw", false, "export the input as written, without fixing")
	rootCmd.AddCommand(exportCmd)
}

var exportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Write a Standard MIDI File for auditioning",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := log.New(cmd.ErrOrStderr(), "", 0)
		path := ""
		if len(args) == 1 {
			path = args[0]
		}
		out := exportOpts.out
		if out == "" {
			if path == "" || path == "-" {
				return fmt.Errorf("--out is required when reading stdin")
			}
			out = strings.TrimSuffix(path, ".mml") + ".mid"
		}
		text, err := resolveMMLInput(path, exportOpts.inline, cmd.InOrStdin())
		if err != nil {
			return err
		}
		if !exportOpts.raw {
			opts, err := exportOpts.options(logger, "")
			if err != nil {
				return err
			}
			res, err := mmlfix.Fix(text, opts...)
			if err != nil {
				return err
			}
			text = res.MML
		}
		doc, err := mml.Parse(text)
		if err != nil {
			return err
		}
		var buf bytes.Buffer
		n, err := midiexport.Write(&buf, doc)
		if err != nil {
			return err
		}
		if err := os.WriteFile(out, buf.Bytes(), 0o644); err != nil {
			return err
		}
		logger.Printf("wrote %s (%s, %d tracks)", out, humanize.Bytes(uint64(n)), len(doc.Tracks))
		return nil
	},
}
