package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "mmlfix",
	Short: "Fix tempo desync in multi-track MML",
	Long: `mmlfix rewrites MML@...; scores so every track carries the same tempo
changes after the same number of notes, then shortens the result.`,
	SilenceUsage: true,
}

func Execute() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	cobra.CheckErr(rootCmd.ExecuteContext(ctx))
}
