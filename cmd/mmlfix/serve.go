package main

import (
	"log"

	"github.com/spf13/cobra"

	"github.com/cbegin/mmlfix/internal/server"
)

var serveOpts struct {
	addr    string
	rate    float64
	burst   int
	origins []string
}

func init() {
	def := server.DefaultConfig()
	serveCmd.Flags().StringVar(&serveOpts.addr, "addr", ":8080", "listen address")
	serveCmd.Flags().Float64Var(&serveOpts.rate, "rate", def.Rate, "requests per second (0 disables limiting)")
	serveCmd.Flags().IntVar(&serveOpts.burst, "burst", def.Burst, "request burst size")
	serveCmd.Flags().StringSliceVar(&serveOpts.origins, "cors-origin", def.CORSOrigins, "allowed CORS origins")
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the fixer over HTTP",
	Long: `Serve exposes POST /fix and POST /check taking {"mml": "..."} and
GET /healthz.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		srv := server.New(server.Config{
			Rate:        serveOpts.rate,
			Burst:       serveOpts.burst,
			CORSOrigins: serveOpts.origins,
			Logger:      log.New(cmd.ErrOrStderr(), "", log.LstdFlags),
		})
		return srv.ListenAndServe(cmd.Context(), serveOpts.addr)
	},
}
